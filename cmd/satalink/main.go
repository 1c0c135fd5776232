// Package main is the satalink command, a serial-link protocol simulator.
package main

import (
	"github.com/tebeka/atexit"
)

func main() {
	defer atexit.Exit(0)

	Execute()
}
