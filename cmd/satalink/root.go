package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:   "satalink",
	Short: "satalink simulates a SATA-class serial link",
	Long: `satalink simulates two link-layer engines connected by a wire.
Frames flow from a host-side transport agent to a device-side one, through
the full protocol machinery: handshakes, scrambling, repeat suppression,
and checksum sequencing.`,
}

// Execute runs the root command.
func Execute() {
	// A .env file can hold defaults such as SATALINK_MONITOR_PORT and
	// SATALINK_OUTPUT; unset flags pick them up.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		atexit.Fatal(err)
	}
}
