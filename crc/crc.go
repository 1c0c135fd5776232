// Package crc defines the checksum engine contract the link layer sequences
// around, together with the concrete 32-bit engine used on SATA-class
// links. The link core depends only on the Accumulator interface: it pulses
// Start at start of frame, folds one word per data-valid tick, pulses Stop
// at end of frame, and tests the residual against zero.
package crc

// Accumulator is a running checksum engine.
//
// The protocol-level success criterion is a zero residual after folding
// both the frame payload and the trailing checksum word supplied by the
// sender.
type Accumulator interface {
	// Start begins a new accumulation, clearing internal state to the seed.
	Start()

	// Fold incorporates one data word. Called once per data-valid tick.
	Fold(word uint32)

	// Stop finalizes the accumulation.
	Stop()

	// Residual returns the current accumulator value. Zero after folding a
	// frame plus its trailing checksum word indicates integrity.
	Residual() uint32
}

const (
	// Poly is the CRC-32 generator polynomial, most significant bit first.
	Poly = 0x04C11DB7

	// Seed is the accumulator value at start of computation.
	Seed = 0x52325032
)

// Engine32 is the 32-bit word-parallel accumulator: each fold XORs the data
// word into the accumulator and multiplies by x^32 modulo the generator
// polynomial. Folding the accumulated sum itself therefore yields exactly
// zero, which is what makes the receiver-side zero-residual test work.
type Engine32 struct {
	acc uint32
}

// NewEngine32 creates an Engine32 in its started state.
func NewEngine32() *Engine32 {
	e := &Engine32{}
	e.Start()

	return e
}

// Start resets the accumulator to the seed.
func (e *Engine32) Start() {
	e.acc = Seed
}

// Fold incorporates one 32-bit word into the running checksum.
func (e *Engine32) Fold(word uint32) {
	v := e.acc ^ word

	for i := 0; i < 32; i++ {
		if v&0x80000000 != 0 {
			v = v<<1 ^ Poly
		} else {
			v <<= 1
		}
	}

	e.acc = v
}

// Stop finalizes the accumulation. The word-parallel formulation needs no
// closing step; Stop exists so callers sequence the contract explicitly.
func (e *Engine32) Stop() {}

// Residual returns the accumulator value.
func (e *Engine32) Residual() uint32 {
	return e.acc
}

// Sum returns the checksum word a transmitter appends to the frame.
func (e *Engine32) Sum() uint32 {
	return e.acc
}
