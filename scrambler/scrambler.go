// Package scrambler implements the linear-feedback shift register engine
// that whitens payload dwords on the wire. Scrambling and descrambling are
// the identical operation: the LFSR runs freely from a known seed and its
// mask is XORed into the data, so applying the transform twice with
// synchronized register state reproduces the original word.
package scrambler

// seed is the register content after reset. The register is never allowed
// to reach the all-zero lockup state because the seed is non-zero and the
// feedback polynomial is primitive.
const seed = 0xFFFF

// Scrambler is a 16-bit LFSR with the feedback polynomial
// x^16 + x^15 + x^13 + x^4 + 1. Each enabled tick advances the register by
// 32 bit-steps and registers the masked data word; the registered output is
// observable until the next advance, so a frozen scrambler still presents
// its last result.
type Scrambler struct {
	state uint16
	out   uint32
}

// New creates a Scrambler in its reset state.
func New() *Scrambler {
	s := &Scrambler{}
	s.Reset()

	return s
}

// Reset returns the register to the all-ones seed and clears the output
// register. Asserted on link reset and on the explicit scrambler-reset
// pulse at each start of frame.
func (s *Scrambler) Reset() {
	s.state = seed
	s.out = 0
}

// Advance performs one enabled tick: the register advances one 32-bit step
// and the output register latches word XOR mask. Not calling Advance models
// a deasserted enable line: the register freezes and Output keeps returning
// the last latched value.
func (s *Scrambler) Advance(word uint32) {
	s.out = word ^ s.nextMask()
}

// Output returns the registered result of the most recent Advance.
func (s *Scrambler) Output() uint32 {
	return s.out
}

// State exposes the raw register for inspection.
func (s *Scrambler) State() uint16 {
	return s.state
}

// nextMask steps the register 32 times and collects the generated bits,
// most significant first. With the register bits numbered s15..s0, s15 the
// newest generated bit, the recurrence for the polynomial above is
// next = s15 ^ s13 ^ s4 ^ s0.
func (s *Scrambler) nextMask() uint32 {
	st := s.state
	var mask uint32

	for i := 0; i < 32; i++ {
		next := ((st >> 15) ^ (st >> 13) ^ (st >> 4) ^ st) & 1
		st = st<<1 | next
		mask = mask<<1 | uint32(next)
	}

	s.state = st

	return mask
}
