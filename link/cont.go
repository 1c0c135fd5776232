package link

import "github.com/satalab/satalink/primitive"

// repeatExpander restores the run-length compression applied to repeated
// primitives: a run of identical primitives arrives as one genuine
// primitive followed by CONT tokens, and the expander replays the latched
// primitive for every CONT it sees.
type repeatExpander struct {
	latched uint32
}

// expand produces the effective incoming word and the continuing flag for
// one tick. The latch is updated exactly once per tick, and only when a
// genuine (non-CONT) primitive is observed. Payload words pass through
// untouched and leave the latch alone.
func (x *repeatExpander) expand(
	word uint32,
	primitivePresent bool,
) (effective uint32, continuing bool) {
	if !primitivePresent {
		return word, false
	}

	if word == uint32(primitive.Cont) {
		return x.latched, true
	}

	x.latched = word

	return word, false
}

// reset bypasses the expander and clears the latch, matching link reset.
func (x *repeatExpander) reset() {
	x.latched = 0
}
