// Package primitive defines the reserved 32-bit control codewords exchanged
// between link-layer peers. A primitive occupies a full dword on the wire and
// is distinguished from payload by the physical layer's primitive-present
// flag, never by inspecting sub-fields. The link layer only ever compares a
// received word for exact equality against the constants in this package.
package primitive

// Word is a 32-bit primitive codeword.
type Word uint32

// The primitive encodings, as dwords in wire order. The first byte of each
// is the control character that makes the physical layer flag the dword as a
// primitive (K28.3 for most, K28.5 for ALIGN).
const (
	Align  Word = 0x7B4A4ABC // ALIGN: idle fill and clock compensation
	Cont   Word = 0x9999AA7C // CONT: repeat the previous primitive
	DMAT   Word = 0x3636B57C // DMAT: DMA terminate request
	EOF    Word = 0xD5D5B57C // EOF: end of frame
	Hold   Word = 0xD5D5AA7C // HOLD: data flow pause request
	HoldA  Word = 0x9595AA7C // HOLDA: hold acknowledge
	PMAck  Word = 0x9595957C // PMACK: power management accept
	PMNak  Word = 0xF5F5957C // PMNAK: power management deny
	PMReqP Word = 0x1717B57C // PMREQ_P: request partial power state
	PMReqS Word = 0x7575957C // PMREQ_S: request slumber power state
	RErr   Word = 0x5656B57C // R_ERR: reception error
	RIP    Word = 0x5555B57C // R_IP: reception in progress
	ROK    Word = 0x3535B57C // R_OK: reception successful
	RRdy   Word = 0x4A4A957C // R_RDY: receiver ready
	SOF    Word = 0x3737B57C // SOF: start of frame
	Sync   Word = 0xB5B5957C // SYNC: idle resynchronization
	WTrm   Word = 0x5858B57C // WTRM: wait for frame termination
	XRdy   Word = 0x5757B57C // X_RDY: transmitter ready
)

var names = map[Word]string{
	Align:  "ALIGN",
	Cont:   "CONT",
	DMAT:   "DMAT",
	EOF:    "EOF",
	Hold:   "HOLD",
	HoldA:  "HOLDA",
	PMAck:  "PMACK",
	PMNak:  "PMNAK",
	PMReqP: "PMREQ_P",
	PMReqS: "PMREQ_S",
	RErr:   "R_ERR",
	RIP:    "R_IP",
	ROK:    "R_OK",
	RRdy:   "R_RDY",
	SOF:    "SOF",
	Sync:   "SYNC",
	WTrm:   "WTRM",
	XRdy:   "X_RDY",
}

// String returns the conventional name of the primitive, or a hexadecimal
// rendering for words that are not known primitives.
func (w Word) String() string {
	if n, found := names[w]; found {
		return n
	}

	const hexDigits = "0123456789ABCDEF"
	b := []byte("0x00000000")
	for i := 0; i < 8; i++ {
		b[9-i] = hexDigits[(uint32(w)>>(4*i))&0xF]
	}

	return string(b)
}

// IsKnown reports whether the word is one of the defined primitives.
func (w Word) IsKnown() bool {
	_, found := names[w]
	return found
}

// IsPowerManagementRequest reports whether the primitive requests a
// transition into a low-power link state.
func (w Word) IsPowerManagementRequest() bool {
	return w == PMReqP || w == PMReqS
}
