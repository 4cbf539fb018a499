package device

// N4-class control surface constants.
//
// Display index mapping (for writing button images):
//   - Top row (5 buttons):    display keys 10-14
//   - Bottom row (5 buttons): display keys 5-9
//   - LCD strip (4 softkeys): display keys 0-3
//
// Input mapping (raw event codes):
//   - Top row:    0x01-0x05 -> logical buttons 0-4
//   - Bottom row: 0x06-0x0a -> logical buttons 5-9
//   - LCD strip:  0x40-0x43 -> logical buttons 10-13
const (
	// ButtonCount is the number of logical buttons the surface exposes:
	// 10 square LCD buttons plus 4 strip softkeys.
	ButtonCount = 14

	// SquareButtonCount is the number of square LCD buttons (top + bottom row).
	SquareButtonCount = 10

	// StripButtonCount is the number of LCD strip softkeys.
	StripButtonCount = 4

	// EncoderCount is the number of rotary encoders.
	EncoderCount = 4

	// ButtonImageSize is the square button display resolution in pixels.
	ButtonImageSize = 112
)

// Raw event code ranges and fixed codes from the vendor protocol.
const (
	rawButtonFirst = 0x01
	rawButtonLast  = 0x0a

	rawStripFirst = 0x40
	rawStripLast  = 0x43
)

// encoderPressCodes maps the vendor press codes to logical encoder indices.
// The physical-to-logical wheel ordering is non-monotonic, so this is a
// lookup table rather than arithmetic.
var encoderPressCodes = map[byte]int{
	0x37: 0, // leftmost wheel
	0x35: 1,
	0x33: 2,
	0x36: 3, // rightmost wheel
}

// encoderRotateCodes maps the even (counter-clockwise) code of each CW/CCW
// rotation pair to a logical encoder index. The odd sibling of each pair is
// the clockwise direction.
var encoderRotateCodes = map[byte]int{
	0xa0: 0,
	0x50: 1,
	0x90: 2,
	0x70: 3,
}

// DisplayKey converts a logical button id to the device display key used
// when addressing a screen region. The top row is reversed relative to the
// bottom row in the device's display addressing.
//
//	buttons 0-4  -> display keys 10-14
//	buttons 5-9  -> display keys 5-9
//	softkeys 10-13 -> display keys 0-3
func DisplayKey(button int) int {
	switch {
	case button < 5:
		return button + 10
	case button < SquareButtonCount:
		return button
	default:
		return button - SquareButtonCount
	}
}

// IsStripButton reports whether a logical button id addresses an LCD strip
// softkey rather than a square button.
func IsStripButton(button int) bool {
	return button >= SquareButtonCount && button < ButtonCount
}
