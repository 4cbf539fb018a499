package device

import "log/slog"

// RawInput is the decoded form of a single raw hardware sample. Exactly one
// of the vectors is meaningful depending on Kind. Values are produced fresh
// on every decode and never retained.
type RawInput struct {
	Kind RawInputKind

	// Buttons is the absolute pressed-state vector for KindButtons.
	Buttons []bool

	// Encoders is the absolute pressed-state vector for KindEncoders.
	Encoders []bool

	// Twist holds per-encoder rotation direction (-1, 0, +1) for KindTwist.
	// At most one slot is non-zero per sample.
	Twist []int8
}

// RawInputKind discriminates the RawInput variants.
type RawInputKind int

const (
	// KindNoData marks padding, noise, or unknown codes.
	KindNoData RawInputKind = iota
	// KindButtons carries an absolute button-state vector.
	KindButtons
	// KindEncoders carries an absolute encoder press-state vector.
	KindEncoders
	// KindTwist carries a single-slot encoder rotation vector.
	KindTwist
)

func (k RawInputKind) String() string {
	switch k {
	case KindNoData:
		return "nodata"
	case KindButtons:
		return "buttons"
	case KindEncoders:
		return "encoders"
	case KindTwist:
		return "twist"
	default:
		return "invalid"
	}
}

// Decode maps one raw (event code, state byte) pair to a RawInput. Decoding
// is total: every byte value maps to exactly one variant, and codes outside
// the vendor protocol come back as KindNoData (logged at debug, never an
// error).
//
// For buttons and softkeys the state byte distinguishes press (non-zero)
// from release; softkeys are press-only on the wire, so their state is
// forced to pressed. Rotation codes come in CCW/CW pairs where the odd code
// of the pair is clockwise (+1).
func Decode(code, state byte, logger *slog.Logger) RawInput {
	switch {
	case code == 0x00:
		// Padding between real samples.
		return RawInput{Kind: KindNoData}

	case code >= rawButtonFirst && code <= rawButtonLast:
		buttons := make([]bool, ButtonCount)
		buttons[int(code)-rawButtonFirst] = state != 0
		return RawInput{Kind: KindButtons, Buttons: buttons}

	case code >= rawStripFirst && code <= rawStripLast:
		// The strip softkeys report presses only; there is no release code.
		buttons := make([]bool, ButtonCount)
		buttons[int(code)-rawStripFirst+SquareButtonCount] = true
		return RawInput{Kind: KindButtons, Buttons: buttons}
	}

	if idx, ok := encoderPressCodes[code]; ok {
		encoders := make([]bool, EncoderCount)
		encoders[idx] = state != 0
		return RawInput{Kind: KindEncoders, Encoders: encoders}
	}

	// Rotation pairs share all bits except the lowest: even = CCW, odd = CW.
	if idx, ok := encoderRotateCodes[code&^1]; ok {
		twist := make([]int8, EncoderCount)
		if code&1 == 1 {
			twist[idx] = 1
		} else {
			twist[idx] = -1
		}
		return RawInput{Kind: KindTwist, Twist: twist}
	}

	if logger != nil {
		logger.Debug("unknown raw event", "code", code, "state", state)
	}
	return RawInput{Kind: KindNoData}
}
