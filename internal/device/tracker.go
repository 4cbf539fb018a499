package device

// InputEvent is a discrete semantic input transition derived from successive
// absolute-state samples. Consumed once by the input layer.
type InputEvent struct {
	Kind InputEventKind

	// Button is the logical button id for button events.
	Button int

	// Encoder is the logical encoder id for encoder events.
	Encoder int

	// Direction is +1 (clockwise) or -1 (counter-clockwise) for rotations.
	Direction int
}

// InputEventKind discriminates InputEvent variants.
type InputEventKind int

const (
	ButtonDown InputEventKind = iota
	ButtonUp
	EncoderPress
	EncoderRelease
	EncoderRotate
)

func (k InputEventKind) String() string {
	switch k {
	case ButtonDown:
		return "button_down"
	case ButtonUp:
		return "button_up"
	case EncoderPress:
		return "encoder_press"
	case EncoderRelease:
		return "encoder_release"
	case EncoderRotate:
		return "encoder_rotate"
	default:
		return "invalid"
	}
}

// EdgeTracker holds the previous absolute button/encoder state and converts
// RawInputs into discrete InputEvents by edge detection.
//
// Only the first transition found per sample is reported, scanned in index
// order. The device sends exactly one logical change per report, so a single
// sample never legitimately carries two transitions; collapsing to one keeps
// downstream ordering deterministic.
type EdgeTracker struct {
	buttons  []bool
	encoders []bool
}

// NewEdgeTracker returns a tracker sized to the given vector lengths, all
// slots released.
func NewEdgeTracker(buttonCount, encoderCount int) *EdgeTracker {
	return &EdgeTracker{
		buttons:  make([]bool, buttonCount),
		encoders: make([]bool, encoderCount),
	}
}

// Apply feeds one decoded sample through edge detection. It returns the
// derived event and true, or false when the sample produced no transition.
func (t *EdgeTracker) Apply(in RawInput) (InputEvent, bool) {
	switch in.Kind {
	case KindButtons:
		return t.applyButtons(in.Buttons)
	case KindEncoders:
		return t.applyEncoders(in.Encoders)
	case KindTwist:
		return t.applyTwist(in.Twist)
	default:
		return InputEvent{}, false
	}
}

func (t *EdgeTracker) applyButtons(states []bool) (InputEvent, bool) {
	for i, pressed := range states {
		if i >= len(t.buttons) {
			// Out-of-range slots are dropped, never indexed.
			break
		}
		was := t.buttons[i]
		if pressed == was {
			continue
		}
		t.buttons[i] = pressed
		if pressed {
			return InputEvent{Kind: ButtonDown, Button: i}, true
		}
		return InputEvent{Kind: ButtonUp, Button: i}, true
	}
	return InputEvent{}, false
}

func (t *EdgeTracker) applyEncoders(states []bool) (InputEvent, bool) {
	for i, pressed := range states {
		if i >= len(t.encoders) {
			break
		}
		was := t.encoders[i]
		switch {
		case pressed && !was:
			// The device does not reliably send encoder release codes.
			// Self-clear the slot so the next press produces a fresh edge.
			t.encoders[i] = false
			return InputEvent{Kind: EncoderPress, Encoder: i}, true
		case !pressed && was:
			t.encoders[i] = pressed
			return InputEvent{Kind: EncoderRelease, Encoder: i}, true
		default:
			t.encoders[i] = pressed
		}
	}
	return InputEvent{}, false
}

func (t *EdgeTracker) applyTwist(directions []int8) (InputEvent, bool) {
	for i, dir := range directions {
		if dir != 0 {
			return InputEvent{Kind: EncoderRotate, Encoder: i, Direction: int(dir)}, true
		}
	}
	return InputEvent{}, false
}

// Reset releases all tracked state, e.g. after a reconnect where held
// buttons can no longer be trusted.
func (t *EdgeTracker) Reset() {
	for i := range t.buttons {
		t.buttons[i] = false
	}
	for i := range t.encoders {
		t.encoders[i] = false
	}
}
