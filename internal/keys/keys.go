// Package keys abstracts synthetic keystroke injection into the focused
// application. The scheduler and input handler only see the Sender
// interface; platform files provide the implementations.
package keys

// Key is a logical non-character key.
type Key int

const (
	Enter Key = iota
	Escape
	Tab
	Up
	Down
	PageUp
	PageDown
	Home
	End
)

func (k Key) String() string {
	switch k {
	case Enter:
		return "enter"
	case Escape:
		return "escape"
	case Tab:
		return "tab"
	case Up:
		return "up"
	case Down:
		return "down"
	case PageUp:
		return "pageup"
	case PageDown:
		return "pagedown"
	case Home:
		return "home"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// ParseKey maps a configuration spelling to a logical key.
func ParseKey(name string) (Key, bool) {
	switch name {
	case "enter", "return":
		return Enter, true
	case "escape", "esc":
		return Escape, true
	case "tab":
		return Tab, true
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "pageup", "page_up":
		return PageUp, true
	case "pagedown", "page_down":
		return PageDown, true
	case "home":
		return Home, true
	case "end":
		return End, true
	default:
		return 0, false
	}
}

// Sender injects keystrokes into whatever application currently has focus.
//
// Implementations are simple I/O wrappers; failures are logged by callers
// and never abort the control loop.
type Sender interface {
	// SendKey taps a logical key.
	SendKey(k Key) error

	// SendText types a string of printable characters.
	SendText(text string) error

	// ClearLine kills the current input line (Ctrl+U on Unix-style line
	// editing).
	ClearLine() error

	// ToggleDictation toggles the OS voice-input mechanism.
	ToggleDictation() error

	// Close releases any platform resources.
	Close() error
}
