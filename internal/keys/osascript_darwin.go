//go:build darwin

package keys

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// macOS virtual key codes for System Events `key code`.
var darwinKeyCodes = map[Key]int{
	Enter:    36,
	Escape:   53,
	Tab:      48,
	Up:       126,
	Down:     125,
	PageUp:   116,
	PageDown: 121,
	Home:     115,
	End:      119,
}

// osascriptSender shells out to osascript / System Events. Slow compared to
// a native event tap but dependency-free and good enough for single
// keystrokes.
type osascriptSender struct {
	logger *slog.Logger
}

// NewSender creates the platform keystroke sender.
func NewSender(logger *slog.Logger) (Sender, error) {
	return &osascriptSender{logger: logger}, nil
}

func (s *osascriptSender) run(script string) error {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (s *osascriptSender) SendKey(k Key) error {
	code, ok := darwinKeyCodes[k]
	if !ok {
		return fmt.Errorf("no key code for %s", k)
	}
	return s.run(fmt.Sprintf(`tell application "System Events" to key code %d`, code))
}

func (s *osascriptSender) SendText(text string) error {
	escaped := strings.ReplaceAll(text, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return s.run(fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escaped))
}

func (s *osascriptSender) ClearLine() error {
	// Ctrl+U, Unix line kill.
	return s.run(`tell application "System Events" to keystroke "u" using control down`)
}

func (s *osascriptSender) ToggleDictation() error {
	// Double-tap Fn is user-configurable; F5 (key code 96 with fn) is the
	// dictation key on modern layouts.
	return s.run(`tell application "System Events" to key code 96`)
}

func (s *osascriptSender) Close() error { return nil }
