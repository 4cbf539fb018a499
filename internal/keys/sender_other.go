//go:build !linux && !darwin

package keys

import "log/slog"

// nopSender discards keystrokes on platforms without an injection backend.
type nopSender struct {
	logger *slog.Logger
}

// NewSender creates the platform keystroke sender.
func NewSender(logger *slog.Logger) (Sender, error) {
	logger.Warn("keystroke injection not supported on this platform; dropping keys")
	return &nopSender{logger: logger}, nil
}

func (s *nopSender) SendKey(k Key) error {
	s.logger.Debug("dropped key", "key", k.String())
	return nil
}

func (s *nopSender) SendText(text string) error {
	s.logger.Debug("dropped text", "len", len(text))
	return nil
}

func (s *nopSender) ClearLine() error       { return nil }
func (s *nopSender) ToggleDictation() error { return nil }
func (s *nopSender) Close() error           { return nil }
