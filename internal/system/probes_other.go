//go:build !darwin

package system

import (
	"context"
	"log/slog"
)

// Focus and lock probing have no portable implementation; without them every
// application matches the wildcard profile and input is never suspended.

func focusedApp(ctx context.Context) (string, error) {
	return "", nil
}

func screenLocked(ctx context.Context) (bool, error) {
	return false, nil
}

// OpenTerminalSession is a no-op off macOS.
func OpenTerminalSession(logger *slog.Logger, terminalApp, command string) {
	logger.Warn("opening terminal sessions not supported on this platform")
}
