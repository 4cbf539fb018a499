//go:build darwin

package system

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// focusedApp asks System Events for the frontmost process name.
func focusedApp(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e",
		`tell application "System Events" to get name of first process whose frontmost is true`,
	).Output()
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// screenLocked checks IOConsoleLocked in the IO registry. Takes ~30ms, which
// is why probes run off the scheduler loop.
func screenLocked(ctx context.Context) (bool, error) {
	err := exec.CommandContext(ctx, "sh", "-c",
		`ioreg -n Root -d1 | grep -q '"IOConsoleLocked" = Yes'`,
	).Run()
	if err != nil {
		// grep exits 1 when the screen is unlocked.
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// OpenTerminalSession tells the configured terminal application to open a
// window running the given command.
func OpenTerminalSession(logger *slog.Logger, terminalApp, command string) {
	escape := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	script := fmt.Sprintf(
		"tell application \"%s\"\n\tdo script \"%s\"\n\tactivate\nend tell",
		escape.Replace(terminalApp), escape.Replace(command),
	)

	go func() {
		if err := exec.Command("osascript", "-e", script).Run(); err != nil {
			logger.Warn("open terminal session failed", "error", err)
			return
		}
		logger.Debug("terminal session opened", "app", terminalApp)
	}()
}
