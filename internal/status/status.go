// Package status ingests supervised-session status from three sources: a
// JSON state file written by shell hooks, a unix-socket command server, and
// an optional websocket push feed.
package status

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"termdeck/internal/state"
)

// StaleAfter is how old a status record may be before it is ignored. Hook
// scripts rewrite the file on every event; a record older than this belongs
// to a dead session.
const StaleAfter = 30 * time.Second

// Record is the status document written by session hooks.
type Record struct {
	// Task is the action currently being performed.
	Task string `json:"task"`
	// ToolDetail is extra detail about the running tool (path, command).
	ToolDetail string `json:"tool_detail,omitempty"`
	// WaitingForInput is set while the session waits on the user.
	WaitingForInput bool `json:"waiting_for_input"`
	// InputType names the kind of prompt ("yesno", "continue",
	// "permission").
	InputType string `json:"input_type,omitempty"`
	// Model is the model the session reports using.
	Model string `json:"model,omitempty"`
	// Processing is set while the session is actively working.
	Processing bool `json:"processing"`
	// Error carries the last error message, if any.
	Error string `json:"error,omitempty"`
	// Timestamp is the unix time of the last update.
	Timestamp int64 `json:"timestamp"`
}

// IsStale reports whether the record is older than maxAge.
func (r *Record) IsStale(maxAge time.Duration) bool {
	age := time.Now().Unix() - r.Timestamp
	return age > int64(maxAge/time.Second)
}

// DefaultPath returns the conventional status file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/tmp"
	}
	return filepath.Join(home, ".termdeck", "state.json")
}

// ReadFile loads the status file. A missing file, unparseable content, or a
// stale record all return nil; none of these are errors, the surface just
// keeps its current state.
func ReadFile(logger *slog.Logger, path string) *Record {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("status file read failed", "path", path, "error", err)
		}
		return nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logger.Warn("status file parse failed", "path", path, "error", err)
		return nil
	}
	if rec.IsStale(StaleAfter) {
		logger.Debug("status file stale, ignoring", "path", path)
		return nil
	}
	return &rec
}

// WriteFile writes a status record, creating the parent directory as needed.
// Used by hook installers and tests.
func WriteFile(path string, rec *Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Apply copies a record into the session store. Empty model names are
// ignored; a model change during encoder selection is deferred by the store.
func Apply(rec *Record, store *state.Store) {
	store.Update(func(s *state.Session) {
		if rec.Task != "" {
			s.TaskName = rec.Task
		}
		s.ToolDetail = rec.ToolDetail
		s.WaitingForInput = rec.WaitingForInput
		s.InputType = state.ParseInputType(rec.InputType)
	})
	if rec.Model != "" {
		store.SetModel(rec.Model)
	}
}
