// Package state holds the session state shared between the scheduler, the
// input layer, and the status ingestors.
//
// All access goes through the mutex-guarded Store; critical sections are
// short and never span I/O.
package state

import (
	"sync"
	"time"
)

// InputType describes what kind of input the supervised terminal session is
// waiting for.
type InputType int

const (
	InputNone InputType = iota
	// InputYesNo is a y/n prompt.
	InputYesNo
	// InputContinue is a press-enter-to-continue prompt.
	InputContinue
	// InputPermission is a tool permission request.
	InputPermission
)

// ParseInputType maps the wire spelling of an input type to its enum value.
// Unknown spellings map to InputNone.
func ParseInputType(s string) InputType {
	switch s {
	case "yesno", "yes_no":
		return InputYesNo
	case "continue":
		return InputContinue
	case "permission":
		return InputPermission
	default:
		return InputNone
	}
}

// buttonFlashDuration is how long a button reads as "just activated" for
// visual feedback.
const buttonFlashDuration = 300 * time.Millisecond

// Session is a plain snapshot of the mutable session state.
type Session struct {
	// TaskName is the current task/tool shown on the strip.
	TaskName string
	// ToolDetail is extra detail about the running tool (path, command).
	ToolDetail string
	// Model is the currently selected model name.
	Model string
	// ModelIndex is the position of Model in the configured model list.
	ModelIndex int
	// ModelSelecting is true while the model encoder is being rotated and
	// the choice has not been confirmed yet.
	ModelSelecting bool
	// WaitingForInput is true while the session waits on the user.
	WaitingForInput bool
	InputType       InputType

	// Connected is true while a device link is up.
	Connected bool
	// DictationActive mirrors the OS voice-input toggle.
	DictationActive bool
	// Locked is true while the screen is locked; input dispatch is
	// suspended while set.
	Locked bool
	// FocusedApp is the last observed foreground application name.
	FocusedApp string
	// PlayIntro requests a replay of the startup animation; consumed by
	// the scheduler.
	PlayIntro bool
}

// Store is the mutex-guarded owner of a Session.
type Store struct {
	mu     sync.Mutex
	s      Session
	models []string

	flashButton int
	flashAt     time.Time
}

// NewStore returns a Store initialized with the given model list. The first
// model is selected.
func NewStore(models []string) *Store {
	st := &Store{
		models:      append([]string(nil), models...),
		flashButton: -1,
	}
	st.s.TaskName = "READY"
	if len(st.models) > 0 {
		st.s.Model = st.models[0]
	}
	return st
}

// Snapshot returns a copy of the current session state.
func (st *Store) Snapshot() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Update applies fn to the session under the lock.
func (st *Store) Update(fn func(*Session)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.s)
}

// FlashButton marks a button as just-activated for visual feedback.
func (st *Store) FlashButton(button int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.flashButton = button
	st.flashAt = time.Now()
}

// IsButtonFlashed reports whether the button activated within the flash
// window.
func (st *Store) IsButtonFlashed(button int) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.flashButton == button && time.Since(st.flashAt) < buttonFlashDuration
}

// CycleModel moves the model selector one step and marks selection as in
// progress. Direction is +1 or -1; the index wraps.
func (st *Store) CycleModel(direction int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.models) == 0 {
		return
	}
	st.s.ModelSelecting = true
	n := len(st.models)
	st.s.ModelIndex = ((st.s.ModelIndex+direction)%n + n) % n
	st.s.Model = st.models[st.s.ModelIndex]
}

// ConfirmModel ends model selection and returns the chosen model name.
func (st *Store) ConfirmModel() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ModelSelecting = false
	return st.s.Model
}

// SetModel selects a model by name. Unknown names are ignored. Returns true
// when the selection changed.
func (st *Store) SetModel(model string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ModelSelecting || st.s.Model == model {
		return false
	}
	for i, m := range st.models {
		if m == model {
			st.s.ModelIndex = i
			st.s.Model = m
			return true
		}
	}
	return false
}

// Reset restores the idle session state. Connection, focus, and lock flags
// are preserved.
func (st *Store) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.TaskName = "READY"
	st.s.ToolDetail = ""
	st.s.WaitingForInput = false
	st.s.InputType = InputNone
}
