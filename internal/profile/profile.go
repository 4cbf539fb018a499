// Package profile holds per-application button layouts: which label, colors,
// action, and optional animation URL each button carries for a given focused
// application.
package profile

import (
	"strings"
	"sync"
)

// ActionKind discriminates the closed set of button action variants.
type ActionKind string

const (
	// ActionKey taps a named logical key ("enter", "escape", "tab", ...).
	ActionKey ActionKind = "key"
	// ActionText types the value literally.
	ActionText ActionKind = "text"
	// ActionEmoji types the value as an emoji shortcode (":tada:").
	ActionEmoji ActionKind = "emoji"
	// ActionCustom is handled by name in the input layer ("accept",
	// "stop", "mic", ...).
	ActionCustom ActionKind = "custom"
)

// Action is what a button does when pressed.
type Action struct {
	Kind  ActionKind `yaml:"type"`
	Value string     `yaml:"value"`
	// AutoSubmit appends Enter after typed text/emoji actions.
	AutoSubmit bool `yaml:"auto_submit,omitempty"`
}

// Button is the configuration of one physical button within a profile.
type Button struct {
	Position    int    `yaml:"position"`
	Label       string `yaml:"label"`
	Color       string `yaml:"color,omitempty"`
	BrightColor string `yaml:"bright_color,omitempty"`
	Action      Action `yaml:"action"`
	// GIFURL, when set, animates the button from the fetched asset.
	GIFURL string `yaml:"gif_url,omitempty"`
}

// Profile is a named button layout matched against focused-application
// names. A match_apps entry of "*" makes the profile the wildcard fallback.
type Profile struct {
	Name      string   `yaml:"name"`
	MatchApps []string `yaml:"match_apps"`
	Buttons   []Button `yaml:"buttons"`
}

// ButtonAt returns the button configured at the given position.
func (p *Profile) ButtonAt(position int) (Button, bool) {
	for _, b := range p.Buttons {
		if b.Position == position {
			return b, true
		}
	}
	return Button{}, false
}

// Manager is the shared, lock-guarded profile set. The scheduler reads it on
// every redraw; the IPC layer may replace it wholesale after a store reload.
type Manager struct {
	mu       sync.RWMutex
	profiles []Profile
}

// NewManager returns a manager holding the given profiles.
func NewManager(profiles []Profile) *Manager {
	return &Manager{profiles: profiles}
}

// SetProfiles replaces the profile set.
func (m *Manager) SetProfiles(profiles []Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = profiles
}

// Profiles returns a copy of the profile set.
func (m *Manager) Profiles() []Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Profile(nil), m.profiles...)
}

// ForApp returns the profile matching an application name. Specific matches
// win over the wildcard; names compare case-insensitively.
func (m *Manager) ForApp(app string) (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.profiles {
		for _, pat := range p.MatchApps {
			if pat != "*" && strings.EqualFold(pat, app) {
				return p, true
			}
		}
	}
	for _, p := range m.profiles {
		for _, pat := range p.MatchApps {
			if pat == "*" {
				return p, true
			}
		}
	}
	return Profile{}, false
}

// ButtonFor resolves the button config for an app and position. When the
// matched profile has no button at that position an empty placeholder is
// returned so the slot renders blank rather than inheriting another
// profile's action.
func (m *Manager) ButtonFor(app string, position int) Button {
	p, ok := m.ForApp(app)
	if !ok {
		return placeholderButton(position)
	}
	if b, ok := p.ButtonAt(position); ok {
		return b
	}
	return placeholderButton(position)
}

func placeholderButton(position int) Button {
	return Button{
		Position: position,
		Label:    "---",
		Action:   Action{Kind: ActionCustom, Value: ""},
	}
}
