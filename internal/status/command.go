package status

import (
	"encoding/json"
	"fmt"
)

// Command is a request delivered to the scheduler from the IPC or websocket
// ingestors.
type Command interface {
	commandType() string
}

// UpdateCommand carries a status record.
type UpdateCommand struct {
	Record Record
}

func (UpdateCommand) commandType() string { return "status" }

// ReloadProfilesCommand asks the scheduler to reload the profile store from
// disk and redraw.
type ReloadProfilesCommand struct{}

func (ReloadProfilesCommand) commandType() string { return "reload_profiles" }

// SetModelCommand selects a model by name.
type SetModelCommand struct {
	Model string
}

func (SetModelCommand) commandType() string { return "set_model" }

// ResetCommand restores the idle session state.
type ResetCommand struct{}

func (ResetCommand) commandType() string { return "reset" }

// SetBrightnessCommand adjusts the panel brightness (0-100).
type SetBrightnessCommand struct {
	Percent int
}

func (SetBrightnessCommand) commandType() string { return "set_brightness" }

// RedrawCommand forces a full repaint of every panel.
type RedrawCommand struct{}

func (RedrawCommand) commandType() string { return "redraw" }

// PlayIntroCommand replays the startup animation.
type PlayIntroCommand struct{}

func (PlayIntroCommand) commandType() string { return "play_intro" }

// envelope is the wire form: {"type": "...", "data": {...}}.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalCommand parses one line of the IPC protocol.
func UnmarshalCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	switch env.Type {
	case "status":
		var cmd UpdateCommand
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &cmd.Record); err != nil {
				return nil, fmt.Errorf("parse status data: %w", err)
			}
		}
		return cmd, nil
	case "reload_profiles":
		return ReloadProfilesCommand{}, nil
	case "set_model":
		var body struct {
			Model string `json:"model"`
		}
		if err := json.Unmarshal(env.Data, &body); err != nil {
			return nil, fmt.Errorf("parse set_model data: %w", err)
		}
		if body.Model == "" {
			return nil, fmt.Errorf("set_model: empty model name")
		}
		return SetModelCommand{Model: body.Model}, nil
	case "reset":
		return ResetCommand{}, nil
	case "redraw":
		return RedrawCommand{}, nil
	case "play_intro":
		return PlayIntroCommand{}, nil
	case "set_brightness":
		var body struct {
			Percent int `json:"percent"`
		}
		if err := json.Unmarshal(env.Data, &body); err != nil {
			return nil, fmt.Errorf("parse set_brightness data: %w", err)
		}
		if body.Percent < 0 || body.Percent > 100 {
			return nil, fmt.Errorf("set_brightness: percent %d out of range", body.Percent)
		}
		return SetBrightnessCommand{Percent: body.Percent}, nil
	case "":
		return nil, fmt.Errorf("missing command type")
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}
}

// MarshalCommand encodes a command for the wire.
func MarshalCommand(cmd Command) ([]byte, error) {
	env := envelope{Type: cmd.commandType()}

	var payload any
	switch c := cmd.(type) {
	case UpdateCommand:
		payload = c.Record
	case SetModelCommand:
		payload = map[string]string{"model": c.Model}
	case SetBrightnessCommand:
		payload = map[string]int{"percent": c.Percent}
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}
