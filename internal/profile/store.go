package profile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// storeFile is the on-disk YAML document wrapping the profile list.
type storeFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Load reads the profile store at path. A missing file is not an error: the
// built-in defaults are written there and returned, so a fresh install has
// an editable store from the first run. Unknown YAML fields are rejected.
func Load(path string) ([]Profile, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		defaults := Defaults()
		if err := Save(path, defaults); err != nil {
			return nil, fmt.Errorf("write default profiles: %w", err)
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var sf storeFile
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode profiles yaml: %w", err)
	}

	if err := validate(sf.Profiles); err != nil {
		return nil, err
	}
	return sf.Profiles, nil
}

// Save writes the profile list to path, creating parent directories.
func Save(path string, profiles []Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	b, err := yaml.Marshal(storeFile{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("encode profiles yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	return nil
}

func validate(profiles []Profile) error {
	seen := make(map[string]bool, len(profiles))
	for i, p := range profiles {
		if p.Name == "" {
			return fmt.Errorf("profiles[%d]: name must not be empty", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("profiles[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if len(p.MatchApps) == 0 {
			return fmt.Errorf("profile %q: match_apps must not be empty", p.Name)
		}
		for _, b := range p.Buttons {
			if b.Position < 0 {
				return fmt.Errorf("profile %q: button position %d is negative", p.Name, b.Position)
			}
			switch b.Action.Kind {
			case ActionKey, ActionText, ActionEmoji, ActionCustom:
			default:
				return fmt.Errorf("profile %q button %d: unknown action type %q", p.Name, b.Position, b.Action.Kind)
			}
		}
	}
	return nil
}
