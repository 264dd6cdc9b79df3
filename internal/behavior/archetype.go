package behavior

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Archetype is a named set of tuning parameters loaded from YAML.
//
// Fields omitted in the file keep their DefaultTuning values.
type Archetype struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Tuning Tuning `yaml:"tuning"`
}

// Validate checks that the archetype satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty and Tuning is valid.
func (a *Archetype) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("archetype: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("archetype %q: name must not be empty", a.ID)
	}
	if err := a.Tuning.Validate(); err != nil {
		return fmt.Errorf("archetype %q: %w", a.ID, err)
	}
	return nil
}

// LoadArchetypeFromBytes parses a single archetype from raw YAML bytes.
//
// Postcondition: Returns a validated *Archetype, or an error.
func LoadArchetypeFromBytes(data []byte) (*Archetype, error) {
	arch := Archetype{Tuning: DefaultTuning()}
	if err := yaml.Unmarshal(data, &arch); err != nil {
		return nil, fmt.Errorf("parsing archetype YAML: %w", err)
	}
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	return &arch, nil
}

// LoadArchetypes reads all *.yaml files in dir and returns the parsed archetypes.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all archetypes or an error on the first parse or
// validate failure. Duplicate IDs are an error.
func LoadArchetypes(dir string) ([]*Archetype, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading archetype dir %q: %w", dir, err)
	}

	seen := make(map[string]struct{})
	var out []*Archetype
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		arch, err := LoadArchetypeFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := seen[arch.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate archetype id %q", path, arch.ID)
		}
		seen[arch.ID] = struct{}{}
		out = append(out, arch)
	}
	return out, nil
}
