// Package classdef loads class definitions from a YAML seed file, used by
// lattice init to populate a fresh database.
package classdef

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sgracey/lattice/internal/store"
)

// Definition is the top-level structure of a seed file.
type Definition struct {
	Classes []ClassDef `yaml:"classes"`
}

// ClassDef declares one class with its properties.
type ClassDef struct {
	Title      string    `yaml:"title"`
	Icon       string    `yaml:"icon"`
	Properties []PropDef `yaml:"properties"`
}

// PropDef declares one class property.
type PropDef struct {
	Title       string   `yaml:"title"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Options     []string `yaml:"options"`
}

// Load reads a seed file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class definitions %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses seed YAML and checks it for basic sanity.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse class definitions: %w", err)
	}

	seen := make(map[string]bool)
	for _, cls := range def.Classes {
		if cls.Title == "" {
			return nil, fmt.Errorf("class with empty title")
		}
		if seen[cls.Title] {
			return nil, fmt.Errorf("duplicate class %q", cls.Title)
		}
		seen[cls.Title] = true

		propSeen := make(map[string]bool)
		for _, p := range cls.Properties {
			if p.Title == "" {
				return nil, fmt.Errorf("class %q has a property with an empty title", cls.Title)
			}
			if propSeen[p.Title] {
				return nil, fmt.Errorf("class %q declares property %q twice", cls.Title, p.Title)
			}
			propSeen[p.Title] = true
			typ, err := store.ParsePropType(p.Type)
			if err != nil {
				return nil, fmt.Errorf("class %q property %q: %w", cls.Title, p.Title, err)
			}
			if typ == store.PropSelect && len(p.Options) == 0 {
				return nil, fmt.Errorf("class %q select property %q declares no options", cls.Title, p.Title)
			}
		}
	}
	return &def, nil
}

// Default returns the seed used when init runs without a definitions file:
// a single Note class with one rich-text body.
func Default() *Definition {
	return &Definition{
		Classes: []ClassDef{
			{
				Title: "Note",
				Icon:  "📝",
				Properties: []PropDef{
					{Title: "Body", Type: "rich_text", Description: "The note's content"},
				},
			},
		},
	}
}

// Apply creates every class of the definition in the store. Classes that
// already exist by title are skipped.
func Apply(st *store.Store, def *Definition) (created int, err error) {
	for _, cls := range def.Classes {
		if _, err := st.GetClassByTitle(cls.Title); err == nil {
			continue
		} else if err != store.ErrNotFound {
			return created, err
		}

		props := make([]store.ClassProp, 0, len(cls.Properties))
		for _, p := range cls.Properties {
			typ, err := store.ParsePropType(p.Type)
			if err != nil {
				return created, err
			}
			props = append(props, store.ClassProp{
				Title:         p.Title,
				Type:          typ,
				Description:   p.Description,
				SelectOptions: p.Options,
			})
		}
		if _, err := st.CreateClass(cls.Title, cls.Icon, props); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
