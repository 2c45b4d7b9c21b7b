// Package config contains the YAML structure of a rules file.
package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

type Rules struct {
	Streets        Streets     `yaml:"streets"`
	Postcodes      Postcodes   `yaml:"postcodes"`
	Tags           TagBindings `yaml:"tags"`
	ProblemChars   string      `yaml:"problem_chars"`
	DefaultTagType string      `yaml:"default_tag_type"`
}

type Streets struct {
	Expected []string     `yaml:"expected"`
	Mapping  Replacements `yaml:"mapping"`
}

type Postcodes struct {
	// Unresolved is either keep or drop.
	Unresolved string `yaml:"unresolved"`
}

type TagBindings map[string]*TagBinding

// TagBinding binds a normalizer to a tag key, optionally only for some
// element kinds (node, way).
type TagBinding struct {
	Normalizer string   `yaml:"normalizer"`
	Elements   []string `yaml:"elements"`
}

type Replacement struct {
	From string
	To   string
}

// Replacements keep the order of the YAML mapping.
type Replacements []Replacement

func (r *Replacements) UnmarshalYAML(unmarshal func(interface{}) error) error {
	slice := yaml.MapSlice{}
	if err := unmarshal(&slice); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(slice))
	for _, item := range slice {
		from, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("street mapping key '%v' not a string", item.Key)
		}
		to, ok := item.Value.(string)
		if !ok {
			return fmt.Errorf("street mapping value '%v' for '%s' not a string", item.Value, from)
		}
		if _, ok := seen[from]; ok {
			return fmt.Errorf("duplicate street mapping for '%s'", from)
		}
		seen[from] = struct{}{}
		*r = append(*r, Replacement{From: from, To: to})
	}
	return nil
}
