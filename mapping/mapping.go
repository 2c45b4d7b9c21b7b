// Package mapping holds the rules that drive the row shaping: the street
// suffix lists, which tag keys get normalized and how tag keys are split
// into key and type.
package mapping

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/osmwrangle/osmwrangle/element"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/mapping/config"
)

type NormalizerType string

const (
	StreetNormalizer   NormalizerType = "street"
	PostcodeNormalizer NormalizerType = "postcode"
)

// Binding attaches a normalizer to a raw tag key.
type Binding struct {
	Key        string
	Normalizer NormalizerType
	Kinds      map[element.Kind]bool
}

type Mapping struct {
	Conf           config.Rules
	Expected       []string
	Replacements   map[string]string
	Bindings       map[string]Binding
	ProblemChars   *regexp.Regexp
	DefaultTagType string
	// DropUnresolvedPostcodes omits postcode tags that could not be put
	// into canonical form. With keep the raw value is passed through.
	DropUnresolvedPostcodes bool
}

func FromFile(filename string) (*Mapping, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rules %s", filename)
	}
	m, err := New(b)
	if err != nil {
		return nil, errors.Wrapf(err, "loading rules %s", filename)
	}
	return m, nil
}

// New parses YAML rules. Sections missing from the document use the
// built-in defaults.
func New(b []byte) (*Mapping, error) {
	m := Mapping{}
	if err := yaml.Unmarshal([]byte(DefaultRules), &m.Conf); err != nil {
		return nil, errors.Wrap(err, "parsing default rules")
	}
	defaults := m.Conf

	m.Conf = config.Rules{}
	if err := yaml.Unmarshal(b, &m.Conf); err != nil {
		return nil, err
	}
	if m.Conf.Streets.Expected == nil {
		m.Conf.Streets.Expected = defaults.Streets.Expected
	}
	if m.Conf.Streets.Mapping == nil {
		m.Conf.Streets.Mapping = defaults.Streets.Mapping
	}
	if m.Conf.Tags == nil {
		m.Conf.Tags = defaults.Tags
	}
	if m.Conf.ProblemChars == "" {
		m.Conf.ProblemChars = defaults.ProblemChars
	}
	if m.Conf.DefaultTagType == "" {
		m.Conf.DefaultTagType = defaults.DefaultTagType
	}
	if m.Conf.Postcodes.Unresolved == "" {
		m.Conf.Postcodes.Unresolved = defaults.Postcodes.Unresolved
	}

	if err := m.prepare(); err != nil {
		return nil, err
	}
	for _, w := range m.checkConsistency() {
		log.Printf("[warn] %s", w)
	}
	return &m, nil
}

// Default returns the built-in rules.
func Default() *Mapping {
	m, err := New([]byte("{}"))
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Mapping) prepare() error {
	var err error
	m.ProblemChars, err = regexp.Compile(m.Conf.ProblemChars)
	if err != nil {
		return errors.Wrap(err, "compiling problem_chars")
	}
	m.DefaultTagType = m.Conf.DefaultTagType
	m.Expected = m.Conf.Streets.Expected

	m.Replacements = make(map[string]string, len(m.Conf.Streets.Mapping))
	for _, r := range m.Conf.Streets.Mapping {
		m.Replacements[r.From] = r.To
	}

	switch m.Conf.Postcodes.Unresolved {
	case "keep":
		m.DropUnresolvedPostcodes = false
	case "drop":
		m.DropUnresolvedPostcodes = true
	default:
		return errors.Errorf("postcodes.unresolved must be keep or drop, not '%s'", m.Conf.Postcodes.Unresolved)
	}

	m.Bindings = make(map[string]Binding, len(m.Conf.Tags))
	for key, tb := range m.Conf.Tags {
		if tb == nil {
			return errors.Errorf("missing normalizer for tag %s", key)
		}
		b := Binding{Key: key, Kinds: make(map[element.Kind]bool)}
		switch NormalizerType(tb.Normalizer) {
		case StreetNormalizer, PostcodeNormalizer:
			b.Normalizer = NormalizerType(tb.Normalizer)
		default:
			return errors.Errorf("unknown normalizer '%s' for tag %s", tb.Normalizer, key)
		}
		elems := tb.Elements
		if len(elems) == 0 {
			elems = []string{"node", "way"}
		}
		for _, e := range elems {
			kind, err := element.ParseKind(e)
			if err != nil {
				return errors.Wrapf(err, "tag %s", key)
			}
			b.Kinds[kind] = true
		}
		m.Bindings[key] = b
	}
	return nil
}

// checkConsistency returns warnings for replacements that do not end in
// an accepted suffix. Such values are reported as unresolved again on
// the next audit.
func (m *Mapping) checkConsistency() []string {
	expected := make(map[string]struct{}, len(m.Expected))
	for _, e := range m.Expected {
		expected[e] = struct{}{}
	}
	var warnings []string
	for _, r := range m.Conf.Streets.Mapping {
		fields := strings.Fields(r.To)
		if len(fields) == 0 {
			warnings = append(warnings, "street mapping for '"+r.From+"' is empty")
			continue
		}
		if _, ok := expected[fields[len(fields)-1]]; !ok {
			warnings = append(warnings, "street mapping '"+r.From+"' -> '"+r.To+"' does not end with an expected suffix")
		}
	}
	return warnings
}

// Binding returns the normalizer for key on elements of kind.
func (m *Mapping) Binding(key string, kind element.Kind) (NormalizerType, bool) {
	b, ok := m.Bindings[key]
	if !ok || !b.Kinds[kind] {
		return "", false
	}
	return b.Normalizer, true
}
