// Package normalize cleans street names and postal codes. The normalizers
// return tagged results and keep no state, the caller collects them in an
// Audit.
package normalize

import "regexp"

// streetTypeRe matches the last whitespace separated token, including a
// trailing period.
var streetTypeRe = regexp.MustCompile(`\S+$`)

type StreetStatus int

const (
	StreetAccepted StreetStatus = iota
	StreetReplaced
	StreetUnresolved
	StreetNoSuffix
)

func (s StreetStatus) String() string {
	switch s {
	case StreetAccepted:
		return "accepted"
	case StreetReplaced:
		return "replaced"
	case StreetUnresolved:
		return "unresolved"
	case StreetNoSuffix:
		return "no_suffix"
	}
	return "unknown"
}

type StreetResult struct {
	Value    string
	Original string
	Suffix   string
	Status   StreetStatus
}

type StreetNormalizer interface {
	Normalize(name string) StreetResult
}

// Street replaces abbreviated or misspelled street type suffixes.
type Street struct {
	expected map[string]struct{}
	mapping  map[string]string
}

func NewStreet(expected []string, mapping map[string]string) *Street {
	s := &Street{
		expected: make(map[string]struct{}, len(expected)),
		mapping:  make(map[string]string, len(mapping)),
	}
	for _, e := range expected {
		s.expected[e] = struct{}{}
	}
	for k, v := range mapping {
		s.mapping[k] = v
	}
	return s
}

// Normalize checks the suffix of name. Accepted suffixes and names
// without a suffix are returned unchanged. A suffix with a replacement is
// substituted in place, anything else is returned unchanged as
// unresolved.
func (s *Street) Normalize(name string) StreetResult {
	res := StreetResult{Value: name, Original: name}
	loc := streetTypeRe.FindStringIndex(name)
	if loc == nil {
		res.Status = StreetNoSuffix
		return res
	}
	res.Suffix = name[loc[0]:loc[1]]

	if _, ok := s.expected[res.Suffix]; ok {
		res.Status = StreetAccepted
		return res
	}
	if better, ok := s.mapping[res.Suffix]; ok {
		res.Value = name[:loc[0]] + better + name[loc[1]:]
		res.Status = StreetReplaced
		return res
	}
	res.Status = StreetUnresolved
	return res
}
