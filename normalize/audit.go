package normalize

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
)

// Audit collects normalizer results. It is safe for concurrent use.
type Audit struct {
	mu           sync.Mutex
	streets      map[string]map[string]struct{}
	replacements map[string]string
	postcodes    map[string]struct{}
	numeric      map[string]struct{}
	counts       Counts
}

type Counts struct {
	StreetAccepted     int64 `json:"street_accepted"`
	StreetReplaced     int64 `json:"street_replaced"`
	StreetUnresolved   int64 `json:"street_unresolved"`
	StreetNoSuffix     int64 `json:"street_no_suffix"`
	PostcodeCanonical  int64 `json:"postcode_canonical"`
	PostcodeNumeric    int64 `json:"postcode_numeric"`
	PostcodeUnresolved int64 `json:"postcode_unresolved"`
}

// UnresolvedStreet lists all names that end with an unknown suffix.
type UnresolvedStreet struct {
	Suffix string   `json:"suffix"`
	Names  []string `json:"names"`
}

func NewAudit() *Audit {
	return &Audit{
		streets:      make(map[string]map[string]struct{}),
		replacements: make(map[string]string),
		postcodes:    make(map[string]struct{}),
		numeric:      make(map[string]struct{}),
	}
}

func (a *Audit) AddStreet(r StreetResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch r.Status {
	case StreetAccepted:
		a.counts.StreetAccepted++
	case StreetReplaced:
		a.counts.StreetReplaced++
		a.replacements[r.Original] = r.Value
	case StreetUnresolved:
		a.counts.StreetUnresolved++
		names, ok := a.streets[r.Suffix]
		if !ok {
			names = make(map[string]struct{})
			a.streets[r.Suffix] = names
		}
		names[r.Original] = struct{}{}
	case StreetNoSuffix:
		a.counts.StreetNoSuffix++
	}
}

func (a *Audit) AddPostcode(r PostcodeResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch r.Status {
	case PostcodeCanonical:
		a.counts.PostcodeCanonical++
	case PostcodeNumeric:
		a.counts.PostcodeNumeric++
		a.numeric[r.Original] = struct{}{}
	case PostcodeUnresolved:
		a.counts.PostcodeUnresolved++
		a.postcodes[r.Original] = struct{}{}
	}
}

// UnresolvedStreets returns the unknown suffixes sorted by suffix, each
// with its sorted names.
func (a *Audit) UnresolvedStreets() []UnresolvedStreet {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]UnresolvedStreet, 0, len(a.streets))
	for suffix, names := range a.streets {
		result = append(result, UnresolvedStreet{Suffix: suffix, Names: sortedKeys(names)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Suffix < result[j].Suffix })
	return result
}

// Replacements returns all replaced names with their new value.
func (a *Audit) Replacements() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make(map[string]string, len(a.replacements))
	for k, v := range a.replacements {
		result[k] = v
	}
	return result
}

// UnresolvedPostcodes returns the distinct codes that are neither
// Canadian nor numeric.
func (a *Audit) UnresolvedPostcodes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedKeys(a.postcodes)
}

func (a *Audit) NumericPostcodes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedKeys(a.numeric)
}

func (a *Audit) Counts() Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts
}

type Report struct {
	Counts              Counts             `json:"counts"`
	UnresolvedStreets   []UnresolvedStreet `json:"unresolved_streets"`
	Replacements        map[string]string  `json:"replacements"`
	UnresolvedPostcodes []string           `json:"unresolved_postcodes"`
	NumericPostcodes    []string           `json:"numeric_postcodes"`
}

func (a *Audit) Report() Report {
	return Report{
		Counts:              a.Counts(),
		UnresolvedStreets:   a.UnresolvedStreets(),
		Replacements:        a.Replacements(),
		UnresolvedPostcodes: a.UnresolvedPostcodes(),
		NumericPostcodes:    a.NumericPostcodes(),
	}
}

func (a *Audit) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a.Report())
}

func sortedKeys(m map[string]struct{}) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
