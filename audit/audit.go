// Package audit inspects an OSM file before an import: it counts the
// elements, the contributors and the tag keys and reports street names and
// postcodes that would need normalization.
package audit

import (
	"io"
	"regexp"
	"sort"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"

	"github.com/osmwrangle/osmwrangle/element"
	"github.com/osmwrangle/osmwrangle/mapping"
	"github.com/osmwrangle/osmwrangle/normalize"
	"github.com/osmwrangle/osmwrangle/reader"
)

var (
	lowerKey      = regexp.MustCompile(`^[a-z_]*$`)
	lowerColonKey = regexp.MustCompile(`^[a-z_]*:[a-z_]*$`)
)

type KeyClass string

const (
	Lower        KeyClass = "lower"
	LowerColon   KeyClass = "lower_colon"
	ProblemChars KeyClass = "problemchars"
	Other        KeyClass = "other"
)

type Report struct {
	Source *reader.SourceInfo
	// Elements counts node, way and relation elements and their tag, nd
	// and member children.
	Elements map[string]int64
	// Users are the distinct user names, sorted.
	Users []string
	// KeyClasses counts all tag keys by their KeyClass.
	KeyClasses map[KeyClass]int64
	// Bounds of all nodes, empty if there are no nodes.
	Bounds    orb.Bound
	HasBounds bool
	// Normalize aggregates all street and postcode results.
	Normalize *normalize.Audit
	// NonCanonicalPostcodes are the distinct postcodes that differ from
	// their canonical form, including those that can be reformatted.
	NonCanonicalPostcodes []string
	// Unresolved are nodes with an address that could not be normalized.
	Unresolved []UnresolvedAddress
}

type UnresolvedAddress struct {
	ID       int64
	Lat      float64
	Long     float64
	Street   string
	Postcode string
}

type auditor struct {
	m         *mapping.Mapping
	street    normalize.StreetNormalizer
	postcode  normalize.PostcodeNormalizer
	users     map[string]struct{}
	postcodes map[string]struct{}
	report    *Report
}

// Run reads all elements of filename in a single pass.
func Run(filename string, m *mapping.Mapping) (*Report, error) {
	src, err := reader.Source(filename)
	if err != nil {
		return nil, err
	}
	r, err := reader.Open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	report, err := Read(r, m)
	if err != nil {
		return nil, err
	}
	report.Source = src
	return report, nil
}

// Elements returns the next element or io.EOF.
type Elements interface {
	Next() (element.Element, error)
}

// Read audits all elements from r.
func Read(r Elements, m *mapping.Mapping) (*Report, error) {
	a := &auditor{
		m:         m,
		street:    normalize.NewStreet(m.Expected, m.Replacements),
		postcode:  normalize.NewPostcode(),
		users:     make(map[string]struct{}),
		postcodes: make(map[string]struct{}),
		report: &Report{
			Elements:   make(map[string]int64),
			KeyClasses: make(map[KeyClass]int64),
			Normalize:  normalize.NewAudit(),
		},
	}
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		a.add(e)
	}

	for u := range a.users {
		a.report.Users = append(a.report.Users, u)
	}
	sort.Strings(a.report.Users)
	for p := range a.postcodes {
		a.report.NonCanonicalPostcodes = append(a.report.NonCanonicalPostcodes, p)
	}
	sort.Strings(a.report.NonCanonicalPostcodes)
	return a.report, nil
}

func (a *auditor) add(e element.Element) {
	elem := e.Elem()
	rep := a.report
	rep.Elements[e.Kind().String()]++
	rep.Elements["tag"] += int64(len(elem.Tags))

	if elem.Metadata != nil && elem.Metadata.UserName != "" {
		a.users[elem.Metadata.UserName] = struct{}{}
	}

	var node *element.Node
	switch e := e.(type) {
	case *element.Node:
		node = e
		p := orb.Point{e.Long, e.Lat}
		if !rep.HasBounds {
			rep.Bounds = orb.Bound{Min: p, Max: p}
			rep.HasBounds = true
		} else {
			rep.Bounds = rep.Bounds.Extend(p)
		}
	case *element.Way:
		rep.Elements["nd"] += int64(len(e.Refs))
	case *element.Relation:
		rep.Elements["member"] += int64(len(e.Members))
	}

	var unresolved UnresolvedAddress
	for _, tag := range elem.Tags {
		rep.KeyClasses[a.keyClass(tag.Key)]++

		// bound keys are audited on all element kinds
		b, ok := a.m.Bindings[tag.Key]
		if !ok {
			continue
		}
		switch b.Normalizer {
		case mapping.StreetNormalizer:
			r := a.street.Normalize(tag.Value)
			rep.Normalize.AddStreet(r)
			if r.Status == normalize.StreetUnresolved {
				unresolved.Street = tag.Value
			}
		case mapping.PostcodeNormalizer:
			r := a.postcode.Normalize(tag.Value)
			rep.Normalize.AddPostcode(r)
			if r.Status != normalize.PostcodeCanonical || r.Value != r.Original {
				a.postcodes[r.Original] = struct{}{}
			}
			if r.Status == normalize.PostcodeUnresolved {
				unresolved.Postcode = tag.Value
			}
		}
	}
	if node != nil && (unresolved.Street != "" || unresolved.Postcode != "") {
		unresolved.ID = node.ID
		unresolved.Lat = node.Lat
		unresolved.Long = node.Long
		rep.Unresolved = append(rep.Unresolved, unresolved)
	}
}

func (a *auditor) keyClass(key string) KeyClass {
	switch {
	case lowerKey.MatchString(key):
		return Lower
	case lowerColonKey.MatchString(key):
		return LowerColon
	case a.m.ProblemChars.MatchString(key):
		return ProblemChars
	}
	return Other
}

// FeatureCollection returns the unresolved addresses as points.
func (r *Report) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, u := range r.Unresolved {
		f := geojson.NewPointFeature([]float64{u.Long, u.Lat})
		f.SetProperty("id", strconv.FormatInt(u.ID, 10))
		if u.Street != "" {
			f.SetProperty("street", u.Street)
		}
		if u.Postcode != "" {
			f.SetProperty("postcode", u.Postcode)
		}
		fc.AddFeature(f)
	}
	return fc
}

func (r *Report) WriteGeoJSON(w io.Writer) error {
	b, err := r.FeatureCollection().MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
