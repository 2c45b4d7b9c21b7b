package shape

import (
	"strconv"
	"strings"
	"time"

	"github.com/osmwrangle/osmwrangle/element"
	"github.com/osmwrangle/osmwrangle/mapping"
	"github.com/osmwrangle/osmwrangle/normalize"
)

// Shaped contains all rows of a single element.
type Shaped struct {
	Kind     element.Kind
	ID       int64
	Node     *NodeRow
	NodeTags []TagRow
	Way      *WayRow
	WayNodes []WayNodeRow
	WayTags  []TagRow

	Rejected  []RejectedTag
	Streets   []normalize.StreetResult
	Postcodes []normalize.PostcodeResult
	// Dropped counts tags that were omitted because their value could
	// not be normalized.
	Dropped int
}

// RejectedTag is a tag whose key contains problem characters.
type RejectedTag struct {
	Kind  element.Kind
	ID    int64
	Key   string
	Value string
}

// Rows returns all rows in write order: the element row first, then the
// way-node rows, then the tags.
func (s *Shaped) Rows() []Row {
	var rows []Row
	if s.Node != nil {
		rows = append(rows, s.Node)
		for i := range s.NodeTags {
			rows = append(rows, &s.NodeTags[i])
		}
	}
	if s.Way != nil {
		rows = append(rows, s.Way)
		for i := range s.WayNodes {
			rows = append(rows, &s.WayNodes[i])
		}
		for i := range s.WayTags {
			rows = append(rows, &s.WayTags[i])
		}
	}
	return rows
}

type Shaper struct {
	m        *mapping.Mapping
	street   normalize.StreetNormalizer
	postcode normalize.PostcodeNormalizer
}

func New(m *mapping.Mapping) *Shaper {
	return &Shaper{
		m:        m,
		street:   normalize.NewStreet(m.Expected, m.Replacements),
		postcode: normalize.NewPostcode(),
	}
}

// SetNormalizers replaces the normalizers, e.g. with cached versions.
func (s *Shaper) SetNormalizers(street normalize.StreetNormalizer, postcode normalize.PostcodeNormalizer) {
	s.street = street
	s.postcode = postcode
}

// Shape returns the rows of nodes and ways. Relations and other elements
// are not shaped and return false.
func (s *Shaper) Shape(e element.Element) (*Shaped, bool) {
	switch e := e.(type) {
	case *element.Node:
		return s.shapeNode(e), true
	case *element.Way:
		return s.shapeWay(e), true
	}
	return nil, false
}

func (s *Shaper) shapeNode(n *element.Node) *Shaped {
	id := strconv.FormatInt(n.ID, 10)
	shaped := &Shaped{Kind: element.NodeKind, ID: n.ID}
	user, uid, version, changeset, timestamp := metadataFields(n.Metadata)
	shaped.Node = &NodeRow{
		ID:        id,
		Lat:       formatCoord(n.Lat),
		Lon:       formatCoord(n.Long),
		User:      user,
		UID:       uid,
		Version:   version,
		Changeset: changeset,
		Timestamp: timestamp,
	}
	shaped.NodeTags = s.shapeTags(NodeTagRows, &n.OSMElem, element.NodeKind, id, shaped)
	return shaped
}

func (s *Shaper) shapeWay(w *element.Way) *Shaped {
	id := strconv.FormatInt(w.ID, 10)
	shaped := &Shaped{Kind: element.WayKind, ID: w.ID}
	user, uid, version, changeset, timestamp := metadataFields(w.Metadata)
	shaped.Way = &WayRow{
		ID:        id,
		User:      user,
		UID:       uid,
		Version:   version,
		Changeset: changeset,
		Timestamp: timestamp,
	}
	if len(w.Refs) > 0 {
		shaped.WayNodes = make([]WayNodeRow, len(w.Refs))
		for i, ref := range w.Refs {
			shaped.WayNodes[i] = WayNodeRow{
				ID:       id,
				NodeID:   strconv.FormatInt(ref, 10),
				Position: strconv.Itoa(i),
			}
		}
	}
	shaped.WayTags = s.shapeTags(WayTagRows, &w.OSMElem, element.WayKind, id, shaped)
	return shaped
}

func (s *Shaper) shapeTags(rowKind RowKind, e *element.OSMElem, kind element.Kind, id string, shaped *Shaped) []TagRow {
	if len(e.Tags) == 0 {
		return nil
	}
	rows := make([]TagRow, 0, len(e.Tags))
	for _, tag := range e.Tags {
		if s.m.ProblemChars.MatchString(tag.Key) {
			shaped.Rejected = append(shaped.Rejected, RejectedTag{Kind: kind, ID: e.ID, Key: tag.Key, Value: tag.Value})
			continue
		}
		value := tag.Value
		if norm, ok := s.m.Binding(tag.Key, kind); ok {
			switch norm {
			case mapping.StreetNormalizer:
				r := s.street.Normalize(value)
				if r.Status != normalize.StreetNoSuffix {
					shaped.Streets = append(shaped.Streets, r)
				}
				value = r.Value
			case mapping.PostcodeNormalizer:
				r := s.postcode.Normalize(value)
				shaped.Postcodes = append(shaped.Postcodes, r)
				if r.Status != normalize.PostcodeCanonical && s.m.DropUnresolvedPostcodes {
					shaped.Dropped++
					continue
				}
				value = r.Value
			}
		}
		key, typ := SplitKey(tag.Key, s.m.DefaultTagType)
		rows = append(rows, TagRow{ID: id, Key: key, Value: value, Type: typ, kind: rowKind})
	}
	return rows
}

// SplitKey splits a raw tag key at the first colon into type and key.
// Keys without colon get defaultType. Keys with three or more colons are
// kept as is with the first segment as type.
func SplitKey(raw, defaultType string) (key, typ string) {
	parts := strings.Split(raw, ":")
	switch {
	case len(parts) == 1:
		return raw, defaultType
	case len(parts) <= 3:
		return strings.Join(parts[1:], ":"), parts[0]
	default:
		return raw, parts[0]
	}
}

func metadataFields(m *element.Metadata) (user, uid, version, changeset, timestamp string) {
	if m == nil {
		return "", "", "", "", ""
	}
	user = m.UserName
	uid = strconv.FormatInt(m.UserID, 10)
	version = strconv.Itoa(m.Version)
	changeset = strconv.FormatInt(m.Changeset, 10)
	if !m.Timestamp.IsZero() {
		timestamp = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
