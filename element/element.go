// Package element contains the OSM elements as they are read from an
// extract, independent of the input format.
package element

import (
	"fmt"
	"strings"
	"time"
)

type Kind int

const (
	NodeKind Kind = iota
	WayKind
	RelationKind
)

var kindNames = map[Kind]string{
	NodeKind:     "node",
	WayKind:      "way",
	RelationKind: "relation",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts node, way or relation and the plural forms.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown element kind '%s'", s)
}

type Tag struct {
	Key   string
	Value string
}

// Tags keep the order of the source document.
type Tags []Tag

// Get returns the value of the first tag with key.
func (t Tags) Get(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

func (t Tags) String() string {
	parts := make([]string, len(t))
	for i, tag := range t {
		parts[i] = tag.Key + "=" + tag.Value
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Metadata is the edit information of an element. Elements from
// extracts without metadata have a nil Metadata.
type Metadata struct {
	UserID    int64
	UserName  string
	Version   int
	Changeset int64
	Timestamp time.Time
}

type OSMElem struct {
	ID       int64
	Tags     Tags
	Metadata *Metadata
}

type Node struct {
	OSMElem
	Lat  float64
	Long float64
}

type Way struct {
	OSMElem
	Refs []int64
}

type Member struct {
	ID   int64
	Type Kind
	Role string
}

type Relation struct {
	OSMElem
	Members []Member
}

// Element is implemented by *Node, *Way and *Relation.
type Element interface {
	Kind() Kind
	Elem() *OSMElem
}

func (n *Node) Kind() Kind     { return NodeKind }
func (w *Way) Kind() Kind      { return WayKind }
func (r *Relation) Kind() Kind { return RelationKind }

func (e *OSMElem) Elem() *OSMElem { return e }
