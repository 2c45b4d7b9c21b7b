// Package shape turns elements into flat table rows.
//
// All row values are kept as text, exactly as they will be written to
// the CSV cache. Validate checks that they can be read back as the
// column types of the database tables.
package shape

import "fmt"

type RowKind int

const (
	NodeRows RowKind = iota
	NodeTagRows
	WayRows
	WayNodeRows
	WayTagRows
)

// RowKinds are all kinds in load order.
var RowKinds = []RowKind{NodeRows, NodeTagRows, WayRows, WayNodeRows, WayTagRows}

var rowKindNames = []string{"nodes", "nodes_tags", "ways", "ways_nodes", "ways_tags"}

// Name is the table and cache file name of the kind.
func (k RowKind) Name() string {
	if int(k) < 0 || int(k) >= len(rowKindNames) {
		return fmt.Sprintf("rowkind(%d)", int(k))
	}
	return rowKindNames[k]
}

func (k RowKind) String() string { return k.Name() }

// Header returns the column names of the kind.
func (k RowKind) Header() []string {
	fields := Schema[k]
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}
	return header
}

// Parent returns the kind the rows of k reference with their id column.
func (k RowKind) Parent() (RowKind, bool) {
	switch k {
	case NodeTagRows:
		return NodeRows, true
	case WayNodeRows, WayTagRows:
		return WayRows, true
	}
	return 0, false
}

// New returns an empty row of kind k for decoding.
func (k RowKind) New() Row {
	switch k {
	case NodeRows:
		return &NodeRow{}
	case NodeTagRows:
		return &TagRow{kind: NodeTagRows}
	case WayRows:
		return &WayRow{}
	case WayNodeRows:
		return &WayNodeRow{}
	case WayTagRows:
		return &TagRow{kind: WayTagRows}
	}
	panic("unknown row kind " + k.Name())
}

type Row interface {
	Kind() RowKind
	// Values are in Header order.
	Values() []string
}

type NodeRow struct {
	ID        string `csv:"id"`
	Lat       string `csv:"lat"`
	Lon       string `csv:"lon"`
	User      string `csv:"user"`
	UID       string `csv:"uid"`
	Version   string `csv:"version"`
	Changeset string `csv:"changeset"`
	Timestamp string `csv:"timestamp"`
}

func (r *NodeRow) Kind() RowKind { return NodeRows }
func (r *NodeRow) Values() []string {
	return []string{r.ID, r.Lat, r.Lon, r.User, r.UID, r.Version, r.Changeset, r.Timestamp}
}

type WayRow struct {
	ID        string `csv:"id"`
	User      string `csv:"user"`
	UID       string `csv:"uid"`
	Version   string `csv:"version"`
	Changeset string `csv:"changeset"`
	Timestamp string `csv:"timestamp"`
}

func (r *WayRow) Kind() RowKind { return WayRows }
func (r *WayRow) Values() []string {
	return []string{r.ID, r.User, r.UID, r.Version, r.Changeset, r.Timestamp}
}

// TagRow is used for node and way tags.
type TagRow struct {
	ID    string `csv:"id"`
	Key   string `csv:"key"`
	Value string `csv:"value"`
	Type  string `csv:"type"`
	kind  RowKind
}

func (r *TagRow) Kind() RowKind { return r.kind }
func (r *TagRow) Values() []string {
	return []string{r.ID, r.Key, r.Value, r.Type}
}

type WayNodeRow struct {
	ID       string `csv:"id"`
	NodeID   string `csv:"node_id"`
	Position string `csv:"position"`
}

func (r *WayNodeRow) Kind() RowKind { return WayNodeRows }
func (r *WayNodeRow) Values() []string {
	return []string{r.ID, r.NodeID, r.Position}
}
