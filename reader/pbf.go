package reader

import (
	"context"
	"io"
	"sort"
	"time"

	osm "github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/element"
)

// pbfDecoder runs a single go-osm parser. With one parser goroutine and
// unbuffered channels the batches arrive in file order and only one
// block is decoded at a time.
type pbfDecoder struct {
	nodes     chan []osm.Node
	ways      chan []osm.Way
	relations chan []osm.Relation
	errc      chan error
	parsed    bool
	pending   []element.Element
}

func newPBFDecoder(ctx context.Context, r io.Reader, kinds map[element.Kind]bool) *pbfDecoder {
	d := &pbfDecoder{errc: make(chan error, 1)}
	conf := pbf.Config{
		IncludeMetadata: true,
		Concurrency:     1,
	}
	if kinds[element.NodeKind] {
		d.nodes = make(chan []osm.Node)
		conf.Nodes = d.nodes
	}
	if kinds[element.WayKind] {
		d.ways = make(chan []osm.Way)
		conf.Ways = d.ways
	}
	if kinds[element.RelationKind] {
		d.relations = make(chan []osm.Relation)
		conf.Relations = d.relations
	}
	parser := pbf.New(r, conf)
	go func() {
		d.errc <- parser.Parse(ctx)
	}()
	return d
}

func (d *pbfDecoder) next() (element.Element, error) {
	for len(d.pending) == 0 {
		if d.nodes == nil && d.ways == nil && d.relations == nil && d.errc == nil {
			return nil, io.EOF
		}
		select {
		case nds, ok := <-d.nodes:
			if !ok {
				d.nodes = nil
				continue
			}
			for i := range nds {
				d.pending = append(d.pending, pbfNode(&nds[i]))
			}
		case ws, ok := <-d.ways:
			if !ok {
				d.ways = nil
				continue
			}
			for i := range ws {
				d.pending = append(d.pending, pbfWay(&ws[i]))
			}
		case rels, ok := <-d.relations:
			if !ok {
				d.relations = nil
				continue
			}
			for i := range rels {
				d.pending = append(d.pending, pbfRelation(&rels[i]))
			}
		case err := <-d.errc:
			d.errc = nil
			d.parsed = true
			if err != nil {
				return nil, errors.Wrap(err, "decoding pbf")
			}
		}
	}
	e := d.pending[0]
	d.pending[0] = nil
	d.pending = d.pending[1:]
	return e, nil
}

// close releases the parser goroutine. The context is already cancelled,
// the parser only needs to get rid of the batch it is sending. The input
// is closed after the parser returned, a read from a closed file would
// end the parser without closing its channels. After a parse error the
// channels stay open and the drain ends with the timeout.
func (d *pbfDecoder) close(input []io.Closer) error {
	if d.parsed && d.nodes == nil && d.ways == nil && d.relations == nil {
		return closeAll(input)
	}
	nodes, ways, relations, errc := d.nodes, d.ways, d.relations, d.errc
	done := d.parsed
	d.nodes, d.ways, d.relations, d.errc = nil, nil, nil, nil
	d.parsed = true
	go func() {
		defer closeAll(input)
		timeout := time.After(time.Minute)
		for {
			select {
			case _, ok := <-nodes:
				if !ok {
					nodes = nil
				}
			case _, ok := <-ways:
				if !ok {
					ways = nil
				}
			case _, ok := <-relations:
				if !ok {
					relations = nil
				}
			case <-errc:
				errc = nil
				done = true
			case <-timeout:
				return
			}
			if done && nodes == nil && ways == nil && relations == nil {
				return
			}
		}
	}()
	return nil
}

func pbfElem(e *osm.Element) element.OSMElem {
	elem := element.OSMElem{ID: e.ID}
	if len(e.Tags) > 0 {
		keys := make([]string, 0, len(e.Tags))
		for k := range e.Tags {
			keys = append(keys, k)
		}
		// PBF tags have no defined order
		sort.Strings(keys)
		elem.Tags = make(element.Tags, len(keys))
		for i, k := range keys {
			elem.Tags[i] = element.Tag{Key: k, Value: e.Tags[k]}
		}
	}
	if m := e.Metadata; m != nil {
		elem.Metadata = &element.Metadata{
			UserID:    int64(m.UserID),
			UserName:  m.UserName,
			Version:   int(m.Version),
			Changeset: m.Changeset,
			Timestamp: m.Timestamp,
		}
	}
	return elem
}

func pbfNode(n *osm.Node) *element.Node {
	return &element.Node{OSMElem: pbfElem(&n.Element), Lat: n.Lat, Long: n.Long}
}

func pbfWay(w *osm.Way) *element.Way {
	return &element.Way{OSMElem: pbfElem(&w.Element), Refs: w.Refs}
}

func pbfRelation(r *osm.Relation) *element.Relation {
	rel := &element.Relation{OSMElem: pbfElem(&r.Element), Members: make([]element.Member, len(r.Members))}
	for i, m := range r.Members {
		kind := element.NodeKind
		switch m.Type {
		case osm.WayMember:
			kind = element.WayKind
		case osm.RelationMember:
			kind = element.RelationKind
		}
		rel.Members[i] = element.Member{ID: m.ID, Type: kind, Role: m.Role}
	}
	return rel
}
