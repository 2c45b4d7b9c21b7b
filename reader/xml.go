package reader

import (
	"context"
	"io"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/element"
)

type xmlDecoder struct {
	scanner *osmxml.Scanner
}

func newXMLDecoder(ctx context.Context, r io.Reader) *xmlDecoder {
	return &xmlDecoder{scanner: osmxml.New(ctx, r)}
}

func (d *xmlDecoder) next() (element.Element, error) {
	for d.scanner.Scan() {
		switch o := d.scanner.Object().(type) {
		case *osm.Node:
			n := &element.Node{Lat: o.Lat, Long: o.Lon}
			n.ID = int64(o.ID)
			n.Tags = xmlTags(o.Tags)
			n.Metadata = xmlMetadata(o.User, int64(o.UserID), o.Version, int64(o.ChangesetID), o.Timestamp)
			return n, nil
		case *osm.Way:
			w := &element.Way{Refs: make([]int64, len(o.Nodes))}
			w.ID = int64(o.ID)
			for i, nd := range o.Nodes {
				w.Refs[i] = int64(nd.ID)
			}
			w.Tags = xmlTags(o.Tags)
			w.Metadata = xmlMetadata(o.User, int64(o.UserID), o.Version, int64(o.ChangesetID), o.Timestamp)
			return w, nil
		case *osm.Relation:
			r := &element.Relation{Members: make([]element.Member, len(o.Members))}
			r.ID = int64(o.ID)
			for i, m := range o.Members {
				r.Members[i] = element.Member{ID: m.Ref, Type: memberKind(m.Type), Role: m.Role}
			}
			r.Tags = xmlTags(o.Tags)
			r.Metadata = xmlMetadata(o.User, int64(o.UserID), o.Version, int64(o.ChangesetID), o.Timestamp)
			return r, nil
		}
	}
	if err := d.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "decoding xml")
	}
	return nil, io.EOF
}

func (d *xmlDecoder) close(input []io.Closer) error {
	err := d.scanner.Close()
	if cerr := closeAll(input); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func xmlTags(tags osm.Tags) element.Tags {
	if len(tags) == 0 {
		return nil
	}
	result := make(element.Tags, len(tags))
	for i, t := range tags {
		result[i] = element.Tag{Key: t.Key, Value: t.Value}
	}
	return result
}

func memberKind(t osm.Type) element.Kind {
	switch t {
	case osm.TypeWay:
		return element.WayKind
	case osm.TypeRelation:
		return element.RelationKind
	}
	return element.NodeKind
}
