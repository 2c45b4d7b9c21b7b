package reader

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/osmwrangle/osmwrangle/element"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <bounds minlat="49.2" minlon="-123.2" maxlat="49.3" maxlon="-123.0"/>
 <node id="1" lat="49.2" lon="-123.1" user="alice" uid="7" version="2" changeset="99" timestamp="2016-01-01T00:00:00Z">
  <tag k="addr:street" v="Main St"/>
  <tag k="name" v="Café"/>
 </node>
 <node id="2" lat="49.21" lon="-123.11"/>
 <way id="10" user="bob" uid="8" version="1" changeset="100" timestamp="2016-02-01T00:00:00Z">
  <nd ref="1"/>
  <nd ref="2"/>
  <nd ref="1"/>
  <tag k="highway" v="residential"/>
 </way>
 <relation id="20" user="bob" uid="8" version="1" changeset="101" timestamp="2016-02-01T00:00:00Z">
  <member type="way" ref="10" role="outer"/>
  <tag k="type" v="multipolygon"/>
 </relation>
</osm>
`

func readAll(t *testing.T, r *Reader) []element.Element {
	t.Helper()
	var elems []element.Element
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		elems = append(elems, e)
	}
	return elems
}

func TestReadXML(t *testing.T) {
	r := New(strings.NewReader(sampleXML), XML)
	defer r.Close()
	elems := readAll(t, r)

	if len(elems) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(elems))
	}
	n, ok := elems[0].(*element.Node)
	if !ok {
		t.Fatalf("first element not a node: %#v", elems[0])
	}
	if n.ID != 1 || n.Lat != 49.2 || n.Long != -123.1 {
		t.Errorf("unexpected node %#v", n)
	}
	if len(n.Tags) != 2 || n.Tags[0].Key != "addr:street" || n.Tags[1].Value != "Café" {
		t.Errorf("unexpected tags %v", n.Tags)
	}
	if n.Metadata == nil || n.Metadata.UserName != "alice" || n.Metadata.UserID != 7 ||
		n.Metadata.Version != 2 || n.Metadata.Changeset != 99 {
		t.Errorf("unexpected metadata %#v", n.Metadata)
	}
	if n.Metadata.Timestamp.Year() != 2016 {
		t.Errorf("unexpected timestamp %v", n.Metadata.Timestamp)
	}

	if n2 := elems[1].(*element.Node); n2.Metadata != nil {
		t.Errorf("expected no metadata for node without attributes: %#v", n2.Metadata)
	}

	w, ok := elems[2].(*element.Way)
	if !ok {
		t.Fatalf("third element not a way: %#v", elems[2])
	}
	if len(w.Refs) != 3 || w.Refs[0] != 1 || w.Refs[1] != 2 || w.Refs[2] != 1 {
		t.Errorf("unexpected refs %v", w.Refs)
	}

	rel, ok := elems[3].(*element.Relation)
	if !ok {
		t.Fatalf("fourth element not a relation: %#v", elems[3])
	}
	if len(rel.Members) != 1 || rel.Members[0].Type != element.WayKind || rel.Members[0].Role != "outer" {
		t.Errorf("unexpected members %v", rel.Members)
	}
	if r.Count() != 4 {
		t.Errorf("unexpected count %d", r.Count())
	}
}

func TestReadXMLKinds(t *testing.T) {
	r := New(strings.NewReader(sampleXML), XML, element.WayKind)
	defer r.Close()
	elems := readAll(t, r)
	if len(elems) != 1 || elems[0].Kind() != element.WayKind {
		t.Fatalf("unexpected elements %v", elems)
	}
}

func TestReadXMLMalformed(t *testing.T) {
	doc := `<osm><node id="1" lat="1" lon="2"><tag k="a" v="b"/></node><node id="2" `
	r := New(strings.NewReader(doc), XML)
	defer r.Close()

	var err error
	for i := 0; i < 10; i++ {
		_, err = r.Next()
		if err != nil {
			break
		}
	}
	if err == nil || err == io.EOF {
		t.Fatalf("expected decoding error, got %v", err)
	}
}

func TestOpenGzip(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sample.osm.gz")
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	if _, err := gz.Write([]byte(sampleXML)); err != nil {
		t.Fatal(err)
	}
	gz.Close()
	if err := os.WriteFile(fname, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(fname, element.NodeKind)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if elems := readAll(t, r); len(elems) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(elems))
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.osm")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFormatFromFilename(t *testing.T) {
	for name, f := range map[string]Format{
		"vancouver.osm":     XML,
		"vancouver.osm.gz":  XML,
		"vancouver.osm.pbf": PBF,
		"VANCOUVER.PBF":     PBF,
	} {
		if FormatFromFilename(name) != f {
			t.Errorf("%s: expected %v", name, f)
		}
	}
}

func TestSourceModTime(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "vancouver.osm")
	if err := os.WriteFile(fname, []byte(sampleXML), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2016, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(fname, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	src, err := Source(fname)
	if err != nil {
		t.Fatal(err)
	}
	if src.FromHeader || !src.Timestamp.Equal(mtime) || src.Sequence != 0 {
		t.Errorf("unexpected source %#v", src)
	}
}
