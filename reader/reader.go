// Package reader streams the elements of an OSM extract in document order.
// XML (.osm, .osm.gz, .osm.bz2) and PBF (.pbf) files are supported.
package reader

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/element"
)

type Format int

const (
	XML Format = iota
	PBF
)

func (f Format) String() string {
	if f == PBF {
		return "pbf"
	}
	return "xml"
}

// FormatFromFilename guesses the format by the file extension. Everything
// that is not a .pbf is read as XML.
func FormatFromFilename(filename string) Format {
	if strings.HasSuffix(strings.ToLower(filename), ".pbf") {
		return PBF
	}
	return XML
}

type decoder interface {
	next() (element.Element, error)
	// close stops decoding and closes the input once the decoder no
	// longer reads from it.
	close(input []io.Closer) error
}

// Reader returns one element at a time. Only the elements of the
// requested kinds are returned, all others are skipped while decoding.
type Reader struct {
	dec     decoder
	kinds   map[element.Kind]bool
	closers []io.Closer
	count   int64
	cancel  context.CancelFunc
}

// Open opens filename and detects the format and compression by its
// extension. Without kinds all nodes, ways and relations are returned.
func Open(filename string, kinds ...element.Kind) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	var r io.Reader = f
	closers := []io.Closer{f}

	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening %s", filename)
		}
		r = gz
		closers = append([]io.Closer{gz}, closers...)
	case strings.HasSuffix(lower, ".bz2"):
		r = bzip2.NewReader(f)
	}

	rd := newReader(r, FormatFromFilename(filename), kinds)
	rd.closers = closers
	return rd, nil
}

// New returns a Reader for an uncompressed stream.
func New(r io.Reader, format Format, kinds ...element.Kind) *Reader {
	return newReader(r, format, kinds)
}

func newReader(r io.Reader, format Format, kinds []element.Kind) *Reader {
	rd := &Reader{kinds: make(map[element.Kind]bool)}
	if len(kinds) == 0 {
		kinds = []element.Kind{element.NodeKind, element.WayKind, element.RelationKind}
	}
	for _, k := range kinds {
		rd.kinds[k] = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	rd.cancel = cancel
	if format == PBF {
		rd.dec = newPBFDecoder(ctx, r, rd.kinds)
	} else {
		rd.dec = newXMLDecoder(ctx, r)
	}
	return rd
}

// Next returns the next element. It returns io.EOF after the last
// element. Decoding errors are returned with the position of the failed
// element.
func (r *Reader) Next() (element.Element, error) {
	for {
		e, err := r.dec.next()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading element after #%d", r.count)
		}
		if !r.kinds[e.Kind()] {
			continue
		}
		r.count++
		return e, nil
	}
}

// Count returns the number of elements returned so far.
func (r *Reader) Count() int64 {
	return r.count
}

func (r *Reader) Close() error {
	r.cancel()
	return r.dec.close(r.closers)
}

func closeAll(closers []io.Closer) error {
	var err error
	for _, c := range closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
