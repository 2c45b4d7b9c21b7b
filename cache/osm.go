// Package cache stores the shaped rows between the read and the write
// phase of an import. Each row kind is written to its own CSV file with a
// header line.
package cache

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/shape"
)

type RowCache struct {
	dir string
}

func New(dir string) *RowCache {
	return &RowCache{dir: dir}
}

func (c *RowCache) Dir() string {
	return c.dir
}

// Path returns the file name of the rows of kind.
func (c *RowCache) Path(kind shape.RowKind) string {
	return filepath.Join(c.dir, kind.Name()+".csv")
}

// Exists returns true if any of the row files exists.
func (c *RowCache) Exists() bool {
	for _, kind := range shape.RowKinds {
		if _, err := os.Stat(c.Path(kind)); !os.IsNotExist(err) {
			return true
		}
	}
	return false
}

// Complete returns true if all row files exist.
func (c *RowCache) Complete() bool {
	for _, kind := range shape.RowKinds {
		if _, err := os.Stat(c.Path(kind)); err != nil {
			return false
		}
	}
	return true
}

func (c *RowCache) Remove() error {
	for _, kind := range shape.RowKinds {
		if err := os.Remove(c.Path(kind)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", c.Path(kind))
		}
	}
	return nil
}

// Create truncates all row files and returns a Writer for them.
func (c *RowCache) Create() (*Writer, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating cache dir %s", c.dir)
	}
	files := make(map[shape.RowKind]*os.File, len(shape.RowKinds))
	ws := make(map[shape.RowKind]io.Writer, len(shape.RowKinds))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, kind := range shape.RowKinds {
		f, err := os.Create(c.Path(kind))
		if err != nil {
			closeAll()
			return nil, errors.Wrapf(err, "creating %s", c.Path(kind))
		}
		files[kind] = f
		ws[kind] = f
	}
	w, err := NewWriter(ws)
	if err != nil {
		closeAll()
		return nil, err
	}
	for kind, f := range files {
		w.files[kind] = f
	}
	return w, nil
}

// Open returns a reader for all rows of kind.
func (c *RowCache) Open(kind shape.RowKind) (*RowReader, error) {
	f, err := os.Open(c.Path(kind))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", c.Path(kind))
	}
	r, err := NewRowReader(f, kind)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading %s", c.Path(kind))
	}
	r.closer = f
	return r, nil
}

// RowReader decodes rows of a single kind.
type RowReader struct {
	kind   shape.RowKind
	dec    *csvutil.Decoder
	closer io.Closer
}

func NewRowReader(r io.Reader, kind shape.RowKind) (*RowReader, error) {
	cr := csv.NewReader(r)
	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", kind.Name())
	}
	if missing := missingColumns(dec.Header(), kind.Header()); len(missing) > 0 {
		return nil, errors.Errorf("%s: missing columns %v", kind.Name(), missing)
	}
	return &RowReader{kind: kind, dec: dec}, nil
}

func (r *RowReader) Kind() shape.RowKind {
	return r.kind
}

// Next returns the next row or io.EOF.
func (r *RowReader) Next() (shape.Row, error) {
	row := r.kind.New()
	if err := r.dec.Decode(row); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "decoding %s row", r.kind.Name())
	}
	return row, nil
}

func (r *RowReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func missingColumns(header, want []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := have[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}
