package cache

import (
	"encoding/csv"
	"io"
	"os"
	"sync"

	"github.com/jszwec/csvutil"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/shape"
)

// Writer appends rows to the row files. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	files  [5]*os.File
	csvs   [5]*csv.Writer
	encs   [5]*csvutil.Encoder
	counts [5]int64
	closed bool
}

// NewWriter writes the rows of each kind to the matching writer. All
// kinds must be present.
func NewWriter(ws map[shape.RowKind]io.Writer) (*Writer, error) {
	w := &Writer{}
	for _, kind := range shape.RowKinds {
		out, ok := ws[kind]
		if !ok {
			return nil, errors.Errorf("missing writer for %s", kind.Name())
		}
		if err := w.init(kind, out); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *Writer) init(kind shape.RowKind, out io.Writer) error {
	cw := csv.NewWriter(out)
	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false
	// header is written even if no rows follow
	if err := enc.EncodeHeader(kind.New()); err != nil {
		return errors.Wrapf(err, "writing %s header", kind.Name())
	}
	w.csvs[kind] = cw
	w.encs[kind] = enc
	return nil
}

// Write writes all rows of a shaped element.
func (w *Writer) Write(s *shape.Shaped) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, row := range s.Rows() {
		if err := w.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeRow(row shape.Row) error {
	if w.closed {
		return errors.New("write to closed cache writer")
	}
	kind := row.Kind()
	if err := w.encs[kind].Encode(row); err != nil {
		return errors.Wrapf(err, "writing %s row", kind.Name())
	}
	w.counts[kind]++
	return nil
}

// Counts returns the number of rows written per kind.
func (w *Writer) Counts() map[shape.RowKind]int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	counts := make(map[shape.RowKind]int64, len(w.counts))
	for _, kind := range shape.RowKinds {
		counts[kind] = w.counts[kind]
	}
	return counts
}

// Close flushes all rows. It returns the first error that occurred.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	var err error
	for i := range w.csvs {
		if w.csvs[i] != nil {
			w.csvs[i].Flush()
			if ferr := w.csvs[i].Error(); ferr != nil && err == nil {
				err = errors.Wrapf(ferr, "flushing %s", shape.RowKind(i).Name())
			}
		}
		if w.files[i] != nil {
			if cerr := w.files[i].Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}
	return err
}
