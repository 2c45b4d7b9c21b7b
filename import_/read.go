package import_

import (
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/cache"
	"github.com/osmwrangle/osmwrangle/element"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/mapping"
	"github.com/osmwrangle/osmwrangle/normalize"
	"github.com/osmwrangle/osmwrangle/reader"
	"github.com/osmwrangle/osmwrangle/shape"
	"github.com/osmwrangle/osmwrangle/stats"
)

var progressInterval = time.Second

type ReadOptions struct {
	// Validate checks every row against shape.Schema. Elements with
	// invalid rows are not written and Read fails after the whole file
	// was read.
	Validate bool
	// NormalizeCacheSize is the number of memoized normalizer results,
	// 0 disables the cache.
	NormalizeCacheSize int
	// ProgressInterval of the progress log, 0 disables it.
	ProgressInterval time.Duration
}

type ReadResult struct {
	// Elements is the number of nodes and ways returned by the reader.
	Elements     int64
	Summary      stats.Summary
	Rows         map[shape.RowKind]int64
	Audit        *normalize.Audit
	RejectedKeys map[string]int
	Dropped      int
	Violations   []shape.Violation
}

func (r *ReadResult) log() {
	log.Printf("[info] read %d elements (%d nodes, %d ways), wrote %d rows",
		r.Elements, r.Summary.Nodes, r.Summary.Ways, r.Summary.Rows)
	for _, kind := range shape.RowKinds {
		log.Printf("[info] %s: %d rows", kind.Name(), r.Rows[kind])
	}
	if len(r.RejectedKeys) > 0 {
		keys := make([]string, 0, len(r.RejectedKeys))
		for k := range r.RejectedKeys {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			log.Printf("[warn] skipped %d tags with problem key '%s'", r.RejectedKeys[k], k)
		}
	}
	if r.Dropped > 0 {
		log.Printf("[warn] dropped %d unresolved tag values", r.Dropped)
	}
	c := r.Audit.Counts()
	log.Printf("[info] streets: %d accepted, %d replaced, %d unresolved",
		c.StreetAccepted, c.StreetReplaced, c.StreetUnresolved)
	log.Printf("[info] postcodes: %d canonical, %d numeric, %d unresolved",
		c.PostcodeCanonical, c.PostcodeNumeric, c.PostcodeUnresolved)
	for _, s := range r.Audit.UnresolvedStreets() {
		log.Printf("[warn] unexpected street type '%s': %d names", s.Suffix, len(s.Names))
	}
}

// Read shapes all nodes and ways of filename and writes the rows into
// the cache. The result is nil if the mapping, the input or the cache
// cannot be prepared. Once reading started, the result is returned even
// if Read fails.
func Read(filename string, c *cache.RowCache, m *mapping.Mapping, opts ReadOptions) (*ReadResult, error) {
	shaper, err := newShaper(m, opts.NormalizeCacheSize)
	if err != nil {
		return nil, err
	}

	r, err := reader.Open(filename, element.NodeKind, element.WayKind)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	w, err := c.Create()
	if err != nil {
		return nil, err
	}

	result := &ReadResult{
		Audit:        normalize.NewAudit(),
		RejectedKeys: make(map[string]int),
	}
	progress := stats.NewProgress(opts.ProgressInterval)

	err = readElements(r, shaper, w, progress, result, opts.Validate)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "closing cache")
	}
	result.Elements = r.Count()
	result.Summary = progress.Stop()
	result.Rows = w.Counts()

	if err == nil && len(result.Violations) > 0 {
		err = &shape.ValidationError{Violations: result.Violations}
	}
	return result, err
}

func newShaper(m *mapping.Mapping, cacheSize int) (*shape.Shaper, error) {
	shaper := shape.New(m)
	if cacheSize <= 0 {
		return shaper, nil
	}
	street, err := normalize.NewCachedStreet(normalize.NewStreet(m.Expected, m.Replacements), cacheSize)
	if err != nil {
		return nil, err
	}
	postcode, err := normalize.NewCachedPostcode(normalize.NewPostcode(), cacheSize)
	if err != nil {
		return nil, err
	}
	shaper.SetNormalizers(street, postcode)
	return shaper, nil
}

func readElements(r *reader.Reader, shaper *shape.Shaper, w *cache.Writer, progress *stats.Progress, result *ReadResult, validate bool) error {
	for {
		e, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		progress.AddElement(e.Kind())

		s, ok := shaper.Shape(e)
		if !ok {
			continue
		}
		collect(s, progress, result)

		if validate {
			if violations := shape.Validate(s); len(violations) > 0 {
				result.Violations = append(result.Violations, violations...)
				stats.ValidationViolations.Add(float64(len(violations)))
				continue
			}
		}

		if err := w.Write(s); err != nil {
			return err
		}
		for _, row := range s.Rows() {
			progress.AddRows(row.Kind(), 1)
		}
	}
}

func collect(s *shape.Shaped, progress *stats.Progress, result *ReadResult) {
	for _, r := range s.Streets {
		result.Audit.AddStreet(r)
		stats.NormalizeResults.WithLabelValues("street", r.Status.String()).Inc()
	}
	for _, r := range s.Postcodes {
		result.Audit.AddPostcode(r)
		stats.NormalizeResults.WithLabelValues("postcode", r.Status.String()).Inc()
	}
	for _, t := range s.Rejected {
		result.RejectedKeys[t.Key]++
	}
	if len(s.Rejected) > 0 {
		progress.AddRejected(len(s.Rejected))
	}
	result.Dropped += s.Dropped
}
