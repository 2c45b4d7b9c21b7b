package reader

import (
	"os"
	"time"

	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"
)

// SourceInfo describes the age of an input file.
type SourceInfo struct {
	Timestamp time.Time `json:"timestamp"`
	// Sequence is the replication sequence of a PBF, 0 if unknown.
	Sequence int64 `json:"sequence,omitempty"`
	// FromHeader is false if Timestamp is the modification time of the
	// file.
	FromHeader bool `json:"from_header"`
}

// Source returns the timestamp from the PBF header or the modification
// time for other files and PBFs without a timestamp.
func Source(filename string) (*SourceInfo, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	defer f.Close()

	if FormatFromFilename(filename) == PBF {
		header, err := pbf.New(f, pbf.Config{}).Header()
		if err == nil && header.Time.Unix() > 0 {
			return &SourceInfo{Timestamp: header.Time, Sequence: header.Sequence, FromHeader: true}, nil
		}
	}

	fstat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "reading mod time from %q", filename)
	}
	return &SourceInfo{Timestamp: fstat.ModTime()}, nil
}
