package database

import (
	"errors"
	"io"
	"testing"

	"github.com/osmwrangle/osmwrangle/shape"
)

type sliceSource struct {
	rows []shape.Row
	err  error
}

func (s *sliceSource) Next() (shape.Row, error) {
	if len(s.rows) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	r := s.rows[0]
	s.rows = s.rows[1:]
	return r, nil
}

func TestConnectionType(t *testing.T) {
	for param, typ := range map[string]string{
		"postgis://localhost/osm":  "postgis",
		"postgres://user@host/osm": "postgres",
		"sqlite:///tmp/osm.db":     "sqlite",
		"null:":                    "null",
		"null":                     "null",
	} {
		if ct := ConnectionType(param); ct != typ {
			t.Errorf("ConnectionType(%q) = %q", param, ct)
		}
	}
}

func TestOpenNull(t *testing.T) {
	db, err := Open(Config{ConnectionParams: "null:"})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Init(); err != nil {
		t.Fatal(err)
	}
	n, err := db.Load(shape.NodeRows, &sliceSource{rows: []shape.Row{&shape.NodeRow{}, &shape.NodeRow{}}})
	if err != nil || n != 2 {
		t.Errorf("unexpected load result %d %v", n, err)
	}
	readErr := errors.New("broken")
	if _, err := db.Load(shape.NodeRows, &sliceSource{err: readErr}); err != readErr {
		t.Errorf("expected read error, got %v", err)
	}
	if Workers(db, Config{}) != 1 {
		t.Error("null db is not concurrent")
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(Config{ConnectionParams: "mysql://localhost"}); err == nil {
		t.Fatal("expected error")
	}
}

type concurrentDb struct{ NullDb }

func (concurrentDb) Workers() int { return 4 }

func TestWorkers(t *testing.T) {
	db := &concurrentDb{}
	if n := Workers(db, Config{}); n != 4 {
		t.Error(n)
	}
	if n := Workers(db, Config{Workers: 2}); n != 2 {
		t.Error(n)
	}
	if n := Workers(db, Config{Workers: 8}); n != 4 {
		t.Error(n)
	}
}
