// Package database defines the interface of the import targets and a
// registry of the available implementations.
package database

import (
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/shape"
)

type Config struct {
	ConnectionParams string
	ImportSchema     string
	ProductionSchema string
	BackupSchema     string
	// Workers limits the number of tables loaded in parallel. Zero uses
	// the default of the database.
	Workers int
}

// RowSource returns rows of a single kind until io.EOF.
type RowSource interface {
	Next() (shape.Row, error)
}

type DB interface {
	// Init creates all tables in the import schema, existing tables are
	// dropped.
	Init() error
	// Load inserts all rows of kind and returns the number of rows.
	Load(kind shape.RowKind, rows RowSource) (int64, error)
	Close() error
}

type Finisher interface {
	Finish() error
}

type Deployer interface {
	Deploy() error
	RevertDeploy() error
	RemoveBackup() error
	IsDeploymentSupported() bool
}

// Queryable is implemented by databases that can report on the loaded
// tables.
type Queryable interface {
	Sqlx() *sqlx.DB
	// TableName returns the quoted name of the table of kind in schema.
	TableName(schema string, kind shape.RowKind) string
}

// Concurrent is implemented by databases that limit the parallel loads.
type Concurrent interface {
	Workers() int
}

var databases = make(map[string]func(Config) (DB, error))

func Register(name string, f func(Config) (DB, error)) {
	databases[name] = f
}

func Open(conf Config) (DB, error) {
	typ := ConnectionType(conf.ConnectionParams)
	newFunc, ok := databases[typ]
	if !ok {
		return nil, errors.New("unsupported database type: " + typ)
	}

	db, err := newFunc(conf)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func ConnectionType(param string) string {
	parts := strings.SplitN(param, ":", 2)
	return parts[0]
}

// Workers returns the number of parallel loads for db.
func Workers(db DB, conf Config) int {
	n := 1
	if c, ok := db.(Concurrent); ok {
		n = c.Workers()
	}
	if conf.Workers > 0 && conf.Workers < n {
		n = conf.Workers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// NullDb reads all rows without storing them.
type NullDb struct{}

func (n *NullDb) Init() error  { return nil }
func (n *NullDb) Close() error { return nil }
func (n *NullDb) Load(kind shape.RowKind, rows RowSource) (int64, error) {
	var count int64
	for {
		_, err := rows.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		count++
	}
}

func NewNullDb(conf Config) (DB, error) {
	return &NullDb{}, nil
}

func init() {
	Register("null", NewNullDb)
}
