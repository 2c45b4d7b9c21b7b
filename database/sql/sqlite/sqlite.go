// Package sqlite loads the rows into a SQLite database file.
package sqlite

import (
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/database/sql"
)

// New opens the database file of a sqlite:///path/to/file.db connection.
func New(conf database.Config) (database.DB, error) {
	db := &sql.SQLDB{}

	// SQLite allows a single writer
	db.Worker = 1
	db.Config = conf
	db.QB = NewQueryBuilder()

	path, err := pathFromConnectionParams(conf.ConnectionParams)
	if err != nil {
		return nil, err
	}
	db.Params = path

	db.Prepare()

	if err := db.Open("sqlite3"); err != nil {
		return nil, err
	}
	db.Db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA journal_mode = MEMORY",
	} {
		if _, err := db.Db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, pragma)
		}
	}
	return db, nil
}

func pathFromConnectionParams(params string) (string, error) {
	for _, scheme := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
		if strings.HasPrefix(params, scheme) {
			path := strings.TrimPrefix(params, scheme)
			if path == "" {
				return "", errors.Errorf("missing database file in '%s'", params)
			}
			return path, nil
		}
	}
	return "", errors.Errorf("not a sqlite connection: '%s'", params)
}

func init() {
	database.Register("sqlite", New)
	database.Register("sqlite3", New)
}
