// Package postgres loads the rows into PostgreSQL with COPY.
package postgres

import (
	sqld "database/sql"
	"runtime"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/database/sql"
)

func New(conf database.Config) (database.DB, error) {
	db := &sql.SQLDB{}

	db.Config = conf
	db.QB = NewQueryBuilder()
	db.Worker = runtime.NumCPU()
	db.DeploymentSupported = true
	db.Loader = copyLoader

	if strings.HasPrefix(db.Config.ConnectionParams, "postgis://") {
		db.Config.ConnectionParams = strings.Replace(
			db.Config.ConnectionParams,
			"postgis", "postgres", 1,
		)
	}

	params, err := pq.ParseURL(db.Config.ConnectionParams)
	if err != nil {
		return nil, err
	}
	params = disableDefaultSslOnLocalhost(params)
	db.Prefix = prefixFromConnectionParams(params)
	db.Params = stripPrefixParam(params)

	db.Prepare()

	if err := db.Open("postgres"); err != nil {
		return nil, err
	}
	return db, nil
}

// copyLoader streams the rows with COPY FROM STDIN.
func copyLoader(tx *sqld.Tx, spec *sql.TableSpec, rows database.RowSource) (int64, error) {
	query := pq.CopyInSchema(spec.Schema, spec.FullName, spec.ColumnNames()...)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, errors.Wrapf(err, "preparing %s", query)
	}

	var n int64
	err = sql.EachRow(spec, rows, func(values []interface{}) error {
		if _, err := stmt.Exec(values...); err != nil {
			return errors.Wrapf(err, "copy into %s", spec.FullName)
		}
		n++
		return nil
	})
	if err != nil {
		stmt.Close()
		return n, err
	}
	// flush
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return n, err
	}
	return n, stmt.Close()
}

func init() {
	database.Register("postgres", New)
	database.Register("postgresql", New)
	database.Register("postgis", New)
}
