// Package sql implements database.DB for SQL databases. The SQL dialect
// is provided by a QueryBuilder, the bulk insert by a Loader.
package sql

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/shape"
)

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

func (e *SQLError) Unwrap() error {
	return e.originalError
}

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

type QueryBuilder interface {
	TableExistsSQL(schema, table string) string
	DropTableSQL(schema, table string) string
	SchemaExistsSQL(schema string) string
	CreateSchemaSQL(schema string) string
	CreateTableSQL(spec *TableSpec) string
	InsertSQL(spec *TableSpec) string
	CreateIndexSQL(schema, table, column string) string
	AnalyzeSQL(schema, table string) string
	ChangeTableSchemaSQL(currSchema, table, newSchema string) string
	ColumnType(t shape.FieldType) string
	// TableSQL returns the quoted, schema qualified name of table.
	TableSQL(schema, table string) string
}

// Loader inserts all rows into the table of spec within tx.
type Loader func(tx *sql.Tx, spec *TableSpec, rows database.RowSource) (int64, error)

type SQLDB struct {
	Db                  *sql.DB
	Driver              string
	Params              string
	Config              database.Config
	Tables              map[shape.RowKind]*TableSpec
	QB                  QueryBuilder
	Prefix              string
	Worker              int
	Loader              Loader
	DeploymentSupported bool
}

// Prepare creates the table specs for all row kinds.
func (sdb *SQLDB) Prepare() {
	sdb.Tables = make(map[shape.RowKind]*TableSpec, len(shape.RowKinds))
	for _, kind := range shape.RowKinds {
		sdb.Tables[kind] = NewTableSpec(sdb, kind)
	}
	if sdb.Loader == nil {
		sdb.Loader = InsertLoader(sdb.QB)
	}
}

func (sdb *SQLDB) Open(driver string) error {
	var err error
	sdb.Driver = driver
	sdb.Db, err = sql.Open(driver, sdb.Params)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	if err := sdb.Db.Ping(); err != nil {
		sdb.Db.Close()
		return errors.Wrap(err, "connecting to database")
	}
	return nil
}

func (sdb *SQLDB) Close() error {
	return sdb.Db.Close()
}

func (sdb *SQLDB) Workers() int {
	return sdb.Worker
}

// Sqlx returns the connection for queries on the loaded tables.
func (sdb *SQLDB) Sqlx() *sqlx.DB {
	return sqlx.NewDb(sdb.Db, sdb.Driver)
}

func (sdb *SQLDB) TableName(schema string, kind shape.RowKind) string {
	return sdb.QB.TableSQL(schema, sdb.Prefix+kind.Name())
}

func (sdb *SQLDB) createSchema(schema string) error {
	var sql string
	var err error

	if schema == "public" {
		return nil
	}

	sql = sdb.QB.SchemaExistsSQL(schema)
	if sql == "" {
		return nil
	}

	row := sdb.Db.QueryRow(sql)
	var exists bool
	err = row.Scan(&exists)
	if err != nil {
		return &SQLError{sql, err}
	}
	if exists {
		return nil
	}

	sql = sdb.QB.CreateSchemaSQL(schema)
	if sql == "" {
		return nil
	}

	_, err = sdb.Db.Exec(sql)
	if err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

// Init creates schema and tables, drops existing data.
func (sdb *SQLDB) Init() error {
	if err := sdb.createSchema(sdb.Config.ImportSchema); err != nil {
		return err
	}

	tx, err := sdb.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)

	// dependent tables first
	for i := len(shape.RowKinds) - 1; i >= 0; i-- {
		spec := sdb.Tables[shape.RowKinds[i]]
		if err := dropTableIfExists(tx, sdb.QB, spec.Schema, spec.FullName); err != nil {
			return err
		}
	}
	for _, kind := range shape.RowKinds {
		sql := sdb.QB.CreateTableSQL(sdb.Tables[kind])
		if _, err := tx.Exec(sql); err != nil {
			return &SQLError{sql, err}
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}
	tx = nil
	return nil
}

// Load inserts all rows of kind in a single transaction.
func (sdb *SQLDB) Load(kind shape.RowKind, rows database.RowSource) (int64, error) {
	spec, ok := sdb.Tables[kind]
	if !ok {
		return 0, errors.Errorf("no table for %s", kind.Name())
	}
	tx, err := sdb.Db.Begin()
	if err != nil {
		return 0, err
	}
	defer rollbackIfTx(&tx)

	n, err := sdb.Loader(tx, spec, rows)
	if err != nil {
		return n, errors.Wrapf(err, "loading %s", spec.FullName)
	}
	if err := tx.Commit(); err != nil {
		return n, errors.Wrapf(err, "committing %s", spec.FullName)
	}
	tx = nil
	return n, nil
}

// Finish creates the id indices and updates the table statistics.
func (sdb *SQLDB) Finish() error {
	defer log.Step("Creating indices")()

	g := errgroup.Group{}
	if sdb.Worker > 0 {
		g.SetLimit(sdb.Worker)
	}
	for _, kind := range shape.RowKinds {
		spec := sdb.Tables[kind]
		g.Go(func() error {
			return createIndex(sdb, spec)
		})
	}
	return g.Wait()
}

func createIndex(sdb *SQLDB, spec *TableSpec) error {
	for _, col := range spec.IndexColumns() {
		sql := sdb.QB.CreateIndexSQL(spec.Schema, spec.FullName, col)
		step := log.Step(fmt.Sprintf("Creating %s index on %s", col, spec.FullName))
		_, err := sdb.Db.Exec(sql)
		step()
		if err != nil {
			return &SQLError{sql, err}
		}
	}
	if sql := sdb.QB.AnalyzeSQL(spec.Schema, spec.FullName); sql != "" {
		if _, err := sdb.Db.Exec(sql); err != nil {
			return &SQLError{sql, err}
		}
	}
	return nil
}

// InsertLoader returns a Loader that inserts each row with a prepared
// statement.
func InsertLoader(qb QueryBuilder) Loader {
	return func(tx *sql.Tx, spec *TableSpec, rows database.RowSource) (int64, error) {
		query := qb.InsertSQL(spec)
		stmt, err := tx.Prepare(query)
		if err != nil {
			return 0, &SQLError{query, err}
		}
		defer stmt.Close()

		var n int64
		err = eachRow(spec, rows, func(values []interface{}) error {
			if _, err := stmt.Exec(values...); err != nil {
				return &SQLInsertError{SQLError{query, err}, values}
			}
			n++
			return nil
		})
		return n, err
	}
}
