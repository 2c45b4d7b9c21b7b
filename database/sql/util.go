package sql

import (
	"database/sql"

	"github.com/osmwrangle/osmwrangle/log"
)

func tableExists(tx *sql.Tx, qb QueryBuilder, schema, table string) (bool, error) {
	var exists bool
	query := qb.TableExistsSQL(schema, table)
	if err := tx.QueryRow(query).Scan(&exists); err != nil {
		return false, &SQLError{query, err}
	}
	return exists, nil
}

// dropTableIfExists relies on DropTableSQL to ignore missing tables.
func dropTableIfExists(tx *sql.Tx, qb QueryBuilder, schema, table string) error {
	stmt := qb.DropTableSQL(schema, table)
	if _, err := tx.Exec(stmt); err != nil {
		return &SQLError{stmt, err}
	}
	return nil
}

// rollbackIfTx rolls back the transaction unless *tx was set to nil after
// a commit.
func rollbackIfTx(tx **sql.Tx) {
	if *tx == nil {
		return
	}
	if err := (*tx).Rollback(); err != nil {
		log.Println("[error] rollback failed:", err)
	}
}
