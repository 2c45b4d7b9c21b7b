package sql

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/shape"
)

// rotate moves all tables from source to dest and the existing tables of
// dest to backup in a single transaction. It fails if source contains
// none of the tables.
func (sdb *SQLDB) rotate(source, dest, backup string) error {
	if !sdb.DeploymentSupported {
		return errors.New("database does not support deployment")
	}
	defer log.Step("Rotating tables")()

	for _, schema := range []string{dest, backup} {
		if err := sdb.createSchema(schema); err != nil {
			return err
		}
	}

	tx, err := sdb.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)

	rotated := 0
	for _, table := range sdb.tableNames() {
		ok, err := sdb.rotateTable(tx, table, source, dest, backup)
		if err != nil {
			return err
		}
		if ok {
			rotated++
		}
	}
	if rotated == 0 {
		return errors.Errorf("no tables to rotate in schema %s", source)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	tx = nil // set nil to prevent rollback
	return nil
}

func (sdb *SQLDB) rotateTable(tx *sql.Tx, table, source, dest, backup string) (bool, error) {
	sourceExists, err := tableExists(tx, sdb.QB, source, table)
	if err != nil {
		return false, err
	}
	if !sourceExists {
		log.Printf("[warn] skipping rotate of %s, table does not exist in %s", table, source)
		return false, nil
	}
	log.Printf("[info] rotating %s from %s -> %s -> %s", table, source, dest, backup)

	destExists, err := tableExists(tx, sdb.QB, dest, table)
	if err != nil {
		return false, err
	}
	if destExists {
		if err := dropTableIfExists(tx, sdb.QB, backup, table); err != nil {
			return false, err
		}
		if err := sdb.moveTable(tx, dest, table, backup); err != nil {
			return false, err
		}
	}
	return true, sdb.moveTable(tx, source, table, dest)
}

func (sdb *SQLDB) moveTable(tx *sql.Tx, from, table, to string) error {
	stmt := sdb.QB.ChangeTableSchemaSQL(from, table, to)
	if _, err := tx.Exec(stmt); err != nil {
		return &SQLError{stmt, err}
	}
	return nil
}

func (sdb *SQLDB) Deploy() error {
	return sdb.rotate(sdb.Config.ImportSchema, sdb.Config.ProductionSchema, sdb.Config.BackupSchema)
}

// RevertDeploy moves the backup back to production and production back
// to the import schema.
func (sdb *SQLDB) RevertDeploy() error {
	return sdb.rotate(sdb.Config.BackupSchema, sdb.Config.ProductionSchema, sdb.Config.ImportSchema)
}

func (sdb *SQLDB) RemoveBackup() error {
	if !sdb.DeploymentSupported {
		return errors.New("database does not support deployment")
	}
	tx, err := sdb.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)

	backup := sdb.Config.BackupSchema
	for _, table := range sdb.tableNames() {
		log.Printf("[info] removing backup of %s from %s", table, backup)
		if err := dropTableIfExists(tx, sdb.QB, backup, table); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	tx = nil
	return nil
}

// tableNames returns the names of all tables, dependent tables first.
func (sdb *SQLDB) tableNames() []string {
	names := make([]string, 0, len(shape.RowKinds))
	for i := len(shape.RowKinds) - 1; i >= 0; i-- {
		names = append(names, sdb.Tables[shape.RowKinds[i]].FullName)
	}
	return names
}

func (sdb *SQLDB) IsDeploymentSupported() bool {
	return sdb.DeploymentSupported
}
