package postgres

import (
	"io"
	"os"
	"testing"

	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/database/sql"
	"github.com/osmwrangle/osmwrangle/shape"
)

type sliceSource []shape.Row

func (s *sliceSource) Next() (shape.Row, error) {
	if len(*s) == 0 {
		return nil, io.EOF
	}
	r := (*s)[0]
	*s = (*s)[1:]
	return r, nil
}

// openTestDB connects to the database of OSMWRANGLE_TEST_CONNECTION,
// e.g. postgres://localhost/osmwrangle_test
func openTestDB(t *testing.T) *sql.SQLDB {
	t.Helper()
	conn := os.Getenv("OSMWRANGLE_TEST_CONNECTION")
	if conn == "" {
		t.Skip("OSMWRANGLE_TEST_CONNECTION not set")
	}
	db, err := database.Open(database.Config{
		ConnectionParams: conn,
		ImportSchema:     "osmwrangle_test_import",
		ProductionSchema: "osmwrangle_test_production",
		BackupSchema:     "osmwrangle_test_backup",
	})
	if err != nil {
		t.Fatal(err)
	}
	sdb := db.(*sql.SQLDB)
	t.Cleanup(func() {
		for _, schema := range []string{sdb.Config.ImportSchema, sdb.Config.ProductionSchema, sdb.Config.BackupSchema} {
			sdb.Db.Exec(`DROP SCHEMA IF EXISTS "` + schema + `" CASCADE`)
		}
		sdb.Close()
	})
	return sdb
}

func tableCount(t *testing.T, db *sql.SQLDB, schema, table string) int {
	t.Helper()
	var n int
	if err := db.Db.QueryRow(`SELECT count(*) FROM "` + schema + `"."` + table + `"`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestLoadAndDeploy(t *testing.T) {
	db := openTestDB(t)
	if err := db.Init(); err != nil {
		t.Fatal(err)
	}

	ways := sliceSource{&shape.WayRow{ID: "10", User: "bob", UID: "8", Version: "1", Changeset: "5", Timestamp: "2016-01-01T00:00:00Z"}}
	if n, err := db.Load(shape.WayRows, &ways); err != nil || n != 1 {
		t.Fatal(n, err)
	}
	wayNodes := sliceSource{
		&shape.WayNodeRow{ID: "10", NodeID: "1", Position: "0"},
		&shape.WayNodeRow{ID: "10", NodeID: "2", Position: "1"},
	}
	if n, err := db.Load(shape.WayNodeRows, &wayNodes); err != nil || n != 2 {
		t.Fatal(n, err)
	}
	if err := db.Finish(); err != nil {
		t.Fatal(err)
	}
	if n := tableCount(t, db, db.Config.ImportSchema, "ways_nodes"); n != 2 {
		t.Errorf("%d way nodes", n)
	}

	if err := db.Deploy(); err != nil {
		t.Fatal(err)
	}
	if n := tableCount(t, db, db.Config.ProductionSchema, "ways_nodes"); n != 2 {
		t.Errorf("%d way nodes in production", n)
	}

	if err := db.Init(); err != nil {
		t.Fatal(err)
	}
	if err := db.Deploy(); err != nil {
		t.Fatal(err)
	}
	if n := tableCount(t, db, db.Config.BackupSchema, "ways_nodes"); n != 2 {
		t.Errorf("%d way nodes in backup", n)
	}
	if err := db.RevertDeploy(); err != nil {
		t.Fatal(err)
	}
	if n := tableCount(t, db, db.Config.ProductionSchema, "ways_nodes"); n != 2 {
		t.Errorf("%d way nodes in production after revert", n)
	}
	if err := db.RemoveBackup(); err != nil {
		t.Fatal(err)
	}
}
