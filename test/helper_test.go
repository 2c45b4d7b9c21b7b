package test

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/lib/pq"

	"github.com/osmwrangle/osmwrangle/config"
	_ "github.com/osmwrangle/osmwrangle/database/sql/postgres"
	"github.com/osmwrangle/osmwrangle/import_"
)

const (
	dbschemaImport     = "osmwrangletestimport"
	dbschemaProduction = "osmwrangletestproduction"
	dbschemaBackup     = "osmwrangletestbackup"
)

type importConfig struct {
	connection      string
	osmFileName     string
	mappingFileName string
	cacheDir        string
}

type importTestSuite struct {
	dir    string
	config importConfig
	db     *sql.DB
}

// newSuite connects to the database of OSMWRANGLE_TEST_CONNECTION, e.g.
// postgres://localhost/osmwrangle_test
func newSuite(t *testing.T, osm, rules string) *importTestSuite {
	t.Helper()
	conn := os.Getenv("OSMWRANGLE_TEST_CONNECTION")
	if conn == "" {
		t.Skip("OSMWRANGLE_TEST_CONNECTION not set")
	}

	s := &importTestSuite{dir: t.TempDir()}
	s.config = importConfig{
		connection:  conn,
		osmFileName: filepath.Join(s.dir, "input.osm"),
		cacheDir:    filepath.Join(s.dir, "cache"),
	}
	if err := os.WriteFile(s.config.osmFileName, []byte(osm), 0644); err != nil {
		t.Fatal(err)
	}
	if rules != "" {
		s.config.mappingFileName = filepath.Join(s.dir, "rules.yml")
		if err := os.WriteFile(s.config.mappingFileName, []byte(rules), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var err error
	s.db, err = sql.Open("postgres", conn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		s.dropSchemas(t)
		s.db.Close()
	})
	s.dropSchemas(t)
	return s
}

func (s *importTestSuite) importOsm(t *testing.T) {
	importArgs := []string{
		"-connection", s.config.connection,
		"-read", s.config.osmFileName,
		"-write",
		"-validate",
		"-cachedir", s.config.cacheDir,
		"-overwritecache",
		"-dbschema-import", dbschemaImport,
		"-dbschema-production", dbschemaProduction,
		"-dbschema-backup", dbschemaBackup,
		"-mapping", s.config.mappingFileName,
		"-quiet",
	}
	import_.Import(config.ParseImport(importArgs))
}

func (s *importTestSuite) deployOsm(t *testing.T) {
	s.run(t, "-deployproduction")
}

func (s *importTestSuite) revertDeployOsm(t *testing.T) {
	s.run(t, "-revertdeploy")
}

func (s *importTestSuite) removeBackupOsm(t *testing.T) {
	s.run(t, "-removebackup")
}

func (s *importTestSuite) run(t *testing.T, flag string) {
	importArgs := []string{
		"-connection", s.config.connection,
		"-dbschema-import", dbschemaImport,
		"-dbschema-production", dbschemaProduction,
		"-dbschema-backup", dbschemaBackup,
		"-quiet",
		flag,
	}
	import_.Import(config.ParseImport(importArgs))
}

func (s *importTestSuite) dropSchemas(t *testing.T) {
	for _, schema := range []string{dbschemaImport, dbschemaProduction, dbschemaBackup} {
		if _, err := s.db.Exec(fmt.Sprintf(`DROP SCHEMA IF EXISTS %s CASCADE`, schema)); err != nil {
			t.Fatal(err)
		}
	}
}

func (s *importTestSuite) tableExists(t *testing.T, schema, table string) bool {
	row := s.db.QueryRow(fmt.Sprintf(`SELECT EXISTS(SELECT * FROM information_schema.tables WHERE table_name='%s' AND table_schema='%s')`, table, schema))
	var exists bool
	if err := row.Scan(&exists); err != nil {
		t.Error(err)
		return false
	}
	return exists
}

func (s *importTestSuite) count(t *testing.T, schema, table string) int {
	var n int
	row := s.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM "%s"."%s"`, schema, table))
	if err := row.Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

type tag struct {
	key   string
	value string
	typ   string
}

func (s *importTestSuite) tags(t *testing.T, table string, id int64) []tag {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT key, value, type FROM "%s"."%s" WHERE id=$1 ORDER BY type, key`, dbschemaProduction, table), id)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var tags []tag
	for rows.Next() {
		var tg tag
		if err := rows.Scan(&tg.key, &tg.value, &tg.typ); err != nil {
			t.Fatal(err)
		}
		tags = append(tags, tg)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	return tags
}
