package sqlite

import (
	"fmt"
	"strings"

	"github.com/osmwrangle/osmwrangle/database/sql"
	"github.com/osmwrangle/osmwrangle/shape"
)

// QueryBuilder ignores all schema arguments, SQLite has a single
// namespace per database file.
type QueryBuilder struct{}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

func (q *QueryBuilder) TableExistsSQL(schema string, table string) string {
	return fmt.Sprintf(`SELECT EXISTS(SELECT * FROM sqlite_master WHERE type='table' and name='%s')`,
		table)
}

func (q *QueryBuilder) DropTableSQL(schema string, table string) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, table)
}

func (q *QueryBuilder) SchemaExistsSQL(schema string) string {
	return ""
}

func (q *QueryBuilder) CreateSchemaSQL(schema string) string {
	return ""
}

// CreateTableSQL creates the table without any key constraints. Ids are
// not unique and the relation to the parent table is only recorded as a
// comment, the id index is created by Finish.
func (q *QueryBuilder) CreateTableSQL(spec *sql.TableSpec) string {
	cols := []string{}
	for _, col := range spec.Columns {
		def := col.AsSQL()
		if col.Name == "id" && spec.References != "" {
			def += fmt.Sprintf(` /* references "%s" ("id") */`, spec.References)
		}
		cols = append(cols, def)
	}
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS "%s" (
            %s
        );`,
		spec.FullName,
		strings.Join(cols, ",\n            "),
	)
}

func (q *QueryBuilder) InsertSQL(spec *sql.TableSpec) string {
	var cols []string
	var vars []string
	for _, col := range spec.Columns {
		cols = append(cols, "\""+col.Name+"\"")
		vars = append(vars, "?")
	}
	return fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`,
		spec.FullName,
		strings.Join(cols, ", "),
		strings.Join(vars, ", "),
	)
}

func (q *QueryBuilder) CreateIndexSQL(schema string, table string, column string) string {
	return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "%s_%s_idx" ON "%s" ("%s")`, table, column, table, column)
}

func (q *QueryBuilder) AnalyzeSQL(schema string, table string) string {
	return fmt.Sprintf(`ANALYZE "%s"`, table)
}

func (q *QueryBuilder) ChangeTableSchemaSQL(currSchema string, table string, newSchema string) string {
	return ""
}

var columnTypes = map[shape.FieldType]string{
	shape.Integer:   "INTEGER",
	shape.Float:     "REAL",
	shape.String:    "TEXT",
	shape.Timestamp: "TEXT",
}

func (q *QueryBuilder) ColumnType(t shape.FieldType) string {
	return columnTypes[t]
}

// TableSQL ignores the schema, all tables are in the main database.
func (q *QueryBuilder) TableSQL(schema, table string) string {
	return fmt.Sprintf(`"%s"`, table)
}
