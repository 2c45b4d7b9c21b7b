package postgres

import (
	"fmt"
	"strings"

	"github.com/osmwrangle/osmwrangle/database/sql"
	"github.com/osmwrangle/osmwrangle/shape"
)

type QueryBuilder struct{}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

func (q *QueryBuilder) TableExistsSQL(schema string, table string) string {
	return fmt.Sprintf(`SELECT EXISTS(SELECT * FROM information_schema.tables WHERE table_name='%s' AND table_schema='%s')`,
		table, schema)
}

func (q *QueryBuilder) DropTableSQL(schema string, table string) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS "%s"."%s"`, schema, table)
}

func (q *QueryBuilder) SchemaExistsSQL(schema string) string {
	return fmt.Sprintf("SELECT EXISTS(SELECT schema_name FROM information_schema.schemata WHERE schema_name = '%s');",
		schema)
}

func (q *QueryBuilder) CreateSchemaSQL(schema string) string {
	return fmt.Sprintf("CREATE SCHEMA \"%s\"", schema)
}

func (q *QueryBuilder) CreateTableSQL(spec *sql.TableSpec) string {
	cols := []string{}
	for _, col := range spec.Columns {
		cols = append(cols, col.AsSQL())
	}
	columnSQL := strings.Join(cols, ",\n            ")
	stmt := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS "%s"."%s" (
            %s
        );`,
		spec.Schema,
		spec.FullName,
		columnSQL,
	)
	if spec.References != "" {
		stmt += fmt.Sprintf(`
        COMMENT ON COLUMN "%s"."%s"."id" IS 'references %s(id)';`,
			spec.Schema, spec.FullName, spec.References)
	}
	return stmt
}

func (q *QueryBuilder) InsertSQL(spec *sql.TableSpec) string {
	var cols []string
	var vars []string
	for i, col := range spec.Columns {
		cols = append(cols, "\""+col.Name+"\"")
		vars = append(vars, fmt.Sprintf("$%d", i+1))
	}
	return fmt.Sprintf(`INSERT INTO "%s"."%s" (%s) VALUES (%s)`,
		spec.Schema,
		spec.FullName,
		strings.Join(cols, ", "),
		strings.Join(vars, ", "),
	)
}

func (q *QueryBuilder) CreateIndexSQL(schema string, table string, column string) string {
	return fmt.Sprintf(`CREATE INDEX "%s_%s_idx" ON "%s"."%s" USING BTREE ("%s")`,
		table, column, schema, table, column)
}

func (q *QueryBuilder) AnalyzeSQL(schema string, table string) string {
	return fmt.Sprintf(`ANALYZE "%s"."%s"`, schema, table)
}

func (q *QueryBuilder) ChangeTableSchemaSQL(currSchema string, table string, newSchema string) string {
	return fmt.Sprintf(`ALTER TABLE "%s"."%s" SET SCHEMA "%s"`, currSchema, table, newSchema)
}

var columnTypes = map[shape.FieldType]string{
	shape.Integer:   "BIGINT",
	shape.Float:     "DOUBLE PRECISION",
	shape.String:    "TEXT",
	shape.Timestamp: "TIMESTAMPTZ",
}

func (q *QueryBuilder) ColumnType(t shape.FieldType) string {
	return columnTypes[t]
}

func (q *QueryBuilder) TableSQL(schema, table string) string {
	return fmt.Sprintf(`"%s"."%s"`, schema, table)
}
