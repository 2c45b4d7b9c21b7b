package sql

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/shape"
)

type ColumnSpec struct {
	Name  string
	Field shape.Field
	Type  string
}

type TableSpec struct {
	Kind     shape.RowKind
	Name     string
	FullName string
	Schema   string
	Columns  []ColumnSpec
	// References is the table the id column refers to. The relation is
	// not enforced.
	References string
}

func (col *ColumnSpec) AsSQL() string {
	return fmt.Sprintf("\"%s\" %s", col.Name, col.Type)
}

// Value converts the text of a row into the value of the column. Empty
// values are NULL.
func (col *ColumnSpec) Value(v string) (interface{}, error) {
	if v == "" && col.Field.Type != shape.String {
		return nil, nil
	}
	switch col.Field.Type {
	case shape.Integer:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Errorf("column %s: '%s' is not an integer", col.Name, v)
		}
		return i, nil
	case shape.Float:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Errorf("column %s: '%s' is not a number", col.Name, v)
		}
		return f, nil
	}
	return v, nil
}

func NewTableSpec(sdb *SQLDB, kind shape.RowKind) *TableSpec {
	spec := TableSpec{
		Kind:     kind,
		Name:     kind.Name(),
		FullName: sdb.Prefix + kind.Name(),
		Schema:   sdb.Config.ImportSchema,
	}
	for _, f := range shape.Schema[kind] {
		spec.Columns = append(spec.Columns, ColumnSpec{Name: f.Name, Field: f, Type: sdb.QB.ColumnType(f.Type)})
	}
	if parent, ok := kind.Parent(); ok {
		spec.References = sdb.Prefix + parent.Name()
	}
	return &spec
}

func (spec *TableSpec) ColumnNames() []string {
	names := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		names[i] = col.Name
	}
	return names
}

// IndexColumns returns the columns that reference elements.
func (spec *TableSpec) IndexColumns() []string {
	cols := []string{"id"}
	if spec.Kind == shape.WayNodeRows {
		cols = append(cols, "node_id")
	}
	return cols
}

// Values returns the column values of row.
func (spec *TableSpec) Values(row shape.Row) ([]interface{}, error) {
	if row.Kind() != spec.Kind {
		return nil, errors.Errorf("%s row for table %s", row.Kind().Name(), spec.FullName)
	}
	texts := row.Values()
	values := make([]interface{}, len(spec.Columns))
	for i := range spec.Columns {
		v, err := spec.Columns[i].Value(texts[i])
		if err != nil {
			return nil, errors.Wrapf(err, "%s id=%s", spec.FullName, texts[0])
		}
		values[i] = v
	}
	return values, nil
}

// eachRow calls fn with the values of all rows.
func eachRow(spec *TableSpec, rows database.RowSource, fn func([]interface{}) error) error {
	for {
		row, err := rows.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		values, err := spec.Values(row)
		if err != nil {
			return err
		}
		if err := fn(values); err != nil {
			return err
		}
	}
}

// EachRow is eachRow for Loader implementations of other packages.
func EachRow(spec *TableSpec, rows database.RowSource, fn func([]interface{}) error) error {
	return eachRow(spec, rows, fn)
}
