// Package query runs reports on the tables of a finished import.
package query

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/osmwrangle/osmwrangle/config"
	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/log"
	"github.com/osmwrangle/osmwrangle/shape"
)

// Count is a value with its number of occurrences.
type Count struct {
	Value string `db:"value"`
	Num   int64  `db:"num"`
}

type report struct {
	title string
	sql   string
}

// reports maps the report names to their SQL. The table names are replaced with
// the qualified name of the table: {nodes}, {nodes_tags}, {ways},
// {ways_tags}.
var reports = map[string]report{
	"users": {
		title: "top contributors",
		sql: `SELECT e."user" AS value, COUNT(*) AS num
FROM (SELECT "user" FROM {nodes} UNION ALL SELECT "user" FROM {ways}) e
WHERE e."user" IS NOT NULL AND e."user" <> ''
GROUP BY e."user"
ORDER BY num DESC, value
LIMIT ?`,
	},
	"cafes": {
		title: "coffee shops",
		sql: `SELECT t.value AS value, COUNT(*) AS num
FROM {nodes_tags} t
JOIN (SELECT DISTINCT id FROM {nodes_tags} WHERE value = 'coffee_shop') cafes
ON t.id = cafes.id
WHERE t.key = 'name'
GROUP BY t.value
ORDER BY num DESC, value
LIMIT ?`,
	},
	"cuisines": {
		title: "restaurant cuisines",
		sql: `SELECT t.value AS value, COUNT(*) AS num
FROM {nodes_tags} t
JOIN (SELECT DISTINCT id FROM {nodes_tags} WHERE value = 'restaurant') restaurants
ON t.id = restaurants.id
WHERE t.key = 'cuisine'
GROUP BY t.value
ORDER BY num DESC, value
LIMIT ?`,
	},
	"postcodes": {
		title: "postcodes",
		sql: `SELECT tags.value AS value, COUNT(*) AS num
FROM (SELECT key, value, type FROM {nodes_tags} UNION ALL SELECT key, value, type FROM {ways_tags}) tags
WHERE tags.key = 'postcode' AND tags.type = 'addr'
GROUP BY tags.value
ORDER BY num DESC, value
LIMIT ?`,
	},
	"streets": {
		title: "street names",
		sql: `SELECT tags.value AS value, COUNT(*) AS num
FROM (SELECT key, value, type FROM {nodes_tags} UNION ALL SELECT key, value, type FROM {ways_tags}) tags
WHERE tags.key = 'street' AND tags.type = 'addr'
GROUP BY tags.value
ORDER BY num DESC, value
LIMIT ?`,
	},
}

// Querier runs the reports on the tables in schema.
type Querier struct {
	db     *sqlx.DB
	tables *strings.Replacer
}

func New(db database.Queryable, schema string) *Querier {
	var oldnew []string
	for _, kind := range shape.RowKinds {
		oldnew = append(oldnew, "{"+kind.Name()+"}", db.TableName(schema, kind))
	}
	return &Querier{
		db:     db.Sqlx(),
		tables: strings.NewReplacer(oldnew...),
	}
}

// SQL returns the query of the named report for this database.
func (q *Querier) SQL(name string) (string, error) {
	r, ok := reports[name]
	if !ok {
		return "", errors.Errorf("unknown report '%s'", name)
	}
	return q.db.Rebind(q.tables.Replace(r.sql)), nil
}

// Report returns up to limit rows of the named report.
func (q *Querier) Report(name string, limit int) ([]Count, error) {
	query, err := q.SQL(name)
	if err != nil {
		return nil, err
	}
	var rows []Count
	if err := q.db.Select(&rows, query, limit); err != nil {
		return nil, errors.Wrapf(err, "report %s", name)
	}
	return rows, nil
}

// Run writes all named reports to w.
func (q *Querier) Run(names []string, limit int, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, name := range names {
		rows, err := q.Report(name, limit)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s:\n", reports[name].title)
		for _, r := range rows {
			fmt.Fprintf(tw, "  %s\t%d\n", r.Value, r.Num)
		}
	}
	return tw.Flush()
}

// Query runs the query sub command.
func Query(opts config.Query) {
	if opts.Quiet {
		log.SetQuiet(true)
	}
	db, err := database.Open(database.Config{ConnectionParams: opts.Connection})
	if err != nil {
		log.Fatal("[fatal] ", err)
	}
	defer db.Close()

	qdb, ok := db.(database.Queryable)
	if !ok {
		log.Fatalf("[fatal] database type %s does not support queries", database.ConnectionType(opts.Connection))
	}
	if err := New(qdb, opts.Schema).Run(opts.Reports, opts.Limit, os.Stdout); err != nil {
		log.Fatal("[fatal] ", err)
	}
}
