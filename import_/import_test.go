package import_

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmwrangle/osmwrangle/cache"
	"github.com/osmwrangle/osmwrangle/database"
	"github.com/osmwrangle/osmwrangle/mapping"
	"github.com/osmwrangle/osmwrangle/shape"
)

const vancouverXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <node id="1" lat="49.2827" lon="-123.1207" user="alice" uid="7" version="2" changeset="99" timestamp="2016-01-01T00:00:00Z">
  <tag k="addr:street" v="Denman St"/>
  <tag k="addr:postcode" v="v6g2w9"/>
  <tag k="amenity" v="cafe"/>
  <tag k="bad key" v="x"/>
 </node>
 <node id="2" lat="49.29" lon="-123.13" user="bob" uid="8" version="1" changeset="100" timestamp="2016-01-02T00:00:00Z"/>
 <way id="10" user="alice" uid="7" version="1" changeset="101" timestamp="2016-01-03T00:00:00Z">
  <nd ref="1"/>
  <nd ref="2"/>
  <tag k="name" v="Jervis"/>
  <tag k="addr:street" v="Robson Promenade"/>
 </way>
 <relation id="20" user="alice" uid="7" version="1" changeset="102" timestamp="2016-01-04T00:00:00Z">
  <member type="way" ref="10" role="outer"/>
  <tag k="type" v="multipolygon"/>
 </relation>
</osm>
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(content), 0644))
	return fname
}

func readCSV(t *testing.T, c *cache.RowCache, kind shape.RowKind) string {
	t.Helper()
	b, err := os.ReadFile(c.Path(kind))
	require.NoError(t, err)
	return string(b)
}

func TestRead(t *testing.T) {
	input := writeFile(t, "vancouver.osm", vancouverXML)
	c := cache.New(filepath.Join(t.TempDir(), "cache"))

	result, err := Read(input, c, mapping.Default(), ReadOptions{NormalizeCacheSize: 16})
	require.NoError(t, err)
	require.True(t, c.Complete())

	assert.Equal(t, int64(3), result.Elements)
	assert.Equal(t, int64(2), result.Summary.Nodes)
	assert.Equal(t, int64(1), result.Summary.Ways)
	assert.Equal(t, int64(0), result.Summary.Relations)
	assert.Equal(t, map[string]int{"bad key": 1}, result.RejectedKeys)

	assert.Equal(t, "id,lat,lon,user,uid,version,changeset,timestamp\n"+
		"1,49.2827,-123.1207,alice,7,2,99,2016-01-01T00:00:00Z\n"+
		"2,49.29,-123.13,bob,8,1,100,2016-01-02T00:00:00Z\n",
		readCSV(t, c, shape.NodeRows))
	assert.Equal(t, "id,key,value,type\n"+
		"1,street,Denman Street,addr\n"+
		"1,postcode,V6G 2W9,addr\n"+
		"1,amenity,cafe,regular\n",
		readCSV(t, c, shape.NodeTagRows))
	assert.Equal(t, "id,user,uid,version,changeset,timestamp\n"+
		"10,alice,7,1,101,2016-01-03T00:00:00Z\n",
		readCSV(t, c, shape.WayRows))
	assert.Equal(t, "id,node_id,position\n10,1,0\n10,2,1\n",
		readCSV(t, c, shape.WayNodeRows))
	assert.Equal(t, "id,key,value,type\n"+
		"10,name,Jervis,regular\n"+
		"10,street,Robson Promenade,addr\n",
		readCSV(t, c, shape.WayTagRows))

	assert.Equal(t, int64(2), result.Rows[shape.NodeRows])
	assert.Equal(t, int64(2), result.Rows[shape.WayNodeRows])

	counts := result.Audit.Counts()
	assert.Equal(t, int64(1), counts.StreetReplaced)
	assert.Equal(t, int64(1), counts.StreetUnresolved)
	assert.Equal(t, int64(1), counts.PostcodeCanonical)
	streets := result.Audit.UnresolvedStreets()
	require.Len(t, streets, 1)
	assert.Equal(t, "Promenade", streets[0].Suffix)
	assert.Equal(t, []string{"Robson Promenade"}, streets[0].Names)
}

func TestReadValidate(t *testing.T) {
	input := writeFile(t, "invalid.osm", `<osm>
 <node id="1" lat="49.2" lon="-123.1" user="alice" uid="7" version="1" changeset="1"/>
 <node id="2" lat="49.3" lon="-123.2"><tag k="amenity" v="cafe"/></node>
 <node id="3" lat="49.4" lon="-123.3"/>
</osm>`)
	c := cache.New(filepath.Join(t.TempDir(), "cache"))

	result, err := Read(input, c, mapping.Default(), ReadOptions{Validate: true})
	require.Error(t, err)
	verr, ok := err.(*shape.ValidationError)
	require.True(t, ok, "unexpected error %T", err)
	// missing uid and changeset for nodes 2 and 3
	assert.Len(t, verr.Violations, 4)
	assert.Equal(t, result.Violations, verr.Violations)

	// only the valid element was written
	assert.Equal(t, int64(1), result.Rows[shape.NodeRows])
	assert.Equal(t, int64(0), result.Rows[shape.NodeTagRows])
}

func TestReadMissingFile(t *testing.T) {
	c := cache.New(t.TempDir())
	result, err := Read(filepath.Join(t.TempDir(), "missing.osm"), c, mapping.Default(), ReadOptions{})
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.False(t, c.Exists())
}

func TestReadMalformedReturnsResult(t *testing.T) {
	input := writeFile(t, "broken.osm", `<osm><node id="1" lat="49.2" lon="-123.1"><tag k="name" v="Blenz"/></node><node id="2" `)
	c := cache.New(filepath.Join(t.TempDir(), "cache"))

	result, err := Read(input, c, mapping.Default(), ReadOptions{})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.NotNil(t, result.Audit)
	assert.Len(t, result.Rows, len(shape.RowKinds))
	assert.True(t, c.Complete())
}

func TestPrepareCache(t *testing.T) {
	c := cache.New(t.TempDir())
	require.NoError(t, prepareCache(c, false))

	w, err := c.Create()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = prepareCache(c, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-overwritecache")

	require.NoError(t, prepareCache(c, true))
	assert.False(t, c.Exists())
}

func TestWriteNullDb(t *testing.T) {
	input := writeFile(t, "vancouver.osm", vancouverXML)
	c := cache.New(filepath.Join(t.TempDir(), "cache"))
	_, err := Read(input, c, mapping.Default(), ReadOptions{})
	require.NoError(t, err)

	db, err := database.Open(database.Config{ConnectionParams: "null:"})
	require.NoError(t, err)
	defer db.Close()

	counts, err := Write(db, c, 2)
	require.NoError(t, err)
	assert.Equal(t, map[shape.RowKind]int64{
		shape.NodeRows:    2,
		shape.NodeTagRows: 3,
		shape.WayRows:     1,
		shape.WayNodeRows: 2,
		shape.WayTagRows:  2,
	}, counts)
}

func TestWriteIncompleteCache(t *testing.T) {
	db, err := database.Open(database.Config{ConnectionParams: "null:"})
	require.NoError(t, err)
	_, err = Write(db, cache.New(t.TempDir()), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-read")
}

func TestWriteReport(t *testing.T) {
	input := writeFile(t, "vancouver.osm", vancouverXML)
	c := cache.New(filepath.Join(t.TempDir(), "cache"))
	result, err := Read(input, c, mapping.Default(), ReadOptions{})
	require.NoError(t, err)

	fname := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, writeReport(fname, result))

	b, err := os.ReadFile(fname)
	require.NoError(t, err)
	var rep map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &rep))
	assert.Equal(t, map[string]interface{}{"bad key": float64(1)}, rep["rejected_keys"])
	assert.Equal(t, float64(2), rep["rows"].(map[string]interface{})["ways_nodes"])
	assert.True(t, strings.Contains(string(b), "Robson Promenade"))
}

func TestLoadMapping(t *testing.T) {
	m, err := LoadMapping("")
	require.NoError(t, err)
	assert.NotEmpty(t, m.Expected)

	assert.True(t, m.DropUnresolvedPostcodes)

	rules := writeFile(t, "rules.yml", "postcodes:\n  unresolved: keep\n")
	m, err = LoadMapping(rules)
	require.NoError(t, err)
	assert.False(t, m.DropUnresolvedPostcodes)

	_, err = LoadMapping(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
