package test

import (
	"reflect"
	"testing"
)

const completeOsm = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
 <node id="1" lat="49.2827" lon="-123.1207" user="alice" uid="7" version="2" changeset="99" timestamp="2016-01-01T00:00:00Z">
  <tag k="addr:street" v="Denman St"/>
  <tag k="addr:postcode" v="v6g2w9"/>
  <tag k="amenity" v="cafe"/>
  <tag k="name" v="Blenz"/>
 </node>
 <node id="2" lat="49.29" lon="-123.13" user="bob" uid="8" version="1" changeset="100" timestamp="2016-01-02T00:00:00Z">
  <tag k="addr:postcode" v="BC"/>
  <tag k="gnis:feature:id:x" v="1"/>
 </node>
 <way id="10" user="alice" uid="7" version="1" changeset="101" timestamp="2016-01-03T00:00:00Z">
  <nd ref="1"/>
  <nd ref="2"/>
  <tag k="highway" v="residential"/>
  <tag k="addr:street" v="Robson Rd."/>
 </way>
</osm>
`

const dropRules = `
postcodes:
  unresolved: drop
`

var tables = []string{"nodes", "nodes_tags", "ways", "ways_nodes", "ways_tags"}

func TestComplete(t *testing.T) {
	ts := newSuite(t, completeOsm, dropRules)

	t.Run("Import", func(t *testing.T) {
		for _, table := range tables {
			if ts.tableExists(t, dbschemaImport, table) {
				t.Fatalf("table %s exists in schema %s", table, dbschemaImport)
			}
		}
		ts.importOsm(t)
		for _, table := range tables {
			if !ts.tableExists(t, dbschemaImport, table) {
				t.Fatalf("table %s does not exist in schema %s", table, dbschemaImport)
			}
		}
	})

	t.Run("Deploy", func(t *testing.T) {
		ts.deployOsm(t)
		for _, table := range tables {
			if ts.tableExists(t, dbschemaImport, table) {
				t.Fatalf("table %s exists in schema %s", table, dbschemaImport)
			}
			if !ts.tableExists(t, dbschemaProduction, table) {
				t.Fatalf("table %s does not exist in schema %s", table, dbschemaProduction)
			}
		}
	})

	t.Run("Rows", func(t *testing.T) {
		for table, n := range map[string]int{
			"nodes":      2,
			"nodes_tags": 5,
			"ways":       1,
			"ways_nodes": 2,
			"ways_tags":  2,
		} {
			if c := ts.count(t, dbschemaProduction, table); c != n {
				t.Errorf("%s: expected %d rows, got %d", table, n, c)
			}
		}
	})

	t.Run("NormalizedTags", func(t *testing.T) {
		want := []tag{
			{"postcode", "V6G 2W9", "addr"},
			{"street", "Denman Street", "addr"},
			{"amenity", "cafe", "regular"},
			{"name", "Blenz", "regular"},
		}
		if got := ts.tags(t, "nodes_tags", 1); !reflect.DeepEqual(got, want) {
			t.Errorf("%v != %v", got, want)
		}
		// unresolved postcode dropped, four segment key kept as is
		want = []tag{
			{"gnis:feature:id:x", "1", "gnis"},
		}
		if got := ts.tags(t, "nodes_tags", 2); !reflect.DeepEqual(got, want) {
			t.Errorf("%v != %v", got, want)
		}
		want = []tag{
			{"street", "Robson Road", "addr"},
			{"highway", "residential", "regular"},
		}
		if got := ts.tags(t, "ways_tags", 10); !reflect.DeepEqual(got, want) {
			t.Errorf("%v != %v", got, want)
		}
	})

	t.Run("ReimportAndRevert", func(t *testing.T) {
		ts.importOsm(t)
		ts.deployOsm(t)
		for _, table := range tables {
			if !ts.tableExists(t, dbschemaBackup, table) {
				t.Fatalf("table %s does not exist in schema %s", table, dbschemaBackup)
			}
		}

		ts.revertDeployOsm(t)
		for _, table := range tables {
			if !ts.tableExists(t, dbschemaImport, table) {
				t.Fatalf("table %s does not exist in schema %s", table, dbschemaImport)
			}
			if !ts.tableExists(t, dbschemaProduction, table) {
				t.Fatalf("table %s does not exist in schema %s", table, dbschemaProduction)
			}
			if ts.tableExists(t, dbschemaBackup, table) {
				t.Fatalf("table %s exists in schema %s", table, dbschemaBackup)
			}
		}
	})

	t.Run("RemoveBackup", func(t *testing.T) {
		ts.deployOsm(t)
		ts.removeBackupOsm(t)
		for _, table := range tables {
			if ts.tableExists(t, dbschemaBackup, table) {
				t.Fatalf("table %s exists in schema %s", table, dbschemaBackup)
			}
		}
	})
}
