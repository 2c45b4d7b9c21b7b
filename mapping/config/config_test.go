package config

import (
	"testing"

	"gopkg.in/yaml.v2"
)

func TestReplacementsOrder(t *testing.T) {
	doc := `
streets:
  expected: [Street, Avenue]
  mapping:
    St.: Street
    Ave: Avenue
    St: Street
`
	rules := Rules{}
	if err := yaml.Unmarshal([]byte(doc), &rules); err != nil {
		t.Fatal(err)
	}
	want := []Replacement{{"St.", "Street"}, {"Ave", "Avenue"}, {"St", "Street"}}
	if len(rules.Streets.Mapping) != len(want) {
		t.Fatalf("unexpected mapping %v", rules.Streets.Mapping)
	}
	for i, r := range want {
		if rules.Streets.Mapping[i] != r {
			t.Errorf("%d: %v != %v", i, rules.Streets.Mapping[i], r)
		}
	}
}

func TestReplacementsErrors(t *testing.T) {
	for _, doc := range []string{
		"streets: {mapping: {St: [Street]}}",
		"streets: {mapping: {1: Street}}",
		"streets:\n  mapping:\n    St: Street\n    St: Road\n",
	} {
		rules := Rules{}
		if err := yaml.Unmarshal([]byte(doc), &rules); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestTagBindings(t *testing.T) {
	doc := `
tags:
  addr:postcode:
    normalizer: postcode
    elements: [node, way]
postcodes:
  unresolved: drop
`
	rules := Rules{}
	if err := yaml.Unmarshal([]byte(doc), &rules); err != nil {
		t.Fatal(err)
	}
	b := rules.Tags["addr:postcode"]
	if b == nil || b.Normalizer != "postcode" || len(b.Elements) != 2 {
		t.Fatalf("unexpected binding %#v", b)
	}
	if rules.Postcodes.Unresolved != "drop" {
		t.Error(rules.Postcodes)
	}
}
