package oql

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		prompt       string
		wantKey      string
		wantValue    string
		wantLocation string
	}{
		{
			name:         "find cafes in city",
			prompt:       "Find all cafes in Paris",
			wantKey:      "amenity",
			wantValue:    "cafe",
			wantLocation: "Paris",
		},
		{
			name:         "show me restaurants",
			prompt:       "Show me restaurants in Berlin",
			wantKey:      "amenity",
			wantValue:    "restaurant",
			wantLocation: "Berlin",
		},
		{
			name:         "parking beats park on substring order",
			prompt:       "find bicycle parking in Berlin",
			wantKey:      "amenity",
			wantValue:    "parking",
			wantLocation: "Berlin",
		},
		{
			name:         "playground beats park",
			prompt:       "find playgrounds in Munich",
			wantKey:      "leisure",
			wantValue:    "playground",
			wantLocation: "Munich",
		},
		{
			name:         "generic pattern without verb",
			prompt:       "coffee shops in Vienna",
			wantKey:      "amenity",
			wantValue:    "cafe",
			wantLocation: "Vienna",
		},
		{
			name:         "near keyword",
			prompt:       "get hospitals near Lyon",
			wantKey:      "amenity",
			wantValue:    "hospital",
			wantLocation: "Lyon",
		},
		{
			name:         "unknown feature falls back to name tag",
			prompt:       "find flux capacitors in Hill Valley",
			wantKey:      "name",
			wantValue:    "flux_capacitors",
			wantLocation: "Hill Valley",
		},
		{
			name:         "no location keeps location empty",
			prompt:       "all the supermarkets",
			wantKey:      "shop",
			wantValue:    "supermarket",
			wantLocation: "",
		},
		{
			name:         "case insensitive keywords",
			prompt:       "FIND ALL MUSEUMS IN ROME",
			wantKey:      "tourism",
			wantValue:    "museum",
			wantLocation: "ROME",
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := p.Parse(tt.prompt)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.prompt, err)
			}
			if len(parsed.Tags) != 1 {
				t.Fatalf("Parse(%q) returned %d tags, want 1", tt.prompt, len(parsed.Tags))
			}
			tag := parsed.Tags[0]
			if tag.Key != tt.wantKey || tag.Value != tt.wantValue {
				t.Errorf("Parse(%q) tag = %s, want %s=%s", tt.prompt, tag, tt.wantKey, tt.wantValue)
			}
			if parsed.Location != tt.wantLocation {
				t.Errorf("Parse(%q) location = %q, want %q", tt.prompt, parsed.Location, tt.wantLocation)
			}
		})
	}
}

func TestParseAlwaysReturnsAllElementTypes(t *testing.T) {
	p := NewParser()
	for _, prompt := range []string{
		"Find all cafes in Paris",
		"something unrecognizable",
	} {
		parsed, err := p.Parse(prompt)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", prompt, err)
		}
		if len(parsed.Elements) != 3 {
			t.Fatalf("Parse(%q) returned %d element types, want 3", prompt, len(parsed.Elements))
		}
		want := []ElementType{ElementNode, ElementWay, ElementRelation}
		for i, e := range parsed.Elements {
			if e != want[i] {
				t.Errorf("element[%d] = %s, want %s", i, e, want[i])
			}
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	p := NewParser()
	first, err := p.Parse("Find all cafes in Paris")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := p.Parse("Find all cafes in Paris")
		if err != nil {
			t.Fatal(err)
		}
		if again.Tags[0] != first.Tags[0] || again.Location != first.Location {
			t.Fatalf("iteration %d produced %v/%q, want %v/%q",
				i, again.Tags[0], again.Location, first.Tags[0], first.Location)
		}
	}
}

func TestParseWithCustomKeywords(t *testing.T) {
	table := []KeywordMapping{
		{"dojo", "amenity", "dojo"},
	}
	p := NewParserWithKeywords(table)

	parsed, err := p.Parse("find dojos in Kyoto")
	if err != nil {
		t.Fatal(err)
	}
	if got := parsed.Tags[0]; got.Key != "amenity" || got.Value != "dojo" {
		t.Errorf("tag = %s, want amenity=dojo", got)
	}
}
