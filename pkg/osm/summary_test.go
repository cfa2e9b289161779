package osm

import (
	"testing"
)

func sampleResult() *OverpassResult {
	return &OverpassResult{
		Elements: []OverpassElement{
			{Type: "node", ID: 1, Lat: 48.85, Lon: 2.35, Tags: map[string]string{"amenity": "cafe", "name": "A"}},
			{Type: "node", ID: 2, Lat: 48.86, Lon: 2.36, Tags: map[string]string{"amenity": "cafe"}},
			{Type: "way", ID: 3, Tags: map[string]string{"amenity": "cafe", "building": "yes"}},
			{Type: "relation", ID: 4},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResult())

	if s.TotalElements != 4 {
		t.Errorf("TotalElements = %d, want 4", s.TotalElements)
	}
	if s.ElementTypes["node"] != 2 || s.ElementTypes["way"] != 1 || s.ElementTypes["relation"] != 1 {
		t.Errorf("ElementTypes = %v", s.ElementTypes)
	}
	if !s.HasGeometry {
		t.Error("HasGeometry = false, want true (nodes carry lat/lon)")
	}

	if len(s.CommonTags) == 0 || s.CommonTags[0].Key != "amenity" || s.CommonTags[0].Count != 3 {
		t.Errorf("CommonTags = %v, want amenity first with count 3", s.CommonTags)
	}
	// Equal counts tie-break alphabetically.
	if len(s.CommonTags) == 3 && s.CommonTags[1].Key != "building" {
		t.Errorf("CommonTags = %v, want building before name on equal count", s.CommonTags)
	}
}

func TestSummarizeNil(t *testing.T) {
	s := Summarize(nil)
	if s.TotalElements != 0 || s.HasGeometry {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}

func TestFilterByTag(t *testing.T) {
	result := sampleResult()

	if got := FilterByTag(result, "amenity", "cafe"); len(got) != 3 {
		t.Errorf("amenity=cafe matched %d elements, want 3", len(got))
	}
	if got := FilterByTag(result, "building", ""); len(got) != 1 {
		t.Errorf("key presence filter matched %d elements, want 1", len(got))
	}
	if got := FilterByTag(result, "amenity", "parking"); len(got) != 0 {
		t.Errorf("non-matching value matched %d elements, want 0", len(got))
	}
}

func TestCompareResults(t *testing.T) {
	generated := &OverpassResult{Elements: []OverpassElement{
		{Type: "node", ID: 1},
		{Type: "node", ID: 2},
		{Type: "way", ID: 3},
	}}
	reference := &OverpassResult{Elements: []OverpassElement{
		{Type: "node", ID: 1},
		{Type: "node", ID: 2},
		{Type: "way", ID: 9},
		{Type: "way", ID: 10},
	}}

	cmp := CompareResults(generated, reference, 0.5)

	if cmp.GeneratedCount != 3 || cmp.ReferenceCount != 4 {
		t.Errorf("counts = %d/%d", cmp.GeneratedCount, cmp.ReferenceCount)
	}
	if cmp.CommonElements != 2 {
		t.Errorf("CommonElements = %d, want 2", cmp.CommonElements)
	}
	// Jaccard: 2 common over union of 5.
	if cmp.Jaccard < 0.39 || cmp.Jaccard > 0.41 {
		t.Errorf("Jaccard = %f, want 0.4", cmp.Jaccard)
	}
	// Similarity: min/max counts = 3/4.
	if cmp.Similarity != 0.75 {
		t.Errorf("Similarity = %f, want 0.75", cmp.Similarity)
	}
	if !cmp.Similar {
		t.Error("Similar = false at threshold 0.5")
	}
}

func TestCompareResultsEmpty(t *testing.T) {
	cmp := CompareResults(nil, nil, 0.5)
	if cmp.Similarity != 1.0 || cmp.Jaccard != 1.0 {
		t.Errorf("empty comparison = %+v, want identical", cmp)
	}
	if !cmp.Similar {
		t.Error("empty sets must compare as similar")
	}

	cmp = CompareResults(sampleResult(), nil, 0.5)
	if cmp.Similarity != 0.0 {
		t.Errorf("one-sided Similarity = %f, want 0", cmp.Similarity)
	}
	if cmp.Similar {
		t.Error("one-sided comparison reported similar")
	}
}

func TestHasGeometry(t *testing.T) {
	tests := []struct {
		name string
		elem OverpassElement
		want bool
	}{
		{name: "node with coordinates", elem: OverpassElement{Type: "node", Lat: 1, Lon: 2}, want: true},
		{name: "way with center", elem: OverpassElement{Type: "way", Center: &struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		}{Lat: 1, Lon: 2}}, want: true},
		{name: "bare relation", elem: OverpassElement{Type: "relation"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.elem.HasGeometry(); got != tt.want {
				t.Errorf("HasGeometry = %v, want %v", got, tt.want)
			}
		})
	}
}
