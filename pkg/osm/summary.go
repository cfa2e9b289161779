package osm

import (
	"fmt"
	"sort"
)

// maxCommonTags caps the number of tag keys reported in a summary
const maxCommonTags = 10

// TagCount pairs a tag key with the number of elements carrying it.
type TagCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary condenses an Overpass result for human consumption.
type Summary struct {
	TotalElements int            `json:"total_elements"`
	ElementTypes  map[string]int `json:"element_types"`
	CommonTags    []TagCount     `json:"common_tags"`
	HasGeometry   bool           `json:"has_geometry"`
}

// Summarize computes element counts per type, the most common tag keys and
// whether any element carries geometry.
func Summarize(result *OverpassResult) *Summary {
	summary := &Summary{
		ElementTypes: make(map[string]int),
	}
	if result == nil {
		return summary
	}

	tagCounts := make(map[string]int)
	for _, elem := range result.Elements {
		summary.TotalElements++
		summary.ElementTypes[elem.Type]++
		if elem.HasGeometry() {
			summary.HasGeometry = true
		}
		for key := range elem.Tags {
			tagCounts[key]++
		}
	}

	summary.CommonTags = make([]TagCount, 0, len(tagCounts))
	for key, count := range tagCounts {
		summary.CommonTags = append(summary.CommonTags, TagCount{Key: key, Count: count})
	}
	// Sort by count descending, key ascending for a stable report.
	sort.Slice(summary.CommonTags, func(i, j int) bool {
		if summary.CommonTags[i].Count != summary.CommonTags[j].Count {
			return summary.CommonTags[i].Count > summary.CommonTags[j].Count
		}
		return summary.CommonTags[i].Key < summary.CommonTags[j].Key
	})
	if len(summary.CommonTags) > maxCommonTags {
		summary.CommonTags = summary.CommonTags[:maxCommonTags]
	}

	return summary
}

// FilterByTag returns the elements whose tags contain key=value. An empty
// value matches any element carrying the key.
func FilterByTag(result *OverpassResult, key, value string) []OverpassElement {
	if result == nil {
		return nil
	}
	var filtered []OverpassElement
	for _, elem := range result.Elements {
		v, ok := elem.Tags[key]
		if !ok {
			continue
		}
		if value == "" || v == value {
			filtered = append(filtered, elem)
		}
	}
	return filtered
}

// Comparison reports how closely two result sets match.
type Comparison struct {
	GeneratedCount int     `json:"generated_count"`
	ReferenceCount int     `json:"reference_count"`
	CountRatio     float64 `json:"count_ratio"`
	Similarity     float64 `json:"similarity"`
	Jaccard        float64 `json:"jaccard_similarity"`
	CommonElements int     `json:"common_elements"`
	Similar        bool    `json:"is_similar"`
}

// CompareResults measures the overlap between a generated query's results
// and a reference query's results: a count-based similarity plus a Jaccard
// index over the type/id element sets.
func CompareResults(generated, reference *OverpassResult, threshold float64) *Comparison {
	cmp := &Comparison{}
	if generated != nil {
		cmp.GeneratedCount = len(generated.Elements)
	}
	if reference != nil {
		cmp.ReferenceCount = len(reference.Elements)
	}

	if cmp.ReferenceCount > 0 {
		cmp.CountRatio = float64(cmp.GeneratedCount) / float64(cmp.ReferenceCount)
	}

	switch {
	case cmp.ReferenceCount == 0 && cmp.GeneratedCount == 0:
		cmp.Similarity = 1.0
	case cmp.ReferenceCount == 0 || cmp.GeneratedCount == 0:
		cmp.Similarity = 0.0
	default:
		minCount := cmp.GeneratedCount
		maxCount := cmp.ReferenceCount
		if minCount > maxCount {
			minCount, maxCount = maxCount, minCount
		}
		cmp.Similarity = float64(minCount) / float64(maxCount)
	}

	genIDs := elementIDSet(generated)
	refIDs := elementIDSet(reference)

	if len(genIDs) > 0 || len(refIDs) > 0 {
		common := 0
		for id := range genIDs {
			if _, ok := refIDs[id]; ok {
				common++
			}
		}
		union := len(genIDs) + len(refIDs) - common
		cmp.CommonElements = common
		if union > 0 {
			cmp.Jaccard = float64(common) / float64(union)
		} else {
			cmp.Jaccard = 1.0
		}
	} else {
		cmp.Jaccard = 1.0
	}

	cmp.Similar = cmp.Similarity >= threshold
	return cmp
}

// elementIDSet builds a type_id identity set for a result.
func elementIDSet(result *OverpassResult) map[string]struct{} {
	ids := make(map[string]struct{})
	if result == nil {
		return ids
	}
	for _, elem := range result.Elements {
		ids[fmt.Sprintf("%s_%d", elem.Type, elem.ID)] = struct{}{}
	}
	return ids
}
