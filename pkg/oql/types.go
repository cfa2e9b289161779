// Package oql translates natural language prompts into Overpass QL queries.
package oql

import (
	"fmt"
	"regexp"
	"strings"
)

// Limits applied when constructing value objects. These mirror the limits
// enforced by the OSM editing API.
const (
	// MinPromptLength is the minimum length of a prompt after trimming
	MinPromptLength = 5

	// MaxTagKeyLength is the maximum length of an OSM tag key
	MaxTagKeyLength = 255

	// MaxTagValueLength is the maximum length of an OSM tag value
	MaxTagValueLength = 255
)

// tagKeyPattern matches the characters permitted in an OSM tag key
var tagKeyPattern = regexp.MustCompile(`^[A-Za-z0-9:_-]+$`)

// ElementType identifies an OSM element kind: node, way or relation.
type ElementType string

// Supported element types
const (
	ElementNode     ElementType = "node"
	ElementWay      ElementType = "way"
	ElementRelation ElementType = "relation"
)

// AllElementTypes returns the full set of element types in canonical order.
func AllElementTypes() []ElementType {
	return []ElementType{ElementNode, ElementWay, ElementRelation}
}

// Valid reports whether e is one of node, way or relation.
func (e ElementType) Valid() bool {
	switch e {
	case ElementNode, ElementWay, ElementRelation:
		return true
	}
	return false
}

// OutputFormat is the Overpass output format requested in [out:<format>].
type OutputFormat string

// Supported output formats
const (
	FormatJSON    OutputFormat = "json"
	FormatXML     OutputFormat = "xml"
	FormatGeoJSON OutputFormat = "geojson"
)

// ParseOutputFormat normalizes and validates an output format string.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatXML, FormatGeoJSON:
		return f, nil
	default:
		return "", NewError(ErrUnsupportedFormat,
			fmt.Sprintf("output format must be one of json, xml, geojson, got %q", s)).
			WithGuidance("Specify one of the supported output formats")
	}
}

// Tag is an OSM key/value pair describing a map feature, e.g. amenity=cafe.
// Construct tags with NewTag so the key and value invariants hold; tags are
// value objects and must not be mutated after construction.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewTag validates and constructs an OSM tag.
func NewTag(key, value string) (Tag, error) {
	if key == "" || len(key) > MaxTagKeyLength {
		return Tag{}, NewError(ErrInvalidTag,
			fmt.Sprintf("OSM key must not be empty and at most %d characters", MaxTagKeyLength))
	}
	if !tagKeyPattern.MatchString(key) {
		return Tag{}, NewError(ErrInvalidTag,
			fmt.Sprintf("OSM key %q contains invalid characters", key)).
			WithGuidance("Keys may contain letters, digits, colons, underscores and hyphens")
	}
	if len(value) > MaxTagValueLength {
		return Tag{}, NewError(ErrInvalidTag,
			fmt.Sprintf("OSM value must be at most %d characters", MaxTagValueLength))
	}
	return Tag{Key: key, Value: value}, nil
}

// String returns the tag in key=value form.
func (t Tag) String() string {
	return t.Key + "=" + t.Value
}

// BoundingBox is a geographic rectangle in south,west,north,east order, the
// order Overpass expects in a bbox filter.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// NewBoundingBox validates and constructs a bounding box.
func NewBoundingBox(south, west, north, east float64) (BoundingBox, error) {
	if south >= north {
		return BoundingBox{}, NewError(ErrInvalidBoundingBox,
			fmt.Sprintf("south latitude must be less than north latitude, got south=%f north=%f", south, north))
	}
	if west >= east {
		return BoundingBox{}, NewError(ErrInvalidBoundingBox,
			fmt.Sprintf("west longitude must be less than east longitude, got west=%f east=%f", west, east))
	}
	if south < -90 || south > 90 || north < -90 || north > 90 {
		return BoundingBox{}, NewError(ErrInvalidBoundingBox,
			"latitude must be between -90 and 90").
			WithGuidance("Ensure latitudes are in decimal degrees")
	}
	if west < -180 || west > 180 || east < -180 || east > 180 {
		return BoundingBox{}, NewError(ErrInvalidBoundingBox,
			"longitude must be between -180 and 180").
			WithGuidance("Ensure longitudes are in decimal degrees")
	}
	return BoundingBox{South: south, West: west, North: north, East: east}, nil
}

// geoFilterKind discriminates the GeoFilter variants.
type geoFilterKind int

const (
	geoFilterNone geoFilterKind = iota
	geoFilterArea
	geoFilterBBox
	geoFilterPolygon
)

// GeoFilter constrains a query to a geographic region. It is a tagged union:
// exactly one of area name, bounding box or polygon is set. Use the
// AreaFilter, BBoxFilter and PolygonFilter constructors.
type GeoFilter struct {
	kind    geoFilterKind
	area    string
	bbox    BoundingBox
	polygon string
}

// AreaFilter constructs a filter scoped to a named area.
func AreaFilter(name string) (GeoFilter, error) {
	if name == "" {
		return GeoFilter{}, NewError(ErrInvalidGeoFilter, "area name must not be empty")
	}
	return GeoFilter{kind: geoFilterArea, area: name}, nil
}

// BBoxFilter constructs a filter scoped to a bounding box.
func BBoxFilter(b BoundingBox) GeoFilter {
	return GeoFilter{kind: geoFilterBBox, bbox: b}
}

// PolygonFilter constructs a filter scoped to a lat-lon polygon expression.
func PolygonFilter(poly string) (GeoFilter, error) {
	if poly == "" {
		return GeoFilter{}, NewError(ErrInvalidGeoFilter, "polygon must not be empty")
	}
	return GeoFilter{kind: geoFilterPolygon, polygon: poly}, nil
}

// NewGeoFilter constructs a filter from decoded input where all three
// variants arrive as optional fields. Exactly one must be populated.
func NewGeoFilter(areaName string, bbox *BoundingBox, polygon string) (GeoFilter, error) {
	provided := 0
	if areaName != "" {
		provided++
	}
	if bbox != nil {
		provided++
	}
	if polygon != "" {
		provided++
	}
	if provided == 0 {
		return GeoFilter{}, NewError(ErrInvalidGeoFilter,
			"at least one geographic filter must be provided")
	}
	if provided > 1 {
		return GeoFilter{}, NewError(ErrInvalidGeoFilter,
			"only one geographic filter can be used at a time")
	}
	switch {
	case areaName != "":
		return AreaFilter(areaName)
	case bbox != nil:
		return BBoxFilter(*bbox), nil
	default:
		return PolygonFilter(polygon)
	}
}

// AreaName returns the area name variant, if set.
func (g GeoFilter) AreaName() (string, bool) {
	return g.area, g.kind == geoFilterArea
}

// BBox returns the bounding box variant, if set.
func (g GeoFilter) BBox() (BoundingBox, bool) {
	return g.bbox, g.kind == geoFilterBBox
}

// Polygon returns the polygon variant, if set.
func (g GeoFilter) Polygon() (string, bool) {
	return g.polygon, g.kind == geoFilterPolygon
}

// ParsedPrompt is the parser's output: the intent extracted from free text.
// It is transient and consumed immediately by the query builder.
type ParsedPrompt struct {
	Elements   []ElementType
	Tags       []Tag
	Location   string // empty when the prompt names no location
	AreaFilter *GeoFilter
}

// QueryConstraint groups the tag filters and element types a query applies.
type QueryConstraint struct {
	Tags         []Tag
	ElementTypes []ElementType
}

// NewQueryConstraint validates and constructs a query constraint.
func NewQueryConstraint(tags []Tag, elements []ElementType) (QueryConstraint, error) {
	if len(tags) == 0 {
		return QueryConstraint{}, NewError(ErrEmptyTagSet, "at least one tag is required")
	}
	for _, e := range elements {
		if !e.Valid() {
			return QueryConstraint{}, NewError(ErrInvalidElementType,
				fmt.Sprintf("element type must be one of node, way, relation, got %q", e))
		}
	}
	return QueryConstraint{Tags: tags, ElementTypes: elements}, nil
}

// Query is the generated Overpass QL query together with the structured
// intent it was built from. Created once per generation call; callers pass
// it to validators or an execution collaborator.
type Query struct {
	OutputFormat OutputFormat  `json:"output_format"`
	SearchArea   string        `json:"search_area,omitempty"`
	BoundingBox  *[4]float64   `json:"bounding_box,omitempty"`
	Tags         []Tag         `json:"tags"`
	Elements     []ElementType `json:"elements"`
	QueryString  string        `json:"query_string"`
}

// NewQuery validates and constructs a query artifact.
func NewQuery(format OutputFormat, searchArea string, tags []Tag, elements []ElementType, queryString string) (*Query, error) {
	if len(tags) == 0 {
		return nil, NewError(ErrEmptyTagSet, "query must include at least one tag filter")
	}
	for _, e := range elements {
		if !e.Valid() {
			return nil, NewError(ErrInvalidElementType,
				fmt.Sprintf("element type must be one of node, way, relation, got %q", e))
		}
	}
	return &Query{
		OutputFormat: format,
		SearchArea:   searchArea,
		Tags:         tags,
		Elements:     elements,
		QueryString:  queryString,
	}, nil
}
