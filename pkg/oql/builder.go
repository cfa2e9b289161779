package oql

import (
	"fmt"
	"strings"
)

// DefaultQueryTemplate is the overall query shape: output directive, area
// definition, grouped element filters, then the recursion and output
// statements Overpass needs to return full geometry.
const DefaultQueryTemplate = "[out:%s];\n%s\n(\n%s\n);\nout body;\n>;\nout skel qt;"

// QueryBuilder assembles an Overpass QL query string from a parsed prompt.
// The builder never executes the query or touches the network.
type QueryBuilder struct {
	template string
}

// NewQueryBuilder creates a builder using the default query template.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{template: DefaultQueryTemplate}
}

// WithTemplate overrides the query template. The template must carry verbs
// for the output format, area definition and query body, in that order.
func (b *QueryBuilder) WithTemplate(template string) *QueryBuilder {
	b.template = template
	return b
}

// Build produces the final query. When the prompt names a location, an
// area[name=...] statement is prepended and every filter line references
// the search area; otherwise the filters apply globally, which is the
// caller's responsibility to avoid on broad queries.
func (b *QueryBuilder) Build(parsed *ParsedPrompt, format OutputFormat) (*Query, error) {
	constraint, err := NewQueryConstraint(parsed.Tags, parsed.Elements)
	if err != nil {
		return nil, err
	}

	var areaDef, areaRef string
	if parsed.Location != "" {
		areaDef = fmt.Sprintf("area[name=\"%s\"]->.searchArea;", EscapeAreaName(parsed.Location))
		areaRef = "(area.searchArea)"
	}

	lines := make([]string, 0, len(constraint.Tags)*len(constraint.ElementTypes))
	for _, tag := range constraint.Tags {
		for _, elem := range constraint.ElementTypes {
			lines = append(lines, fmt.Sprintf("  %s[\"%s\"=\"%s\"]%s;", elem, tag.Key, tag.Value, areaRef))
		}
	}

	queryString := fmt.Sprintf(b.template, format, areaDef, strings.Join(lines, "\n"))

	return NewQuery(format, parsed.Location, constraint.Tags, constraint.ElementTypes, queryString)
}

// EscapeAreaName backslash-escapes double quotes so the area name can be
// interpolated into an area[name="..."] statement. No other sanitization
// is performed; adversarial location text is an accepted open risk.
func EscapeAreaName(name string) string {
	return strings.ReplaceAll(name, `"`, `\"`)
}
