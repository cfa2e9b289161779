package oql

import (
	"regexp"
	"strings"
)

// Prompt patterns, tried in order. The primary pattern requires a leading
// verb; the generic pattern accepts any "<feature> in <location>" phrasing.
var (
	primaryPattern = regexp.MustCompile(`(?i)(?:find|show me|get|locate|all)\s+(?:all\s+)?(.+?)\s+(?:in|within|near|around)\s+(.+)`)
	genericPattern = regexp.MustCompile(`(?i)(.+?)\s+(?:in|within|near|around)\s+(.+)`)
)

// Parser extracts feature tags and a location from free-text prompts using
// a fixed keyword table. It is a pure function over its configuration: no
// network lookups, no state.
type Parser struct {
	keywords []KeywordMapping
}

// NewParser creates a parser with the default keyword table.
func NewParser() *Parser {
	return &Parser{keywords: DefaultKeywordTable()}
}

// NewParserWithKeywords creates a parser with a caller-supplied keyword
// table. The table's order is the tie-break order for substring matches.
func NewParserWithKeywords(table []KeywordMapping) *Parser {
	return &Parser{keywords: table}
}

// Parse extracts intent from a prompt. Unmatched input degrades to a
// name=<prompt> fallback tag rather than failing; the returned error is
// reserved for fallback tags that violate the tag invariants (e.g. an
// empty feature phrase). Element types always default to the full
// node/way/relation set; the parser never narrows them.
func (p *Parser) Parse(prompt string) (*ParsedPrompt, error) {
	parsed := &ParsedPrompt{
		Elements: AllElementTypes(),
	}

	match := primaryPattern.FindStringSubmatch(prompt)
	if match == nil {
		match = genericPattern.FindStringSubmatch(prompt)
	}

	if match != nil {
		feature := strings.TrimSpace(match[1])
		parsed.Location = strings.TrimSpace(match[2])

		tag, ok := p.lookupKeyword(strings.ToLower(feature))
		if !ok {
			// No mapping known for this feature: fall back to a name match.
			var err error
			tag, err = NewTag("name", strings.ToLower(strings.ReplaceAll(feature, " ", "_")))
			if err != nil {
				return nil, err
			}
		}
		parsed.Tags = []Tag{tag}
		return parsed, nil
	}

	// No location-bearing pattern matched; scan the whole prompt.
	tag, ok := p.lookupKeyword(strings.ToLower(prompt))
	if !ok {
		var err error
		tag, err = NewTag("name", strings.ToLower(strings.TrimSpace(prompt)))
		if err != nil {
			return nil, err
		}
	}
	parsed.Tags = []Tag{tag}
	return parsed, nil
}

// lookupKeyword returns the tag for the first table entry whose keyword is
// a substring of the lowercased feature text. First match wins.
func (p *Parser) lookupKeyword(feature string) (Tag, bool) {
	for _, m := range p.keywords {
		if strings.Contains(feature, m.Keyword) {
			return Tag{Key: m.Key, Value: m.Value}, true
		}
	}
	return Tag{}, false
}
