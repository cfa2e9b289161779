package validate

import "strings"

// SyntaxValidator performs structural checks on an Overpass QL query
// string. The checks are purely lexical; full grammar coverage is out of
// scope.
type SyntaxValidator struct{}

// ValidateSyntax checks the query structure. The first failing check
// short-circuits with its specific message; is_valid is true only when
// every check passes.
func (SyntaxValidator) ValidateSyntax(queryString string) (bool, string) {
	if !strings.Contains(queryString, "[out:") {
		return false, "query must specify output format with [out:]"
	}

	if !strings.Contains(queryString, "out") {
		return false, "query must specify output command (out body/qt/skel)"
	}

	if strings.Count(queryString, "(") != strings.Count(queryString, ")") {
		return false, "mismatched parentheses in query"
	}

	if strings.Count(queryString, "[") != strings.Count(queryString, "]") {
		return false, "mismatched brackets in query"
	}

	if !strings.HasSuffix(strings.TrimSpace(queryString), ";") {
		return false, "query must end with semicolon"
	}

	lower := strings.ToLower(queryString)
	if !strings.Contains(lower, "node[") && !strings.Contains(lower, "way[") && !strings.Contains(lower, "relation[") {
		return false, "query should contain at least one element search (node, way, or relation)"
	}

	return true, ""
}
