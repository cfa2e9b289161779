package tools

import (
	"context"
	"strings"
	"testing"
)

func TestHandleGenerateQuery(t *testing.T) {
	useOfflinePipeline()

	tests := []struct {
		name        string
		args        map[string]any
		expectError bool
		wantInQuery string
		wantArea    string
	}{
		{
			name:        "cafe prompt",
			args:        map[string]any{"prompt": "Find all cafes in Paris"},
			wantInQuery: `node["amenity"="cafe"](area.searchArea);`,
			wantArea:    "Paris",
		},
		{
			name:        "explicit xml format",
			args:        map[string]any{"prompt": "Show me restaurants in Berlin", "format": "xml"},
			wantInQuery: "[out:xml];",
			wantArea:    "Berlin",
		},
		{
			name:        "short prompt",
			args:        map[string]any{"prompt": "abc"},
			expectError: true,
		},
		{
			name:        "unsupported format",
			args:        map[string]any{"prompt": "Find all cafes in Paris", "format": "csv"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleGenerateQuery(context.Background(), callRequest("generate_query", tt.args))
			if err != nil {
				t.Fatalf("handler returned protocol error: %v", err)
			}

			if tt.expectError {
				if !IsErrorResult(result) {
					t.Fatal("expected an error result")
				}
				return
			}
			AssertSuccessResult(t, result, "generation failed")

			var out GenerateQueryOutput
			if err := ParseResultJSON(result, &out); err != nil {
				t.Fatalf("failed to parse result: %v", err)
			}
			if !strings.Contains(out.Query, tt.wantInQuery) {
				t.Errorf("query missing %q:\n%s", tt.wantInQuery, out.Query)
			}
			if out.SearchArea != tt.wantArea {
				t.Errorf("search_area = %q, want %q", out.SearchArea, tt.wantArea)
			}
			if len(out.Elements) != 3 {
				t.Errorf("elements = %v, want node/way/relation", out.Elements)
			}
		})
	}
}

func TestHandleGenerateQueryReportsWarnings(t *testing.T) {
	useOfflinePipeline()

	result, err := HandleGenerateQuery(context.Background(),
		callRequest("generate_query", map[string]any{"prompt": "Find all velodromes in Ghent"}))
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	AssertSuccessResult(t, result, "generation failed")

	var out GenerateQueryOutput
	if err := ParseResultJSON(result, &out); err != nil {
		t.Fatal(err)
	}
	// name=velodromes is not in the static tag table, but the static
	// validator accepts unknown keys, so no warning is expected here and
	// the query must still be produced.
	if out.Query == "" {
		t.Error("no query produced for unmapped feature")
	}
	if len(out.Tags) != 1 || out.Tags[0].Key != "name" {
		t.Errorf("tags = %v, want name fallback", out.Tags)
	}
}

func TestHandleValidatePrompt(t *testing.T) {
	useOfflinePipeline()

	result, err := HandleValidatePrompt(context.Background(),
		callRequest("validate_prompt", map[string]any{"prompt": "cafe"}))
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	AssertSuccessResult(t, result, "validation handler failed")

	var out ValidatePromptOutput
	if err := ParseResultJSON(result, &out); err != nil {
		t.Fatal(err)
	}
	if out.Valid {
		t.Error("four character prompt reported valid")
	}
	if out.Guidance == "" {
		t.Error("invalid prompt carries no guidance")
	}
}

func TestHandleValidateQuery(t *testing.T) {
	useOfflinePipeline()

	tests := []struct {
		name      string
		query     string
		wantValid bool
	}{
		{
			name:      "valid query",
			query:     "[out:json];\nnode[\"amenity\"=\"cafe\"];\nout body;",
			wantValid: true,
		},
		{
			name:      "missing semicolon",
			query:     "[out:json];\nnode[\"amenity\"=\"cafe\"];\nout body",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleValidateQuery(context.Background(),
				callRequest("validate_query", map[string]any{"query": tt.query}))
			if err != nil {
				t.Fatalf("handler returned protocol error: %v", err)
			}
			AssertSuccessResult(t, result, "validation handler failed")

			var out ValidateQueryOutput
			if err := ParseResultJSON(result, &out); err != nil {
				t.Fatal(err)
			}
			if out.Valid != tt.wantValid {
				t.Errorf("valid = %v (warnings %v), want %v", out.Valid, out.Warnings, tt.wantValid)
			}
		})
	}
}

func TestHandleSummarizeResults(t *testing.T) {
	result, err := HandleSummarizeResults(context.Background(),
		callRequest("summarize_results", map[string]any{
			"result": map[string]any{
				"elements": []map[string]any{
					{"type": "node", "id": 1, "lat": 1.0, "lon": 2.0, "tags": map[string]string{"amenity": "cafe"}},
					{"type": "node", "id": 2, "lat": 1.1, "lon": 2.1, "tags": map[string]string{"amenity": "cafe"}},
				},
			},
		}))
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	AssertSuccessResult(t, result, "summarize handler failed")

	var out SummarizeResultsOutput
	if err := ParseResultJSON(result, &out); err != nil {
		t.Fatal(err)
	}
	if out.Summary == nil || out.Summary.TotalElements != 2 {
		t.Errorf("summary = %+v, want 2 elements", out.Summary)
	}
	if out.Comparison != nil {
		t.Error("comparison present without a reference")
	}
}

func TestRegistryToolNames(t *testing.T) {
	r := NewRegistry(testLogger())
	names := r.GetToolNames()

	want := map[string]bool{
		"get_version":       false,
		"generate_query":    false,
		"validate_prompt":   false,
		"validate_query":    false,
		"execute_query":     false,
		"summarize_results": false,
	}
	for _, name := range names {
		if _, ok := want[name]; !ok {
			t.Errorf("unexpected tool %q", name)
			continue
		}
		want[name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not registered", name)
		}
	}
}
