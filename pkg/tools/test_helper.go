package tools

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/oqlgen/pkg/oql"
	"github.com/NERVsystems/oqlgen/pkg/oql/validate"
	"github.com/NERVsystems/oqlgen/pkg/osm"
)

// useOfflinePipeline swaps the shared pipeline for one backed by a static
// tag table so tests never touch the network.
func useOfflinePipeline() {
	pipelineOnce.Do(func() {})

	cfg := validate.DefaultConfig()
	validator = validate.NewWithTagValidator(cfg, validate.NewStaticTagValidator(map[string][]string{
		"amenity": {"cafe", "restaurant", "parking", "school"},
		"leisure": {"park", "playground"},
		"tourism": {"hotel", "museum"},
	}))
	generator = oql.NewGenerator().WithTagValidator(validator.TagValidator())
	executor = osm.NewExecutor()
}

// testLogger returns the logger used by tool tests.
func testLogger() *slog.Logger {
	return slog.Default()
}

// callRequest builds a CallToolRequest with the given arguments.
func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// IsErrorResult checks if a CallToolResult represents an error
func IsErrorResult(result *mcp.CallToolResult) bool {
	if result == nil {
		return false
	}
	return result.IsError
}

// AssertSuccessResult fails the test when the result is an error result.
func AssertSuccessResult(t *testing.T, result *mcp.CallToolResult, message string) {
	t.Helper()
	if IsErrorResult(result) {
		var errorText string
		for _, content := range result.Content {
			if text, ok := content.(mcp.TextContent); ok {
				errorText = text.Text
				break
			}
		}
		t.Errorf("%s. Got error: %s", message, errorText)
	}
}

// ParseResultJSON parses the JSON content from a CallToolResult
func ParseResultJSON(result *mcp.CallToolResult, out interface{}) error {
	var content string
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			content = text.Text
			break
		}
	}
	return json.Unmarshal([]byte(content), out)
}
