package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/oqlgen/pkg/oql"
	"github.com/NERVsystems/oqlgen/pkg/osm"
)

// ErrMissingResult indicates a summarize request without a result payload.
var ErrMissingResult = errors.New("result is required")

// ErrorResponse returns a plain error result.
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ErrorWithGuidance formats an error that carries recovery guidance.
// Validation and API errors both include guidance; anything else falls
// back to a plain error result.
func ErrorWithGuidance(err error) *mcp.CallToolResult {
	var valErr *oql.ValidationError
	if errors.As(err, &valErr) && valErr.Guidance != "" {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %s\n\nGuidance: %s", valErr.Message, valErr.Guidance))
	}

	var apiErr *osm.APIError
	if errors.As(err, &apiErr) && apiErr.Guidance != "" {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %s\n\nGuidance: %s", apiErr.Message, apiErr.Guidance))
	}

	return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err))
}
