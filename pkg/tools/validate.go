package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/oqlgen/pkg/monitoring"
	"github.com/NERVsystems/oqlgen/pkg/oql"
)

// ValidateQueryInput defines the input parameters for query validation
type ValidateQueryInput struct {
	Query      string    `json:"query"`
	Tags       []oql.Tag `json:"tags,omitempty"`
	SearchArea string    `json:"search_area,omitempty"`
}

// ValidateQueryOutput reports whether a query passed validation
type ValidateQueryOutput struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateQueryTool returns a tool definition for validating an Overpass QL query
func ValidateQueryTool() mcp.Tool {
	return mcp.NewTool("validate_query",
		mcp.WithDescription("Validate an Overpass QL query string. Checks structural syntax, and optionally the tags and search area it was built from. Parameters: query (string), tags (optional array of {key, value}), search_area (optional string)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The Overpass QL query string to validate"),
		),
		mcp.WithArray("tags",
			mcp.Description("OSM tags the query filters on, as objects with key and value fields"),
		),
		mcp.WithString("search_area",
			mcp.Description("Area name the query searches within"),
		),
	)
}

// HandleValidateQuery implements query validation
func HandleValidateQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("validate_query", func(ctx context.Context, input ValidateQueryInput, logger *slog.Logger) (interface{}, error) {
		_, val, _ := pipeline()

		q := &oql.Query{
			QueryString: input.Query,
			Tags:        input.Tags,
			SearchArea:  input.SearchArea,
		}

		warnings := val.ValidateQuery(ctx, q)
		monitoring.RecordValidationWarnings("query", len(warnings))

		logger.Info("validated query", "valid", len(warnings) == 0, "warnings", len(warnings))

		return ValidateQueryOutput{
			Valid:    len(warnings) == 0,
			Warnings: warnings,
		}, nil
	})(ctx, req)
}

// ValidatePromptInput defines the input parameters for prompt validation
type ValidatePromptInput struct {
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
}

// ValidatePromptOutput reports whether a prompt can produce a query
type ValidatePromptOutput struct {
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
	Guidance string `json:"guidance,omitempty"`
}

// ValidatePromptTool returns a tool definition for checking a prompt before generation
func ValidatePromptTool() mcp.Tool {
	return mcp.NewTool("validate_prompt",
		mcp.WithDescription("Check whether a natural language prompt and output format can produce a query. Parameters: prompt (string), format (string: json, xml, or geojson)"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Natural language prompt to check"),
		),
		mcp.WithString("format",
			mcp.Description("Requested output format: json (default), xml, or geojson"),
		),
	)
}

// HandleValidatePrompt implements prompt validation
func HandleValidatePrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("validate_prompt", func(ctx context.Context, input ValidatePromptInput, logger *slog.Logger) (interface{}, error) {
		_, val, _ := pipeline()

		format := input.Format
		if format == "" {
			format = "json"
		}

		out := ValidatePromptOutput{Valid: true}
		if err := val.ValidatePrompt(input.Prompt, format); err != nil {
			out.Valid = false
			var valErr *oql.ValidationError
			if errors.As(err, &valErr) {
				out.Error = valErr.Message
				out.Guidance = valErr.Guidance
			} else {
				out.Error = err.Error()
			}
			monitoring.RecordValidationWarnings("prompt", 1)
		}

		logger.Info("validated prompt", "valid", out.Valid)
		return out, nil
	})(ctx, req)
}
