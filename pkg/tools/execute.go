package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/oqlgen/pkg/osm"
)

// ExecuteQueryInput defines the input parameters for query execution
type ExecuteQueryInput struct {
	Query     string `json:"query"`
	Summarize bool   `json:"summarize,omitempty"`
}

// ExecuteQueryOutput carries the Overpass result, optionally summarized
type ExecuteQueryOutput struct {
	Result  *osm.OverpassResult `json:"result,omitempty"`
	Summary *osm.Summary        `json:"summary,omitempty"`
}

// ExecuteQueryTool returns a tool definition for running a query against the Overpass API
func ExecuteQueryTool() mcp.Tool {
	return mcp.NewTool("execute_query",
		mcp.WithDescription("Execute an Overpass QL query against the Overpass API and return the result. Parameters: query (string), summarize (boolean: return a summary instead of raw elements)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The Overpass QL query to execute"),
		),
		mcp.WithBoolean("summarize",
			mcp.Description("When true, return element counts and common tags instead of the full element list"),
		),
	)
}

// HandleExecuteQuery implements query execution against the Overpass API
func HandleExecuteQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("execute_query", func(ctx context.Context, input ExecuteQueryInput, logger *slog.Logger) (interface{}, error) {
		_, _, exec := pipeline()

		result, err := exec.Execute(ctx, input.Query)
		if err != nil {
			return nil, err
		}

		logger.Info("executed query", "elements", len(result.Elements))

		if input.Summarize {
			return ExecuteQueryOutput{Summary: osm.Summarize(result)}, nil
		}
		return ExecuteQueryOutput{Result: result}, nil
	})(ctx, req)
}

// SummarizeResultsInput defines the input parameters for result summarization
type SummarizeResultsInput struct {
	Result    *osm.OverpassResult `json:"result"`
	Reference *osm.OverpassResult `json:"reference,omitempty"`
	Threshold float64             `json:"threshold,omitempty"`
}

// SummarizeResultsOutput carries a summary and an optional comparison
type SummarizeResultsOutput struct {
	Summary    *osm.Summary    `json:"summary"`
	Comparison *osm.Comparison `json:"comparison,omitempty"`
}

// SummarizeResultsTool returns a tool definition for summarizing Overpass results
func SummarizeResultsTool() mcp.Tool {
	return mcp.NewTool("summarize_results",
		mcp.WithDescription("Summarize an Overpass API result: element counts by type, most common tags, geometry presence. Optionally compare against a reference result. Parameters: result (Overpass JSON object), reference (optional Overpass JSON object), threshold (optional similarity threshold, default 0.5)"),
		mcp.WithObject("result",
			mcp.Required(),
			mcp.Description("Overpass API JSON result to summarize"),
		),
		mcp.WithObject("reference",
			mcp.Description("Reference result to compare element overlap against"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Similarity threshold between 0 and 1 used for the comparison verdict"),
		),
	)
}

// HandleSummarizeResults implements result summarization and comparison
func HandleSummarizeResults(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("summarize_results", func(ctx context.Context, input SummarizeResultsInput, logger *slog.Logger) (interface{}, error) {
		if input.Result == nil {
			return nil, ErrMissingResult
		}

		out := SummarizeResultsOutput{Summary: osm.Summarize(input.Result)}

		if input.Reference != nil {
			threshold := input.Threshold
			if threshold == 0 {
				threshold = 0.5
			}
			out.Comparison = osm.CompareResults(input.Result, input.Reference, threshold)
		}

		logger.Info("summarized results", "elements", out.Summary.TotalElements)
		return out, nil
	})(ctx, req)
}
