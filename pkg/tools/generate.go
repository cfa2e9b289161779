package tools

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/oqlgen/pkg/monitoring"
	"github.com/NERVsystems/oqlgen/pkg/oql"
	"github.com/NERVsystems/oqlgen/pkg/oql/validate"
	"github.com/NERVsystems/oqlgen/pkg/osm"
)

// Shared pipeline instances. Tools are stateless apart from these; the
// tag validation cache and rate limiters live behind them.
var (
	pipelineOnce sync.Once
	generator    *oql.Generator
	validator    *validate.Validator
	executor     *osm.Executor
)

func pipeline() (*oql.Generator, *validate.Validator, *osm.Executor) {
	pipelineOnce.Do(func() {
		validator = validate.New(validate.DefaultConfig())
		generator = oql.NewGenerator().WithTagValidator(validator.TagValidator())
		executor = osm.NewExecutor()
	})
	return generator, validator, executor
}

// GenerateQueryInput defines the input parameters for query generation
type GenerateQueryInput struct {
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
}

// GenerateQueryOutput defines the generated query and its metadata
type GenerateQueryOutput struct {
	Query      string    `json:"query"`
	Format     string    `json:"format"`
	SearchArea string    `json:"search_area,omitempty"`
	Tags       []oql.Tag `json:"tags"`
	Elements   []string  `json:"elements"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// GenerateQueryTool returns a tool definition for generating Overpass QL from natural language
func GenerateQueryTool() mcp.Tool {
	return mcp.NewTool("generate_query",
		mcp.WithDescription("Generate an Overpass QL query from a natural language prompt. Parameters: prompt (string, e.g. 'find cafes in Paris'), format (string: json, xml, or geojson; defaults to json)"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Natural language description of what to find and where, e.g. 'find all restaurants in Berlin'"),
		),
		mcp.WithString("format",
			mcp.Description("Output format for the generated query: json (default), xml, or geojson"),
		),
	)
}

// HandleGenerateQuery implements natural language to Overpass QL generation
func HandleGenerateQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("generate_query", func(ctx context.Context, input GenerateQueryInput, logger *slog.Logger) (interface{}, error) {
		gen, val, _ := pipeline()

		format := input.Format
		if format == "" {
			format = "json"
		}

		start := time.Now()
		query, err := gen.Generate(ctx, input.Prompt, format)
		monitoring.RecordGeneration(format, time.Since(start), err == nil)
		if err != nil {
			return nil, err
		}

		warnings := val.ValidateQuery(ctx, query)
		monitoring.RecordValidationWarnings("query", len(warnings))

		elements := make([]string, len(query.Elements))
		for i, elem := range query.Elements {
			elements[i] = string(elem)
		}

		logger.Info("generated query",
			"format", query.OutputFormat,
			"search_area", query.SearchArea,
			"tags", len(query.Tags),
			"warnings", len(warnings))

		return GenerateQueryOutput{
			Query:      query.QueryString,
			Format:     string(query.OutputFormat),
			SearchArea: query.SearchArea,
			Tags:       query.Tags,
			Elements:   elements,
			Warnings:   warnings,
		}, nil
	})(ctx, req)
}
