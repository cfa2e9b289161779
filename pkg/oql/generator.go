package oql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/oqlgen/pkg/tracing"
)

// TagValidator checks tags against an OSM tag database. Implementations
// must be fail-open: when the backing service cannot be reached, a tag is
// reported valid rather than blocking generation.
type TagValidator interface {
	// ValidateTag reports whether the key/value pair is a known OSM tag.
	ValidateTag(ctx context.Context, key, value string) bool

	// GetValidValues returns common values for a key, empty on any failure.
	GetValidValues(ctx context.Context, key string) []string
}

// Generator is the prompt-to-query generation entry point. Tag validation
// is advisory during generation: failures are logged as warnings and never
// abort the pipeline.
type Generator struct {
	parser    *Parser
	builder   *QueryBuilder
	validator TagValidator
	logger    *slog.Logger
}

// NewGenerator creates a generator with the default parser and builder and
// no tag validator.
func NewGenerator() *Generator {
	return &Generator{
		parser:  NewParser(),
		builder: NewQueryBuilder(),
		logger:  slog.Default(),
	}
}

// WithParser sets the prompt parser
func (g *Generator) WithParser(p *Parser) *Generator {
	g.parser = p
	return g
}

// WithBuilder sets the query builder
func (g *Generator) WithBuilder(b *QueryBuilder) *Generator {
	g.builder = b
	return g
}

// WithTagValidator sets the advisory tag validator
func (g *Generator) WithTagValidator(v TagValidator) *Generator {
	g.validator = v
	return g
}

// WithLogger sets the logger
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// Generate translates a prompt into an Overpass QL query. The prompt must
// be at least MinPromptLength characters after trimming and the format one
// of the supported set. Identical inputs yield identical query strings.
func (g *Generator) Generate(ctx context.Context, prompt string, format string) (*Query, error) {
	ctx, span := tracing.StartSpan(ctx, "oql.generate",
		trace.WithAttributes(
			attribute.Int(tracing.AttrPromptLength, len(prompt)),
			attribute.String(tracing.AttrOutputFormat, format),
		),
	)
	defer span.End()

	if len(strings.TrimSpace(prompt)) < MinPromptLength {
		err := NewError(ErrPromptTooShort,
			fmt.Sprintf("prompt must be at least %d characters long", MinPromptLength)).
			WithGuidance("Describe the feature and optionally a location, e.g. \"Find all cafes in Paris\"")
		span.SetStatus(codes.Error, string(ErrPromptTooShort))
		return nil, err
	}

	outputFormat, err := ParseOutputFormat(format)
	if err != nil {
		span.SetStatus(codes.Error, string(ErrUnsupportedFormat))
		return nil, err
	}

	parsed, err := g.parser.Parse(prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}

	// Advisory validation only: a tag the database does not know is worth
	// a warning, not a refusal to generate.
	if g.validator != nil {
		for _, tag := range parsed.Tags {
			if !g.validator.ValidateTag(ctx, tag.Key, tag.Value) {
				g.logger.Warn("tag may not be valid according to OSM database",
					"key", tag.Key,
					"value", tag.Value)
			}
		}
	}

	query, err := g.builder.Build(parsed, outputFormat)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String(tracing.AttrSearchArea, query.SearchArea),
		attribute.Int(tracing.AttrTagCount, len(query.Tags)),
	)
	span.SetStatus(codes.Ok, "")

	g.logger.Debug("generated query",
		"prompt", prompt,
		"format", outputFormat,
		"search_area", query.SearchArea,
		"tags", len(query.Tags))

	return query, nil
}
