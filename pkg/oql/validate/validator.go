// Package validate provides query, tag, and prompt validation for
// generated Overpass QL. Tag validation consults the taginfo service
// and fails open; syntax validation is purely structural. Validators
// produce advisory warnings during generation and never abort it.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/oqlgen/pkg/oql"
	"github.com/NERVsystems/oqlgen/pkg/tracing"
)

// Validator aggregates syntax, tag, and area validation under one
// configuration. Individual stages can be toggled via Config.
type Validator struct {
	cfg    Config
	tags   oql.TagValidator
	syntax SyntaxValidator
	area   *AreaResolver
	logger *slog.Logger
}

// New creates a Validator with a web-backed tag validator built from
// the configuration.
func New(cfg Config) *Validator {
	return NewWithTagValidator(cfg, NewWebTagValidator(cfg.TaginfoBaseURL, cfg.Timeout))
}

// NewWithTagValidator creates a Validator with an explicit tag
// validator, typically a StaticTagValidator in tests.
func NewWithTagValidator(cfg Config, tags oql.TagValidator) *Validator {
	return &Validator{
		cfg:    cfg,
		tags:   tags,
		syntax: SyntaxValidator{},
		area:   NewAreaResolver(),
		logger: slog.Default(),
	}
}

// WithLogger sets the logger
func (v *Validator) WithLogger(logger *slog.Logger) *Validator {
	v.logger = logger
	return v
}

// TagValidator returns the underlying tag validator so a generator can
// share it for advisory checks.
func (v *Validator) TagValidator() oql.TagValidator {
	return v.tags
}

// ValidateQuery runs every enabled stage against a built query and
// returns the warnings found. An empty slice means the query passed.
func (v *Validator) ValidateQuery(ctx context.Context, q *oql.Query) []string {
	ctx, span := tracing.StartSpan(ctx, "validate.query")
	defer span.End()

	var warnings []string

	if v.cfg.EnableSyntaxValidation && q.QueryString != "" {
		if ok, msg := v.syntax.ValidateSyntax(q.QueryString); !ok {
			warnings = append(warnings, msg)
		}
	}

	if v.cfg.EnableTagValidation {
		warnings = append(warnings, v.ValidateTags(ctx, q.Tags)...)
	}

	if v.cfg.EnableAreaResolution && q.SearchArea != "" {
		if _, ok := v.area.Resolve(q.SearchArea); !ok {
			warnings = append(warnings, "search area could not be resolved")
		}
	}

	tracing.SetAttributes(ctx, attribute.Int(tracing.AttrValidationErrors, len(warnings)))
	return warnings
}

// ValidateTags checks each tag against the tag database concurrently.
// Warnings come back in tag order regardless of completion order.
func (v *Validator) ValidateTags(ctx context.Context, tags []oql.Tag) []string {
	if len(tags) == 0 {
		return nil
	}

	results := make([]string, len(tags))
	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range tags {
		g.Go(func() error {
			if !v.tags.ValidateTag(gctx, tag.Key, tag.Value) {
				results[i] = fmt.Sprintf("tag '%s=%s' not found in OSM database", tag.Key, tag.Value)
			}
			return nil
		})
	}
	// Workers only record warnings, they never return errors.
	_ = g.Wait()

	warnings := make([]string, 0, len(tags))
	for _, msg := range results {
		if msg != "" {
			warnings = append(warnings, msg)
		}
	}
	return warnings
}

// ValidatePrompt checks a prompt and requested output format before
// generation. Unlike query validation this returns a hard error, since
// a too-short prompt or unknown format cannot produce a query at all.
func (v *Validator) ValidatePrompt(prompt, format string) error {
	if len(strings.TrimSpace(prompt)) < oql.MinPromptLength {
		return oql.NewError(oql.ErrPromptTooShort,
			fmt.Sprintf("prompt must be at least %d characters", oql.MinPromptLength)).
			WithGuidance("Describe what to find and where, e.g. 'find cafes in Paris'")
	}
	if _, err := oql.ParseOutputFormat(format); err != nil {
		return err
	}
	return nil
}
