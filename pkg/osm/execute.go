package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/oqlgen/pkg/tracing"
)

// Executor runs Overpass QL queries against an Overpass API endpoint.
// Each call is a single synchronous POST bounded by the request context;
// there are no retries.
type Executor struct {
	endpoint string
	logger   *slog.Logger
}

// NewExecutor creates an executor against the public Overpass endpoint.
func NewExecutor() *Executor {
	return &Executor{
		endpoint: OverpassBaseURL,
		logger:   slog.Default(),
	}
}

// WithEndpoint overrides the Overpass endpoint
func (e *Executor) WithEndpoint(endpoint string) *Executor {
	e.endpoint = endpoint
	return e
}

// WithLogger sets the logger
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	e.logger = logger
	return e
}

// Execute posts the query to the Overpass API and decodes the response.
// The query must request JSON output for the response to decode.
func (e *Executor) Execute(ctx context.Context, query string) (*OverpassResult, error) {
	ctx, span := tracing.StartSpan(ctx, "osm.execute_query",
		trace.WithAttributes(
			attribute.String(tracing.AttrServiceName, tracing.ServiceOverpass),
			attribute.String(tracing.AttrServiceURL, e.endpoint),
			attribute.Int("osm.query_length", len(query)),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint,
		strings.NewReader("data="+url.QueryEscape(query)))
	if err != nil {
		span.SetStatus(codes.Error, "request creation failed")
		return nil, fmt.Errorf("failed to create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := MonitoredDoRequest(ctx, req, "execute_query")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("failed to execute overpass query: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		var errorMsg string
		if bodyBytes, readErr := io.ReadAll(resp.Body); readErr == nil {
			errorMsg = string(bodyBytes)
			if len(errorMsg) > 500 {
				errorMsg = errorMsg[:500] + "..."
			}
		}
		if errorMsg == "" {
			errorMsg = fmt.Sprintf("Overpass API returned status %d", resp.StatusCode)
		}
		e.logger.Error("overpass query failed",
			"status", resp.StatusCode,
			"error", errorMsg)
		span.SetStatus(codes.Error, "overpass error status")
		return nil, NewAPIError("Overpass", resp.StatusCode, errorMsg, "")
	}

	var result OverpassResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}

	span.SetAttributes(attribute.Int("osm.element_count", len(result.Elements)))
	span.SetStatus(codes.Ok, "")

	e.logger.Debug("overpass query executed",
		"elements", len(result.Elements),
		"generator", result.Generator)

	return &result, nil
}
