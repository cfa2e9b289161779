package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/oqlgen/pkg/monitoring"
	"github.com/NERVsystems/oqlgen/pkg/tracing"
)

// Registry contains all tool definitions and handlers
type Registry struct {
	logger *slog.Logger
}

// NewRegistry creates a new tool registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// ToolDefinition represents an MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns the list of all available tools.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "get_version",
			Description: "Get the version information for this service",
			Tool:        GetVersionTool(),
			Handler:     HandleGetVersion,
		},
		{
			Name:        "generate_query",
			Description: "Generate an Overpass QL query from a natural language prompt",
			Tool:        GenerateQueryTool(),
			Handler:     HandleGenerateQuery,
		},
		{
			Name:        "validate_prompt",
			Description: "Check whether a prompt and format can produce a query",
			Tool:        ValidatePromptTool(),
			Handler:     HandleValidatePrompt,
		},
		{
			Name:        "validate_query",
			Description: "Validate an Overpass QL query string",
			Tool:        ValidateQueryTool(),
			Handler:     HandleValidateQuery,
		},
		{
			Name:        "execute_query",
			Description: "Execute an Overpass QL query against the Overpass API",
			Tool:        ExecuteQueryTool(),
			Handler:     HandleExecuteQuery,
		},
		{
			Name:        "summarize_results",
			Description: "Summarize an Overpass API result and optionally compare against a reference",
			Tool:        SummarizeResultsTool(),
			Handler:     HandleSummarizeResults,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, r.wrapWithTracing(def.Name, def.Handler))
	}
}

// wrapWithTracing wraps a tool handler with OpenTelemetry tracing and
// Prometheus metrics.
func (r *Registry) wrapWithTracing(toolName string, handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spanName := fmt.Sprintf("mcp.tool.%s", toolName)
		ctx, span := tracing.StartSpan(ctx, spanName,
			trace.WithAttributes(
				attribute.String(tracing.AttrMCPToolName, toolName),
			),
		)
		defer span.End()

		startTime := time.Now()
		result, err := handler(ctx, req)
		duration := time.Since(startTime)

		status := tracing.StatusSuccess
		if err != nil {
			status = tracing.StatusError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		monitoring.RecordMCPRequest(toolName, duration, err == nil)

		resultSize := 0
		if result != nil && result.Content != nil {
			if data, marshalErr := json.Marshal(result.Content); marshalErr == nil {
				resultSize = len(data)
			}
		}

		span.SetAttributes(
			attribute.String(tracing.AttrMCPToolStatus, status),
			attribute.Int64(tracing.AttrMCPToolDuration, duration.Milliseconds()),
			attribute.Int(tracing.AttrMCPResultSize, resultSize),
		)

		r.logger.Debug("tool execution traced",
			"tool", toolName,
			"duration_ms", duration.Milliseconds(),
			"status", status,
			"result_size", resultSize,
		)

		return result, err
	}
}

// GetToolNames returns a list of all tool names.
func (r *Registry) GetToolNames() []string {
	defs := r.GetToolDefinitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// RegisterAll registers all tools with the MCP server.
func (r *Registry) RegisterAll(mcpServer *server.MCPServer) {
	r.RegisterTools(mcpServer)
}
