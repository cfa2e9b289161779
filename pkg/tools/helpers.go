// Package tools provides the MCP tool implementations for Overpass QL
// query generation, validation, and execution.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
)

// InputParser is a generic function to parse request arguments into a strongly typed struct
func InputParser[T any](req mcp.CallToolRequest) (T, *mcp.CallToolResult, error) {
	var input T

	inputJSON, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return input, ErrorResponse(fmt.Sprintf("Invalid input format: %v", err)), err
	}

	if err := json.Unmarshal(inputJSON, &input); err != nil {
		return input, ErrorResponse(fmt.Sprintf("Failed to parse input: %v", err)), err
	}

	return input, nil, nil
}

// WithParsedInput is a higher-order function that handles request parsing and error handling
func WithParsedInput[T any](
	handlerName string,
	handler func(ctx context.Context, input T, logger *slog.Logger) (interface{}, error),
) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := slog.Default().With("tool", handlerName)

		input, errResult, err := InputParser[T](req)
		if err != nil {
			logger.Error("failed to parse input", "error", err)
			return errResult, nil
		}

		result, err := handler(ctx, input, logger)
		if err != nil {
			logger.Error("handler error", "error", err)
			return ErrorResponse(fmt.Sprintf("Failed to process request: %v", err)), nil
		}

		resultBytes, err := json.Marshal(result)
		if err != nil {
			logger.Error("failed to marshal result", "error", err)
			return ErrorResponse("Failed to generate result"), nil
		}

		return mcp.NewToolResultText(string(resultBytes)), nil
	}
}
