package osm

import (
	"fmt"
	"net/http"
)

// APIError represents an error that occurred while communicating with
// an external API service, with information to help users recover.
type APIError struct {
	Service     string // The API service name (e.g., "Overpass", "taginfo")
	StatusCode  int    // HTTP status code
	Message     string // Error message
	Recoverable bool   // Whether the error can be recovered from
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s API error (%d): %s. %s", e.Service, e.StatusCode, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Common error guidance messages
const (
	// Overpass guidance
	GuidanceOverpassTimeout   = "Consider simplifying the query by scoping it to a named area or adding more specific filters."
	GuidanceOverpassRateLimit = "The Overpass API is currently experiencing high load. Please try again in a minute."
	GuidanceOverpassSyntax    = "There's an issue with the query format. Validate the query before executing it."
	GuidanceOverpassMemory    = "The query requires too much memory. Try scoping it to a smaller area."
	GuidanceOverpassGeneral   = "Try a narrower search area or fewer search criteria."

	// Taginfo guidance
	GuidanceTaginfoRateLimit = "The taginfo service is rate limited. Please try again in a few seconds."
	GuidanceTaginfoGeneral   = "Tag validation is advisory; generation continues without it."

	// Generic guidance
	GuidanceGeneral      = "Please try again later or modify your request parameters."
	GuidanceNetworkError = "Check your internet connection and try again."
	GuidanceDataError    = "The data received was incomplete or malformed. Try different search parameters."
)

// NewAPIError creates a new APIError with appropriate guidance based on status code.
func NewAPIError(service string, statusCode int, message, guidance string) *APIError {
	// Use provided guidance if available, otherwise infer based on status code
	if guidance == "" {
		switch statusCode {
		case http.StatusTooManyRequests:
			guidance = "Rate limit exceeded. Please try again in a few moments."
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			guidance = "The request timed out. Try scoping the query to a smaller area."
		case http.StatusBadRequest:
			guidance = "The request was invalid. Check the query syntax and try again."
		case http.StatusInternalServerError:
			guidance = "The server encountered an error. This is likely temporary, please try again later."
		case http.StatusServiceUnavailable:
			guidance = "The service is temporarily unavailable. Please try again later."
		default:
			guidance = GuidanceGeneral
		}
	}

	return &APIError{
		Service:     service,
		StatusCode:  statusCode,
		Message:     message,
		Recoverable: statusCode != http.StatusBadRequest, // Most errors except bad requests are recoverable
		Guidance:    guidance,
	}
}
