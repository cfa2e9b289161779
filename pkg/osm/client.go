// Package osm provides HTTP plumbing for the OpenStreetMap services the
// query pipeline talks to: the Overpass API, the taginfo tag database and
// Nominatim.
package osm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/oqlgen/pkg/tracing"
)

const (
	// API endpoints
	OverpassBaseURL  = "https://overpass-api.de/api/interpreter"
	TaginfoBaseURL   = "https://taginfo.openstreetmap.org/api/4"
	NominatimBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies this tool per the OSM usage policies
	DefaultUserAgent = "oqlgen/0.1.0"
)

var (
	// Global HTTP client with connection pooling
	httpClient *http.Client

	// Rate limiters for each service
	overpassLimiter  *rate.Limiter
	taginfoLimiter   *rate.Limiter
	nominatimLimiter *rate.Limiter

	// User agent string
	userAgent     string
	userAgentLock sync.RWMutex
)

// init initializes the global HTTP client and rate limiters
func init() {
	httpClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 30 * time.Second,
	}

	initRateLimiters()

	SetUserAgent(DefaultUserAgent)
}

// initRateLimiters initializes the rate limiters with default values
func initRateLimiters() {
	// Default to 1 request per second with burst of 1
	overpassLimiter = rate.NewLimiter(rate.Limit(1), 1)
	taginfoLimiter = rate.NewLimiter(rate.Limit(2), 2)
	nominatimLimiter = rate.NewLimiter(rate.Limit(1), 1)
}

// UpdateOverpassRateLimits updates the Overpass rate limiter
func UpdateOverpassRateLimits(rps float64, burst int) {
	overpassLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// UpdateTaginfoRateLimits updates the taginfo rate limiter
func UpdateTaginfoRateLimits(rps float64, burst int) {
	taginfoLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// UpdateNominatimRateLimits updates the Nominatim rate limiter
func UpdateNominatimRateLimits(rps float64, burst int) {
	nominatimLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// SetUserAgent sets the User-Agent string
func SetUserAgent(ua string) {
	userAgentLock.Lock()
	defer userAgentLock.Unlock()
	userAgent = ua
}

// GetUserAgent returns the current User-Agent string
func GetUserAgent() string {
	userAgentLock.RLock()
	defer userAgentLock.RUnlock()
	return userAgent
}

// GetClient returns the global HTTP client
func GetClient(ctx context.Context) *http.Client {
	return httpClient
}

// hostFromURL extracts the host from a URL string
func hostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}

// waitForRateLimit waits for the appropriate rate limiter based on the request URL
func waitForRateLimit(ctx context.Context, req *http.Request) error {
	host := req.URL.Host

	var service string
	var limiter *rate.Limiter

	switch host {
	case hostFromURL(OverpassBaseURL):
		service = tracing.ServiceOverpass
		limiter = overpassLimiter
	case hostFromURL(TaginfoBaseURL):
		service = tracing.ServiceTaginfo
		limiter = taginfoLimiter
	case hostFromURL(NominatimBaseURL):
		service = tracing.ServiceNominatim
		limiter = nominatimLimiter
	default:
		return nil // No rate limiting for unknown hosts
	}

	if !limiter.Allow() {
		startWait := time.Now()

		tracing.AddEvent(ctx, "rate_limit_wait",
			trace.WithAttributes(
				attribute.String(tracing.AttrRateLimitService, service),
			),
		)

		err := limiter.Wait(ctx)

		waitDuration := time.Since(startWait)
		tracing.SetAttributes(ctx,
			attribute.String(tracing.AttrRateLimitService, service),
			attribute.Int64(tracing.AttrRateLimitWaitMs, waitDuration.Milliseconds()),
		)

		if err != nil {
			return err
		}
	}

	return nil
}

// DoRequest performs an HTTP request with rate limiting
func DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Set User-Agent header
	req.Header.Set("User-Agent", GetUserAgent())

	// Wait for rate limit
	if err := waitForRateLimit(ctx, req); err != nil {
		return nil, err
	}

	// Perform request
	return httpClient.Do(req)
}

// NewRequestWithUserAgent creates a new HTTP request with proper User-Agent header
func NewRequestWithUserAgent(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	// OSM services require an identifying User-Agent
	req.Header.Set("User-Agent", GetUserAgent())

	return req, nil
}

// Health check functions for external services

// CheckOverpassHealth checks if the Overpass API is available
func CheckOverpassHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", OverpassBaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create overpass health check request: %w", err)
	}

	// Add a simple query to check if the service is responsive
	req.URL.RawQuery = "data=[out:json];out meta;"

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("overpass health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("overpass health check returned status %d", resp.StatusCode)
	}

	return nil
}

// CheckTaginfoHealth checks if the taginfo service is available
func CheckTaginfoHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", TaginfoBaseURL+"/site/info", nil)
	if err != nil {
		return fmt.Errorf("failed to create taginfo health check request: %w", err)
	}

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("taginfo health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("taginfo health check returned status %d", resp.StatusCode)
	}

	return nil
}

// CheckNominatimHealth checks if the Nominatim service is available
func CheckNominatimHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", NominatimBaseURL+"/status", nil)
	if err != nil {
		return fmt.Errorf("failed to create nominatim health check request: %w", err)
	}

	resp, err := DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("nominatim health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim health check returned status %d", resp.StatusCode)
	}

	return nil
}
