package validate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/NERVsystems/oqlgen/pkg/monitoring"
	"github.com/NERVsystems/oqlgen/pkg/osm"
)

// tagCacheSize bounds the number of cached tag lookups
const tagCacheSize = 1024

// WebTagValidator validates tags against the OSM taginfo service. It is
// fail-open: any transport failure reports the tag as valid so generation
// is never blocked by an unreachable network. Definitive answers are
// cached in an LRU cache to avoid repeated lookups for common tags.
type WebTagValidator struct {
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
	cache   *lru.Cache[string, bool]
}

// NewWebTagValidator creates a validator against the given taginfo base
// URL (e.g. https://taginfo.openstreetmap.org/api/4).
func NewWebTagValidator(baseURL string, timeout time.Duration) *WebTagValidator {
	cache, _ := lru.New[string, bool](tagCacheSize)
	return &WebTagValidator{
		baseURL: baseURL,
		timeout: timeout,
		logger:  slog.Default(),
		cache:   cache,
	}
}

// WithLogger sets the logger
func (v *WebTagValidator) WithLogger(logger *slog.Logger) *WebTagValidator {
	v.logger = logger
	return v
}

// ValidateTag reports whether key=value exists in the taginfo database.
// Transport failures report valid; only definitive responses are cached.
func (v *WebTagValidator) ValidateTag(ctx context.Context, key, value string) bool {
	cacheKey := key + "=" + value
	if valid, ok := v.cache.Get(cacheKey); ok {
		monitoring.RecordCacheHit("tag")
		return valid
	}
	monitoring.RecordCacheMiss("tag")

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", key)
	params.Set("value", value)
	lookupURL := v.baseURL + "/tag/show?" + params.Encode()

	req, err := osm.NewRequestWithUserAgent(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		v.logger.Warn("failed to create taginfo request", "error", err)
		return true
	}

	resp, err := osm.MonitoredDoRequest(ctx, req, "tag_show")
	if err != nil {
		// Fail open: an unreachable tag database must not block generation.
		v.logger.Debug("taginfo lookup failed, assuming tag valid",
			"key", key,
			"value", value,
			"error", err)
		return true
	}
	defer resp.Body.Close()

	valid := resp.StatusCode == http.StatusOK
	v.cache.Add(cacheKey, valid)
	return valid
}

// GetValidValues returns the most common values for a key, ordered by
// usage count. Any failure yields an empty slice.
func (v *WebTagValidator) GetValidValues(ctx context.Context, key string) []string {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", key)
	params.Set("sortname", "count")
	params.Set("sortorder", "desc")
	params.Set("page", "1")
	params.Set("rp", "100")
	params.Set("qtype", "key")
	lookupURL := v.baseURL + "/key/values?" + params.Encode()

	req, err := osm.NewRequestWithUserAgent(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil
	}

	resp, err := osm.MonitoredDoRequest(ctx, req, "key_values")
	if err != nil {
		v.logger.Debug("taginfo value lookup failed", "key", key, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var payload struct {
		Data []struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		v.logger.Debug("failed to decode taginfo response", "key", key, "error", err)
		return nil
	}

	values := make([]string, 0, len(payload.Data))
	for _, item := range payload.Data {
		if item.Value != "" {
			values = append(values, item.Value)
		}
	}
	return values
}
