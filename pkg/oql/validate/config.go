package validate

import (
	"time"

	"github.com/NERVsystems/oqlgen/pkg/osm"
)

// Config selects which validation stages run and where the backing
// services live. It is injected explicitly; there are no global flags.
type Config struct {
	// Stage toggles
	EnableTagValidation    bool
	EnableSyntaxValidation bool
	EnableAreaResolution   bool

	// Service endpoints
	TaginfoBaseURL   string
	NominatimBaseURL string

	// Timeout bounds each outbound validation lookup
	Timeout time.Duration
}

// DefaultConfig returns a configuration with all stages enabled and the
// public service endpoints.
func DefaultConfig() Config {
	return Config{
		EnableTagValidation:    true,
		EnableSyntaxValidation: true,
		EnableAreaResolution:   true,
		TaginfoBaseURL:         osm.TaginfoBaseURL,
		NominatimBaseURL:       osm.NominatimBaseURL,
		Timeout:                10 * time.Second,
	}
}
