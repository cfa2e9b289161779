package validate

import (
	"fmt"

	"github.com/NERVsystems/oqlgen/pkg/oql"
)

// AreaResolver turns a human-readable place name into an Overpass area
// clause. Resolution is purely syntactic; it does not consult Nominatim.
type AreaResolver struct{}

// NewAreaResolver creates an AreaResolver.
func NewAreaResolver() *AreaResolver {
	return &AreaResolver{}
}

// Resolve returns the area clause for a place name. The second return
// is false when the name is empty.
func (r *AreaResolver) Resolve(areaName string) (string, bool) {
	if areaName == "" {
		return "", false
	}
	return fmt.Sprintf("area[name=\"%s\"]", oql.EscapeAreaName(areaName)), true
}
