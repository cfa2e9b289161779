package validate

import "context"

// StaticTagValidator validates tags against a fixed in-memory table.
// It is useful in tests and offline environments. Like the web-backed
// validator it is fail-open: keys it does not know about are accepted.
type StaticTagValidator struct {
	known map[string][]string
}

// NewStaticTagValidator creates a validator over the given key to
// accepted-values table.
func NewStaticTagValidator(known map[string][]string) *StaticTagValidator {
	if known == nil {
		known = make(map[string][]string)
	}
	return &StaticTagValidator{known: known}
}

// ValidateTag reports whether key=value is in the table. Unknown keys
// are accepted.
func (v *StaticTagValidator) ValidateTag(_ context.Context, key, value string) bool {
	values, ok := v.known[key]
	if !ok {
		return true
	}
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

// GetValidValues returns the accepted values for a key, or nil for
// unknown keys.
func (v *StaticTagValidator) GetValidValues(_ context.Context, key string) []string {
	values, ok := v.known[key]
	if !ok {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
