package validate

import (
	"context"
	"strings"
	"testing"

	"github.com/NERVsystems/oqlgen/pkg/oql"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EnableTagValidation = true
	cfg.EnableSyntaxValidation = true
	cfg.EnableAreaResolution = true
	return cfg
}

func staticTags() *StaticTagValidator {
	return NewStaticTagValidator(map[string][]string{
		"amenity": {"cafe", "restaurant", "parking"},
		"leisure": {"park", "playground"},
	})
}

func TestValidateQuery(t *testing.T) {
	v := NewWithTagValidator(testConfig(), staticTags())

	q := &oql.Query{
		QueryString: validQuery,
		SearchArea:  "Paris",
		Tags:        []oql.Tag{{Key: "amenity", Value: "cafe"}},
	}

	if warnings := v.ValidateQuery(context.Background(), q); len(warnings) != 0 {
		t.Errorf("valid query produced warnings: %v", warnings)
	}
}

func TestValidateQueryReportsUnknownTag(t *testing.T) {
	v := NewWithTagValidator(testConfig(), staticTags())

	q := &oql.Query{
		QueryString: validQuery,
		Tags:        []oql.Tag{{Key: "amenity", Value: "warp_drive"}},
	}

	warnings := v.ValidateQuery(context.Background(), q)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if !strings.Contains(warnings[0], "amenity=warp_drive") {
		t.Errorf("warning %q does not name the tag", warnings[0])
	}
}

func TestValidateQuerySyntaxWarning(t *testing.T) {
	v := NewWithTagValidator(testConfig(), staticTags())

	q := &oql.Query{
		QueryString: "[out:json];\nout body",
		Tags:        []oql.Tag{{Key: "amenity", Value: "cafe"}},
	}

	warnings := v.ValidateQuery(context.Background(), q)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
}

func TestValidateQueryStagesCanBeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableSyntaxValidation = false
	cfg.EnableTagValidation = false
	v := NewWithTagValidator(cfg, staticTags())

	q := &oql.Query{
		QueryString: "not even close to a query",
		Tags:        []oql.Tag{{Key: "amenity", Value: "warp_drive"}},
	}

	if warnings := v.ValidateQuery(context.Background(), q); len(warnings) != 0 {
		t.Errorf("disabled stages still produced warnings: %v", warnings)
	}
}

func TestValidateTagsOrderIsDeterministic(t *testing.T) {
	v := NewWithTagValidator(testConfig(), staticTags())

	tags := []oql.Tag{
		{Key: "amenity", Value: "nonsense_one"},
		{Key: "amenity", Value: "cafe"},
		{Key: "leisure", Value: "nonsense_two"},
	}

	for i := 0; i < 5; i++ {
		warnings := v.ValidateTags(context.Background(), tags)
		if len(warnings) != 2 {
			t.Fatalf("warnings = %v, want two", warnings)
		}
		// Warnings follow tag order, not goroutine completion order.
		if !strings.Contains(warnings[0], "nonsense_one") || !strings.Contains(warnings[1], "nonsense_two") {
			t.Fatalf("warnings out of order: %v", warnings)
		}
	}
}

func TestValidatePrompt(t *testing.T) {
	v := NewWithTagValidator(testConfig(), staticTags())

	tests := []struct {
		name     string
		prompt   string
		format   string
		wantCode oql.ErrorCode
	}{
		{name: "valid", prompt: "Find all cafes in Paris", format: "json"},
		{name: "too short", prompt: "cafe", format: "json", wantCode: oql.ErrPromptTooShort},
		{name: "whitespace only", prompt: "        ", format: "json", wantCode: oql.ErrPromptTooShort},
		{name: "bad format", prompt: "Find all cafes in Paris", format: "csv", wantCode: oql.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePrompt(tt.prompt, tt.format)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidatePrompt returned error: %v", err)
				}
				return
			}
			if !oql.IsCode(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestStaticTagValidatorFailsOpenOnUnknownKey(t *testing.T) {
	v := staticTags()

	if !v.ValidateTag(context.Background(), "frequency", "50") {
		t.Error("unknown key must be accepted")
	}
	if v.ValidateTag(context.Background(), "amenity", "warp_drive") {
		t.Error("known key with unknown value must be rejected")
	}
	if got := v.GetValidValues(context.Background(), "leisure"); len(got) != 2 {
		t.Errorf("GetValidValues = %v, want two values", got)
	}
}
