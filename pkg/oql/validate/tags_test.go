package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestWebTagValidatorValidateTag(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/tag/show" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") == "amenity" && r.URL.Query().Get("value") == "cafe" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	v := NewWebTagValidator(srv.URL, 5*time.Second)
	ctx := context.Background()

	if !v.ValidateTag(ctx, "amenity", "cafe") {
		t.Error("known tag reported invalid")
	}
	if v.ValidateTag(ctx, "amenity", "warp_drive") {
		t.Error("unknown tag reported valid")
	}
}

func TestWebTagValidatorCachesDefinitiveAnswers(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewWebTagValidator(srv.URL, 5*time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !v.ValidateTag(ctx, "amenity", "cafe") {
			t.Fatal("tag reported invalid")
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1 (cached after first lookup)", got)
	}
}

func TestWebTagValidatorFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable from here on

	v := NewWebTagValidator(srv.URL, 1*time.Second)

	if !v.ValidateTag(context.Background(), "amenity", "cafe") {
		t.Error("transport failure must report valid")
	}
}

func TestWebTagValidatorDoesNotCacheTransportFailures(t *testing.T) {
	var hits atomic.Int64
	var up atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if up.Load() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// Simulate a broken backend while "down"
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	v := NewWebTagValidator(srv.URL, 1*time.Second)
	ctx := context.Background()

	// Aborted response: fail open, nothing cached.
	if !v.ValidateTag(ctx, "amenity", "cafe") {
		t.Fatal("aborted response must report valid")
	}

	// Backend recovers with a definitive negative answer.
	up.Store(true)
	if v.ValidateTag(ctx, "amenity", "cafe") {
		t.Error("definitive negative answer after recovery reported valid")
	}
	if hits.Load() < 2 {
		t.Error("fail-open result was cached, second lookup never reached the server")
	}
}

func TestWebTagValidatorGetValidValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key/values" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "amenity" {
			t.Errorf("key = %q, want amenity", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"value":"parking"},{"value":"cafe"},{"value":"restaurant"}]}`))
	}))
	defer srv.Close()

	v := NewWebTagValidator(srv.URL, 5*time.Second)

	values := v.GetValidValues(context.Background(), "amenity")
	want := []string{"parking", "cafe", "restaurant"}
	if len(values) != len(want) {
		t.Fatalf("values = %v, want %v", values, want)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %q, want %q", i, values[i], want[i])
		}
	}
}

func TestWebTagValidatorGetValidValuesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewWebTagValidator(srv.URL, 5*time.Second)

	if values := v.GetValidValues(context.Background(), "amenity"); len(values) != 0 {
		t.Errorf("values = %v, want empty on failure", values)
	}
}
