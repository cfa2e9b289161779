package validate

import "testing"

func TestAreaResolver(t *testing.T) {
	r := NewAreaResolver()

	tests := []struct {
		name   string
		area   string
		want   string
		wantOK bool
	}{
		{name: "simple name", area: "Paris", want: `area[name="Paris"]`, wantOK: true},
		{name: "name with quotes", area: `Chicago "Loop"`, want: `area[name="Chicago \"Loop\""]`, wantOK: true},
		{name: "empty name", area: "", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.area)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.area, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.area, got, tt.want)
			}
		})
	}
}
