package property

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidType(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Residential", true},
		{"villa", true},
		{"PLOTS", true},
		{"Land", true},
		{"Commercial", true},
		{"Castle", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidType(tt.in); got != tt.want {
			t.Errorf("ValidType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewIDIsValid(t *testing.T) {
	id := NewID()
	if len(id) != 24 {
		t.Errorf("id length = %d, want 24", len(id))
	}
	if !ValidID(id) {
		t.Errorf("ValidID(%q) = false", id)
	}
	if NewID() == id {
		t.Error("expected distinct ids")
	}
}

func TestValidIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "507f1f77bcf86cd79943901"} {
		if ValidID(id) {
			t.Errorf("ValidID(%q) = true, want false", id)
		}
	}
}

func TestNormalizedPropertyEncodesArrays(t *testing.T) {
	p := &Property{ID: NewID(), Title: "Empty"}
	p.normalize()

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, field := range []string{`"configuration":[]`, `"configurations":[]`, `"images":[]`, `"features":[]`} {
		if !strings.Contains(s, field) {
			t.Errorf("expected %s in %s", field, s)
		}
	}
}
