package core

import (
	"context"
	"errors"
	"testing"
)

func TestNextSuffix(t *testing.T) {
	tests := []struct {
		name    string
		last    string
		scope   string
		ceiling int
		want    int
		wantErr error
	}{
		{"empty scope starts at one", "", "100-", 999, 1, nil},
		{"increments", "100-041", "100-", 999, 42, nil},
		{"year scoped", "J-2026-000120", "J-2026-", 999999, 121, nil},
		{"at ceiling", "100-999", "100-", 999, 0, ErrSequenceExhausted},
		{"below ceiling", "100-998", "100-", 999, 999, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextSuffix(tt.last, tt.scope, tt.ceiling)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextSuffixMalformed(t *testing.T) {
	if _, err := nextSuffix("100-abc", "100-", 999); err == nil {
		t.Fatal("expected error for malformed sequence value")
	}
}

func TestNextVendorPONumberRejectsBadCode(t *testing.T) {
	// Validation runs before any query, so a nil querier is safe here.
	for _, code := range []string{"", "10", "1000", "1a0", "abc"} {
		if _, err := NextVendorPONumber(context.Background(), nil, code); err == nil {
			t.Errorf("expected validation error for vendor code %q", code)
		}
	}
}
