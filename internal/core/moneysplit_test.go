package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTotal(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		wantVendor string
		wantMargin string
	}{
		{"whole hundred", "100.00", "80.00", "20.00"},
		{"whole thousand", "1000.00", "800.00", "200.00"},
		{"residue goes to margin", "99.99", "79.99", "20.00"},
		{"small amount", "0.05", "0.04", "0.01"},
		{"zero", "0.00", "0.00", "0.00"},
		{"repeating cents", "33.33", "26.66", "6.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			split, err := SplitTotal(total)
			require.NoError(t, err)

			assert.True(t, split.VendorAmount.Equal(decimal.RequireFromString(tt.wantVendor)),
				"vendor: got %s, want %s", split.VendorAmount, tt.wantVendor)
			assert.True(t, split.MarginAmount.Equal(decimal.RequireFromString(tt.wantMargin)),
				"margin: got %s, want %s", split.MarginAmount, tt.wantMargin)
		})
	}
}

func TestSplitTotalNegative(t *testing.T) {
	_, err := SplitTotal(decimal.NewFromInt(-1))
	require.Error(t, err)
}
