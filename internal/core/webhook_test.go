package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorCallbackValidate(t *testing.T) {
	valid := VendorCallback{
		ComponentID: "COMP-ABC-001",
		JobNumber:   "J-2026-000001",
		Pricing:     CallbackPricing{Subtotal: decimal.NewFromInt(60)},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		mutate   func(*VendorCallback)
		badField string
	}{
		{"missing job number", func(c *VendorCallback) { c.JobNumber = "" }, "jobNumber"},
		{"missing both correlation keys", func(c *VendorCallback) { c.ComponentID = "" }, "componentId"},
		{"negative subtotal", func(c *VendorCallback) { c.Pricing.Subtotal = decimal.NewFromInt(-1) }, "pricing"},
		{"no amounts at all", func(c *VendorCallback) { c.Pricing = CallbackPricing{} }, "pricing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := valid
			tt.mutate(&cb)
			err := cb.Validate()
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.badField)
		})
	}
}

func TestVendorCallbackEstimateNumberSatisfiesCorrelation(t *testing.T) {
	cb := VendorCallback{
		EstimateNumber: "EST-42",
		JobNumber:      "J-2026-000001",
		Pricing:        CallbackPricing{Total: decimal.NewFromInt(75)},
	}
	require.NoError(t, cb.Validate())
	assert.Equal(t, "EST-42", cb.CorrelationKey())
}

func TestVendorCallbackCorrelationKeyPrefersComponentID(t *testing.T) {
	cb := VendorCallback{ComponentID: "COMP-1", EstimateNumber: "EST-1"}
	assert.Equal(t, "COMP-1", cb.CorrelationKey())
}

func TestVendorCallbackNormalize(t *testing.T) {
	cb := VendorCallback{
		ComponentID: "  COMP-1 ",
		JobNumber:   " J-2026-000001\n",
	}
	cb.Normalize()
	assert.Equal(t, "COMP-1", cb.ComponentID)
	assert.Equal(t, "J-2026-000001", cb.JobNumber)
}

func TestVendorCallbackVendorAmount(t *testing.T) {
	withSubtotal := VendorCallback{Pricing: CallbackPricing{
		Subtotal: decimal.RequireFromString("60.00"),
		Total:    decimal.RequireFromString("63.60"),
	}}
	assert.True(t, withSubtotal.VendorAmount().Equal(decimal.RequireFromString("60.00")))

	totalOnly := VendorCallback{Pricing: CallbackPricing{
		Total: decimal.RequireFromString("63.60"),
	}}
	assert.True(t, totalOnly.VendorAmount().Equal(decimal.RequireFromString("63.60")))
}
