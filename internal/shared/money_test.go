package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wims-erp/wims/internal/shared"
)

func TestFormatINR(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "₹0.00"},
		{2447.5, "₹2,447.50"},
		{100000, "₹1,00,000.00"},
		{2365, "₹2,365.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, shared.FormatINR(tc.amount))
	}
}
