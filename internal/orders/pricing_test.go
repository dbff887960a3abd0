package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wims-erp/wims/internal/shared"
)

func twoItems() []OrderItem {
	return []OrderItem{
		{ID: "i-1", Name: "Mango Crush 500ml", RequestedQuantity: 10},
		{ID: "i-2", Name: "Lime Soda 1L", RequestedQuantity: 5},
	}
}

func TestComputeProposalIsUntaxed(t *testing.T) {
	p, err := ComputeProposal(twoItems(), map[string]float64{"i-1": 100, "i-2": 200})
	require.NoError(t, err)

	assert.InDelta(t, 2000, p.Subtotal, 0.001)
	assert.InDelta(t, 0, p.Tax, 0.001)
	assert.InDelta(t, 2000, p.Total, 0.001)
}

func TestComputeOfficialAddsFlatTax(t *testing.T) {
	p, err := ComputeOfficial(twoItems(), map[string]float64{"i-1": 110, "i-2": 210})
	require.NoError(t, err)

	assert.InDelta(t, 2150, p.Subtotal, 0.001)
	assert.InDelta(t, 215, p.Tax, 0.001)
	assert.InDelta(t, 2365, p.Total, 0.001)
}

func TestComputeRefusesMissingOrNegativePrice(t *testing.T) {
	_, err := ComputeOfficial(twoItems(), map[string]float64{"i-1": 110})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = ComputeOfficial(twoItems(), map[string]float64{"i-1": 110, "i-2": -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestComputeRefusesEmptyOrder(t *testing.T) {
	_, err := ComputeProposal(nil, map[string]float64{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCurrentPricingPrecedence(t *testing.T) {
	salesman := &Pricing{Total: 2000}
	admin := &Pricing{Total: 2365}
	final := &Pricing{Total: 2447.5}

	o := Order{SalesmanPricing: salesman}
	assert.Equal(t, salesman, o.CurrentPricing())

	o.AdminPricing = admin
	assert.Equal(t, admin, o.CurrentPricing())

	o.FinalPricing = final
	assert.Equal(t, final, o.CurrentPricing())
}
