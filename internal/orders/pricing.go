package orders

import (
	"fmt"

	"github.com/wims-erp/wims/internal/shared"
)

// TaxRate is the flat surcharge applied to official (admin/final) pricing.
// Salesman proposals are untaxed reference values.
const TaxRate = 0.10

// ComputeProposal derives the salesman pricing snapshot: subtotal over
// the self-declared prices, no tax.
func ComputeProposal(items []OrderItem, itemPrices map[string]float64) (*Pricing, error) {
	subtotal, err := computeSubtotal(items, itemPrices)
	if err != nil {
		return nil, err
	}
	return &Pricing{
		Subtotal:   subtotal,
		Tax:        0,
		Total:      subtotal,
		ItemPrices: copyPrices(itemPrices),
	}, nil
}

// ComputeOfficial derives an admin or final pricing snapshot: subtotal
// plus the flat tax surcharge.
func ComputeOfficial(items []OrderItem, itemPrices map[string]float64) (*Pricing, error) {
	subtotal, err := computeSubtotal(items, itemPrices)
	if err != nil {
		return nil, err
	}
	tax := subtotal * TaxRate
	return &Pricing{
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      subtotal + tax,
		ItemPrices: copyPrices(itemPrices),
	}, nil
}

// computeSubtotal requires one non-negative price per item; a missing or
// negative price refuses the whole computation.
func computeSubtotal(items []OrderItem, itemPrices map[string]float64) (float64, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: order has no items", shared.ErrValidation)
	}
	var subtotal float64
	for _, item := range items {
		price, ok := itemPrices[item.ID]
		if !ok {
			return 0, fmt.Errorf("%w: no price for item %q", shared.ErrValidation, item.Name)
		}
		if price < 0 {
			return 0, fmt.Errorf("%w: negative price for item %q", shared.ErrValidation, item.Name)
		}
		subtotal += price * item.RequestedQuantity
	}
	return subtotal, nil
}

func copyPrices(prices map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(prices))
	for id, p := range prices {
		out[id] = p
	}
	return out
}
