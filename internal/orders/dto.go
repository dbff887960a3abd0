package orders

// CreateOrderRequest is a salesman's new purchase request with
// self-declared proposal prices.
type CreateOrderRequest struct {
	ClientID string                   `json:"clientId" validate:"required"`
	Items    []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes    string                   `json:"notes,omitempty"`
}

// CreateOrderItemRequest is one requested product line.
type CreateOrderItemRequest struct {
	Name              string  `json:"name" validate:"required,max=200"`
	Category          string  `json:"category,omitempty"`
	Volume            string  `json:"volume,omitempty"`
	BottlesPerCase    int     `json:"bottlesPerCase" validate:"gte=0"`
	RequestedQuantity float64 `json:"requestedQuantity" validate:"required,gt=0"`
	Unit              string  `json:"unit,omitempty"`
	SalesmanPrice     float64 `json:"salesmanPrice" validate:"gte=0"`
}

// UpdateOrderRequest replaces the line items and notes of an existing
// order. Item IDs are reissued; the proposal is rebuilt from the new
// salesman prices.
type UpdateOrderRequest struct {
	Items []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes string                   `json:"notes,omitempty"`
}

// SetPricingRequest carries the admin's official per-item prices and the
// optional adjustment grant.
type SetPricingRequest struct {
	ItemPrices           map[string]float64 `json:"itemPrices" validate:"required,min=1"`
	AllowPriceAdjustment bool               `json:"allowPriceAdjustment"`
	PriceAdjustmentRange *AdjustmentRange   `json:"priceAdjustmentRange,omitempty"`
	AdminNotes           string             `json:"adminNotes,omitempty"`
}

// AdjustPricingRequest carries the salesman's per-item deltas against the
// admin prices.
type AdjustPricingRequest struct {
	Adjustments map[string]float64 `json:"adjustments" validate:"required,min=1"`
	Notes       string             `json:"notes,omitempty"`
}

// RejectOrderRequest carries the mandatory rejection reason.
type RejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ListOrdersRequest filters the order listing.
type ListOrdersRequest struct {
	Status         *Status
	SalesmanID     string
	ClientID       string
	IncludeDeleted bool
}
