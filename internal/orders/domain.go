package orders

import "time"

// Status tracks an order through the pricing workflow.
type Status string

const (
	StatusPending          Status = "pending"
	StatusAdminPriced      Status = "admin_priced"
	StatusSalesmanAdjusted Status = "salesman_adjusted"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusCompleted        Status = "completed"
)

// AllStatuses lists every workflow status, in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusAdminPriced,
		StatusSalesmanAdjusted,
		StatusApproved,
		StatusRejected,
		StatusCompleted,
	}
}

// AdjustmentRange is the collar an admin grants for salesman price
// adjustments, e.g. {-15, 15}.
type AdjustmentRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// OrderItem is one product line within an order.
type OrderItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category,omitempty"`
	Volume            string  `json:"volume,omitempty"`
	BottlesPerCase    int     `json:"bottlesPerCase,omitempty"`
	RequestedQuantity float64 `json:"requestedQuantity"`
	Unit              string  `json:"unit,omitempty"`
}

// Pricing is one snapshot of order-level money plus per-item unit prices.
// Snapshots are never mutated in place; transitions build replacements.
type Pricing struct {
	Subtotal    float64            `json:"subtotal"`
	Tax         float64            `json:"tax"`
	Total       float64            `json:"total"`
	ItemPrices  map[string]float64 `json:"itemPrices"`
	Adjustments map[string]float64 `json:"adjustments,omitempty"`
}

// Order represents one purchase request from a salesman to a client.
type Order struct {
	ID           string `json:"id"`
	OrderNumber  string `json:"orderNumber"`
	SalesmanID   string `json:"salesmanId"`
	SalesmanName string `json:"salesmanName"`
	ClientID     string `json:"clientId"`
	ClientName   string `json:"clientName"`

	Items  []OrderItem `json:"items"`
	Status Status      `json:"status"`

	// Three independent snapshots; the authoritative one follows the
	// precedence final > admin > salesman.
	SalesmanPricing *Pricing `json:"salesmanPricing,omitempty"`
	AdminPricing    *Pricing `json:"adminPricing,omitempty"`
	FinalPricing    *Pricing `json:"finalPricing,omitempty"`

	AllowPriceAdjustment bool             `json:"allowPriceAdjustment"`
	PriceAdjustmentRange *AdjustmentRange `json:"priceAdjustmentRange,omitempty"`

	Notes                   string `json:"notes,omitempty"`
	AdminNotes              string `json:"adminNotes,omitempty"`
	SalesmanAdjustmentNotes string `json:"salesmanAdjustmentNotes,omitempty"`
	RejectionReason         string `json:"rejectionReason,omitempty"`

	// Deleted is a soft-delete marker distinct from the workflow status.
	Deleted bool `json:"deleted,omitempty"`

	CreatedAt          time.Time  `json:"createdAt"`
	AdminPricedAt      *time.Time `json:"adminPricedAt,omitempty"`
	SalesmanAdjustedAt *time.Time `json:"salesmanAdjustedAt,omitempty"`
	ApprovedAt         *time.Time `json:"approvedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// CurrentPricing returns the authoritative snapshot: final if present,
// else admin, else the salesman proposal.
func (o *Order) CurrentPricing() *Pricing {
	switch {
	case o.FinalPricing != nil:
		return o.FinalPricing
	case o.AdminPricing != nil:
		return o.AdminPricing
	default:
		return o.SalesmanPricing
	}
}

// IsEditable reports whether the salesman may still change the items.
func (o *Order) IsEditable() bool {
	return o.Status == StatusPending && !o.Deleted
}

// Billable reports whether a bill may be derived from this order: it
// needs official pricing and must not be rejected, pending or deleted.
// Completed orders stay billable so a regular and a GST bill can
// coexist even when billing itself completes the order.
func (o *Order) Billable() bool {
	if o.Deleted {
		return false
	}
	switch o.Status {
	case StatusApproved, StatusAdminPriced, StatusCompleted:
	default:
		return false
	}
	return o.AdminPricing != nil || o.FinalPricing != nil
}
