package bills

import "time"

// BillType selects the tax treatment printed on the bill.
type BillType string

const (
	TypeGST     BillType = "gst"
	TypeRegular BillType = "regular"
)

// Status tracks a bill through back-office processing.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusVerified  Status = "verified"
	StatusProcessed Status = "processed"
	StatusRejected  Status = "rejected"
)

// BillItem is one priced line copied from the source order at
// generation time.
type BillItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Volume    string  `json:"volume,omitempty"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Bill is a frozen copy of an order's authoritative pricing. Amounts are
// stamped at generation and never recomputed, so later changes to the
// order do not leak into issued bills.
type Bill struct {
	ID          string   `json:"id"`
	BillNumber  string   `json:"billNumber"`
	BillType    BillType `json:"billType"`
	OrderID     string   `json:"orderId"`
	OrderNumber string   `json:"orderNumber"`

	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
	GSTNumber  string `json:"gstNumber,omitempty"`

	Items    []BillItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Total    float64    `json:"total"`

	Status          Status `json:"status"`
	Notes           string `json:"notes,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`

	GeneratedBy string     `json:"generatedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// GenerateBillRequest asks for a bill of one type from an order.
type GenerateBillRequest struct {
	OrderID   string   `json:"orderId" validate:"required"`
	BillType  BillType `json:"billType" validate:"required,oneof=gst regular"`
	GSTNumber string   `json:"gstNumber,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// RejectBillRequest carries the mandatory rejection reason.
type RejectBillRequest struct {
	Reason string `json:"reason" validate:"required"`
}
