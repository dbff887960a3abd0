package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wims-erp/wims/internal/bills"
)

func sampleBill() *bills.Bill {
	return &bills.Bill{
		BillNumber:  "BILL-20260829-0001",
		BillType:    bills.TypeGST,
		OrderNumber: "ORD-20260829-0001",
		ClientName:  "Acme Traders",
		GSTNumber:   "27AAAAA0000A1Z5",
		Items: []bills.BillItem{
			{Name: "Mango Crush 500ml", Quantity: 10, Unit: "case", UnitPrice: 110, LineTotal: 1100},
			{Name: "Lime Soda 1L", Quantity: 5, Unit: "case", UnitPrice: 210, LineTotal: 1050},
		},
		Subtotal:  2150,
		Tax:       215,
		Total:     2365,
		CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildInvoiceDataFormatsMoney(t *testing.T) {
	data := BuildInvoiceData(sampleBill(), CompanyInfo{Name: "WIMS Beverages"})

	assert.Equal(t, "GST Invoice", data.BillType)
	assert.Equal(t, "₹2,150.00", data.Subtotal)
	assert.Equal(t, "₹215.00", data.Tax)
	assert.Equal(t, "₹2,365.00", data.Total)
	require.Len(t, data.Lines, 2)
	assert.Equal(t, "₹110.00", data.Lines[0].UnitPrice)
}

func TestRenderIncludesLetterheadAndLines(t *testing.T) {
	renderer, err := NewInvoiceRenderer()
	require.NoError(t, err)

	html, err := renderer.Render(BuildInvoiceData(sampleBill(), CompanyInfo{
		Name:      "WIMS Beverages",
		GSTNumber: "27BBBBB0000B1Z5",
	}))
	require.NoError(t, err)

	assert.True(t, strings.Contains(html, "WIMS Beverages"))
	assert.True(t, strings.Contains(html, "BILL-20260829-0001"))
	assert.True(t, strings.Contains(html, "Mango Crush 500ml"))
	assert.True(t, strings.Contains(html, "₹2,365.00"))
	assert.True(t, strings.Contains(html, "GSTIN: 27BBBBB0000B1Z5"))
}

func TestRenderEscapesClientInput(t *testing.T) {
	renderer, err := NewInvoiceRenderer()
	require.NoError(t, err)

	bill := sampleBill()
	bill.ClientName = "<script>alert(1)</script>"
	html, err := renderer.Render(BuildInvoiceData(bill, CompanyInfo{Name: "WIMS Beverages"}))
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>alert(1)</script>"))
}
