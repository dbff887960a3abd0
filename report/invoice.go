package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wims-erp/wims/internal/bills"
	"github.com/wims-erp/wims/internal/shared"
)

// CompanyInfo is the letterhead printed on every invoice.
type CompanyInfo struct {
	Name      string
	Address   string
	Phone     string
	GSTNumber string
}

// InvoiceLine is one pre-formatted bill line.
type InvoiceLine struct {
	Name      string
	Volume    string
	Quantity  float64
	Unit      string
	UnitPrice string
	LineTotal string
}

// InvoiceData is everything the invoice template needs, with all money
// already formatted for display.
type InvoiceData struct {
	Company     CompanyInfo
	BillNumber  string
	BillType    string
	OrderNumber string
	ClientName  string
	GSTNumber   string
	Lines       []InvoiceLine
	Subtotal    string
	Tax         string
	Total       string
	IssuedAt    string
}

// BuildInvoiceData projects a bill onto the template model.
func BuildInvoiceData(bill *bills.Bill, company CompanyInfo) InvoiceData {
	lines := make([]InvoiceLine, 0, len(bill.Items))
	for _, item := range bill.Items {
		lines = append(lines, InvoiceLine{
			Name:      item.Name,
			Volume:    item.Volume,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			UnitPrice: shared.FormatINR(item.UnitPrice),
			LineTotal: shared.FormatINR(item.LineTotal),
		})
	}

	billType := "Invoice"
	if bill.BillType == bills.TypeGST {
		billType = "GST Invoice"
	}

	return InvoiceData{
		Company:     company,
		BillNumber:  bill.BillNumber,
		BillType:    billType,
		OrderNumber: bill.OrderNumber,
		ClientName:  bill.ClientName,
		GSTNumber:   bill.GSTNumber,
		Lines:       lines,
		Subtotal:    shared.FormatINR(bill.Subtotal),
		Tax:         shared.FormatINR(bill.Tax),
		Total:       shared.FormatINR(bill.Total),
		IssuedAt:    bill.CreatedAt.Format(time.RFC1123),
	}
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.BillType}} {{.BillNumber}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; margin-bottom: 0; }
table { width: 100%; border-collapse: collapse; margin-top: 1.5em; }
th, td { border: 1px solid #999; padding: 6px 10px; text-align: left; }
tfoot td { font-weight: bold; }
.meta { margin-top: 1em; }
.right { text-align: right; }
</style>
</head>
<body>
<h1>{{.Company.Name}}</h1>
<p>{{.Company.Address}}<br>{{.Company.Phone}}{{if .Company.GSTNumber}}<br>GSTIN: {{.Company.GSTNumber}}{{end}}</p>
<div class="meta">
<strong>{{.BillType}} {{.BillNumber}}</strong><br>
Order: {{.OrderNumber}}<br>
Billed to: {{.ClientName}}{{if .GSTNumber}}<br>Client GSTIN: {{.GSTNumber}}{{end}}<br>
Issued: {{.IssuedAt}}
</div>
<table>
<thead>
<tr><th>Item</th><th>Volume</th><th class="right">Qty</th><th class="right">Unit Price</th><th class="right">Amount</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Volume}}</td><td class="right">{{.Quantity}} {{.Unit}}</td><td class="right">{{.UnitPrice}}</td><td class="right">{{.LineTotal}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="4" class="right">Subtotal</td><td class="right">{{.Subtotal}}</td></tr>
<tr><td colspan="4" class="right">Tax</td><td class="right">{{.Tax}}</td></tr>
<tr><td colspan="4" class="right">Total</td><td class="right">{{.Total}}</td></tr>
</tfoot>
</table>
</body>
</html>`

// InvoiceRenderer renders bills into printable HTML.
type InvoiceRenderer struct {
	tmpl *template.Template
}

// NewInvoiceRenderer parses the invoice template.
func NewInvoiceRenderer() (*InvoiceRenderer, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &InvoiceRenderer{tmpl: tmpl}, nil
}

// Render produces the invoice HTML for one bill.
func (r *InvoiceRenderer) Render(data InvoiceData) (string, error) {
	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render invoice %s: %w", data.BillNumber, err)
	}
	return buf.String(), nil
}
