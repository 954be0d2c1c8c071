package export

import (
	"html/template"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
)

const receiptHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Paid Invoices Receipt</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    table { width: 100%; border-collapse: collapse; margin-top: 20px; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; }
    .header { text-align: center; margin-bottom: 30px; }
    .total { font-weight: bold; background-color: #f9f9f9; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Paid Invoices Receipt</h1>
    <p>Generated on: {{.GeneratedOn}}</p>
  </div>
  <table>
    <thead>
      <tr>
        <th>Invoice ID</th>
        <th>Student Name</th>
        <th>Class</th>
        <th>Father Name</th>
        <th>Father Contact</th>
        <th>Amount</th>
        <th>Payment Date</th>
      </tr>
    </thead>
    <tbody>
{{- range .Rows}}
      <tr>
        <td>{{.ID}}</td>
        <td>{{.StudentName}}</td>
        <td>{{.Class}}</td>
        <td>{{.ParentName}}</td>
        <td>{{.ParentContact}}</td>
        <td>{{$.Currency}} {{.Amount}}</td>
        <td>{{.PaymentDate}}</td>
      </tr>
{{- end}}
      <tr class="total">
        <td colspan="5">Total</td>
        <td>{{.Currency}} {{.Total}}</td>
        <td></td>
      </tr>
    </tbody>
  </table>
</body>
</html>
`

const notAvailable = "N/A"

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptHTML))

type (
	receiptRow struct {
		ID            string
		StudentName   string
		Class         string
		ParentName    string
		ParentContact string
		Amount        decimal.Decimal
		PaymentDate   string
	}

	receiptData struct {
		GeneratedOn string
		Currency    string
		Rows        []receiptRow
		Total       decimal.Decimal
	}
)

// RenderReceipt writes a printable HTML page listing the paid invoices with a total row.
// Missing amounts count as 0; missing parent details show as N/A.
func RenderReceipt(w io.Writer, rows []invoice.PaidInvoice, currency string, generatedAt time.Time) error {
	data := receiptData{
		GeneratedOn: displayDate(generatedAt),
		Currency:    currency,
		Rows:        make([]receiptRow, 0, len(rows)),
		Total:       Total(rows),
	}
	for _, r := range rows {
		paymentDate := ""
		if t, err := core.ParseDate(r.PaymentDate.String); r.PaymentDate.Valid && err == nil {
			paymentDate = displayDate(t)
		}
		data.Rows = append(data.Rows, receiptRow{
			ID:            r.ID,
			StudentName:   r.StudentName.String,
			Class:         r.StudentClass.String,
			ParentName:    orNA(r.ParentName.String),
			ParentContact: orNA(r.ParentContact.String),
			Amount:        amountOf(r),
			PaymentDate:   paymentDate,
		})
	}
	return errors.Wrap(receiptTmpl.Execute(w, data), "rendering receipt")
}

// Total sums the invoice amounts, missing ones counting as 0.
func Total(rows []invoice.PaidInvoice) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(amountOf(r))
	}
	return total
}

func amountOf(r invoice.PaidInvoice) decimal.Decimal {
	if !r.Amount.Valid {
		return decimal.Zero
	}
	return r.Amount.Decimal
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func displayDate(t time.Time) string {
	return t.Format("02/01/2006")
}
