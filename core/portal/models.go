package portal

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
)

const (
	PaymentPending = "pending"

	SearchLimit = 10
)

// StudentQuery holds the parent search criteria; at least one is required.
// Name is matched case-insensitively as a substring, Class and Roll exactly.
type StudentQuery struct {
	Name  string `query:"name" json:"name"`
	Class string `query:"class" json:"class"`
	Roll  string `query:"roll" json:"roll"`
}

func (q *StudentQuery) Clean() {
	q.Name = core.CleanString(q.Name)
	q.Class = core.CleanString(q.Class)
	q.Roll = core.CleanString(q.Roll)
}

func (q StudentQuery) IsEmpty() bool {
	return q.Name == "" && q.Class == "" && q.Roll == ""
}

type StudentInvoice struct {
	ID      string          `json:"id"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"`
	Status  invoice.Status  `json:"status"`
	PayLink null.String     `json:"pay_link"`
	Overdue bool            `json:"overdue"`
}

// StudentInvoices is a student with all their invoices, latest due date first.
type StudentInvoices struct {
	Student  invoice.Student  `json:"student"`
	Invoices []StudentInvoice `json:"invoices"`
}

// SearchResult lists the matching students. A single match comes with its invoices.
type SearchResult struct {
	Students []invoice.Student `json:"students"`
	Selected *StudentInvoices  `json:"selected,omitempty"`
}

type Payment struct {
	ID              string    `json:"id" db:"id"`
	InvoiceID       string    `json:"invoice_id" db:"invoice_id"`
	ReferenceNumber string    `json:"reference_number" db:"reference_number"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewPayment is the payment confirmation submitted by a parent.
type NewPayment struct {
	ReferenceNumber string `json:"reference_number" validate:"notblank"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.ReferenceNumber = core.CleanString(np.ReferenceNumber)
	return validate.Struct(np)
}

// paymentNotice feeds the bursar notification email.
type paymentNotice struct {
	InvoiceID   string
	StudentName string
	Currency    string
	Amount      decimal.Decimal
	DueDate     string
	Reference   string
}
