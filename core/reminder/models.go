package reminder

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feeportal/backend/core/invoice"
)

const (
	MinDaysAhead = 1
	MaxDaysAhead = 30
)

// Reminder is one rendered fee reminder for an (invoice, parent) pair. It is never stored;
// only its SMSLog is.
type Reminder struct {
	ParentName  string          `json:"parent_name"`
	Phone       string          `json:"phone"`
	StudentName string          `json:"student_name"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"` // YYYY-MM-DD
	Message     string          `json:"message"`
	InvoiceID   string          `json:"invoice_id"`
	ChatLink    string          `json:"chat_link"`
}

// DueInvoice is an unpaid invoice joined to its student and the student's parents.
type DueInvoice struct {
	InvoiceID   string
	Amount      decimal.Decimal
	DueDate     string
	StudentName string
	Parents     []invoice.Parent // in join order
}

type SMSLog struct {
	ID          string    `db:"id"`
	TargetPhone string    `db:"target_phone"`
	Message     string    `db:"message"`
	CreatedAt   time.Time `db:"created_at"`
}

// Options of a reminder batch. A zero DaysAhead means the configured default.
type Options struct {
	DaysAhead int `query:"days_ahead" json:"days_ahead"`
}

// RemoteResult is the outcome reported by the hosted send-reminders function.
type RemoteResult struct {
	Success       bool   `json:"success"`
	RemindersSent int    `json:"remindersSent"`
	TotalInvoices int    `json:"totalInvoices"`
	Error         string `json:"error,omitempty"`
}

// Reachable reports whether a reminder can be sent to the parent, i.e. they have a non-blank phone.
// Parents failing it are skipped without error.
func Reachable(p invoice.Parent) bool {
	return strings.TrimSpace(p.Phone) != ""
}
