package export

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/reminder"
)

var (
	invoicesHeader  = []string{"invoice_id", "student_name", "class", "roll", "amount", "due_date", "payment_date", "created_at", "father_name", "father_contact"}
	remindersHeader = []string{"phone", "message", "student", "amount", "due_date"}
)

// quotedWriter writes CSV records with every field quoted.
type quotedWriter struct {
	w   *bufio.Writer
	err error
}

func newQuotedWriter(w io.Writer) *quotedWriter {
	return &quotedWriter{w: bufio.NewWriter(w)}
}

func (qw *quotedWriter) writeRaw(line string) {
	if qw.err == nil {
		_, qw.err = qw.w.WriteString(line)
	}
}

func (qw *quotedWriter) write(fields ...string) {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	qw.writeRaw(strings.Join(quoted, ",") + "\n")
}

func (qw *quotedWriter) flush() error {
	if qw.err != nil {
		return qw.err
	}
	return qw.w.Flush()
}

// WriteInvoicesCSV writes the paid invoices export. The header is always written;
// missing values are empty and a missing amount is 0.
func WriteInvoicesCSV(w io.Writer, rows []invoice.PaidInvoice) error {
	qw := newQuotedWriter(w)
	qw.writeRaw(strings.Join(invoicesHeader, ",") + "\n")
	for _, r := range rows {
		createdAt := ""
		if r.CreatedAt.Valid {
			createdAt = r.CreatedAt.Time.UTC().Format(time.RFC3339)
		}
		qw.write(
			r.ID,
			r.StudentName.String,
			r.StudentClass.String,
			r.StudentRoll.String,
			amountOf(r).String(),
			r.DueDate.String,
			r.PaymentDate.String,
			createdAt,
			r.ParentName.String,
			r.ParentContact.String,
		)
	}
	return errors.Wrap(qw.flush(), "writing invoices csv")
}

// WriteRemindersCSV writes one row per reminder under the `phone,message,student,amount,due_date` header.
func WriteRemindersCSV(w io.Writer, reminders []reminder.Reminder) error {
	qw := newQuotedWriter(w)
	qw.writeRaw(strings.Join(remindersHeader, ",") + "\n")
	for _, r := range reminders {
		qw.write(r.Phone, r.Message, r.StudentName, r.Amount.String(), r.DueDate)
	}
	return errors.Wrap(qw.flush(), "writing reminders csv")
}

// JoinMessages joins the reminder messages with a blank line, ready to be copied at once.
func JoinMessages(reminders []reminder.Reminder) string {
	msgs := make([]string, len(reminders))
	for i, r := range reminders {
		msgs[i] = r.Message
	}
	return strings.Join(msgs, "\n\n")
}
