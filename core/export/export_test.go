package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/reminder"
)

func paidRow(id, amount string) invoice.PaidInvoice {
	row := invoice.PaidInvoice{ID: id}
	if amount != "" {
		row.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	return row
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "paid-invoices-2024-06-09.csv", Filename(KindPaidInvoices, ExtCSV, now))
	assert.Equal(t, "paid-invoices-receipt-2024-06-09.html", Filename(KindReceipt, ExtHTML, now))
	assert.Equal(t, "fee-reminders-2024-06-09.csv", Filename(KindReminders, ExtCSV, now))
}

func TestWriteInvoicesCSV(t *testing.T) {
	full := paidRow("inv-1", "1500")
	full.StudentName = null.StringFrom(`Ali "Junior" Khan`)
	full.StudentClass = null.StringFrom("5")
	full.StudentRoll = null.StringFrom("12")
	full.DueDate = null.StringFrom("2024-06-10")
	full.PaymentDate = null.StringFrom("2024-06-08")
	full.CreatedAt = null.TimeFrom(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))
	full.ParentName = null.StringFrom("Ahmed")
	full.ParentContact = null.StringFrom("0300-1234567")

	var buf bytes.Buffer
	require.NoError(t, WriteInvoicesCSV(&buf, []invoice.PaidInvoice{full, paidRow("inv-2", "")}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "invoice_id,student_name,class,roll,amount,due_date,payment_date,created_at,father_name,father_contact", lines[0])
	assert.Equal(t,
		`"inv-1","Ali ""Junior"" Khan","5","12","1500","2024-06-10","2024-06-08","2024-06-01T08:30:00Z","Ahmed","0300-1234567"`,
		lines[1],
	)
	assert.Equal(t, `"inv-2","","","","0","","","","",""`, lines[2], "missing values are empty")
}

func TestWriteInvoicesCSV_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoicesCSV(&buf, nil))
	assert.Equal(t, strings.Join(invoicesHeader, ",")+"\n", buf.String())
}

func TestWriteRemindersCSV(t *testing.T) {
	reminders := []reminder.Reminder{
		{Phone: "0300-1234567", Message: "line one, \"quoted\"", StudentName: "Ali", Amount: decimal.RequireFromString("2000"), DueDate: "2024-06-10"},
		{Phone: "03211234567", Message: "second", StudentName: "Sara", Amount: decimal.RequireFromString("1500"), DueDate: "2024-06-11"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRemindersCSV(&buf, reminders))
	assert.Equal(t,
		"phone,message,student,amount,due_date\n"+
			`"0300-1234567","line one, ""quoted""","Ali","2000","2024-06-10"`+"\n"+
			`"03211234567","second","Sara","1500","2024-06-11"`+"\n",
		buf.String(),
	)
	assert.Equal(t, "line one, \"quoted\"\n\nsecond", JoinMessages(reminders))
}

func TestRenderReceipt(t *testing.T) {
	rows := []invoice.PaidInvoice{paidRow("inv-1", "1000"), paidRow("inv-2", ""), paidRow("inv-3", "2500")}
	rows[0].StudentName = null.StringFrom("Ali")
	rows[0].ParentName = null.StringFrom("Ahmed")
	rows[0].PaymentDate = null.StringFrom("2024-06-08")

	assert.Equal(t, "3500", Total(rows).String())

	var buf bytes.Buffer
	require.NoError(t, RenderReceipt(&buf, rows, "PKR", time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)))
	html := buf.String()

	assert.Contains(t, html, "Generated on: 09/06/2024")
	assert.Contains(t, html, "<td>Ahmed</td>")
	assert.Contains(t, html, "<td>08/06/2024</td>")
	assert.Contains(t, html, "<td>PKR 1000</td>")
	assert.Contains(t, html, "<td>PKR 0</td>", "missing amounts count as 0")
	assert.Contains(t, html, `<td colspan="5">Total</td>`)
	assert.Contains(t, html, "<td>PKR 3500</td>")
	assert.Equal(t, 5, strings.Count(html, "<td>N/A</td>"), "missing parent details")
}

func TestRenderReceipt_escapes(t *testing.T) {
	row := paidRow("inv-1", "1")
	row.StudentName = null.StringFrom("<script>x</script>")

	var buf bytes.Buffer
	require.NoError(t, RenderReceipt(&buf, []invoice.PaidInvoice{row}, "PKR", time.Now()))
	assert.NotContains(t, buf.String(), "<script>x</script>")
}
