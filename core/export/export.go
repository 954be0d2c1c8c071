// Package export renders the downloadable artifacts of the admin dashboard.
// Renderers are pure: they only write to the given io.Writer.
package export

import (
	"fmt"
	"time"

	"github.com/feeportal/backend/core"
)

// Artifact kinds, used as download file name prefixes.
const (
	KindPaidInvoices = "paid-invoices"
	KindReceipt      = "paid-invoices-receipt"
	KindReminders    = "fee-reminders"

	ExtCSV  = "csv"
	ExtHTML = "html"

	MIMETextCSV  = "text/csv"
	MIMETextHTML = "text/html"

	NoticeNoPaidInvoices = "No paid invoices found to export."
	NoticeNoReceipt      = "No paid invoices found to generate receipt."
)

// Filename returns `<kind>-<YYYY-MM-DD>.<ext>`.
func Filename(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", kind, core.Today(now), ext)
}
