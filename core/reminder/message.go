package reminder

import (
	"net/url"
	"regexp"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/feeportal/backend/core"
)

const (
	DefaultCurrency   = "PKR"
	DefaultChatDomain = "wa.me"

	countryCode = "92"
)

var (
	nonDigits = regexp.MustCompile(`\D`)

	messageTmpl = template.Must(template.New("reminder").Funcs(template.FuncMap{
		"dmy": displayDate,
	}).Parse(
		`Assalamualaikum {{.ParentName}}, {{.StudentName}} ki fees {{.Currency}} {{.Amount}} due hai (Due: {{dmy .DueDate}}). Pay link: {{.PayLink}}`,
	))
)

// MessageData feeds the reminder message template.
type MessageData struct {
	ParentName  string
	StudentName string
	Currency    string
	Amount      decimal.Decimal
	DueDate     string // YYYY-MM-DD
	PayLink     string
}

// RenderMessage renders the bilingual reminder text. The due date is shown as DD/MM/YYYY.
func RenderMessage(data MessageData) string {
	if data.Currency == "" {
		data.Currency = DefaultCurrency
	}
	var b strings.Builder
	_ = messageTmpl.Execute(&b, data) // fields are plain values; execution cannot fail
	return b.String()
}

// PayLink returns the payment URL of an invoice.
func PayLink(baseURL, invoiceID string) string {
	return strings.TrimRight(baseURL, "/") + "/" + invoiceID
}

// displayDate formats a YYYY-MM-DD date as DD/MM/YYYY, leaving unparsable values as is.
func displayDate(s string) string {
	t, err := core.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// CanonicalPhone keeps the digits of phone and prefixes the country code when missing,
// dropping one trunk "0". Canonical numbers are returned unchanged.
func CanonicalPhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, countryCode) {
		return digits
	}
	return countryCode + strings.TrimPrefix(digits, "0")
}

// ChatLink returns the chat deep link opening a conversation with phone, prefilled with message.
func ChatLink(domain, phone, message string) string {
	if domain == "" {
		domain = DefaultChatDomain
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://" + domain + "/" + CanonicalPhone(phone) + "?text=" + text
}
