package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/tests"
)

func newExportMessage(t *testing.T) *core.EmailMessage {
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: "Bursar", Address: "bursar@school.pk"}},
		Subject: "Paid invoices export",
		BodyStr: "Attached: paid-invoices-2024-06-09.csv (1 paid invoices).",
	}
	err := msg.Attach(strings.NewReader("\"Sara\",\"1500\"\n"), "paid-invoices-2024-06-09.csv", "text/csv")
	require.NoError(t, err)
	return msg
}

func TestConsoleService_attachments(t *testing.T) {
	conf := core.NewTestConfig()
	out := new(bytes.Buffer)
	svc := &consoleService{
		defaultFromEmail: conf.DefaultFromEmail(),
		subjPrefix:       "[FeePortal] ",
		out:              out,
		logger:           testutil.NewLogger(conf),
	}

	svc.SendMessages(newExportMessage(t))
	svc.Wait()

	doc := out.String()
	assert.Contains(t, doc, "Subject: [FeePortal] Paid invoices export")
	assert.Contains(t, doc, "To: \"Bursar\" <bursar@school.pk>")
	assert.Contains(t, doc, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, doc, "Content-Disposition: attachment; filename=paid-invoices-2024-06-09.csv")
	assert.Contains(t, doc, "IlNhcmEiLCIxNTAwIgo=") // base64 of the CSV
	assert.Contains(t, doc, "Attached: paid-invoices-2024-06-09.csv")
}

func TestConsoleService_skipsEmptyMessages(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, testutil.NewLogger(conf))

	svc.SendMessages(&core.EmailMessage{Subject: "no recipients", BodyStr: "x"})
	svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "a@b.pk"}}, Subject: "no content"})
	svc.Wait()
	assert.Empty(t, svc.SentMessages())
}

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSendgridService(conf, testutil.NewLogger(conf)).(*sendgridService)

	msg := newExportMessage(t)
	require.NoError(t, msg.Render())
	m := svc.prepare(*msg)

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[FeePortal] Paid invoices export", m.Personalizations[0].Subject)
	assert.Equal(t, "bursar@school.pk", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 1, "no html part without html content")
	assert.Equal(t, "text/plain", m.Content[0].Type)

	require.Len(t, m.Attachments, 1)
	at := m.Attachments[0]
	assert.Equal(t, "IlNhcmEiLCIxNTAwIgo=", at.Content)
	assert.Equal(t, "text/csv", at.Type)
	assert.Equal(t, "paid-invoices-2024-06-09.csv", at.Filename)
	assert.Equal(t, "attachment", at.Disposition)
}
