package tests

import (
	"net/http"
	"testing"

	. "github.com/feeportal/backend/apps/api/echo"
	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/portal"
	"github.com/feeportal/backend/core/reminder"
	"github.com/feeportal/backend/services/email"
	"github.com/feeportal/backend/storage/database/dummy"
	"github.com/feeportal/backend/tests"
)

var (
	testConf = core.NewTestConfig()

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type testApp struct {
	*Server
	db      *dummydb.DB
	invRepo invoice.Repository
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T, remote ...reminder.RemoteClient) *testApp {
	logger := testutil.NewLogger(testConf)
	core.ParseEmailTemplates(testConf, logger)
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := dummydb.Open()
	invRepo := dummydb.NewInvoiceRepository(db)

	// set up services
	var remoteClient reminder.RemoteClient
	if len(remote) > 0 {
		remoteClient = remote[0]
	}
	mailSvc := emailsvc.NewConsoleServiceMock(testConf, logger)

	// set up server
	srv := NewServer(
		ServerDeps{
			Conf:        testConf,
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
			InvoiceSvc:  invoice.NewService(invRepo),
			ReminderSvc: reminder.NewService(dummydb.NewReminderRepository(db), remoteClient, testConf, logger),
			PortalSvc:   portal.NewService(dummydb.NewPortalRepository(db), mailSvc, testConf),
		},
	)
	return &testApp{Server: srv, db: db, invRepo: invRepo, mailSvc: mailSvc}
}

func TestServer_home(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	if want := "Welcome to FeePortal API!"; rec.Body.String() != want {
		t.Errorf("failed! body = %q; want %q", rec.Body.String(), want)
	}
}
