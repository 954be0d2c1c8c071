package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/feeportal/backend/apps/api/echo"
	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/portal"
	"github.com/feeportal/backend/tests"
)

func studentInvoice(inv invoice.Invoice, overdue bool) portal.StudentInvoice {
	return portal.StudentInvoice{
		ID:      inv.ID,
		Amount:  inv.Amount,
		DueDate: inv.DueDate,
		Status:  inv.Status,
		PayLink: inv.PayLink,
		Overdue: overdue,
	}
}

func Test_portalApi_searchStudents(t *testing.T) {
	app := setup(t)
	testutil.MockNow(t, &portal.NowFunc, testutil.Date(t, "2024-06-09"))

	path := func(name, class, roll string) string {
		v := make(url.Values)
		v.Add("name", name)
		v.Add("class", class)
		v.Add("roll", roll)
		return "/v1/portal/students?" + v.Encode()
	}

	ali := testutil.CreateStudent(t, app.invRepo, "Ali Khan", "5", "12")
	alina := testutil.CreateStudent(t, app.invRepo, "Alina", "6", "3")
	inv1 := testutil.CreateInvoice(t, app.invRepo, ali.ID, "2000", "2024-06-01", invoice.StatusUnpaid, testutil.Date(t, "2024-05-01"))
	inv2 := testutil.CreateInvoice(t, app.invRepo, ali.ID, "1500", "2024-06-20", invoice.StatusUnpaid, testutil.Date(t, "2024-05-01"))

	single := portal.SearchResult{
		Students: []invoice.Student{ali},
		Selected: &portal.StudentInvoices{
			Student:  ali,
			Invoices: []portal.StudentInvoice{studentInvoice(inv2, false), studentInvoice(inv1, true)},
		},
	}

	runHTTPTests(t, app.Server, []httpTest{
		{
			name: "no criteria", path: path(" ", "", ""),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: portal.ErrNoCriteria.Error()}),
		},
		{name: "no match", path: path("zed", "", ""), wantCode: http.StatusOK, wantData: marchallObj(t, httpNotice{Notice: portal.NoticeNoStudent})},
		{
			name: "several matches", path: path("ali", "", ""),
			wantCode: http.StatusOK, wantData: marchallObj(t, portal.SearchResult{Students: []invoice.Student{ali, alina}}),
		},
		{name: "single match", path: path("ALI", "5", "12"), wantCode: http.StatusOK, wantData: marchallObj(t, single)},
		{name: "student invoices", path: "/v1/portal/students/" + ali.ID, wantCode: http.StatusOK, wantData: marchallObj(t, single.Selected)},
		{
			name: "student not found", path: "/v1/portal/students/lol",
			wantCode: http.StatusOK, wantData: marchallObj(t, httpNotice{Notice: portal.NoticeStudentNotFound}),
		},
		{name: "pay link", path: "/v1/portal/pay/" + inv1.PayLink.String, wantCode: http.StatusOK, wantData: marchallObj(t, single.Selected)},
		{
			name: "pay link not found", path: "/v1/portal/pay/lol",
			wantCode: http.StatusOK, wantData: marchallObj(t, httpNotice{Notice: portal.NoticePayLinkNotFound}),
		},
	})
}

func Test_portalApi_submitPayment(t *testing.T) {
	app := setup(t)

	sara := testutil.CreateStudent(t, app.invRepo, "Sara", "3", "7")
	inv := testutil.CreateInvoice(t, app.invRepo, sara.ID, "2000", "2024-06-10", invoice.StatusUnpaid, testutil.Date(t, "2024-06-01"))
	paid := testutil.CreateInvoice(t, app.invRepo, sara.ID, "500", "2024-05-10", invoice.StatusPaid, testutil.Date(t, "2024-05-01"))
	path := func(id string) string { return "/v1/portal/invoices/" + id + "/payments" }

	runHTTPTests(t, app.Server, []httpTest{
		{name: "blank reference", method: http.MethodPost, path: path(inv.ID), body: []byte(`{"reference_number": "  "}`), wantCode: http.StatusBadRequest},
		{
			name: "invoice not found", method: http.MethodPost, path: path("lol"), body: []byte(`{"reference_number": "TX1"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "already paid", method: http.MethodPost, path: path(paid.ID), body: []byte(`{"reference_number": "TX1"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: portal.ErrAlreadyPaid.Error()}),
		},
	})
	assert.Empty(t, app.db.Payments())

	req, rec := newRequest(http.MethodPost, path(inv.ID), []byte(`{"reference_number": " TX-42 "}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res PaymentResponse
	unmarchall(t, rec, &res)
	assert.NotEmpty(t, res.Success)
	assert.Equal(t, inv.ID, res.Payment.InvoiceID)
	assert.Equal(t, "TX-42", res.Payment.ReferenceNumber)
	assert.Equal(t, portal.PaymentPending, res.Payment.Status)
	assert.Len(t, app.db.Payments(), 1)
	assert.Len(t, app.mailSvc.SentMessages(), 1)
}
