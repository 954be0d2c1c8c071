package tests

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/feeportal/backend/apps/api/echo"
	"github.com/feeportal/backend/core/export"
	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/tests"
)

func Test_invoiceApi_query(t *testing.T) {
	app := setup(t)

	path := func(search, status, ordering string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if status != "" {
			v.Add("status", status)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		return "/v1/invoices?" + v.Encode()
	}

	ali := testutil.CreateStudent(t, app.invRepo, "Ali Khan", "5", "12")
	sara := testutil.CreateStudent(t, app.invRepo, "Sara", "3", "7")
	inv1 := testutil.CreateInvoice(t, app.invRepo, ali.ID, "2000", "2024-06-10", invoice.StatusUnpaid, testutil.Date(t, "2024-06-01"))
	inv2 := testutil.CreateInvoice(t, app.invRepo, sara.ID, "1500", "2024-05-10", invoice.StatusPaid, testutil.Date(t, "2024-06-02"))
	inv3 := testutil.CreateInvoice(t, app.invRepo, "", "700", "2024-07-20", invoice.StatusDraft, testutil.Date(t, "2024-06-03"))

	token := getToken(t, "Bursar")
	empty := marchallList(t)

	runHTTPTests(t, app.Server, []httpTest{
		{name: "Auth required", path: "/v1/invoices", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", path: "/v1/invoices", token: signToken(t, &Claims{Name: "Parent"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Get all", path: "/v1/invoices", token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv3, inv2, inv1)},
		{name: "search (unknown)", path: path("lol", "", ""), token: token, wantCode: http.StatusOK, wantData: empty},
		{name: "search=ali", path: path("ali", "", ""), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv1)},
		{name: "search by amount", path: path("1500", "", ""), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv2)},
		{name: "search by due date", path: path("2024-07", "", ""), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv3)},
		{name: "status=all", path: path("", "all", ""), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv3, inv2, inv1)},
		{name: "status=unpaid", path: path("", "unpaid", ""), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv1)},
		{name: "status (invalid)", path: path("", "late", ""), token: token, wantCode: http.StatusBadRequest},
		{name: "search and status", path: path("2024", "paid", ""), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv2)},
		{name: "ordering=amount", path: path("", "", "amount"), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv3, inv2, inv1)},
		{name: "ordering=-due_date", path: path("", "", "-due_date"), token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv3, inv1, inv2)},
	})
}

func Test_invoiceApi_create(t *testing.T) {
	app := setup(t)
	testutil.MockNow(t, &invoice.NowFunc, testutil.Date(t, "2024-06-09"))

	ali := testutil.CreateStudent(t, app.invRepo, "Ali", "5", "12")
	token := getToken(t, "Bursar")

	runHTTPTests(t, app.Server, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/invoices", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "negative amount", method: http.MethodPost, path: "/v1/invoices", token: token,
			body:     []byte(`{"amount": "-1", "due_date": "2024-06-10"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"amount": "amount cannot be negative"}`),
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/invoices", token: token,
			body:     []byte(`{"student_id": "lol", "amount": "10", "due_date": "2024-06-10"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"student_id": "student not found"}`),
		},
		{
			name: "missing due date", method: http.MethodPost, path: "/v1/invoices", token: token,
			body: []byte(`{"amount": "10"}`), wantCode: http.StatusBadRequest,
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/invoices", token,
		[]byte(`{"student_id": "`+ali.ID+`", "amount": "2000", "due_date": "2024-06-10", "status": "paid"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created invoice.Invoice
	unmarchall(t, rec, &created)
	assert.Equal(t, "2000", created.Amount.String())
	assert.Equal(t, invoice.StatusPaid, created.Status)
	assert.Equal(t, "2024-06-09", created.PaymentDate.String)
	assert.True(t, created.PayLink.Valid)
	if assert.NotNil(t, created.Student) {
		assert.Equal(t, ali, *created.Student)
	}
}

func Test_invoiceApi_detail(t *testing.T) {
	app := setup(t)
	testutil.MockNow(t, &invoice.NowFunc, testutil.Date(t, "2024-06-09"))

	ali := testutil.CreateStudent(t, app.invRepo, "Ali", "5", "12")
	inv := testutil.CreateInvoice(t, app.invRepo, ali.ID, "2000", "2024-06-10", invoice.StatusDraft, testutil.Date(t, "2024-06-01"))
	token := getToken(t, "Bursar")
	detail := "/v1/invoices/" + inv.ID

	unpaid := inv
	unpaid.Status = invoice.StatusUnpaid
	paid := unpaid
	paid.Status = invoice.StatusPaid
	paid.PaymentDate.SetValid("2024-06-09")

	runHTTPTests(t, app.Server, []httpTest{
		{name: "Auth required", path: detail, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "not found", path: "/v1/invoices/lol", token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "retrieve", path: detail, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, inv)},
		{
			name: "update: empty body", method: http.MethodPut, path: detail, token: token,
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "nothing to update"}),
		},
		{
			name: "update: status", method: http.MethodPut, path: detail, token: token,
			body: []byte(`{"status": "unpaid"}`), wantCode: http.StatusOK, wantData: marchallObj(t, unpaid),
		},
		{name: "mark as paid", method: http.MethodPost, path: detail + "/pay", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, paid)},
		{name: "mark as paid: idempotent", method: http.MethodPost, path: detail + "/pay", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, paid)},
		{
			name: "update: status cannot move back", method: http.MethodPut, path: detail, token: token,
			body:     []byte(`{"status": "draft"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"status": "status cannot move back from \"paid\" to \"draft\""}`),
		},
		{name: "destroy", method: http.MethodDelete, path: detail, token: token, wantCode: http.StatusNoContent},
		{name: "destroyed", path: detail, token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	})
}

func Test_invoiceApi_destroyMultiple(t *testing.T) {
	app := setup(t)

	inv1 := testutil.CreateInvoice(t, app.invRepo, "", "1", "2024-06-10", invoice.StatusUnpaid, testutil.Date(t, "2024-06-01"))
	inv2 := testutil.CreateInvoice(t, app.invRepo, "", "2", "2024-06-10", invoice.StatusUnpaid, testutil.Date(t, "2024-06-02"))
	inv3 := testutil.CreateInvoice(t, app.invRepo, "", "3", "2024-06-10", invoice.StatusUnpaid, testutil.Date(t, "2024-06-03"))
	token := getToken(t, "Bursar")

	runHTTPTests(t, app.Server, []httpTest{
		{name: "Auth required", method: http.MethodDelete, path: "/v1/invoices", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "no ids", method: http.MethodDelete, path: "/v1/invoices", token: token, wantCode: http.StatusNoContent},
		{
			name: "delete two", method: http.MethodDelete, path: "/v1/invoices?id=" + inv1.ID + "&id=" + inv3.ID + "&id=lol",
			token: token, wantCode: http.StatusNoContent,
		},
		{name: "remaining", path: "/v1/invoices", token: token, wantCode: http.StatusOK, wantData: marchallList(t, inv2)},
	})
}

func Test_invoiceApi_export(t *testing.T) {
	app := setup(t)
	testutil.MockNow(t, &invoice.NowFunc, testutil.Date(t, "2024-06-09"))
	token := getToken(t, "Bursar")

	runHTTPTests(t, app.Server, []httpTest{
		{name: "Auth required", path: "/v1/invoices/export/csv", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "csv: nothing paid", path: "/v1/invoices/export/csv", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, httpNotice{Notice: export.NoticeNoPaidInvoices}),
		},
		{
			name: "receipt: nothing paid", path: "/v1/invoices/export/receipt", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, httpNotice{Notice: export.NoticeNoReceipt}),
		},
	})

	ali := testutil.CreateStudent(t, app.invRepo, "Ali", "5", "12")
	testutil.CreateInvoice(t, app.invRepo, ali.ID, "1000", "2024-06-10", invoice.StatusPaid, testutil.Date(t, "2024-06-01"), "2024-06-08")
	testutil.CreateInvoice(t, app.invRepo, ali.ID, "2500", "2024-05-10", invoice.StatusPaid, testutil.Date(t, "2024-05-01"), "2024-05-08")
	testutil.CreateInvoice(t, app.invRepo, ali.ID, "900", "2024-07-10", invoice.StatusUnpaid, testutil.Date(t, "2024-06-01"))

	req, rec := newAuthRequest(http.MethodGet, "/v1/invoices/export/csv", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="paid-invoices-2024-06-09.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"1000","2024-06-10","2024-06-08"`)
	assert.Contains(t, lines[2], `"2500","2024-05-10","2024-05-08"`)

	req, rec = newAuthRequest(http.MethodGet, "/v1/invoices/export/receipt", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="paid-invoices-receipt-2024-06-09.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "<td>PKR 3500</td>")
}
