package invoice_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/storage/database/dummy"
	"github.com/feeportal/backend/tests"
)

func setup(t *testing.T) (*invoice.Service, invoice.Repository) {
	repo := dummydb.NewInvoiceRepository(dummydb.Open())
	testutil.MockNow(t, &invoice.NowFunc, testutil.Date(t, "2024-06-09"))
	return invoice.NewService(repo), repo
}

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	ali := testutil.CreateStudent(t, repo, "Ali", "5", "12")

	inv, err := svc.Create(ctx, invoice.NewInvoice{StudentID: ali.ID, Amount: decimal.RequireFromString("2000"), DueDate: "2024-06-10"})
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusUnpaid, inv.Status, "status defaults to unpaid")
	assert.False(t, inv.PaymentDate.Valid)
	assert.True(t, inv.PayLink.Valid)
	if assert.NotNil(t, inv.Student) {
		assert.Equal(t, "Ali", inv.Student.Name)
	}

	paid, err := svc.Create(ctx, invoice.NewInvoice{Amount: decimal.RequireFromString("10"), DueDate: "2024-06-01", Status: invoice.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-09", paid.PaymentDate.String)
	assert.Nil(t, paid.Student)

	_, err = svc.Create(ctx, invoice.NewInvoice{StudentID: "nope", DueDate: "2024-06-10"})
	var vErr *core.ValidationError
	if assert.True(t, errors.As(err, &vErr)) {
		assert.Equal(t, "student_id", vErr.Fields[0].Field)
	}
}

func TestNewInvoice_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	tests := []struct {
		name    string
		ni      invoice.NewInvoice
		wantErr bool
	}{
		{name: "valid", ni: invoice.NewInvoice{Amount: decimal.RequireFromString("1"), DueDate: " 2024-06-10 ", Status: " PAID "}},
		{name: "zero amount", ni: invoice.NewInvoice{DueDate: "2024-06-10"}},
		{name: "negative amount", ni: invoice.NewInvoice{Amount: decimal.RequireFromString("-1"), DueDate: "2024-06-10"}, wantErr: true},
		{name: "missing due date", ni: invoice.NewInvoice{Amount: decimal.RequireFromString("1")}, wantErr: true},
		{name: "bad due date", ni: invoice.NewInvoice{DueDate: "10/06/2024"}, wantErr: true},
		{name: "unknown status", ni: invoice.NewInvoice{DueDate: "2024-06-10", Status: "late"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ni.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	ali := testutil.CreateStudent(t, repo, "Ali", "5", "12")
	inv := testutil.CreateInvoice(t, repo, ali.ID, "2000", "2024-06-10", invoice.StatusDraft, testutil.Date(t, "2024-06-01"))

	_, err := svc.Update(ctx, inv.ID, invoice.UpdateInvoice{})
	assert.Error(t, err, "empty update")

	_, err = svc.Update(ctx, "missing", invoice.UpdateInvoice{DueDate: "2024-06-11"})
	assert.Equal(t, invoice.ErrNotFound, errors.Cause(err))

	amount := decimal.RequireFromString("2500")
	inv, err = svc.Update(ctx, inv.ID, invoice.UpdateInvoice{Amount: &amount, Status: invoice.StatusUnpaid, ParentName: strPtr(" Ahmed ")})
	require.NoError(t, err)
	assert.Equal(t, "2500", inv.Amount.String())
	assert.Equal(t, invoice.StatusUnpaid, inv.Status)
	assert.Equal(t, "Ahmed", inv.ParentName.String)
	assert.False(t, inv.PaymentDate.Valid)

	inv, err = svc.Update(ctx, inv.ID, invoice.UpdateInvoice{Status: invoice.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-09", inv.PaymentDate.String)

	_, err = svc.Update(ctx, inv.ID, invoice.UpdateInvoice{Status: invoice.StatusUnpaid})
	var vErr *core.ValidationError
	if assert.True(t, errors.As(err, &vErr), "status cannot move back") {
		assert.Equal(t, "status", vErr.Fields[0].Field)
	}

	inv, err = svc.Update(ctx, inv.ID, invoice.UpdateInvoice{StudentID: strPtr("")})
	require.NoError(t, err)
	assert.False(t, inv.StudentID.Valid, "student can be unlinked")
	assert.Nil(t, inv.Student)
}

func TestService_MarkAsPaid(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	inv := testutil.CreateInvoice(t, repo, "", "300", "2024-06-01", invoice.StatusUnpaid, testutil.Date(t, "2024-05-01"))

	paid, err := svc.MarkAsPaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status)
	assert.Equal(t, "2024-06-09", paid.PaymentDate.String)

	testutil.MockNow(t, &invoice.NowFunc, testutil.Date(t, "2024-06-20"))
	again, err := svc.MarkAsPaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-09", again.PaymentDate.String, "already paid invoices are unchanged")

	_, err = svc.MarkAsPaid(ctx, "missing")
	assert.Equal(t, invoice.ErrNotFound, errors.Cause(err))
}

func TestService_QueryAndDelete(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	ali := testutil.CreateStudent(t, repo, "Ali", "5", "12")
	inv1 := testutil.CreateInvoice(t, repo, ali.ID, "2000", "2024-06-10", invoice.StatusUnpaid, testutil.Date(t, "2024-06-01"))
	inv2 := testutil.CreateInvoice(t, repo, "", "500", "2024-05-10", invoice.StatusPaid, testutil.Date(t, "2024-06-02"))
	inv3 := testutil.CreateInvoice(t, repo, ali.ID, "900", "2024-04-10", invoice.StatusPaid, testutil.Date(t, "2024-06-03"), "2024-04-01")

	got, err := svc.Query(ctx, invoice.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{inv3.ID, inv2.ID, inv1.ID}, ids(got), "newest first")

	got, err = svc.Query(ctx, invoice.QueryFilter{Status: invoice.Facet(invoice.StatusPaid)}, core.DBOrdering{Field: "amount", Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{inv2.ID, inv3.ID}, ids(got))

	paid, err := svc.QueryPaid(ctx)
	require.NoError(t, err)
	if assert.Len(t, paid, 2) {
		assert.Equal(t, inv2.ID, paid[0].ID, "most recent payment first")
		assert.Equal(t, "Ali", paid[1].StudentName.String)
	}

	require.NoError(t, svc.Delete(ctx))
	require.NoError(t, svc.Delete(ctx, inv1.ID, inv2.ID, "missing"))
	got, err = svc.Query(ctx, invoice.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{inv3.ID}, ids(got))
}

func ids(invoices []invoice.Invoice) []string {
	res := make([]string, len(invoices))
	for i, inv := range invoices {
		res[i] = inv.ID
	}
	return res
}
