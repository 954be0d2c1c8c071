package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/feeportal/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// NewID generates invoice ids and pay-link tokens.
	NewID = func() string { return uuid.New().String() } // mockable

	// errors
	ErrNotFound        = errors.New("invoice not found")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		// QueryInvoices returns every invoice with its Student joined (nil when orphaned).
		// Without orderings, the newest invoices come first.
		QueryInvoices(ctx context.Context, orderings ...core.DBOrdering) ([]Invoice, error)
		GetInvoice(ctx context.Context, id string) (Invoice, error)
		UpdateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		DeleteInvoices(ctx context.Context, ids ...string) error
		// QueryPaidInvoices returns the paid invoices ordered by payment date, most recent first.
		QueryPaidInvoices(ctx context.Context) ([]PaidInvoice, error)

		CreateStudent(ctx context.Context, student Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		CreateParent(ctx context.Context, parent Parent) (Parent, error)
		LinkParent(ctx context.Context, studentID, parentID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Today returns the current UTC calendar date in core.DateLayout.
func Today() string {
	return core.Today(NowFunc())
}

func (svc *Service) checkStudent(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := svc.repo.GetStudent(ctx, id); err != nil {
		if errors.Cause(err) == ErrStudentNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: errUnknownStudent})
		}
		return errors.Wrap(err, "getting student")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ni NewInvoice) (Invoice, error) {
	if err := svc.checkStudent(ctx, ni.StudentID); err != nil {
		return Invoice{}, err
	}

	inv := Invoice{
		ID:            NewID(),
		StudentID:     nullString(ni.StudentID),
		Amount:        ni.Amount,
		DueDate:       ni.DueDate,
		Status:        ni.Status,
		PayLink:       null.StringFrom(NewID()),
		ParentName:    nullString(ni.ParentName),
		ParentContact: nullString(ni.ParentContact),
		CreatedAt:     NowFunc().UTC(),
	}
	if inv.Status == "" {
		inv.Status = StatusUnpaid
	}
	if inv.Status == StatusPaid {
		inv.PaymentDate = null.StringFrom(Today())
	}

	inv, err := svc.repo.CreateInvoice(ctx, inv)
	return inv, errors.Wrap(err, "creating invoice")
}

// Query reads every invoice then keeps those matching the filter (see Filter).
func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Invoice, error) {
	invoices, err := svc.repo.QueryInvoices(ctx, orderings...)
	if err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}
	return Filter(invoices, filter), nil
}

func (svc *Service) Get(ctx context.Context, id string) (Invoice, error) {
	return svc.repo.GetInvoice(ctx, id)
}

// Update applies uu to the invoice. Status changes may only move forward;
// moving to paid records today as the payment date.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateInvoice) (Invoice, error) {
	if uu.isEmpty() {
		return Invoice{}, core.NewValidationError(errEmptyUpdateBody)
	}
	inv, err := svc.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}

	if uu.Status != "" && uu.Status != inv.Status {
		if !inv.Status.CanMoveTo(uu.Status) {
			return Invoice{}, core.NewValidationError(nil, core.FieldError{
				Field: "status",
				Error: fmt.Sprintf(errBackwardStatus, inv.Status, uu.Status),
			})
		}
		if uu.Status == StatusPaid && !inv.PaymentDate.Valid {
			inv.PaymentDate = null.StringFrom(Today())
		}
		inv.Status = uu.Status
	}
	if uu.StudentID != nil {
		sid := core.CleanString(*uu.StudentID)
		if err = svc.checkStudent(ctx, sid); err != nil {
			return Invoice{}, err
		}
		inv.StudentID = nullString(sid)
	}
	if uu.Amount != nil {
		inv.Amount = *uu.Amount
	}
	if uu.DueDate != "" {
		inv.DueDate = uu.DueDate
	}
	if uu.ParentName != nil {
		inv.ParentName = nullString(core.CleanString(*uu.ParentName))
	}
	if uu.ParentContact != nil {
		inv.ParentContact = nullString(core.CleanString(*uu.ParentContact))
	}

	inv, err = svc.repo.UpdateInvoice(ctx, inv)
	return inv, errors.Wrap(err, "updating invoice")
}

// MarkAsPaid sets the invoice status to paid with today's payment date.
// Already paid invoices are returned unchanged.
func (svc *Service) MarkAsPaid(ctx context.Context, id string) (Invoice, error) {
	inv, err := svc.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status == StatusPaid {
		return inv, nil
	}
	inv.Status = StatusPaid
	inv.PaymentDate = null.StringFrom(Today())

	inv, err = svc.repo.UpdateInvoice(ctx, inv)
	return inv, errors.Wrap(err, "marking invoice as paid")
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return errors.Wrap(svc.repo.DeleteInvoices(ctx, ids...), "deleting invoices")
}

func (svc *Service) QueryPaid(ctx context.Context) ([]PaidInvoice, error) {
	invoices, err := svc.repo.QueryPaidInvoices(ctx)
	return invoices, errors.Wrap(err, "querying paid invoices")
}
