package portal

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNoCriteria  = errors.New("Please enter at least one search criteria")
	ErrNoReference = errors.New("Please enter a payment reference number")
	ErrAlreadyPaid = errors.New("invoice is already paid")

	// notices
	NoticeNoStudent       = "No student found"
	NoticeStudentNotFound = "Student not found."
	NoticePayLinkNotFound = "Invoice not found, try searching below."
)

type (
	Repository interface {
		// SearchStudents returns up to limit students matching every non-empty criterion.
		SearchStudents(ctx context.Context, q StudentQuery, limit int) ([]invoice.Student, error)
		GetStudent(ctx context.Context, id string) (invoice.Student, error)
		// QueryStudentInvoices returns the invoices of a student, latest due date first.
		QueryStudentInvoices(ctx context.Context, studentID string) ([]invoice.Invoice, error)
		GetInvoice(ctx context.Context, id string) (invoice.Invoice, error)
		GetInvoiceByPayLink(ctx context.Context, token string) (invoice.Invoice, error)
		CreatePayment(ctx context.Context, payment Payment) (Payment, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

// SearchStudents finds the students matching q. No match is reported as a core.NoticeError;
// a single match has its invoices loaded.
func (svc *Service) SearchStudents(ctx context.Context, q StudentQuery) (SearchResult, error) {
	q.Clean()
	if q.IsEmpty() {
		return SearchResult{}, core.NewValidationError(ErrNoCriteria)
	}

	students, err := svc.repo.SearchStudents(ctx, q, SearchLimit)
	if err != nil {
		return SearchResult{}, errors.Wrap(err, "searching students")
	}
	if len(students) == 0 {
		return SearchResult{}, core.NewNoticeError(NoticeNoStudent)
	}

	res := SearchResult{Students: students}
	if len(students) == 1 {
		selected, err := svc.StudentInvoices(ctx, students[0].ID)
		if err != nil {
			return SearchResult{}, err
		}
		res.Selected = &selected
	}
	return res, nil
}

// StudentInvoices loads a student with all their invoices.
func (svc *Service) StudentInvoices(ctx context.Context, studentID string) (StudentInvoices, error) {
	student, err := svc.repo.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == invoice.ErrStudentNotFound {
			return StudentInvoices{}, core.NewNoticeError(NoticeStudentNotFound)
		}
		return StudentInvoices{}, errors.Wrap(err, "getting student")
	}

	invoices, err := svc.repo.QueryStudentInvoices(ctx, studentID)
	if err != nil {
		return StudentInvoices{}, errors.Wrap(err, "querying student invoices")
	}

	today := core.Today(NowFunc())
	res := StudentInvoices{Student: student, Invoices: make([]StudentInvoice, 0, len(invoices))}
	for _, inv := range invoices {
		res.Invoices = append(res.Invoices, StudentInvoice{
			ID:      inv.ID,
			Amount:  inv.Amount,
			DueDate: inv.DueDate,
			Status:  inv.Status,
			PayLink: inv.PayLink,
			Overdue: isOverdue(inv, today),
		})
	}
	return res, nil
}

// LookupPayLink resolves a pay-link token to the invoices of its student.
func (svc *Service) LookupPayLink(ctx context.Context, token string) (StudentInvoices, error) {
	token = core.CleanString(token)
	if token == "" {
		return StudentInvoices{}, core.NewNoticeError(NoticePayLinkNotFound)
	}
	inv, err := svc.repo.GetInvoiceByPayLink(ctx, token)
	if err != nil {
		if errors.Cause(err) == invoice.ErrNotFound {
			return StudentInvoices{}, core.NewNoticeError(NoticePayLinkNotFound)
		}
		return StudentInvoices{}, errors.Wrap(err, "getting invoice by pay link")
	}
	if !inv.StudentID.Valid {
		return StudentInvoices{}, core.NewNoticeError(NoticeStudentNotFound)
	}
	return svc.StudentInvoices(ctx, inv.StudentID.String)
}

// SubmitPayment records a pending payment confirmation for the invoice and notifies the bursar.
func (svc *Service) SubmitPayment(ctx context.Context, invoiceID string, np NewPayment) (Payment, error) {
	ref := core.CleanString(np.ReferenceNumber)
	if ref == "" {
		return Payment{}, core.NewValidationError(
			ErrNoReference, core.FieldError{Field: "reference_number", Error: ErrNoReference.Error()},
		)
	}

	inv, err := svc.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return Payment{}, err
	}
	if inv.Status == invoice.StatusPaid {
		return Payment{}, core.NewValidationError(ErrAlreadyPaid)
	}

	payment, err := svc.repo.CreatePayment(ctx, Payment{
		ID:              uuid.New().String(),
		InvoiceID:       inv.ID,
		ReferenceNumber: ref,
		Status:          PaymentPending,
		CreatedAt:       NowFunc().UTC(),
	})
	if err != nil {
		return Payment{}, errors.Wrap(err, "creating payment")
	}

	svc.notifyBursar(ctx, inv, payment)
	return payment, nil
}

func (svc *Service) notifyBursar(ctx context.Context, inv invoice.Invoice, payment Payment) {
	to, ok := svc.conf.BursarEmail()
	if !ok {
		return
	}
	var studentName string
	if inv.StudentID.Valid {
		if student, err := svc.repo.GetStudent(ctx, inv.StudentID.String); err == nil {
			studentName = student.Name
		}
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Payment submitted for " + studentName,
		TemplateName: "payment_submitted",
		TemplateData: paymentNotice{
			InvoiceID:   inv.ID,
			StudentName: studentName,
			Currency:    svc.conf.Reminders.Currency,
			Amount:      inv.Amount,
			DueDate:     inv.DueDate,
			Reference:   payment.ReferenceNumber,
		},
	})
}

func isOverdue(inv invoice.Invoice, today string) bool {
	return inv.Status != invoice.StatusPaid && inv.DueDate != "" && inv.DueDate < today
}
