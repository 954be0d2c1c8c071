package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
	logsvc "github.com/feeportal/backend/services/logger"
)

// NewLogger returns a disabled rollbar logger printing nowhere.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every custom tag and its english translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	invoice.InitValidators(validate, translator)
	return validate, translator
}

// MockNow points fn to a clock frozen at now until the test ends.
func MockNow(t *testing.T, fn *func() time.Time, now time.Time) {
	orig := *fn
	*fn = func() time.Time { return now }
	t.Cleanup(func() { *fn = orig })
}

// Date parses a YYYY-MM-DD date at noon UTC.
func Date(t *testing.T, s string) time.Time {
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("Date(%q) failed: %v", s, err)
	}
	return d.Add(12 * time.Hour)
}

func CreateStudent(t *testing.T, repo invoice.Repository, name, class, roll string) invoice.Student {
	student, err := repo.CreateStudent(context.Background(), invoice.Student{
		ID:    uuid.New().String(),
		Name:  name,
		Class: class,
		Roll:  roll,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return student
}

// CreateParent creates a parent linked to the given students.
func CreateParent(t *testing.T, repo invoice.Repository, name, phone string, students ...invoice.Student) invoice.Parent {
	ctx := context.Background()
	parent, err := repo.CreateParent(ctx, invoice.Parent{ID: uuid.New().String(), Name: name, Phone: phone})
	if err != nil {
		t.Fatalf("CreateParent() failed: %v", err)
	}
	for _, s := range students {
		if err = repo.LinkParent(ctx, s.ID, parent.ID); err != nil {
			t.Fatalf("LinkParent() failed: %v", err)
		}
	}
	return parent
}

// CreateInvoice creates an invoice of the student (orphaned when studentID is empty).
// Paid invoices get paymentDate (defaults to the due date).
func CreateInvoice(
	t *testing.T,
	repo invoice.Repository,
	studentID, amount, dueDate string,
	status invoice.Status,
	createdAt time.Time,
	paymentDate ...string,
) invoice.Invoice {
	inv := invoice.Invoice{
		ID:        uuid.New().String(),
		StudentID: null.NewString(studentID, studentID != ""),
		Amount:    decimal.RequireFromString(amount),
		DueDate:   dueDate,
		Status:    status,
		PayLink:   null.StringFrom(uuid.New().String()),
		CreatedAt: createdAt.UTC(),
	}
	if status == invoice.StatusPaid {
		inv.PaymentDate = null.StringFrom(dueDate)
		if len(paymentDate) > 0 {
			inv.PaymentDate = null.StringFrom(paymentDate[0])
		}
	}
	inv, err := repo.CreateInvoice(context.Background(), inv)
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}
	return inv
}
