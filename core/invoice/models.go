package invoice

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/feeportal/backend/core"
)

// Invoice statuses, in transition order.
const (
	StatusDraft  Status = "draft"
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"

	FacetAll Facet = "all"
)

var (
	Statuses = []Status{StatusDraft, StatusUnpaid, StatusPaid}

	statusRanks = map[Status]int{
		StatusDraft:  0,
		StatusUnpaid: 1,
		StatusPaid:   2,
	}

	errNegativeAmount  = "amount cannot be negative"
	errBackwardStatus  = "status cannot move back from %q to %q"
	errUnknownStudent  = "student not found"
	errEmptyUpdateBody = errors.New("nothing to update")
)

type (
	Status string

	// Facet is a status filter of the admin list; FacetAll keeps every status.
	Facet string
)

func (s Status) Valid() bool {
	_, ok := statusRanks[s]
	return ok
}

// CanMoveTo reports whether a status change keeps moving forward (draft -> unpaid -> paid).
func (s Status) CanMoveTo(next Status) bool {
	return statusRanks[next] >= statusRanks[s]
}

func (f Facet) Matches(s Status) bool {
	return f == "" || f == FacetAll || Status(f) == s
}

type Student struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Class string `json:"class" db:"class"`
	Roll  string `json:"roll" db:"roll"`
}

type Parent struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`
}

type Invoice struct {
	ID            string          `json:"id" db:"id"`
	StudentID     null.String     `json:"student_id" db:"student_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	DueDate       string          `json:"due_date" db:"due_date"` // YYYY-MM-DD
	Status        Status          `json:"status" db:"status"`
	PaymentDate   null.String     `json:"payment_date" db:"payment_date"` // YYYY-MM-DD
	PayLink       null.String     `json:"pay_link" db:"pay_link"`
	ParentName    null.String     `json:"parent_name" db:"parent_name"`
	ParentContact null.String     `json:"parent_contact" db:"parent_contact"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"` // UTC

	Student *Student `json:"student,omitempty" db:"-"` // nil when orphaned
}

// PaidInvoice is the export row of a paid Invoice joined to its Student.
type PaidInvoice struct {
	ID            string              `db:"id"`
	Amount        decimal.NullDecimal `db:"amount"`
	DueDate       null.String         `db:"due_date"`
	PaymentDate   null.String         `db:"payment_date"`
	CreatedAt     null.Time           `db:"created_at"`
	ParentName    null.String         `db:"parent_name"`
	ParentContact null.String         `db:"parent_contact"`
	StudentName   null.String         `db:"student_name"`
	StudentClass  null.String         `db:"student_class"`
	StudentRoll   null.String         `db:"student_roll"`
}

// NewInvoice contains information needed to create a new Invoice.
type NewInvoice struct {
	StudentID     string          `json:"student_id"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"due_date" validate:"required,isodate"`
	Status        Status          `json:"status" validate:"omitempty,invstatus"`
	ParentName    string          `json:"parent_name"`
	ParentContact string          `json:"parent_contact"`
}

func (ni *NewInvoice) Validate(validate *validator.Validate) error {
	ni.StudentID = core.CleanString(ni.StudentID)
	ni.DueDate = core.CleanString(ni.DueDate)
	ni.Status = Status(core.CleanString(string(ni.Status), true /* lower */))
	ni.ParentName = core.CleanString(ni.ParentName)
	ni.ParentContact = core.CleanString(ni.ParentContact)

	if err := validate.Struct(ni); err != nil {
		return err
	}
	if ni.Amount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: errNegativeAmount})
	}
	return nil
}

// UpdateInvoice defines what information may be provided to modify an existing Invoice.
// Nil/empty fields keep their current value.
type UpdateInvoice struct {
	StudentID     *string          `json:"student_id"`
	Amount        *decimal.Decimal `json:"amount"`
	DueDate       string           `json:"due_date" validate:"omitempty,isodate"`
	Status        Status           `json:"status" validate:"omitempty,invstatus"`
	ParentName    *string          `json:"parent_name"`
	ParentContact *string          `json:"parent_contact"`
}

func (uu *UpdateInvoice) Validate(validate *validator.Validate) error {
	uu.DueDate = core.CleanString(uu.DueDate)
	uu.Status = Status(core.CleanString(string(uu.Status), true /* lower */))

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Amount != nil && uu.Amount.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: errNegativeAmount})
	}
	return nil
}

func (uu UpdateInvoice) isEmpty() bool {
	return uu.StudentID == nil && uu.Amount == nil && uu.DueDate == "" && uu.Status == "" &&
		uu.ParentName == nil && uu.ParentContact == nil
}

// QueryFilter holds the admin list criteria.
type QueryFilter struct {
	Search string `query:"search"`
	Status Facet  `query:"status" validate:"omitempty,oneof=all draft unpaid paid"`
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}
