package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
)

type invoiceRepository struct {
	db *DB
}

var _ invoice.Repository = (*invoiceRepository)(nil) // interface compliance check

func NewInvoiceRepository(db *DB) invoice.Repository {
	return &invoiceRepository{db: db}
}

// withStudent joins the invoice student. Callers hold the student read lock.
func (repo *invoiceRepository) withStudent(inv invoice.Invoice) invoice.Invoice {
	inv.Student = nil
	if inv.StudentID.Valid {
		if s := repo.db.student.find(inv.StudentID.String); s != nil {
			student := *s
			inv.Student = &student
		}
	}
	return inv
}

func (repo *invoiceRepository) query(keep func(invoice.Invoice) bool) []invoice.Invoice {
	repo.db.invoice.RLock()
	defer repo.db.invoice.RUnlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	invoices := make([]invoice.Invoice, 0, len(repo.db.invoice.rows))
	for _, inv := range repo.db.invoice.rows {
		if keep == nil || keep(*inv) {
			invoices = append(invoices, repo.withStudent(*inv))
		}
	}
	return invoices
}

func (repo *invoiceRepository) get(keep func(invoice.Invoice) bool) (invoice.Invoice, error) {
	invoices := repo.query(keep)
	if len(invoices) == 0 {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	return invoices[0], nil
}

func (repo *invoiceRepository) CreateInvoice(_ context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	repo.db.invoice.Lock()
	inv.Student = nil
	repo.db.invoice.rows = append(repo.db.invoice.rows, &inv)
	repo.db.invoice.Unlock()
	return repo.get(func(i invoice.Invoice) bool { return i.ID == inv.ID })
}

func (repo *invoiceRepository) QueryInvoices(_ context.Context, orderings ...core.DBOrdering) ([]invoice.Invoice, error) {
	invoices := repo.query(nil)
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "created_at", Ascending: false}}
	}
	sortInvoices(invoices, orderings)
	return invoices, nil
}

func (repo *invoiceRepository) GetInvoice(_ context.Context, id string) (invoice.Invoice, error) {
	return repo.get(func(i invoice.Invoice) bool { return i.ID == id })
}

func (repo *invoiceRepository) UpdateInvoice(_ context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	repo.db.invoice.Lock()
	var found bool
	for _, row := range repo.db.invoice.rows {
		if row.ID == inv.ID {
			payLink, createdAt := row.PayLink, row.CreatedAt
			*row = inv
			row.Student = nil
			row.PayLink, row.CreatedAt = payLink, createdAt
			found = true
			break
		}
	}
	repo.db.invoice.Unlock()
	if !found {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	return repo.GetInvoice(context.Background(), inv.ID)
}

func (repo *invoiceRepository) DeleteInvoices(_ context.Context, ids ...string) error {
	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}

	repo.db.invoice.Lock()
	defer repo.db.invoice.Unlock()
	kept := repo.db.invoice.rows[:0]
	for _, row := range repo.db.invoice.rows {
		if !toDelete[row.ID] {
			kept = append(kept, row)
		}
	}
	repo.db.invoice.rows = kept
	return nil
}

func (repo *invoiceRepository) QueryPaidInvoices(_ context.Context) ([]invoice.PaidInvoice, error) {
	invoices := repo.query(func(i invoice.Invoice) bool { return i.Status == invoice.StatusPaid })
	sortInvoices(invoices, []core.DBOrdering{{Field: "payment_date", Ascending: false}})

	rows := make([]invoice.PaidInvoice, 0, len(invoices))
	for _, inv := range invoices {
		row := invoice.PaidInvoice{
			ID:            inv.ID,
			DueDate:       nullString(inv.DueDate),
			PaymentDate:   inv.PaymentDate,
			ParentName:    inv.ParentName,
			ParentContact: inv.ParentContact,
		}
		row.Amount.Decimal, row.Amount.Valid = inv.Amount, true
		row.CreatedAt.Time, row.CreatedAt.Valid = inv.CreatedAt, !inv.CreatedAt.IsZero()
		if inv.Student != nil {
			row.StudentName = nullString(inv.Student.Name)
			row.StudentClass = nullString(inv.Student.Class)
			row.StudentRoll = nullString(inv.Student.Roll)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (repo *invoiceRepository) CreateStudent(_ context.Context, student invoice.Student) (invoice.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()
	s := student
	repo.db.student.rows = append(repo.db.student.rows, &s)
	return student, nil
}

func (repo *invoiceRepository) GetStudent(_ context.Context, id string) (invoice.Student, error) {
	return repo.db.getStudent(id)
}

func (repo *invoiceRepository) CreateParent(_ context.Context, parent invoice.Parent) (invoice.Parent, error) {
	repo.db.parent.Lock()
	defer repo.db.parent.Unlock()
	p := parent
	repo.db.parent.rows[p.ID] = &p
	return parent, nil
}

func (repo *invoiceRepository) LinkParent(_ context.Context, studentID, parentID string) error {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()
	for _, id := range repo.db.student.parents[studentID] {
		if id == parentID {
			return nil
		}
	}
	repo.db.student.parents[studentID] = append(repo.db.student.parents[studentID], parentID)
	return nil
}

// find returns the student with id, nil if missing. Callers hold the lock.
func (t *studentTable) find(id string) *invoice.Student {
	for _, s := range t.rows {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (db *DB) getStudent(id string) (invoice.Student, error) {
	db.student.RLock()
	defer db.student.RUnlock()
	if s := db.student.find(id); s != nil {
		return *s, nil
	}
	return invoice.Student{}, invoice.ErrStudentNotFound
}

// sortInvoices sorts like the ORDER BY of the sql repositories; unknown fields are ignored.
func sortInvoices(invoices []invoice.Invoice, orderings []core.DBOrdering) {
	sort.SliceStable(invoices, func(i, j int) bool {
		for _, ord := range orderings {
			c := compareInvoices(invoices[i], invoices[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compareInvoices(a, b invoice.Invoice, field string) int {
	switch field {
	case "due_date":
		return strings.Compare(a.DueDate, b.DueDate)
	case "amount":
		return a.Amount.Cmp(b.Amount)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "payment_date":
		return compareNullable(a.PaymentDate.Valid, b.PaymentDate.Valid, a.PaymentDate.String, b.PaymentDate.String)
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	case "student":
		var an, bn string
		if a.Student != nil {
			an = a.Student.Name
		}
		if b.Student != nil {
			bn = b.Student.Name
		}
		return strings.Compare(an, bn)
	}
	return 0
}

// compareNullable orders nulls lowest so that descending orderings put them last.
func compareNullable(aValid, bValid bool, a, b string) int {
	switch {
	case !aValid && !bValid:
		return 0
	case !aValid:
		return -1
	case !bValid:
		return 1
	}
	return strings.Compare(a, b)
}
