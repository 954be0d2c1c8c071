package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/portal"
)

type portalRepository struct {
	db       *DB
	invoices *invoiceRepository
}

var _ portal.Repository = (*portalRepository)(nil) // interface compliance check

func NewPortalRepository(db *DB) portal.Repository {
	return &portalRepository{db: db, invoices: &invoiceRepository{db: db}}
}

func (repo *portalRepository) SearchStudents(_ context.Context, q portal.StudentQuery, limit int) ([]invoice.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	name := strings.ToLower(q.Name)
	students := make([]invoice.Student, 0)
	for _, s := range repo.db.student.rows {
		if name != "" && !strings.Contains(strings.ToLower(s.Name), name) {
			continue
		}
		if (q.Class != "" && s.Class != q.Class) || (q.Roll != "" && s.Roll != q.Roll) {
			continue
		}
		students = append(students, *s)
	}
	sort.SliceStable(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	if len(students) > limit {
		students = students[:limit]
	}
	return students, nil
}

func (repo *portalRepository) GetStudent(_ context.Context, id string) (invoice.Student, error) {
	return repo.db.getStudent(id)
}

func (repo *portalRepository) QueryStudentInvoices(_ context.Context, studentID string) ([]invoice.Invoice, error) {
	invoices := repo.invoices.query(func(i invoice.Invoice) bool {
		return i.StudentID.Valid && i.StudentID.String == studentID
	})
	sort.SliceStable(invoices, func(i, j int) bool { return invoices[i].DueDate > invoices[j].DueDate })
	return invoices, nil
}

func (repo *portalRepository) GetInvoice(ctx context.Context, id string) (invoice.Invoice, error) {
	return repo.invoices.GetInvoice(ctx, id)
}

func (repo *portalRepository) GetInvoiceByPayLink(_ context.Context, token string) (invoice.Invoice, error) {
	return repo.invoices.get(func(i invoice.Invoice) bool { return i.PayLink.Valid && i.PayLink.String == token })
}

func (repo *portalRepository) CreatePayment(_ context.Context, payment portal.Payment) (portal.Payment, error) {
	repo.db.payment.Lock()
	defer repo.db.payment.Unlock()
	repo.db.payment.rows = append(repo.db.payment.rows, payment)
	return payment, nil
}
