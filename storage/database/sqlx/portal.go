package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/portal"
)

type portalRepository struct {
	db       *sqlx.DB
	invoices *invoiceRepository
}

var _ portal.Repository = (*portalRepository)(nil) // interface compliance check

func NewPortalRepository(db *sqlx.DB) portal.Repository {
	return &portalRepository{db: db, invoices: &invoiceRepository{db: db}}
}

func (repo *portalRepository) SearchStudents(ctx context.Context, sq portal.StudentQuery, limit int) ([]invoice.Student, error) {
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if sq.Name != "" {
		add("name ILIKE $%d", "%"+sq.Name+"%")
	}
	if sq.Class != "" {
		add("class = $%d", sq.Class)
	}
	if sq.Roll != "" {
		add("roll = $%d", sq.Roll)
	}
	where := "TRUE"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	q := fmt.Sprintf(`SELECT id, name, class, roll FROM students WHERE %s ORDER BY name, id LIMIT $%d`, where, len(args))

	students := make([]invoice.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "searching students")
	}
	return students, nil
}

func (repo *portalRepository) GetStudent(ctx context.Context, id string) (invoice.Student, error) {
	return getStudent(ctx, repo.db, id)
}

func (repo *portalRepository) QueryStudentInvoices(ctx context.Context, studentID string) ([]invoice.Invoice, error) {
	if !isUUID(studentID) {
		return []invoice.Invoice{}, nil
	}
	q := `SELECT ` + invoiceColumns + ` FROM invoices i LEFT JOIN students s ON s.id = i.student_id
		WHERE i.student_id = $1 ORDER BY i.due_date DESC, i.created_at DESC`
	var rows []invoiceRow
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting student invoices")
	}
	return toInvoices(rows), nil
}

func (repo *portalRepository) GetInvoice(ctx context.Context, id string) (invoice.Invoice, error) {
	return repo.invoices.GetInvoice(ctx, id)
}

func (repo *portalRepository) GetInvoiceByPayLink(ctx context.Context, token string) (invoice.Invoice, error) {
	return repo.invoices.getInvoice(ctx, "i.pay_link = $1", token)
}

func (repo *portalRepository) CreatePayment(ctx context.Context, payment portal.Payment) (portal.Payment, error) {
	q := `INSERT INTO payments (id, invoice_id, reference_number, status, created_at)
		VALUES (:id, :invoice_id, :reference_number, :status, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, payment); err != nil {
		return portal.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return payment, nil
}
