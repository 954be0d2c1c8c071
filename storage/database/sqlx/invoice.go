package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/invoice"
)

const invoiceColumns = `
	i.id, i.student_id, i.amount, i.due_date::text AS due_date, i.status,
	i.payment_date::text AS payment_date, i.pay_link, i.parent_name, i.parent_contact, i.created_at,
	s.id AS s_id, s.name AS s_name, s.class AS s_class, s.roll AS s_roll`

var (
	invoiceOrderings = map[string]string{
		"due_date":     "i.due_date",
		"amount":       "i.amount",
		"status":       "i.status",
		"payment_date": "i.payment_date",
		"created_at":   "i.created_at",
		"student":      "s.name",
	}
	defaultInvoiceOrdering = core.DBOrdering{Field: "i.created_at", Ascending: false}
)

// invoiceRow is an invoice left joined to its student.
type invoiceRow struct {
	invoice.Invoice
	SID    null.String `db:"s_id"`
	SName  null.String `db:"s_name"`
	SClass null.String `db:"s_class"`
	SRoll  null.String `db:"s_roll"`
}

func (r invoiceRow) toInvoice() invoice.Invoice {
	inv := r.Invoice
	if r.SID.Valid {
		inv.Student = &invoice.Student{ID: r.SID.String, Name: r.SName.String, Class: r.SClass.String, Roll: r.SRoll.String}
	}
	return inv
}

func toInvoices(rows []invoiceRow) []invoice.Invoice {
	invoices := make([]invoice.Invoice, 0, len(rows))
	for _, r := range rows {
		invoices = append(invoices, r.toInvoice())
	}
	return invoices
}

type invoiceRepository struct {
	db *sqlx.DB
}

var _ invoice.Repository = (*invoiceRepository)(nil) // interface compliance check

func NewInvoiceRepository(db *sqlx.DB) invoice.Repository {
	return &invoiceRepository{db: db}
}

func (repo *invoiceRepository) getInvoice(ctx context.Context, where string, arg interface{}) (invoice.Invoice, error) {
	var row invoiceRow
	q := `SELECT ` + invoiceColumns + ` FROM invoices i LEFT JOIN students s ON s.id = i.student_id WHERE ` + where
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return invoice.Invoice{}, invoice.ErrNotFound
		}
		return invoice.Invoice{}, errors.Wrap(err, "selecting invoice")
	}
	return row.toInvoice(), nil
}

func (repo *invoiceRepository) CreateInvoice(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	q := `INSERT INTO invoices
		(id, student_id, amount, due_date, status, payment_date, pay_link, parent_name, parent_contact, created_at)
		VALUES (:id, :student_id, :amount, :due_date, :status, :payment_date, :pay_link, :parent_name, :parent_contact, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, inv); err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "inserting invoice")
	}
	return repo.GetInvoice(ctx, inv.ID)
}

func (repo *invoiceRepository) QueryInvoices(ctx context.Context, orderings ...core.DBOrdering) ([]invoice.Invoice, error) {
	q := fmt.Sprintf(
		`SELECT %s FROM invoices i LEFT JOIN students s ON s.id = i.student_id ORDER BY %s`,
		invoiceColumns, core.OrderByClause(orderings, invoiceOrderings, defaultInvoiceOrdering),
	)
	var rows []invoiceRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting invoices")
	}
	return toInvoices(rows), nil
}

func (repo *invoiceRepository) GetInvoice(ctx context.Context, id string) (invoice.Invoice, error) {
	if !isUUID(id) {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	return repo.getInvoice(ctx, "i.id = $1", id)
}

func (repo *invoiceRepository) UpdateInvoice(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	q := `UPDATE invoices SET
		student_id = :student_id, amount = :amount, due_date = :due_date, status = :status,
		payment_date = :payment_date, parent_name = :parent_name, parent_contact = :parent_contact
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, inv)
	if err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "updating invoice")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	return repo.GetInvoice(ctx, inv.ID)
}

func (repo *invoiceRepository) DeleteInvoices(ctx context.Context, ids ...string) error {
	ids = onlyUUIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM invoices WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting invoices")
}

func (repo *invoiceRepository) QueryPaidInvoices(ctx context.Context) ([]invoice.PaidInvoice, error) {
	q := `SELECT i.id, i.amount, i.due_date::text AS due_date, i.payment_date::text AS payment_date,
		i.created_at, i.parent_name, i.parent_contact,
		s.name AS student_name, s.class AS student_class, s.roll AS student_roll
		FROM invoices i LEFT JOIN students s ON s.id = i.student_id
		WHERE i.status = $1
		ORDER BY i.payment_date DESC NULLS LAST`
	var rows []invoice.PaidInvoice
	if err := repo.db.SelectContext(ctx, &rows, q, invoice.StatusPaid); err != nil {
		return nil, errors.Wrap(err, "selecting paid invoices")
	}
	return rows, nil
}

func (repo *invoiceRepository) CreateStudent(ctx context.Context, student invoice.Student) (invoice.Student, error) {
	q := `INSERT INTO students (id, name, class, roll) VALUES (:id, :name, :class, :roll)`
	if _, err := repo.db.NamedExecContext(ctx, q, student); err != nil {
		return invoice.Student{}, errors.Wrap(err, "inserting student")
	}
	return student, nil
}

func (repo *invoiceRepository) GetStudent(ctx context.Context, id string) (invoice.Student, error) {
	return getStudent(ctx, repo.db, id)
}

func (repo *invoiceRepository) CreateParent(ctx context.Context, parent invoice.Parent) (invoice.Parent, error) {
	q := `INSERT INTO parents (id, name, phone) VALUES (:id, :name, :phone)`
	if _, err := repo.db.NamedExecContext(ctx, q, parent); err != nil {
		return invoice.Parent{}, errors.Wrap(err, "inserting parent")
	}
	return parent, nil
}

func (repo *invoiceRepository) LinkParent(ctx context.Context, studentID, parentID string) error {
	q := `INSERT INTO student_parents (student_id, parent_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := repo.db.ExecContext(ctx, q, studentID, parentID)
	return errors.Wrap(err, "linking parent")
}
