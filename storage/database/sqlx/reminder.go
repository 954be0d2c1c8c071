package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/reminder"
)

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *sqlx.DB) reminder.Repository {
	return &reminderRepository{db: db}
}

type dueInvoiceRow struct {
	InvoiceID   string          `db:"invoice_id"`
	Amount      decimal.Decimal `db:"amount"`
	DueDate     string          `db:"due_date"`
	StudentName string          `db:"student_name"`
	ParentID    null.String     `db:"parent_id"`
	ParentName  null.String     `db:"parent_name"`
	ParentPhone null.String     `db:"parent_phone"`
}

func (repo *reminderRepository) QueryDueInvoices(ctx context.Context, targetDate string) ([]reminder.DueInvoice, error) {
	q := `SELECT i.id AS invoice_id, i.amount, i.due_date::text AS due_date, s.name AS student_name,
		p.id AS parent_id, p.name AS parent_name, p.phone AS parent_phone
		FROM invoices i
		JOIN students s ON s.id = i.student_id
		LEFT JOIN student_parents sp ON sp.student_id = s.id
		LEFT JOIN parents p ON p.id = sp.parent_id
		WHERE i.status = $1 AND i.due_date <= $2
		ORDER BY i.due_date, i.created_at, i.id, sp.position`

	var rows []dueInvoiceRow
	if err := repo.db.SelectContext(ctx, &rows, q, invoice.StatusUnpaid, targetDate); err != nil {
		return nil, errors.Wrap(err, "selecting due invoices")
	}

	dues := make([]reminder.DueInvoice, 0, len(rows))
	for _, r := range rows {
		if n := len(dues); n == 0 || dues[n-1].InvoiceID != r.InvoiceID {
			dues = append(dues, reminder.DueInvoice{
				InvoiceID:   r.InvoiceID,
				Amount:      r.Amount,
				DueDate:     r.DueDate,
				StudentName: r.StudentName,
			})
		}
		if r.ParentID.Valid {
			due := &dues[len(dues)-1]
			due.Parents = append(due.Parents, invoice.Parent{
				ID:    r.ParentID.String,
				Name:  r.ParentName.String,
				Phone: r.ParentPhone.String,
			})
		}
	}
	return dues, nil
}

func (repo *reminderRepository) CreateSMSLog(ctx context.Context, log reminder.SMSLog) error {
	q := `INSERT INTO sms_logs (id, target_phone, message, created_at) VALUES (:id, :target_phone, :message, :created_at)`
	_, err := repo.db.NamedExecContext(ctx, q, log)
	return errors.Wrap(err, "inserting sms log")
}
