package dummydb

import (
	"context"
	"sort"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/reminder"
)

type reminderRepository struct {
	db *DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *DB) reminder.Repository {
	return &reminderRepository{db: db}
}

func (repo *reminderRepository) QueryDueInvoices(_ context.Context, targetDate string) ([]reminder.DueInvoice, error) {
	repo.db.invoice.RLock()
	defer repo.db.invoice.RUnlock()
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()
	repo.db.parent.RLock()
	defer repo.db.parent.RUnlock()

	due := make([]invoice.Invoice, 0)
	for _, inv := range repo.db.invoice.rows {
		if inv.Status == invoice.StatusUnpaid && inv.DueDate <= targetDate && inv.StudentID.Valid {
			due = append(due, *inv)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].DueDate < due[j].DueDate })

	dues := make([]reminder.DueInvoice, 0, len(due))
	for _, inv := range due {
		student := repo.db.student.find(inv.StudentID.String)
		if student == nil {
			continue
		}
		d := reminder.DueInvoice{
			InvoiceID:   inv.ID,
			Amount:      inv.Amount,
			DueDate:     inv.DueDate,
			StudentName: student.Name,
		}
		for _, pid := range repo.db.student.parents[student.ID] {
			if p, ok := repo.db.parent.rows[pid]; ok {
				d.Parents = append(d.Parents, *p)
			}
		}
		dues = append(dues, d)
	}
	return dues, nil
}

func (repo *reminderRepository) CreateSMSLog(_ context.Context, log reminder.SMSLog) error {
	t := repo.db.smsLog
	t.Lock()
	defer t.Unlock()
	if t.failErr != nil && len(t.rows) >= t.failAfter {
		return t.failErr
	}
	t.rows = append(t.rows, log)
	return nil
}
