package dummydb

import (
	"sync"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/portal"
	"github.com/feeportal/backend/core/reminder"
)

type (
	// DB is an in-memory store of the fee portal tables.
	// Rows are kept in insertion order; every table is guarded by its own lock.
	DB struct {
		invoice *invoiceTable
		student *studentTable
		parent  *parentTable
		payment *paymentTable
		smsLog  *smsLogTable
	}

	invoiceTable struct {
		sync.RWMutex
		rows []*invoice.Invoice
	}

	studentTable struct {
		sync.RWMutex
		rows    []*invoice.Student
		parents map[string][]string // student id -> parent ids, in link order
	}

	parentTable struct {
		sync.RWMutex
		rows map[string]*invoice.Parent
	}

	paymentTable struct {
		sync.RWMutex
		rows []portal.Payment
	}

	smsLogTable struct {
		sync.RWMutex
		rows      []reminder.SMSLog
		failErr   error
		failAfter int
	}
)

func Open() *DB {
	return &DB{
		invoice: &invoiceTable{},
		student: &studentTable{parents: make(map[string][]string)},
		parent:  &parentTable{rows: make(map[string]*invoice.Parent)},
		payment: &paymentTable{},
		smsLog:  &smsLogTable{},
	}
}

// Payments returns the stored payments.
func (db *DB) Payments() []portal.Payment {
	db.payment.RLock()
	defer db.payment.RUnlock()
	return append([]portal.Payment(nil), db.payment.rows...)
}

// SMSLogs returns the stored sms logs.
func (db *DB) SMSLogs() []reminder.SMSLog {
	db.smsLog.RLock()
	defer db.smsLog.RUnlock()
	return append([]reminder.SMSLog(nil), db.smsLog.rows...)
}

// FailSMSLogsAfter makes every sms log write after the first n ones fail with err (nil resets).
func (db *DB) FailSMSLogsAfter(n int, err error) {
	db.smsLog.Lock()
	defer db.smsLog.Unlock()
	db.smsLog.failErr = err
	db.smsLog.failAfter = n
}
