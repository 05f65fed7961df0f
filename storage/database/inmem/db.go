package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-finance/core/finance"
)

// DB keeps every collection in insertion order.
type (
	DB struct {
		sync.RWMutex
		teachers []finance.Teacher
		students []finance.Student
		classes  []finance.Class
		payments []finance.Payment
		payroll  []finance.PayrollEntry
		err      error
	}
)

func Open() (*DB, error) {
	return &DB{}, nil
}

// Fail makes every query return err until it is called again with nil.
func (db *DB) Fail(err error) {
	db.Lock()
	defer db.Unlock()
	db.err = err
}

// Reset empties every table.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.teachers = nil
	db.students = nil
	db.classes = nil
	db.payments = nil
	db.payroll = nil
	db.err = nil
}
