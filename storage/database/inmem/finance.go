package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/masomo-finance/core/finance"
)

// FinanceRepository is a finance.Repository kept in memory, with helpers to fill it.
type FinanceRepository struct {
	db *DB
}

var _ finance.Repository = (*FinanceRepository)(nil) // interface compliance check

func NewFinanceRepository(db *DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func (repo *FinanceRepository) AddTeacher(t finance.Teacher) finance.Teacher {
	repo.db.Lock()
	defer repo.db.Unlock()
	t.ID = newID(t.ID)
	repo.db.teachers = append(repo.db.teachers, t)
	return t
}

func (repo *FinanceRepository) AddStudent(s finance.Student) finance.Student {
	repo.db.Lock()
	defer repo.db.Unlock()
	s.ID = newID(s.ID)
	repo.db.students = append(repo.db.students, s)
	return s
}

func (repo *FinanceRepository) AddClass(c finance.Class) finance.Class {
	repo.db.Lock()
	defer repo.db.Unlock()
	c.ID = newID(c.ID)
	repo.db.classes = append(repo.db.classes, c)
	return c
}

func (repo *FinanceRepository) AddPayment(p finance.Payment) finance.Payment {
	repo.db.Lock()
	defer repo.db.Unlock()
	p.ID = newID(p.ID)
	repo.db.payments = append(repo.db.payments, p)
	return p
}

func (repo *FinanceRepository) AddPayrollEntry(e finance.PayrollEntry) finance.PayrollEntry {
	repo.db.Lock()
	defer repo.db.Unlock()
	e.ID = newID(e.ID)
	repo.db.payroll = append(repo.db.payroll, e)
	return e
}

func (repo *FinanceRepository) QueryTeachers(ctx context.Context) ([]finance.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if err := repo.check(ctx); err != nil {
		return nil, err
	}
	return append([]finance.Teacher{}, repo.db.teachers...), nil
}

func (repo *FinanceRepository) QueryStudents(ctx context.Context) ([]finance.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if err := repo.check(ctx); err != nil {
		return nil, err
	}
	return append([]finance.Student{}, repo.db.students...), nil
}

func (repo *FinanceRepository) QueryClasses(ctx context.Context) ([]finance.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if err := repo.check(ctx); err != nil {
		return nil, err
	}
	return append([]finance.Class{}, repo.db.classes...), nil
}

func (repo *FinanceRepository) QueryPayments(ctx context.Context) ([]finance.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if err := repo.check(ctx); err != nil {
		return nil, err
	}
	return append([]finance.Payment{}, repo.db.payments...), nil
}

func (repo *FinanceRepository) QueryPayroll(ctx context.Context) ([]finance.PayrollEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if err := repo.check(ctx); err != nil {
		return nil, err
	}
	return append([]finance.PayrollEntry{}, repo.db.payroll...), nil
}

// check must be called with the read lock held.
func (repo *FinanceRepository) check(ctx context.Context) error {
	if repo.db.err != nil {
		return repo.db.err
	}
	return ctx.Err()
}
