package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-finance/core"
	"github.com/trezcool/masomo-finance/core/finance"
)

// dates are read as text, the engine parses them only when bucketing
const (
	teachersQuery = `SELECT id, first_name, last_name, is_active FROM teachers`
	studentsQuery = `SELECT id, first_name, last_name, class_name, is_active FROM students`
	classesQuery  = `SELECT id, name, teacher_id, is_active FROM classes`
	paymentsQuery = `SELECT id, student_id, amount, term, description,
		COALESCE(payment_date::text, '') AS payment_date,
		payment_method, receipt_number, notes
		FROM payments`
	payrollQuery = `SELECT id, teacher_id,
		COALESCE(period_start::text, '') AS period_start,
		COALESCE(period_end::text, '') AS period_end,
		hours_worked, hourly_rate, base_amount, bonus, deductions, total_amount, status,
		payment_date::text AS payment_date, payment_method, notes
		FROM payroll`
)

type financeRepository struct {
	exec core.DBExecutor
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(exec core.DBExecutor) *financeRepository {
	return &financeRepository{exec: exec}
}

func orderBy(query string, ordering ...core.DBOrdering) string {
	if len(ordering) == 0 {
		return query
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return fmt.Sprintf("%s ORDER BY %s", query, strings.Join(orderList, ", "))
}

// selectAll runs query and scans every row into dest (a pointer to a slice of structs).
func selectAll(ctx context.Context, exec core.DBExecutor, dest interface{}, query string) error {
	rows, err := exec.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

func (repo financeRepository) QueryTeachers(ctx context.Context) ([]finance.Teacher, error) {
	teachers := make([]finance.Teacher, 0)
	q := orderBy(teachersQuery, core.DBOrdering{Field: "created_at", Ascending: true})
	if err := selectAll(ctx, repo.exec, &teachers, q); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	return teachers, nil
}

func (repo financeRepository) QueryStudents(ctx context.Context) ([]finance.Student, error) {
	students := make([]finance.Student, 0)
	q := orderBy(studentsQuery,
		core.DBOrdering{Field: "first_name", Ascending: true},
		core.DBOrdering{Field: "last_name", Ascending: true},
	)
	if err := selectAll(ctx, repo.exec, &students, q); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}

func (repo financeRepository) QueryClasses(ctx context.Context) ([]finance.Class, error) {
	classes := make([]finance.Class, 0)
	q := orderBy(classesQuery, core.DBOrdering{Field: "created_at", Ascending: true})
	if err := selectAll(ctx, repo.exec, &classes, q); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	return classes, nil
}

func (repo financeRepository) QueryPayments(ctx context.Context) ([]finance.Payment, error) {
	payments := make([]finance.Payment, 0)
	q := orderBy(paymentsQuery, core.DBOrdering{Field: "created_at", Ascending: true})
	if err := selectAll(ctx, repo.exec, &payments, q); err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	return payments, nil
}

func (repo financeRepository) QueryPayroll(ctx context.Context) ([]finance.PayrollEntry, error) {
	entries := make([]finance.PayrollEntry, 0)
	q := orderBy(payrollQuery, core.DBOrdering{Field: "created_at", Ascending: true})
	if err := selectAll(ctx, repo.exec, &entries, q); err != nil {
		return nil, errors.Wrap(err, "selecting payroll")
	}
	return entries, nil
}
