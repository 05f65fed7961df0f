package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-finance/core"
	"github.com/trezcool/masomo-finance/core/finance"
	inmemdb "github.com/trezcool/masomo-finance/storage/database/inmem"
)

// Money parses a decimal literal; it panics on malformed input.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// NullMoney is a set NullDecimal, or an unset one for "".
func NullMoney(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Money(s))
}

// NullString is a set null.String, or an unset one for "".
func NullString(s string) null.String {
	return null.NewString(s, s != "")
}

func Teacher(id, first, last string) finance.Teacher {
	return finance.Teacher{ID: id, FirstName: first, LastName: last, IsActive: true}
}

func Student(id, first, last, className string) finance.Student {
	return finance.Student{ID: id, FirstName: first, LastName: last, ClassName: NullString(className), IsActive: true}
}

func Class(id, name, teacherID string) finance.Class {
	return finance.Class{ID: id, Name: name, TeacherID: NullString(teacherID), IsActive: true}
}

// Payment builds a payment; term is optional.
func Payment(id, studentID, amount, date string, term ...string) finance.Payment {
	p := finance.Payment{
		ID:            id,
		StudentID:     NullString(studentID),
		Amount:        Money(amount),
		PaymentDate:   date,
		PaymentMethod: "cash",
	}
	if len(term) > 0 {
		p.Term = NullString(term[0])
	}
	return p
}

// Payroll builds a payroll entry carrying an explicit total.
func Payroll(id, teacherID, periodStart, status, total string) finance.PayrollEntry {
	return finance.PayrollEntry{
		ID:          id,
		TeacherID:   teacherID,
		PeriodStart: periodStart,
		TotalAmount: NullMoney(total),
		Status:      status,
	}
}

// PayrollParts builds a payroll entry without total: base + bonus - deductions.
func PayrollParts(id, teacherID, periodStart, status, base, bonus, deductions string) finance.PayrollEntry {
	return finance.PayrollEntry{
		ID:          id,
		TeacherID:   teacherID,
		PeriodStart: periodStart,
		BaseAmount:  NullMoney(base),
		Bonus:       NullMoney(bonus),
		Deductions:  NullMoney(deductions),
		Status:      status,
	}
}

func NewValidate() *validator.Validate {
	validate, _ := NewTranslatedValidate()
	return validate
}

// NewTranslatedValidate returns a validator and the translator its messages are registered on.
func NewTranslatedValidate() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return validate, translator
}

// DefaultCatalog is the configured default plan catalog.
func DefaultCatalog(t *testing.T) *finance.Catalog {
	conf := core.NewConfig()
	catalog, err := finance.CatalogFromConfig(conf.Finance.Plans)
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}
	return catalog
}

// NewRepository returns an empty in-memory repository and its database.
func NewRepository(t *testing.T) (*inmemdb.FinanceRepository, *inmemdb.DB) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("NewRepository() failed: %v", err)
	}
	return inmemdb.NewFinanceRepository(db), db
}

// Seed adds every record of snap to repo, in order.
func Seed(repo *inmemdb.FinanceRepository, snap finance.Snapshot) {
	for _, t := range snap.Teachers {
		repo.AddTeacher(t)
	}
	for _, s := range snap.Students {
		repo.AddStudent(s)
	}
	for _, c := range snap.Classes {
		repo.AddClass(c)
	}
	for _, p := range snap.Payments {
		repo.AddPayment(p)
	}
	for _, e := range snap.Payroll {
		repo.AddPayrollEntry(e)
	}
}

// NewBoard returns a loaded board over an in-memory repository seeded with snap.
func NewBoard(t *testing.T, snap finance.Snapshot) (*finance.Board, *inmemdb.FinanceRepository, *inmemdb.DB) {
	repo, db := NewRepository(t)
	Seed(repo, snap)
	board := LoadBoard(t, repo, NewValidate())
	return board, repo, db
}

// LoadBoard returns a board over repo, refreshed once.
func LoadBoard(t *testing.T, repo finance.Repository, validate *validator.Validate) *finance.Board {
	board := finance.NewBoard(finance.NewService(repo, DefaultCatalog(t), validate))
	if err := board.Refresh(context.Background()); err != nil {
		t.Fatalf("LoadBoard() failed: %v", err)
	}
	return board
}

// School is a small school:
//  - Amani (t1) teaches 1A and 1B, Baraka (t2) teaches 2A, class 3A has no teacher
//  - Chloe (s1, 1A), David (s2, 1B), Esther (s3, 2A), Fabrice (s4, 3A), Grace (s5, no class)
//  - payments over Jan-Mar 2024, one without student, one with an unparsable date
//  - payroll for both teachers in Jan-Feb 2024, plus one entry of an unknown teacher
func School() finance.Snapshot {
	return finance.Snapshot{
		Teachers: []finance.Teacher{
			Teacher("t1", "Amani", "Kabila"),
			Teacher("t2", "Baraka", "Mutombo"),
		},
		Students: []finance.Student{
			Student("s1", "Chloe", "Ilunga", "1A"),
			Student("s2", "David", "Kasongo", "1B"),
			Student("s3", "Esther", "Mbuyi", "2A"),
			Student("s4", "Fabrice", "Tshala", "3A"),
			Student("s5", "Grace", "Lukusa", ""),
		},
		Classes: []finance.Class{
			Class("c1", "1A", "t1"),
			Class("c2", "1B", "t1"),
			Class("c3", "2A", "t2"),
			Class("c4", "3A", ""),
		},
		Payments: []finance.Payment{
			Payment("p1", "s1", "2400000", "2024-01-10", "1_month"),
			Payment("p2", "s2", "6600000", "2024-01-15"),
			Payment("p3", "s3", "12000000", "2024-02-01"),
			Payment("p4", "s1", "500000", "2024-02-20"),
			Payment("p5", "", "100000", "2024-03-05"),
			Payment("p6", "s4", "2400000", "not a date"),
			Payment("p7", "s5", "21600000", "2024-03-31T23:30:00Z"),
		},
		Payroll: []finance.PayrollEntry{
			Payroll("e1", "t1", "2024-01-01", finance.StatusPaid, "1000000"),
			PayrollParts("e2", "t2", "2024-01-01", finance.StatusPending, "800000", "100000", "50000"),
			Payroll("e3", "t1", "2024-02-01", finance.StatusApproved, "1200000"),
			Payroll("e4", "tx", "", finance.StatusOverdue, "300000"),
		},
	}
}
