package finance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Selectors
const (
	All = "all"

	unknownName = "Unknown"
	customLabel = "Custom / Other"
)

// Payroll statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusPaid     = "paid"
	StatusOverdue  = "overdue"
)

var PayrollStatuses = []string{StatusPending, StatusApproved, StatusPaid, StatusOverdue}

type Teacher struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	IsActive  bool   `json:"is_active" db:"is_active"`
}

func (t Teacher) DisplayName() string {
	return displayName(t.FirstName, t.LastName)
}

type Student struct {
	ID        string      `json:"id" db:"id"`
	FirstName string      `json:"first_name" db:"first_name"`
	LastName  string      `json:"last_name" db:"last_name"`
	ClassName null.String `json:"class_name" db:"class_name"`
	IsActive  bool        `json:"is_active" db:"is_active"`
}

func (s Student) DisplayName() string {
	return displayName(s.FirstName, s.LastName)
}

type Class struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	TeacherID null.String `json:"teacher_id" db:"teacher_id"`
	IsActive  bool        `json:"is_active" db:"is_active"`
}

// Payment is a raw student payment row.
// PaymentDate is kept as received; it is only parsed when bucketing by month.
type Payment struct {
	ID            string          `json:"id" db:"id"`
	StudentID     null.String     `json:"student_id" db:"student_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Term          null.String     `json:"term" db:"term"`
	Description   string          `json:"description" db:"description"`
	PaymentDate   string          `json:"payment_date" db:"payment_date"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	ReceiptNumber null.String     `json:"receipt_number" db:"receipt_number"`
	Notes         null.String     `json:"notes" db:"notes"`
}

// PayrollEntry is a raw teacher payroll row.
// TotalAmount, when set, is authoritative over base + bonus - deductions.
type PayrollEntry struct {
	ID            string              `json:"id" db:"id"`
	TeacherID     string              `json:"teacher_id" db:"teacher_id"`
	PeriodStart   string              `json:"period_start" db:"period_start"`
	PeriodEnd     string              `json:"period_end" db:"period_end"`
	HoursWorked   decimal.NullDecimal `json:"hours_worked" db:"hours_worked"`
	HourlyRate    decimal.NullDecimal `json:"hourly_rate" db:"hourly_rate"`
	BaseAmount    decimal.NullDecimal `json:"base_amount" db:"base_amount"`
	Bonus         decimal.NullDecimal `json:"bonus" db:"bonus"`
	Deductions    decimal.NullDecimal `json:"deductions" db:"deductions"`
	TotalAmount   decimal.NullDecimal `json:"total_amount" db:"total_amount"`
	Status        string              `json:"status" db:"status"`
	PaymentDate   null.String         `json:"payment_date" db:"payment_date"`
	PaymentMethod null.String         `json:"payment_method" db:"payment_method"`
	Notes         null.String         `json:"notes" db:"notes"`
}

// Snapshot is one consistent read of every collection the engine needs.
type Snapshot struct {
	Teachers []Teacher
	Students []Student
	Classes  []Class
	Payments []Payment
	Payroll  []PayrollEntry
	LoadedAt time.Time
}

func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
