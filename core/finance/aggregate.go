package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TopStudentsLimit is the size of the student revenue ranking.
const TopStudentsLimit = 5

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
}

type (
	Totals struct {
		Revenue decimal.Decimal `json:"revenue"`
		Payroll decimal.Decimal `json:"payroll"`
		Net     decimal.Decimal `json:"net"`
	}

	MonthlyPoint struct {
		Month   string          `json:"month"` // YYYY-MM
		Revenue decimal.Decimal `json:"revenue"`
		Payroll decimal.Decimal `json:"payroll"`
	}

	PlanSlice struct {
		Code   string          `json:"code"` // empty for the custom bucket
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
	}

	TeacherPayout struct {
		TeacherID string          `json:"teacher_id"`
		Name      string          `json:"name"`
		Total     decimal.Decimal `json:"total"`
	}

	StudentRevenue struct {
		StudentID string          `json:"student_id"`
		Name      string          `json:"name"`
		Total     decimal.Decimal `json:"total"`
	}

	StatusSummary struct {
		Status string          `json:"status"`
		Count  int             `json:"count"`
		Total  decimal.Decimal `json:"total"`
	}
)

// ComputeTotals sums revenue and payroll; net may be negative.
func ComputeTotals(payments []Payment, payroll []PayrollEntry) Totals {
	revenue := decimal.Zero
	for _, p := range payments {
		revenue = revenue.Add(p.Amount)
	}
	paid := decimal.Zero
	for _, e := range payroll {
		paid = paid.Add(PayrollTotal(e))
	}
	return Totals{Revenue: revenue, Payroll: paid, Net: revenue.Sub(paid)}
}

// ClassesCovered is the class count of the selected teacher, or of every teacher.
func ClassesCovered(sel Selector, idx *Index) int {
	if sel.AllTeachers() {
		return idx.TotalClassCount()
	}
	return idx.ClassCount(sel.Teacher)
}

// MonthlyTrend buckets payments by payment date and payroll by period start into calendar months.
// Records without a parsable date are left out; rows are sorted by month.
func MonthlyTrend(payments []Payment, payroll []PayrollEntry) []MonthlyPoint {
	buckets := make(map[string]*MonthlyPoint)
	bucket := func(month string) *MonthlyPoint {
		pt, ok := buckets[month]
		if !ok {
			pt = &MonthlyPoint{Month: month, Revenue: decimal.Zero, Payroll: decimal.Zero}
			buckets[month] = pt
		}
		return pt
	}

	for _, p := range payments {
		if month, ok := monthKey(p.PaymentDate); ok {
			pt := bucket(month)
			pt.Revenue = pt.Revenue.Add(p.Amount)
		}
	}
	for _, e := range payroll {
		if month, ok := monthKey(e.PeriodStart); ok {
			pt := bucket(month)
			pt.Payroll = pt.Payroll.Add(PayrollTotal(e))
		}
	}

	points := make([]MonthlyPoint, 0, len(buckets))
	for _, pt := range buckets {
		points = append(points, *pt)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points
}

// PlanMix sums payments per matched plan, in catalog order, followed by the custom bucket.
// Plans without revenue are omitted, and so is the custom bucket unless its sum is positive.
func PlanMix(catalog *Catalog, payments []Payment) []PlanSlice {
	plans := catalog.Plans()
	sums := make(map[string]decimal.Decimal, len(plans))
	custom := decimal.Zero
	for _, p := range payments {
		if plan := catalog.Match(p); plan != nil {
			sums[plan.Code] = sums[plan.Code].Add(p.Amount)
		} else {
			custom = custom.Add(p.Amount)
		}
	}

	slices := make([]PlanSlice, 0, len(plans)+1)
	for _, plan := range plans {
		if sum, ok := sums[plan.Code]; ok && !sum.IsZero() {
			slices = append(slices, PlanSlice{Code: plan.Code, Label: plan.Label, Amount: sum})
		}
	}
	if custom.IsPositive() {
		slices = append(slices, PlanSlice{Label: customLabel, Amount: custom})
	}
	return slices
}

// TeacherPayouts sums payroll per teacher, in order of first appearance.
func TeacherPayouts(idx *Index, payroll []PayrollEntry) []TeacherPayout {
	pos := make(map[string]int)
	payouts := make([]TeacherPayout, 0)
	for _, e := range payroll {
		i, ok := pos[e.TeacherID]
		if !ok {
			i = len(payouts)
			pos[e.TeacherID] = i
			payouts = append(payouts, TeacherPayout{
				TeacherID: e.TeacherID,
				Name:      idx.teacherName(e.TeacherID),
				Total:     decimal.Zero,
			})
		}
		payouts[i].Total = payouts[i].Total.Add(PayrollTotal(e))
	}
	return payouts
}

// TopStudents ranks students by revenue, highest first, and keeps the first `limit`.
// Payments without a student are ignored; ties keep the order of first appearance.
func TopStudents(idx *Index, payments []Payment, limit int) []StudentRevenue {
	pos := make(map[string]int)
	ranking := make([]StudentRevenue, 0)
	for _, p := range payments {
		if !p.StudentID.Valid || p.StudentID.String == "" {
			continue
		}
		id := p.StudentID.String
		i, ok := pos[id]
		if !ok {
			i = len(ranking)
			pos[id] = i
			ranking = append(ranking, StudentRevenue{StudentID: id, Name: idx.studentName(id), Total: decimal.Zero})
		}
		ranking[i].Total = ranking[i].Total.Add(p.Amount)
	}

	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Total.GreaterThan(ranking[j].Total) })
	if limit >= 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// PayrollByStatus counts and sums payroll per status.
// Known statuses come first in their canonical order, unknown ones follow in order of appearance.
func PayrollByStatus(payroll []PayrollEntry) []StatusSummary {
	byStatus := make(map[string]*StatusSummary)
	var others []string
	for _, e := range payroll {
		status := strings.ToLower(strings.TrimSpace(e.Status))
		sum, ok := byStatus[status]
		if !ok {
			sum = &StatusSummary{Status: status, Total: decimal.Zero}
			byStatus[status] = sum
			if !isKnownStatus(status) {
				others = append(others, status)
			}
		}
		sum.Count++
		sum.Total = sum.Total.Add(PayrollTotal(e))
	}

	out := make([]StatusSummary, 0, len(byStatus))
	for _, status := range append(append([]string(nil), PayrollStatuses...), others...) {
		if sum, ok := byStatus[status]; ok {
			out = append(out, *sum)
		}
	}
	return out
}

func isKnownStatus(status string) bool {
	for _, s := range PayrollStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// monthKey parses a date and returns its YYYY-MM bucket.
func monthKey(raw string) (string, bool) {
	t, ok := ParseDate(raw)
	if !ok {
		return "", false
	}
	return t.Format("2006-01"), true
}

// ParseDate parses the date formats the store hands out (date, timestamp, timestamptz).
// The calendar date is taken as written, without converting time zones.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
