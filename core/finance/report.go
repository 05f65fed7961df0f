package finance

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-finance/core"
)

const reportTemplate = "finance_report"

// ReportData is the data of the finance_report email templates.
type ReportData struct {
	AppName     string
	Scope       string
	Dashboard   Dashboard
	GeneratedAt time.Time
}

// Scope describes the selector in words, e.g. "all teachers, all students".
func (b *Board) Scope(sel Selector) string {
	sel.Clean()
	snap, err := b.Current()
	if err != nil {
		return scope(sel, nil)
	}
	return scope(sel, BuildIndex(snap.Teachers, snap.Students, snap.Classes))
}

func scope(sel Selector, idx *Index) string {
	teacher, student := "all teachers", "all students"
	if !sel.AllTeachers() {
		teacher = "teacher " + sel.Teacher
		if idx != nil {
			teacher = "teacher " + idx.teacherName(sel.Teacher)
		}
	}
	if !sel.AllStudents() {
		student = "student " + sel.Student
		if idx != nil {
			student = "student " + idx.studentName(sel.Student)
		}
	}
	return teacher + ", " + student
}

// NewReportMessage builds the finance report email of the selection.
// The reconciled payments are attached as CSV. Every part of the report comes from the same snapshot.
func NewReportMessage(appName string, b *Board, sel Selector, to []mail.Address) (*core.EmailMessage, error) {
	snap, err := b.Current()
	if err != nil {
		return nil, err
	}
	dash, err := b.svc.Dashboard(snap, sel)
	if err != nil {
		return nil, errors.Wrap(err, "building dashboard")
	}
	payments, err := b.svc.Reconcile(snap, sel)
	if err != nil {
		return nil, errors.Wrap(err, "reconciling payments")
	}

	msg := &core.EmailMessage{
		To:           to,
		Subject:      fmt.Sprintf("Finance report %s", dash.GeneratedAt.Format("2006-01-02")),
		TemplateName: reportTemplate,
		TemplateData: ReportData{
			AppName:     appName,
			Scope:       scope(dash.Selector, BuildIndex(snap.Teachers, snap.Students, snap.Classes)),
			Dashboard:   dash,
			GeneratedAt: dash.GeneratedAt,
		},
	}

	buf, err := ReconciliationCSV(payments)
	if err != nil {
		return nil, err
	}
	if err = msg.Attach(buf, "reconciliation.csv", "text/csv"); err != nil {
		return nil, errors.Wrap(err, "attaching reconciliation")
	}
	return msg, nil
}

// ReconciliationCSV writes one line per payment with its matched plan.
func ReconciliationCSV(payments []ReconciledPayment) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	rows := [][]string{{"id", "student_id", "payment_date", "amount", "term", "plan", "difference"}}
	for _, p := range payments {
		plan := p.PlanLabel
		if p.Custom {
			plan = customLabel
		}
		rows = append(rows, []string{
			p.ID,
			p.StudentID.String,
			p.PaymentDate,
			p.Amount.String(),
			p.Term.String,
			plan,
			p.Difference.String(),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, "writing reconciliation csv")
	}
	return buf, nil
}
