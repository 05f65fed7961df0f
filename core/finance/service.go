package finance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var nowFunc = time.Now // mockable

type (
	// Repository reads the raw collections from the external store.
	Repository interface {
		QueryTeachers(ctx context.Context) ([]Teacher, error)
		QueryStudents(ctx context.Context) ([]Student, error)
		QueryClasses(ctx context.Context) ([]Class, error)
		QueryPayments(ctx context.Context) ([]Payment, error)
		QueryPayroll(ctx context.Context) ([]PayrollEntry, error)
	}

	ServiceInterface interface {
		Catalog() *Catalog
		Load(ctx context.Context) (Snapshot, error)
		Dashboard(snap Snapshot, sel Selector) (Dashboard, error)
		Reconcile(snap Snapshot, sel Selector) ([]ReconciledPayment, error)
		StudentOptions(snap Snapshot, sel Selector) ([]Student, error)
	}

	Service struct {
		repo     Repository
		catalog  *Catalog
		validate *validator.Validate
	}
)

// Dashboard is every view of one aggregation pass.
type Dashboard struct {
	Selector        Selector         `json:"selector"`
	Totals          Totals           `json:"totals"`
	ClassesCovered  int              `json:"classes_covered"`
	MonthlyTrend    []MonthlyPoint   `json:"monthly_trend"`
	PlanMix         []PlanSlice      `json:"plan_mix"`
	TeacherPayouts  []TeacherPayout  `json:"teacher_payouts"`
	TopStudents     []StudentRevenue `json:"top_students"`
	PayrollByStatus []StatusSummary  `json:"payroll_by_status"`
	StudentOptions  []Student        `json:"student_options"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// ReconciledPayment is a payment with the plan it was matched to.
// Difference is amount - plan price, zero for custom payments.
type ReconciledPayment struct {
	Payment
	PlanCode   string          `json:"plan_code"`
	PlanLabel  string          `json:"plan_label"`
	Custom     bool            `json:"custom"`
	Difference decimal.Decimal `json:"difference"`
}

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(repo Repository, catalog *Catalog, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		validate: validate,
	}
}

func (svc *Service) Catalog() *Catalog {
	return svc.catalog
}

// Load reads all collections concurrently; the first failure cancels the others.
func (svc *Service) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Teachers, err = svc.repo.QueryTeachers(gctx)
		return errors.Wrap(err, "querying teachers")
	})
	g.Go(func() (err error) {
		snap.Students, err = svc.repo.QueryStudents(gctx)
		return errors.Wrap(err, "querying students")
	})
	g.Go(func() (err error) {
		snap.Classes, err = svc.repo.QueryClasses(gctx)
		return errors.Wrap(err, "querying classes")
	})
	g.Go(func() (err error) {
		snap.Payments, err = svc.repo.QueryPayments(gctx)
		return errors.Wrap(err, "querying payments")
	})
	g.Go(func() (err error) {
		snap.Payroll, err = svc.repo.QueryPayroll(gctx)
		return errors.Wrap(err, "querying payroll")
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.LoadedAt = nowFunc().UTC()
	return snap, nil
}

func (svc *Service) clean(sel Selector) (Selector, error) {
	sel.Clean()
	if err := sel.Validate(svc.validate); err != nil {
		return Selector{}, err
	}
	return sel, nil
}

func (svc *Service) Dashboard(snap Snapshot, sel Selector) (Dashboard, error) {
	sel, err := svc.clean(sel)
	if err != nil {
		return Dashboard{}, err
	}

	idx := BuildIndex(snap.Teachers, snap.Students, snap.Classes)
	payments := FilterPayments(sel, idx, snap.Payments)
	payroll := FilterPayroll(sel, snap.Payroll)

	return Dashboard{
		Selector:        sel,
		Totals:          ComputeTotals(payments, payroll),
		ClassesCovered:  ClassesCovered(sel, idx),
		MonthlyTrend:    MonthlyTrend(payments, payroll),
		PlanMix:         PlanMix(svc.catalog, payments),
		TeacherPayouts:  TeacherPayouts(idx, payroll),
		TopStudents:     TopStudents(idx, payments, TopStudentsLimit),
		PayrollByStatus: PayrollByStatus(payroll),
		StudentOptions:  StudentOptions(sel, idx, snap.Students),
		GeneratedAt:     nowFunc().UTC(),
	}, nil
}

func (svc *Service) Reconcile(snap Snapshot, sel Selector) ([]ReconciledPayment, error) {
	sel, err := svc.clean(sel)
	if err != nil {
		return nil, err
	}

	idx := BuildIndex(snap.Teachers, snap.Students, snap.Classes)
	payments := FilterPayments(sel, idx, snap.Payments)

	out := make([]ReconciledPayment, 0, len(payments))
	for _, p := range payments {
		rp := ReconciledPayment{Payment: p, Custom: true, Difference: decimal.Zero}
		if plan := svc.catalog.Match(p); plan != nil {
			rp.PlanCode = plan.Code
			rp.PlanLabel = plan.Label
			rp.Custom = false
			rp.Difference = p.Amount.Sub(plan.Price)
		}
		out = append(out, rp)
	}
	return out, nil
}

func (svc *Service) StudentOptions(snap Snapshot, sel Selector) ([]Student, error) {
	sel, err := svc.clean(sel)
	if err != nil {
		return nil, err
	}
	idx := BuildIndex(snap.Teachers, snap.Students, snap.Classes)
	return StudentOptions(sel, idx, snap.Students), nil
}
