package finance

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/masomo-finance/core"
)

var (
	// errors
	ErrUnknownPlan = errors.New("unknown plan")
)

type Plan struct {
	Code  string          `json:"code"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// Catalog is the ordered list of known subscription plans.
// Order matters: it breaks ties between plans sharing the same price.
type Catalog struct {
	plans  []Plan
	byCode map[string]int
}

func NewCatalog(plans ...Plan) *Catalog {
	c := &Catalog{
		plans:  make([]Plan, 0, len(plans)),
		byCode: make(map[string]int, len(plans)),
	}
	for _, p := range plans {
		if _, ok := c.byCode[p.Code]; ok {
			continue // first definition of a code wins
		}
		c.byCode[p.Code] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c
}

// CatalogFromConfig builds the Catalog from its configured entries.
func CatalogFromConfig(entries []core.PlanConfig) (*Catalog, error) {
	plans := make([]Plan, 0, len(entries))
	for _, e := range entries {
		code := core.CleanString(e.Code)
		if code == "" {
			return nil, errors.Errorf("plan %q: empty code", e.Label)
		}
		price, err := decimal.NewFromString(core.CleanString(e.Price))
		if err != nil {
			return nil, errors.Wrapf(err, "plan %q: parsing price", code)
		}
		if price.IsNegative() {
			return nil, errors.Errorf("plan %q: negative price", code)
		}
		label := core.CleanString(e.Label)
		if label == "" {
			label = code
		}
		plans = append(plans, Plan{Code: code, Label: label, Price: price})
	}
	return NewCatalog(plans...), nil
}

// Plans returns a copy of the catalog in catalog order.
func (c *Catalog) Plans() []Plan {
	return append([]Plan(nil), c.plans...)
}

func (c *Catalog) Get(code string) (Plan, error) {
	if i, ok := c.byCode[code]; ok {
		return c.plans[i], nil
	}
	return Plan{}, ErrUnknownPlan
}

// Match resolves a payment to a known plan:
//  1. a non-empty term equal to a plan code
//  2. the first plan, in catalog order, whose price equals the amount exactly
// It returns nil for custom payments. Same-priced plans are not disambiguated.
func (c *Catalog) Match(p Payment) *Plan {
	if p.Term.Valid && p.Term.String != "" {
		if i, ok := c.byCode[p.Term.String]; ok {
			plan := c.plans[i]
			return &plan
		}
	}
	for _, plan := range c.plans {
		if plan.Price.Equal(p.Amount) {
			plan := plan
			return &plan
		}
	}
	return nil
}
