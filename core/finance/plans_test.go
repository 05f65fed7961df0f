package finance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-finance/core"
	. "github.com/trezcool/masomo-finance/core/finance"
	"github.com/trezcool/masomo-finance/tests"
)

func TestNewCatalog(t *testing.T) {
	catalog := NewCatalog(
		Plan{Code: "a", Label: "A", Price: testutil.Money("100")},
		Plan{Code: "b", Label: "B", Price: testutil.Money("200")},
		Plan{Code: "a", Label: "A again", Price: testutil.Money("300")},
	)

	plans := catalog.Plans()
	require.Len(t, plans, 2)
	assert.Equal(t, "A", plans[0].Label, "first definition of a code wins")
	assert.Equal(t, "b", plans[1].Code)

	// Plans returns a copy
	plans[0].Label = "changed"
	assert.Equal(t, "A", catalog.Plans()[0].Label)
}

func TestCatalogFromConfig(t *testing.T) {
	tests := []struct {
		name       string
		entries    []core.PlanConfig
		wantErr    bool
		wantLabels []string
	}{
		{name: "empty", entries: nil, wantLabels: []string{}},
		{
			name: "valid",
			entries: []core.PlanConfig{
				{Code: " 1_month ", Label: "1 Month", Price: "2400000"},
				{Code: "trial", Price: "0"},
			},
			wantLabels: []string{"1 Month", "trial"},
		},
		{name: "empty code", entries: []core.PlanConfig{{Code: "  ", Label: "x", Price: "1"}}, wantErr: true},
		{name: "bad price", entries: []core.PlanConfig{{Code: "x", Price: "lol"}}, wantErr: true},
		{name: "negative price", entries: []core.PlanConfig{{Code: "x", Price: "-1"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := CatalogFromConfig(tt.entries)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			labels := make([]string, 0)
			for _, p := range catalog.Plans() {
				labels = append(labels, p.Label)
			}
			assert.Equal(t, tt.wantLabels, labels)
		})
	}
}

func TestCatalog_Get(t *testing.T) {
	catalog := testutil.DefaultCatalog(t)

	plan, err := catalog.Get("3_months")
	require.NoError(t, err)
	assert.Equal(t, "6600000", plan.Price.String())

	_, err = catalog.Get("lol")
	assert.Equal(t, ErrUnknownPlan, err)
}

func TestCatalog_Match(t *testing.T) {
	catalog := NewCatalog(
		Plan{Code: "1_month", Label: "1 Month", Price: testutil.Money("2400000")},
		Plan{Code: "3_months", Label: "3 Months", Price: testutil.Money("6600000")},
		Plan{Code: "promo", Label: "Promo", Price: testutil.Money("6600000")},
		Plan{Code: "12_months", Label: "12 Months", Price: testutil.Money("21600000")},
	)

	tests := []struct {
		name     string
		payment  Payment
		wantCode string // empty for custom
	}{
		{name: "price match without term", payment: testutil.Payment("p", "s", "6600000", ""), wantCode: "3_months"},
		{name: "term wins over price", payment: testutil.Payment("p", "s", "6600000", "", "12_months"), wantCode: "12_months"},
		{name: "term matches despite amount", payment: testutil.Payment("p", "s", "100", "", "1_month"), wantCode: "1_month"},
		{name: "unknown term falls back to price", payment: testutil.Payment("p", "s", "2400000", "", "weekly"), wantCode: "1_month"},
		{name: "same price resolves to first plan", payment: testutil.Payment("p", "s", "6600000.00", ""), wantCode: "3_months"},
		{name: "no match", payment: testutil.Payment("p", "s", "6600001", ""), wantCode: ""},
		{name: "no match with unknown term", payment: testutil.Payment("p", "s", "5", "", "weekly"), wantCode: ""},
		{name: "zero amount", payment: testutil.Payment("p", "", "0", ""), wantCode: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := catalog.Match(tt.payment)
			if tt.wantCode == "" {
				assert.Nil(t, plan)
				return
			}
			require.NotNil(t, plan)
			assert.Equal(t, tt.wantCode, plan.Code)
		})
	}
}
