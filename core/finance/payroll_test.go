package finance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/masomo-finance/core/finance"
	"github.com/trezcool/masomo-finance/tests"
)

func TestPayrollTotal(t *testing.T) {
	withTotal := testutil.PayrollParts("e", "t", "2024-01-01", StatusPaid, "10000000", "500000", "200000")
	withTotal.TotalAmount = testutil.NullMoney("42")

	tests := []struct {
		name  string
		entry PayrollEntry
		want  string
	}{
		{name: "base + bonus - deductions", entry: testutil.PayrollParts("e", "t", "", "", "10000000", "500000", "200000"), want: "10300000"},
		{name: "total wins", entry: withTotal, want: "42"},
		{name: "zero total wins", entry: testutil.Payroll("e", "t", "", "", "0"), want: "0"},
		{name: "missing parts are zero", entry: testutil.PayrollParts("e", "t", "", "", "1000", "", ""), want: "1000"},
		{name: "nothing set", entry: testutil.PayrollParts("e", "t", "", "", "", "", ""), want: "0"},
		{name: "negative result is kept", entry: testutil.PayrollParts("e", "t", "", "", "100", "", "250"), want: "-150"},
		{name: "decimals", entry: testutil.PayrollParts("e", "t", "", "", "0.1", "0.2", ""), want: "0.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PayrollTotal(tt.entry).String())
		})
	}
}
