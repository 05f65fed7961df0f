package finance

import "github.com/shopspring/decimal"

// PayrollTotal returns the payable amount of a payroll entry.
// A set TotalAmount is returned as is; otherwise base + bonus - deductions with missing parts as zero.
// The result is never clamped: deductions may exceed base + bonus.
func PayrollTotal(e PayrollEntry) decimal.Decimal {
	if e.TotalAmount.Valid {
		return e.TotalAmount.Decimal
	}
	return orZero(e.BaseAmount).Add(orZero(e.Bonus)).Sub(orZero(e.Deductions))
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}
