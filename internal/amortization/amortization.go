// Package amortization splits mortgage payments into interest, escrow and
// principal.
//
// The split is recomputed over the complete payment history of a debt every
// time one of its payments changes, so the result never depends on the order
// in which payments were recorded.
package amortization

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(hundred).Div(twelve)
}

// Apply recomputes the breakdown of every payment of debt.
//
// The returned slice is sorted by date; payments on the same day keep their
// relative order. The input slice is not modified. When the debt carries no
// interest or no principal the payments are returned as they are.
//
// Regular payments pay interest first, then escrow, then principal. Extra
// payments go to principal entirely. The balance is not clamped at zero.
func Apply(debt core.FormalDebt, payments []core.PaymentRecord) []core.PaymentRecord {
	out := slices.Clone(payments)
	if debt.InterestRate.IsZero() || debt.TotalAmount.IsZero() {
		return out
	}
	slices.SortStableFunc(out, byDate)

	balance := debt.TotalAmount
	rate := MonthlyRate(debt.InterestRate)
	escrow := debt.Escrow()

	for i, p := range out {
		var b core.Breakdown
		if p.PaymentType == core.PaymentExtra {
			b.Principal = p.Amount
		} else {
			b.Interest = core.MinMoney(p.Amount, balance.Mul(rate))
			b.Escrow = core.MinMoney(p.Amount.Sub(b.Interest), escrow)
			b.Principal = core.MaxMoney(core.Money{}, p.Amount.Sub(b.Interest).Sub(b.Escrow))
		}
		b.Total = p.Amount
		balance = balance.Sub(b.Principal)
		out[i].Breakdown = &b
	}
	return out
}

// Row is one line of an amortization table.
type Row struct {
	Payment core.PaymentRecord
	Balance core.Money // remaining principal after the payment
}

// Schedule returns the amortized payments with the running balance after each.
func Schedule(debt core.FormalDebt, payments []core.PaymentRecord) []Row {
	applied := Apply(debt, payments)
	if len(applied) == 0 {
		return nil
	}
	if debt.InterestRate.IsZero() || debt.TotalAmount.IsZero() {
		slices.SortStableFunc(applied, byDate)
	}
	rows := make([]Row, len(applied))
	balance := debt.TotalAmount
	for i, p := range applied {
		balance = balance.Sub(p.Principal())
		rows[i] = Row{Payment: p, Balance: balance}
	}
	return rows
}

// MonthlyPayment returns the fixed principal and interest payment that repays
// principal over termYears at annualPercent.
func MonthlyPayment(principal core.Money, annualPercent decimal.Decimal, termYears int) core.Money {
	if !principal.IsPositive() || annualPercent.IsNegative() || termYears <= 0 {
		return core.Money{}
	}
	n := int64(termYears) * 12
	if annualPercent.IsZero() {
		return principal.DivInt(n)
	}
	r := MonthlyRate(annualPercent)
	// P * r * (1+r)^n / ((1+r)^n - 1)
	growth := compound(decimal.NewFromInt(1).Add(r), n)
	return principal.Mul(r.Mul(growth)).Div(growth.Sub(decimal.NewFromInt(1)))
}

// compound raises base to n by repeated squaring, keeping enough digits
// for cent-accurate results over long terms.
func compound(base decimal.Decimal, n int64) decimal.Decimal {
	const places = 24
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(places)
		}
		base = base.Mul(base).Round(places)
		n >>= 1
	}
	return result
}

// TotalInterest projects the interest paid over the full term at the given
// monthly payment.
func TotalInterest(debt core.FormalDebt) core.Money {
	if debt.LoanTermYears <= 0 || debt.MonthlyPayment.IsZero() {
		return core.Money{}
	}
	return debt.MonthlyPayment.MulInt(int64(debt.LoanTermYears) * 12).Sub(debt.TotalAmount)
}

func byDate(a, b core.PaymentRecord) int {
	return cmp.Compare(a.Date.Unix(), b.Date.Unix())
}
