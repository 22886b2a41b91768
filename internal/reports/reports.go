// Package reports derives totals and summaries from a snapshot of the
// ledger collections. Every function here is pure.
package reports

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"findash/internal/amortization"
	"findash/internal/core"
)

// Totals is the balance sheet of the whole ledger.
type Totals struct {
	Cash        core.Money `json:"cash"`
	Holdings    core.Money `json:"holdings"`
	Receivables core.Money `json:"receivables"`
	OtherAssets core.Money `json:"otherAssets"`
	Homes       core.Money `json:"homes"`
	Assets      core.Money `json:"assets"`

	Cards       core.Money `json:"cards"`
	FormalDebt  core.Money `json:"formalDebt"`
	Commitments core.Money `json:"commitments"`
	Liabilities core.Money `json:"liabilities"`

	NetWorth core.Money `json:"netWorth"`
}

// Compute totals the collections. Only top-level accounts count as cash
// since a parent balance already includes its sub-accounts. Archived items
// are excluded. Receivables count with what is still outstanding.
func Compute(c *core.Collections) Totals {
	var t Totals
	for _, a := range c.Accounts {
		if !a.IsSubAccount() {
			t.Cash = t.Cash.Add(a.Balance)
		}
	}
	t.Holdings = core.Sum(HoldingValue(c.Stocks), HoldingValue(c.Crypto), HoldingValue(c.RetirementHoldings))
	for _, r := range c.Receivables {
		if r.IsActive() {
			t.Receivables = t.Receivables.Add(outstanding(r.Amount, c.PaymentsFor(r.ID), amountOf))
		}
	}
	for _, a := range c.OtherAssets {
		t.OtherAssets = t.OtherAssets.Add(a.CurrentValue)
	}
	for _, h := range c.Homes {
		t.Homes = t.Homes.Add(h.CurrentValue)
	}
	t.Assets = core.Sum(t.Cash, t.Holdings, t.Receivables, t.OtherAssets, t.Homes)

	for _, cc := range c.CreditCards {
		t.Cards = t.Cards.Add(cc.Balance)
	}
	for _, d := range c.FormalDebts {
		if d.IsActive() {
			t.FormalDebt = t.FormalDebt.Add(DebtOutstanding(d, c.PaymentsFor(d.ID)))
		}
	}
	for _, cm := range c.Commitments {
		if cm.IsActive() {
			t.Commitments = t.Commitments.Add(outstanding(cm.Amount, c.PaymentsFor(cm.ID), amountOf))
		}
	}
	t.Liabilities = core.Sum(t.Cards, t.FormalDebt, t.Commitments)
	t.NetWorth = t.Assets.Sub(t.Liabilities)
	return t
}

func amountOf(p core.PaymentRecord) core.Money { return p.Amount }

func outstanding(total core.Money, payments []core.PaymentRecord, paid func(core.PaymentRecord) core.Money) core.Money {
	for _, p := range payments {
		total = total.Sub(paid(p))
	}
	return total
}

// PrincipalPaid is the part of the payments that reduced the debt.
func PrincipalPaid(d core.FormalDebt, payments []core.PaymentRecord) core.Money {
	var sum core.Money
	for _, p := range payments {
		sum = sum.Add(d.PrincipalOf(p))
	}
	return sum
}

// DebtOutstanding is the original amount minus the principal paid.
func DebtOutstanding(d core.FormalDebt, payments []core.PaymentRecord) core.Money {
	return d.TotalAmount.Sub(PrincipalPaid(d, payments))
}

// Progress returns paid as a percentage of total, rounded to one place.
func Progress(paid, total core.Money) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return paid.Ratio(total).Mul(decimal.NewFromInt(100)).Round(1)
}

// Band classifies credit utilization.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Utilization is the card balance as a percentage of its limit. Cards
// without a limit report zero.
func Utilization(card core.CreditCard) decimal.Decimal {
	if !card.CreditLimit.IsPositive() {
		return decimal.Zero
	}
	return card.Balance.Ratio(card.CreditLimit).Mul(decimal.NewFromInt(100))
}

// UtilizationBand is low up to 30 %, medium up to 70 % and high above.
func UtilizationBand(percent decimal.Decimal) Band {
	switch {
	case percent.GreaterThan(decimal.NewFromInt(70)):
		return BandHigh
	case percent.GreaterThan(decimal.NewFromInt(30)):
		return BandMedium
	default:
		return BandLow
	}
}

// HoldingValue is the market value of the holdings.
func HoldingValue(holdings []core.Holding) core.Money {
	var sum core.Money
	for _, h := range holdings {
		sum = sum.Add(h.Value())
	}
	return sum
}

// HoldingGain is market value minus cost basis.
func HoldingGain(h core.Holding) core.Money {
	return h.Value().Sub(h.CostBasis)
}

// RetirementSummary describes one retirement account.
type RetirementSummary struct {
	Account       core.RetirementAccount `json:"account"`
	Value         core.Money             `json:"value"`
	CostBasis     core.Money             `json:"costBasis"`
	Gain          core.Money             `json:"gain"`
	Contributions core.Money             `json:"contributions"`
	Holdings      int                    `json:"holdings"`
}

// Retirement summarises every retirement account in stored order.
func Retirement(c *core.Collections) []RetirementSummary {
	out := make([]RetirementSummary, 0, len(c.RetirementAccounts))
	for _, a := range c.RetirementAccounts {
		s := RetirementSummary{Account: a}
		for _, h := range c.RetirementHoldings {
			if h.AccountID == a.ID {
				s.Value = s.Value.Add(h.Value())
				s.CostBasis = s.CostBasis.Add(h.CostBasis)
				s.Holdings++
			}
		}
		for _, ct := range c.Contributions {
			if ct.AccountID == a.ID {
				s.Contributions = s.Contributions.Add(ct.Amount)
			}
		}
		s.Gain = s.Value.Sub(s.CostBasis)
		out = append(out, s)
	}
	return out
}

// Slice is one entry of an asset allocation.
type Slice struct {
	Name  string     `json:"name"`
	Value core.Money `json:"value"`
}

// Allocation splits assets into cash, stocks, crypto, retirement and other
// assets, keeping only the positive entries.
func Allocation(c *core.Collections) []Slice {
	var cash, other core.Money
	for _, a := range c.Accounts {
		if !a.IsSubAccount() {
			cash = cash.Add(a.Balance)
		}
	}
	for _, a := range c.OtherAssets {
		other = other.Add(a.CurrentValue)
	}
	all := []Slice{
		{"Cash", cash},
		{"Stocks", HoldingValue(c.Stocks)},
		{"Crypto", HoldingValue(c.Crypto)},
		{"Retirement", HoldingValue(c.RetirementHoldings)},
		{"Other Assets", other},
	}
	return slices.DeleteFunc(all, func(s Slice) bool { return !s.Value.IsPositive() })
}

// MonthOverview sums the income and spending of one account for a month.
// Transfers between the user's own accounts are left out.
func MonthOverview(c *core.Collections, accountID string, year, month int) core.MonthOverview {
	ov := core.MonthOverview{Year: year, Month: month}
	byCategory := map[string]core.Money{}
	for _, t := range c.Transactions {
		if t.AccountID != accountID || t.IsInternal || t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		if t.Amount.IsPositive() {
			ov.Income = ov.Income.Add(t.Amount)
		} else {
			ov.Spending = ov.Spending.Add(t.Amount.Neg())
		}
		name := t.Category
		if name == "" {
			name = "Uncategorized"
		}
		byCategory[name] = byCategory[name].Add(t.Amount)
	}
	ov.Net = ov.Income.Sub(ov.Spending)
	for name, amount := range byCategory {
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	slices.SortFunc(ov.ByCategory, func(a, b core.CategoryAmount) int {
		if n := a.Amount.Cmp(b.Amount); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ov
}

// HomeSummary is the equity and cost picture of one home.
type HomeSummary struct {
	Home                   core.Home        `json:"home"`
	Mortgage               *core.FormalDebt `json:"mortgage,omitempty"`
	MortgageBalance        core.Money       `json:"mortgageBalance"`
	Equity                 core.Money       `json:"equity"`
	NetEquityOnSale        core.Money       `json:"netEquityOnSale"`
	ImprovementCost        core.Money       `json:"improvementCost"`
	CostBasis              core.Money       `json:"costBasis"`
	Appreciation           core.Money       `json:"appreciation"`
	PrincipalPaid          core.Money       `json:"principalPaid"`
	InterestPaid           core.Money       `json:"interestPaid"`
	TaxesPaid              core.Money       `json:"taxesPaid"`
	PMIPaid                core.Money       `json:"pmiPaid"`
	MonthlyHousingCost     core.Money       `json:"monthlyHousingCost"`
	ProjectedTotalInterest core.Money       `json:"projectedTotalInterest"`
	ProjectedTotalLoanCost core.Money       `json:"projectedTotalLoanCost"`
}

// Home summarises the home with homeID.
func Home(c *core.Collections, homeID string) (HomeSummary, error) {
	i := slices.IndexFunc(c.Homes, func(h core.Home) bool { return h.ID == homeID })
	if i < 0 {
		return HomeSummary{}, core.NotFound("home summary", homeID)
	}
	h := c.Homes[i]
	s := HomeSummary{Home: h}

	for _, imp := range c.HomeImprovements {
		if imp.HomeID == homeID {
			s.ImprovementCost = s.ImprovementCost.Add(imp.Cost)
		}
	}

	if d, ok := c.DebtByID(h.LinkedDebtID); ok && h.LinkedDebtID != "" {
		s.Mortgage = &d
		payments := c.PaymentsFor(d.ID)
		escrow := d.Escrow()
		for _, p := range payments {
			s.PrincipalPaid = s.PrincipalPaid.Add(d.PrincipalOf(p))
			if p.Breakdown == nil {
				continue
			}
			s.InterestPaid = s.InterestPaid.Add(p.Breakdown.Interest)
			if escrow.IsPositive() && p.Breakdown.Escrow.IsPositive() {
				// Escrow is split in proportion to the monthly components.
				s.TaxesPaid = s.TaxesPaid.Add(share(p.Breakdown.Escrow, d.MonthlyTax, escrow))
				s.PMIPaid = s.PMIPaid.Add(share(p.Breakdown.Escrow, d.MonthlyPMI, escrow))
			}
		}
		s.MortgageBalance = d.TotalAmount.Sub(s.PrincipalPaid)
		s.MonthlyHousingCost = d.MonthlyPayment.Add(escrow)
		s.ProjectedTotalInterest = amortization.TotalInterest(d)
		s.ProjectedTotalLoanCost = d.TotalAmount.Add(s.ProjectedTotalInterest)
	}

	s.Equity = h.CurrentValue.Sub(s.MortgageBalance)
	s.NetEquityOnSale = s.Equity.Sub(h.ClosingCosts).Sub(s.ImprovementCost)
	s.CostBasis = core.Sum(h.PurchasePrice, h.ClosingCosts, s.ImprovementCost)
	s.Appreciation = h.CurrentValue.Sub(h.PurchasePrice)
	return s, nil
}

// share returns the part of amount that part represents of whole.
func share(amount, part, whole core.Money) core.Money {
	return amount.Mul(part.Decimal()).Div(whole.Decimal())
}
