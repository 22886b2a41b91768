package history

import (
	"cmp"
	"maps"
	"slices"

	"findash/internal/core"
)

// BalancePoint is the balance of one item, or one kind of item, at the end
// of Date.
type BalancePoint struct {
	Date    core.Date  `json:"date"`
	Balance core.Money `json:"balance"`
}

// ItemBalance walks from anchor down through the principal paid per day.
// The first point, one day before start, carries the full anchor.
func ItemBalance(anchor core.Money, start core.Date, payments []core.PaymentRecord, principalOf func(core.PaymentRecord) core.Money) []BalancePoint {
	if start.IsZero() && len(payments) > 0 {
		start = slices.MinFunc(payments, func(a, b core.PaymentRecord) int { return a.Date.Compare(b.Date) }).Date
	}
	series := []BalancePoint{{Date: start.AddDays(-1), Balance: anchor}}

	paid := map[int64]core.Money{}
	for _, p := range payments {
		paid[p.Date.Unix()] = paid[p.Date.Unix()].Add(principalOf(p))
	}
	running := anchor
	for _, key := range slices.Sorted(maps.Keys(paid)) {
		running = running.Sub(paid[key])
		series = append(series, BalancePoint{Date: dateOf(key), Balance: running})
	}
	return series
}

// DebtBalance is the balance history of one formal debt. Mortgage payments
// count with their principal only.
func DebtBalance(c *core.Collections, debtID string, today core.Date) ([]BalancePoint, error) {
	d, ok := c.DebtByID(debtID)
	if !ok {
		return nil, core.NotFound("debt history", debtID)
	}
	start := d.CreationDate
	if start.IsZero() {
		start = today
	}
	return ItemBalance(d.TotalAmount, start, c.PaymentsFor(debtID), d.PrincipalOf), nil
}

// CommitmentBalance is the balance history of one commitment or receivable.
func CommitmentBalance(c *core.Collections, itemID string, today core.Date) ([]BalancePoint, error) {
	var (
		amount core.Money
		start  core.Date
		found  bool
	)
	if i := slices.IndexFunc(c.Commitments, func(cm core.Commitment) bool { return cm.ID == itemID }); i >= 0 {
		amount, start, found = c.Commitments[i].Amount, c.Commitments[i].CreationDate, true
	} else if i := slices.IndexFunc(c.Receivables, func(r core.Receivable) bool { return r.ID == itemID }); i >= 0 {
		amount, start, found = c.Receivables[i].Amount, c.Receivables[i].CreationDate, true
	}
	if !found {
		return nil, core.NotFound("item history", itemID)
	}
	if start.IsZero() {
		start = today
	}
	return ItemBalance(amount, start, c.PaymentsFor(itemID), func(p core.PaymentRecord) core.Money { return p.Amount }), nil
}

// Kind selects a family of obligations.
type Kind string

const (
	KindFormalDebt  Kind = "formalDebt"
	KindCommitments Kind = "commitments"
	KindReceivables Kind = "receivables"
)

// Obligations is the combined outstanding balance of every item of one
// kind over time: items add their amount when they start and payments
// subtract principal. The series starts at zero the day before the first
// event and is extended to today. It is empty when there are no events.
func Obligations(c *core.Collections, kind Kind, today core.Date) []BalancePoint {
	changes := map[int64]core.Money{}
	add := func(date core.Date, amount core.Money) {
		if date.IsZero() || amount.IsZero() {
			return
		}
		changes[date.Unix()] = changes[date.Unix()].Add(amount)
	}

	principal := func(p core.PaymentRecord) core.Money { return p.Amount }
	items := map[string]bool{}
	switch kind {
	case KindFormalDebt:
		debts := map[string]core.FormalDebt{}
		for _, d := range c.FormalDebts {
			items[d.ID] = true
			debts[d.ID] = d
			if d.TotalAmount.IsPositive() {
				add(d.StartDate(), d.TotalAmount)
			}
		}
		principal = func(p core.PaymentRecord) core.Money { return debts[p.ItemID].PrincipalOf(p) }
	case KindCommitments:
		for _, cm := range c.Commitments {
			items[cm.ID] = true
			if cm.Amount.IsPositive() {
				add(cm.CreationDate, cm.Amount)
			}
		}
	case KindReceivables:
		for _, r := range c.Receivables {
			items[r.ID] = true
			if r.Amount.IsPositive() {
				add(r.CreationDate, r.Amount)
			}
		}
	}
	for _, p := range c.PaymentRecords {
		if !items[p.ItemID] {
			continue
		}
		if paid := principal(p); paid.IsPositive() {
			add(p.Date, paid.Neg())
		}
	}
	if len(changes) == 0 {
		return nil
	}

	keys := slices.SortedFunc(maps.Keys(changes), cmp.Compare[int64])
	series := []BalancePoint{{Date: dateOf(keys[0]).AddDays(-1)}}
	var running core.Money
	for _, key := range keys {
		running = running.Add(changes[key])
		series = append(series, BalancePoint{Date: dateOf(key), Balance: running})
	}
	if last := series[len(series)-1].Date; last.Before(today) {
		series = append(series, BalancePoint{Date: today, Balance: running})
	}
	return series
}
