// Package history rebuilds past balances from the current totals and the
// event log.
//
// Series are reconstructed backwards: starting from today's known values,
// each day's net change is subtracted to obtain the value before that day.
package history

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"findash/internal/core"
)

// DefaultMaxPoints caps net worth series to roughly a year of daily points.
const DefaultMaxPoints = 365

// Point is the state at the end of Date.
type Point struct {
	Date        core.Date  `json:"date"`
	Assets      core.Money `json:"assets"`
	Liabilities core.Money `json:"liabilities"`
	NetWorth    core.Money `json:"netWorth"`
}

type Options struct {
	MaxPoints int
}

func (o Options) maxPoints() int {
	if o.MaxPoints <= 0 {
		return DefaultMaxPoints
	}
	return o.MaxPoints
}

type delta struct {
	assets      core.Money
	liabilities core.Money
}

// days groups changes by calendar day.
type days map[int64]*delta

func (d days) add(date core.Date, assets, liabilities core.Money) {
	if date.IsZero() {
		return
	}
	key := date.Unix()
	e := d[key]
	if e == nil {
		e = &delta{}
		d[key] = e
	}
	e.assets = e.assets.Add(assets)
	e.liabilities = e.liabilities.Add(liabilities)
}

func (d days) get(date core.Date) delta {
	if e := d[date.Unix()]; e != nil {
		return *e
	}
	return delta{}
}

func dateOf(key int64) core.Date {
	return core.DateOf(time.Unix(key, 0).UTC())
}

// NetWorth reconstructs daily assets, liabilities and net worth ending at
// today with the given current totals.
//
// Transactions on bank accounts move assets and transactions on cards move
// liabilities. Creating a debt or commitment adds a liability and paying it
// removes the principal paid. Receivables mirror that on the asset side.
// The cash side of a payment is already in the transaction log, so payments
// only move the item's own balance here. Archiving drops whatever the item
// still had outstanding on its paid-off day. A synthetic point one day
// before the first event starts the series.
func NetWorth(c *core.Collections, assets, liabilities core.Money, today core.Date, opts Options) []Point {
	changes := days{}
	accounts := map[string]bool{}
	for _, a := range c.Accounts {
		accounts[a.ID] = true
	}
	cards := map[string]bool{}
	for _, cc := range c.CreditCards {
		cards[cc.ID] = true
	}
	for _, t := range c.Transactions {
		switch {
		case accounts[t.AccountID]:
			changes.add(t.Date, t.Amount, core.Money{})
		case cards[t.AccountID]:
			changes.add(t.Date, core.Money{}, t.Amount)
		}
	}

	// remaining tracks what each item still has outstanding once all its
	// payments are applied, so archiving can drop it on the paid-off day.
	remaining := map[string]core.Money{}
	debts := map[string]core.FormalDebt{}
	for _, d := range c.FormalDebts {
		debts[d.ID] = d
		remaining[d.ID] = d.TotalAmount
		changes.add(d.CreationDate, core.Money{}, d.TotalAmount)
	}
	commitments := map[string]bool{}
	for _, cm := range c.Commitments {
		commitments[cm.ID] = true
		remaining[cm.ID] = cm.Amount
		changes.add(cm.CreationDate, core.Money{}, cm.Amount)
	}
	receivables := map[string]bool{}
	for _, r := range c.Receivables {
		receivables[r.ID] = true
		remaining[r.ID] = r.Amount
		changes.add(r.CreationDate, r.Amount, core.Money{})
	}
	for _, p := range c.PaymentRecords {
		d, isDebt := debts[p.ItemID]
		switch {
		case isDebt:
			paid := d.PrincipalOf(p)
			remaining[p.ItemID] = remaining[p.ItemID].Sub(paid)
			changes.add(p.Date, core.Money{}, paid.Neg())
		case commitments[p.ItemID]:
			remaining[p.ItemID] = remaining[p.ItemID].Sub(p.Amount)
			changes.add(p.Date, core.Money{}, p.Amount.Neg())
		case receivables[p.ItemID]:
			remaining[p.ItemID] = remaining[p.ItemID].Sub(p.Amount)
			changes.add(p.Date, p.Amount.Neg(), core.Money{})
		}
	}
	for _, d := range c.FormalDebts {
		if left := remaining[d.ID]; !d.IsActive() && !left.IsZero() {
			changes.add(d.PaidOffDate, core.Money{}, left.Neg())
		}
	}
	for _, cm := range c.Commitments {
		if left := remaining[cm.ID]; !cm.IsActive() && !left.IsZero() {
			changes.add(cm.PaidOffDate, core.Money{}, left.Neg())
		}
	}
	for _, r := range c.Receivables {
		if left := remaining[r.ID]; !r.IsActive() && !left.IsZero() {
			changes.add(r.PaidOffDate, left.Neg(), core.Money{})
		}
	}

	if len(changes) == 0 {
		return []Point{point(today, assets, liabilities)}
	}
	if _, ok := changes[today.Unix()]; !ok {
		changes[today.Unix()] = &delta{}
	}

	keys := slices.SortedFunc(maps.Keys(changes), func(a, b int64) int { return cmp.Compare(b, a) })
	series := make([]Point, len(keys))
	runningAssets, runningLiabilities := assets, liabilities
	for i, key := range keys {
		series[len(keys)-1-i] = point(dateOf(key), runningAssets, runningLiabilities)
		ch := changes[key]
		runningAssets = runningAssets.Sub(ch.assets)
		runningLiabilities = runningLiabilities.Sub(ch.liabilities)
	}

	first := series[0]
	lead := changes.get(first.Date)
	series = slices.Insert(series, 0, point(first.Date.AddDays(-1),
		first.Assets.Sub(lead.assets),
		first.Liabilities.Sub(lead.liabilities)))

	if limit := opts.maxPoints(); len(series) > limit {
		series = series[len(series)-limit:]
	}
	return series
}

func point(date core.Date, assets, liabilities core.Money) Point {
	return Point{Date: date, Assets: assets, Liabilities: liabilities, NetWorth: assets.Sub(liabilities)}
}
