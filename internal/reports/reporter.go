package reports

import (
	"context"
	"fmt"
	"slices"
	"time"

	"findash/internal/amortization"
	"findash/internal/cache"
	"findash/internal/core"
	"findash/internal/forecast"
	"findash/internal/history"
	applog "findash/internal/log"
)

// Source provides committed snapshots. *ledger.Ledger implements it.
type Source interface {
	Snapshot() (*core.Collections, uint64)
	Today() core.Date
}

// Reporter answers report queries against the latest snapshot and
// memoises net worth histories per ledger revision and day.
type Reporter struct {
	src     Source
	cache   cache.Cache[[]history.Point]
	options history.Options
	log     *applog.Logger
}

func NewReporter(src Source, c cache.Cache[[]history.Point], opts history.Options, logger *applog.Logger) *Reporter {
	if logger == nil {
		logger = applog.Discard()
	}
	if c == nil {
		c = cache.NewLRUCache[[]history.Point](1, 0)
	}
	return &Reporter{src: src, cache: c, options: opts, log: logger.WithComponent(applog.ComponentReports)}
}

// Totals computes the current balance sheet.
func (r *Reporter) Totals() Totals {
	c, _ := r.src.Snapshot()
	return Compute(c)
}

// NetWorthHistory returns the reconstructed net worth series ending today.
func (r *Reporter) NetWorthHistory(ctx context.Context) []history.Point {
	c, rev := r.src.Snapshot()
	today := r.src.Today()
	key := fmt.Sprintf("networth:%d:%s", rev, today)
	if points, ok := r.cache.Get(key); ok {
		return slices.Clone(points)
	}

	start := time.Now()
	t := Compute(c)
	points := history.NetWorth(c, t.Assets, t.Liabilities, today, r.options)
	r.cache.Set(key, points)
	r.log.DebugContext(ctx, "Net worth history rebuilt",
		applog.FieldRevision, rev,
		applog.FieldCount, len(points),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return slices.Clone(points)
}

// DebtHistory returns the balance series of one debt, commitment or
// receivable.
func (r *Reporter) DebtHistory(itemID string) ([]history.BalancePoint, error) {
	c, _ := r.src.Snapshot()
	if _, ok := c.DebtByID(itemID); ok {
		return history.DebtBalance(c, itemID, r.src.Today())
	}
	return history.CommitmentBalance(c, itemID, r.src.Today())
}

// Home summarises one home against the latest snapshot.
func (r *Reporter) Home(homeID string) (HomeSummary, error) {
	c, _ := r.src.Snapshot()
	return Home(c, homeID)
}

// Schedule returns the amortization table of a debt.
func (r *Reporter) Schedule(debtID string) ([]amortization.Row, error) {
	c, _ := r.src.Snapshot()
	d, ok := c.DebtByID(debtID)
	if !ok {
		return nil, core.NotFound("schedule", debtID)
	}
	return amortization.Schedule(d, c.PaymentsFor(debtID)), nil
}

// Forecast projects an account balance over days starting today.
func (r *Reporter) Forecast(accountID string, whatIf []forecast.WhatIf, days int) ([]forecast.Point, error) {
	c, _ := r.src.Snapshot()
	return forecast.Account(c, accountID, whatIf, r.src.Today(), days)
}

func (r *Reporter) MonthOverview(accountID string, year, month int) core.MonthOverview {
	c, _ := r.src.Snapshot()
	return MonthOverview(c, accountID, year, month)
}

func (r *Reporter) Retirement() []RetirementSummary {
	c, _ := r.src.Snapshot()
	return Retirement(c)
}

func (r *Reporter) Allocation() []Slice {
	c, _ := r.src.Snapshot()
	return Allocation(c)
}

// Obligations returns the combined balance of all debts, commitments or
// receivables over time.
func (r *Reporter) Obligations(kind history.Kind) []history.BalancePoint {
	c, _ := r.src.Snapshot()
	return history.Obligations(c, kind, r.src.Today())
}
