package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"findash/internal/core"
	applog "findash/internal/log"
)

// HoldingKind selects one of the holdings collections.
type HoldingKind string

const (
	Stocks     HoldingKind = "stocks"
	Crypto     HoldingKind = "crypto"
	Retirement HoldingKind = "retirement"
)

// ParseHoldingKind accepts the kind names and their collection names.
func ParseHoldingKind(s string) (HoldingKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stocks", "stock":
		return Stocks, nil
	case "crypto":
		return Crypto, nil
	case "retirement", "retirementholdings":
		return Retirement, nil
	}
	return "", core.Invalid("kind", fmt.Errorf("unknown holding kind %q", s))
}

var errHoldingAccount = errors.New("only retirement holdings belong to an account")

func (ch *change) holdings(kind HoldingKind) (*[]core.Holding, core.Collection, error) {
	switch kind {
	case Stocks:
		return &ch.c.Stocks, core.CollStocks, nil
	case Crypto:
		return &ch.c.Crypto, core.CollCrypto, nil
	case Retirement:
		return &ch.c.RetirementHoldings, core.CollRetirementHoldings, nil
	}
	return nil, "", core.Invalid("kind", fmt.Errorf("unknown holding kind %q", kind))
}

// AddHolding adds a holding of the given kind. Retirement holdings must name
// the retirement account that holds them.
func (l *Ledger) AddHolding(ctx context.Context, kind HoldingKind, h core.Holding) (core.Holding, error) {
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		list, coll, err := ch.holdings(kind)
		if err != nil {
			return err
		}
		h.ID = ch.newID()
		h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
		if h.Name == "" {
			h.Name = h.Symbol
		}
		if err := h.Validate(); err != nil {
			return err
		}
		switch {
		case kind == Retirement && h.AccountID == "":
			return core.Invalid("accountId", core.ErrMissingAccount)
		case kind == Retirement:
			if ch.retirementAccount(h.AccountID) == nil {
				return core.NotFound("retirement account", h.AccountID)
			}
		case h.AccountID != "":
			return core.Invalid("accountId", errHoldingAccount)
		}
		*list = append(*list, h)
		ch.touch(coll)
		return nil
	})
	if err != nil {
		return core.Holding{}, err
	}
	return h, nil
}

// UpdateHoldingPrice sets the current market price of a holding.
func (l *Ledger) UpdateHoldingPrice(ctx context.Context, kind HoldingKind, id string, price core.Money) error {
	return l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		list, coll, err := ch.holdings(kind)
		if err != nil {
			return err
		}
		if price.IsNegative() {
			return core.Invalid("price", core.ErrInvalidAmount)
		}
		h := find(*list, func(h core.Holding) bool { return h.ID == id })
		if h == nil {
			return core.NotFound("holding", id)
		}
		h.Price = price
		ch.touch(coll)
		return nil
	})
}

func (l *Ledger) DeleteHolding(ctx context.Context, kind HoldingKind, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		list, coll, err := ch.holdings(kind)
		if err != nil {
			return err
		}
		n := len(*list)
		*list = slices.DeleteFunc(*list, func(h core.Holding) bool { return h.ID == id })
		if len(*list) == n {
			return core.NotFound("holding", id)
		}
		ch.touch(coll)
		return nil
	})
}

func (l *Ledger) AddOtherAsset(ctx context.Context, a core.OtherAsset) (core.OtherAsset, error) {
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		a.ID = ch.newID()
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			return core.Invalid("name", core.ErrEmptyName)
		}
		if a.CurrentValue.IsNegative() {
			return core.Invalid("currentValue", core.ErrInvalidAmount)
		}
		ch.c.OtherAssets = append(ch.c.OtherAssets, a)
		ch.touch(core.CollOtherAssets)
		return nil
	})
	if err != nil {
		return core.OtherAsset{}, err
	}
	return a, nil
}

func (l *Ledger) DeleteOtherAsset(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		n := len(ch.c.OtherAssets)
		ch.c.OtherAssets = slices.DeleteFunc(ch.c.OtherAssets, func(a core.OtherAsset) bool { return a.ID == id })
		if len(ch.c.OtherAssets) == n {
			return core.NotFound("other asset", id)
		}
		ch.touch(core.CollOtherAssets)
		return nil
	})
}

// AddRecurringEvent stores an income or expense used by forecasts. It does
// not post anything to the account.
func (l *Ledger) AddRecurringEvent(ctx context.Context, e core.RecurringEvent) (core.RecurringEvent, error) {
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		e.ID = ch.newID()
		e.Name = strings.TrimSpace(e.Name)
		if err := e.Validate(); err != nil {
			return err
		}
		if e.AccountID == "" {
			return core.Invalid("accountId", core.ErrMissingAccount)
		}
		if ch.account(e.AccountID) == nil {
			return core.NotFound("account", e.AccountID)
		}
		ch.c.RecurringEvents = append(ch.c.RecurringEvents, e)
		ch.touch(core.CollRecurringEvents)
		return nil
	})
	if err != nil {
		return core.RecurringEvent{}, err
	}
	return e, nil
}

func (l *Ledger) DeleteRecurringEvent(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		n := len(ch.c.RecurringEvents)
		ch.c.RecurringEvents = slices.DeleteFunc(ch.c.RecurringEvents, func(e core.RecurringEvent) bool { return e.ID == id })
		if len(ch.c.RecurringEvents) == n {
			return core.NotFound("recurring event", id)
		}
		ch.touch(core.CollRecurringEvents)
		return nil
	})
}
