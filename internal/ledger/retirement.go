package ledger

import (
	"context"
	"slices"
	"strings"

	"findash/internal/core"
	applog "findash/internal/log"
)

func (ch *change) retirementAccount(id string) *core.RetirementAccount {
	return find(ch.c.RetirementAccounts, func(a core.RetirementAccount) bool { return a.ID == id })
}

func (ch *change) contribution(id string) *core.Contribution {
	return find(ch.c.Contributions, func(c core.Contribution) bool { return c.ID == id })
}

func (l *Ledger) CreateRetirementAccount(ctx context.Context, name string, typ core.RetirementAccountType) (core.RetirementAccount, error) {
	var created core.RetirementAccount
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		a := core.RetirementAccount{ID: ch.newID(), Name: strings.TrimSpace(name), Type: typ}
		if a.Type == "" {
			a.Type = core.OtherRetirement
		}
		if err := a.Validate(); err != nil {
			return err
		}
		ch.c.RetirementAccounts = append(ch.c.RetirementAccounts, a)
		ch.touch(core.CollRetirementAccounts)
		created = a
		return nil
	})
	return created, err
}

func (l *Ledger) UpdateRetirementAccount(ctx context.Context, id, name string, typ core.RetirementAccountType) (core.RetirementAccount, error) {
	var updated core.RetirementAccount
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		a := ch.retirementAccount(id)
		if a == nil {
			return core.NotFound("retirement account", id)
		}
		next := *a
		next.Name = strings.TrimSpace(name)
		if typ != "" {
			next.Type = typ
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*a = next
		ch.touch(core.CollRetirementAccounts)
		updated = next
		return nil
	})
	return updated, err
}

// DeleteRetirementAccount removes the account with its holdings and
// contributions.
func (l *Ledger) DeleteRetirementAccount(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		if ch.retirementAccount(id) == nil {
			return core.NotFound("retirement account", id)
		}
		ch.c.RetirementAccounts = slices.DeleteFunc(ch.c.RetirementAccounts, func(a core.RetirementAccount) bool { return a.ID == id })
		ch.touch(core.CollRetirementAccounts)

		n := len(ch.c.RetirementHoldings)
		ch.c.RetirementHoldings = slices.DeleteFunc(ch.c.RetirementHoldings, func(h core.Holding) bool { return h.AccountID == id })
		if len(ch.c.RetirementHoldings) != n {
			ch.touch(core.CollRetirementHoldings)
		}
		n = len(ch.c.Contributions)
		ch.c.Contributions = slices.DeleteFunc(ch.c.Contributions, func(c core.Contribution) bool { return c.AccountID == id })
		if len(ch.c.Contributions) != n {
			ch.touch(core.CollContributions)
		}
		return nil
	})
}

// AddContribution records money paid into a retirement account. It does not
// move any bank balance.
func (l *Ledger) AddContribution(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		c.ID = ch.newID()
		if err := c.Validate(); err != nil {
			return err
		}
		if ch.retirementAccount(c.AccountID) == nil {
			return core.NotFound("retirement account", c.AccountID)
		}
		ch.c.Contributions = append(ch.c.Contributions, c)
		ch.touch(core.CollContributions)
		return nil
	})
	if err != nil {
		return core.Contribution{}, err
	}
	return c, nil
}

func (l *Ledger) EditContribution(ctx context.Context, id string, amount core.Money, date core.Date) (core.Contribution, error) {
	var updated core.Contribution
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		c := ch.contribution(id)
		if c == nil {
			return core.NotFound("contribution", id)
		}
		next := *c
		next.Amount, next.Date = amount, date
		if err := next.Validate(); err != nil {
			return err
		}
		*c = next
		ch.touch(core.CollContributions)
		updated = next
		return nil
	})
	return updated, err
}

func (l *Ledger) DeleteContribution(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		if ch.contribution(id) == nil {
			return core.NotFound("contribution", id)
		}
		ch.c.Contributions = slices.DeleteFunc(ch.c.Contributions, func(c core.Contribution) bool { return c.ID == id })
		ch.touch(core.CollContributions)
		return nil
	})
}
