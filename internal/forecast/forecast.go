package forecast

import (
	"errors"

	"findash/internal/core"
)

// Common projection lengths in days.
const (
	Month   = 30
	Quarter = 90
	Year    = 365

	maxDays = 10 * Year
)

var errDays = errors.New("forecast length must be between 1 and 3650 days")

// WhatIf is a hypothetical one-off change on a given day. Positive amounts
// are inflows.
type WhatIf struct {
	Name   string     `json:"name"`
	Date   core.Date  `json:"date"`
	Amount core.Money `json:"amount"`
}

// Point is the projected balance at the end of Date. WhatIfBalance is set
// only when what-if events were supplied.
type Point struct {
	Date          core.Date   `json:"date"`
	Balance       core.Money  `json:"balance"`
	WhatIfBalance *core.Money `json:"whatIfBalance,omitempty"`
}

// Project walks days calendar days starting at start, applying every
// recurring event that occurs on each day to balance. What-if events are
// applied on top to a second running balance.
func Project(balance core.Money, events []core.RecurringEvent, whatIf []WhatIf, start core.Date, days int) ([]Point, error) {
	if days <= 0 || days > maxDays {
		return nil, core.Invalid("days", errDays)
	}
	rules := make([]Occurrence, len(events))
	for i, e := range events {
		o, err := GetOccurrence(e.Frequency)
		if err != nil {
			return nil, core.Invalid("frequency", core.ErrInvalidFrequency)
		}
		rules[i] = o
	}
	extra := map[int64]core.Money{}
	for _, w := range whatIf {
		key := w.Date.Unix()
		extra[key] = extra[key].Add(w.Amount)
	}

	points := make([]Point, 0, days)
	running, whatIfRunning := balance, balance
	for i := range days {
		day := start.AddDays(i)
		var change core.Money
		for j, e := range events {
			if day.Before(e.StartDate) {
				continue
			}
			if rules[j].Occurs(day, e.StartDate) {
				change = change.Add(e.Signed())
			}
		}
		running = running.Add(change)
		p := Point{Date: day, Balance: running}
		if len(whatIf) > 0 {
			whatIfRunning = whatIfRunning.Add(change).Add(extra[day.Unix()])
			b := whatIfRunning
			p.WhatIfBalance = &b
		}
		points = append(points, p)
	}
	return points, nil
}

// Account projects the balance of a bank account using the recurring
// events attached to it.
func Account(c *core.Collections, accountID string, whatIf []WhatIf, start core.Date, days int) ([]Point, error) {
	acc, ok := c.AccountByID(accountID)
	if !ok {
		return nil, core.NotFound("account", accountID)
	}
	var events []core.RecurringEvent
	for _, e := range c.RecurringEvents {
		if e.AccountID == accountID {
			events = append(events, e)
		}
	}
	return Project(acc.Balance, events, whatIf, start, days)
}
