package ledger

import (
	"errors"
	"slices"

	"findash/internal/core"
)

// change is the working copy of one atomic step.
type change struct {
	c       *core.Collections
	touched map[core.Collection]bool
	newID   func() string
	today   core.Date
}

func newChange(c *core.Collections, newID func() string, today core.Date) *change {
	return &change{c: c, touched: map[core.Collection]bool{}, newID: newID, today: today}
}

func (ch *change) touch(names ...core.Collection) {
	for _, n := range names {
		ch.touched[n] = true
	}
}

// list returns the touched collections in a stable order.
func (ch *change) list() []core.Collection {
	var out []core.Collection
	for _, n := range core.AllCollections {
		if ch.touched[n] {
			out = append(out, n)
		}
	}
	return out
}

// find returns a pointer into s to the first element matching, or nil.
func find[T any](s []T, match func(T) bool) *T {
	i := slices.IndexFunc(s, match)
	if i < 0 {
		return nil
	}
	return &s[i]
}

func (ch *change) account(id string) *core.Account {
	return find(ch.c.Accounts, func(a core.Account) bool { return a.ID == id })
}

func (ch *change) card(id string) *core.CreditCard {
	return find(ch.c.CreditCards, func(c core.CreditCard) bool { return c.ID == id })
}

func (ch *change) transaction(id string) *core.Transaction {
	return find(ch.c.Transactions, func(t core.Transaction) bool { return t.ID == id })
}

func (ch *change) debt(id string) *core.FormalDebt {
	return find(ch.c.FormalDebts, func(d core.FormalDebt) bool { return d.ID == id })
}

func (ch *change) commitment(id string) *core.Commitment {
	return find(ch.c.Commitments, func(c core.Commitment) bool { return c.ID == id })
}

func (ch *change) receivable(id string) *core.Receivable {
	return find(ch.c.Receivables, func(r core.Receivable) bool { return r.ID == id })
}

func (ch *change) payment(id string) *core.PaymentRecord {
	return find(ch.c.PaymentRecords, func(p core.PaymentRecord) bool { return p.ID == id })
}

func (ch *change) home(id string) *core.Home {
	return find(ch.c.Homes, func(h core.Home) bool { return h.ID == id })
}

// post applies delta to the balance of a bank account or card. Bank
// account deltas also move the parent total, so a parent balance always
// includes its sub-accounts.
func (ch *change) post(accountID string, delta core.Money) error {
	if a := ch.account(accountID); a != nil {
		a.Balance = a.Balance.Add(delta)
		if a.ParentID != "" {
			if p := ch.account(a.ParentID); p != nil {
				p.Balance = p.Balance.Add(delta)
			}
		}
		ch.touch(core.CollAccounts)
		return nil
	}
	if c := ch.card(accountID); c != nil {
		c.Balance = c.Balance.Add(delta)
		ch.touch(core.CollCreditCards)
		return nil
	}
	return core.NotFound("post to account", accountID)
}

// record appends tx and applies its balance effect.
func (ch *change) record(tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = ch.newID()
	}
	if tx.Date.IsZero() {
		tx.Date = ch.today
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := ch.post(tx.AccountID, tx.Amount); err != nil {
		return core.Transaction{}, err
	}
	ch.c.Transactions = append(ch.c.Transactions, tx)
	ch.touch(core.CollTransactions)
	return tx, nil
}

// unrecord removes the transaction with id and reverses its balance effect.
// A transaction on an account that no longer exists is simply removed.
func (ch *change) unrecord(id string) (core.Transaction, error) {
	i := slices.IndexFunc(ch.c.Transactions, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return core.Transaction{}, core.NotFound("transaction", id)
	}
	tx := ch.c.Transactions[i]
	if err := ch.post(tx.AccountID, tx.Amount.Neg()); err != nil && !isNotFound(err) {
		return core.Transaction{}, err
	}
	ch.c.Transactions = slices.Delete(ch.c.Transactions, i, i+1)
	ch.touch(core.CollTransactions)
	return tx, nil
}

// dropTransactions removes every transaction posted to one of ids without
// touching balances, and detaches payment records that pointed at them.
func (ch *change) dropTransactions(ids map[string]bool) {
	removed := map[string]bool{}
	ch.c.Transactions = slices.DeleteFunc(ch.c.Transactions, func(t core.Transaction) bool {
		if ids[t.AccountID] {
			removed[t.ID] = true
			return true
		}
		return false
	})
	if len(removed) == 0 {
		return
	}
	ch.touch(core.CollTransactions)
	for i := range ch.c.PaymentRecords {
		if removed[ch.c.PaymentRecords[i].TransactionID] {
			ch.c.PaymentRecords[i].TransactionID = ""
			ch.touch(core.CollPaymentRecords)
		}
	}
}

func (ch *change) dropCategories(ids map[string]bool) {
	before := len(ch.c.Categories)
	ch.c.Categories = slices.DeleteFunc(ch.c.Categories, func(c core.Category) bool { return ids[c.AccountID] })
	if len(ch.c.Categories) != before {
		ch.touch(core.CollCategories)
	}
}

func (ch *change) addCategories(accountID string, names []string) {
	for _, name := range names {
		ch.c.Categories = append(ch.c.Categories, core.Category{ID: ch.newID(), Name: name, AccountID: accountID})
	}
	ch.touch(core.CollCategories)
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
