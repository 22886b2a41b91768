package ledger

import (
	"context"
	"errors"
	"slices"
	"strings"

	"findash/internal/core"
	applog "findash/internal/log"
)

const (
	CategoryInitialBalance   = "Initial Balance"
	CategoryInternalTransfer = "Internal Transfer"
	CategoryAccountTransfer  = "Account Transfer"
	CategoryCardPayment      = "Credit Card Payment"
	CategoryPaymentCredit    = "Payment/Credit"
	CategoryDebtPayment      = "Debt Payment"
	CategoryCommitment       = "Commitment Payment"
	CategoryReceivable       = "Receivable"
)

var errNestedSubAccount = errors.New("a sub-account cannot have sub-accounts")

// DefaultAccountCategories are created with every bank account.
var DefaultAccountCategories = []string{
	"Groceries", "Utilities", "Rent/Mortgage", "Transportation", "Dining Out",
	"Entertainment", "Shopping", "Health & Fitness", "Salary", "Investment", "Other",
}

// DefaultCardCategories are created with every credit card.
var DefaultCardCategories = []string{
	"Groceries", "Gas", "Dining", "Shopping", "Travel", "Entertainment",
	"Utilities", CategoryPaymentCredit, "Other",
}

// NewAccount describes an account to create. A non-zero Balance is posted
// as an opening transaction dated today.
type NewAccount struct {
	Name     string
	Type     core.AccountType
	Balance  core.Money
	ParentID string
}

// CreateAccount adds a bank account or, with ParentID set, a sub-account.
func (l *Ledger) CreateAccount(ctx context.Context, in NewAccount) (core.Account, error) {
	var created core.Account
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		acc := core.Account{
			ID:       ch.newID(),
			Name:     strings.TrimSpace(in.Name),
			Type:     in.Type,
			ParentID: in.ParentID,
		}
		if acc.Type == "" {
			acc.Type = core.Checking
		}
		if err := acc.Validate(); err != nil {
			return err
		}
		if acc.ParentID != "" {
			parent := ch.account(acc.ParentID)
			if parent == nil {
				return core.NotFound("parent account", acc.ParentID)
			}
			if parent.IsSubAccount() {
				return core.Invalid("parentId", errNestedSubAccount)
			}
		}
		ch.c.Accounts = append(ch.c.Accounts, acc)
		ch.touch(core.CollAccounts)

		categories := DefaultAccountCategories
		if !in.Balance.IsZero() {
			categories = append(append([]string(nil), categories...), CategoryInitialBalance)
			_, err := ch.record(core.Transaction{
				AccountID:   acc.ID,
				Amount:      in.Balance,
				Description: CategoryInitialBalance,
				Payee:       "Initial Setup",
				Category:    CategoryInitialBalance,
			})
			if err != nil {
				return err
			}
		}
		if !acc.IsSubAccount() {
			ch.addCategories(acc.ID, categories)
		}
		created = *ch.account(acc.ID)
		return nil
	})
	return created, err
}

// RenameAccount changes the name and type of an account. Balances are only
// ever changed through transactions.
func (l *Ledger) RenameAccount(ctx context.Context, id, name string, typ core.AccountType) (core.Account, error) {
	var updated core.Account
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		acc := ch.account(id)
		if acc == nil {
			return core.NotFound("account", id)
		}
		next := *acc
		next.Name = strings.TrimSpace(name)
		if typ != "" {
			next.Type = typ
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*acc = next
		ch.touch(core.CollAccounts)
		updated = next
		return nil
	})
	return updated, err
}

// DeleteAccount removes an account together with its sub-accounts, their
// transactions and categories. Payment records that pointed at a removed
// transaction are kept and detached.
//
// A deleted sub-account's balance stays in the parent total and shows up
// as unallocated.
func (l *Ledger) DeleteAccount(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		if ch.account(id) == nil {
			return core.NotFound("account", id)
		}
		ids := map[string]bool{id: true}
		for _, a := range ch.c.Accounts {
			if a.ParentID == id {
				ids[a.ID] = true
			}
		}
		ch.c.Accounts = slices.DeleteFunc(ch.c.Accounts, func(a core.Account) bool { return ids[a.ID] })
		ch.touch(core.CollAccounts)
		ch.dropTransactions(ids)
		ch.dropCategories(ids)
		return nil
	})
}

// AddCategory adds a category to an account or card.
func (l *Ledger) AddCategory(ctx context.Context, accountID, name string) (core.Category, error) {
	var created core.Category
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return core.Invalid("name", core.ErrEmptyName)
		}
		if ch.account(accountID) == nil && ch.card(accountID) == nil {
			return core.NotFound("account", accountID)
		}
		created = core.Category{ID: ch.newID(), Name: name, AccountID: accountID}
		ch.c.Categories = append(ch.c.Categories, created)
		ch.touch(core.CollCategories)
		return nil
	})
	return created, err
}

// DeleteCategory removes a category. Transactions keep their category name.
func (l *Ledger) DeleteCategory(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		before := len(ch.c.Categories)
		ch.c.Categories = slices.DeleteFunc(ch.c.Categories, func(c core.Category) bool { return c.ID == id })
		if len(ch.c.Categories) == before {
			return core.NotFound("category", id)
		}
		ch.touch(core.CollCategories)
		return nil
	})
}

// Unallocated returns the part of a parent balance held by no sub-account.
func (l *Ledger) Unallocated(parentID string) (core.Money, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.state.AccountByID(parentID); !ok {
		return core.Money{}, core.NotFound("account", parentID)
	}
	return l.state.Unallocated(parentID), nil
}
