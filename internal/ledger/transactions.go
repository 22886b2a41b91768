package ledger

import (
	"context"
	"fmt"
	"slices"

	"findash/internal/core"
	applog "findash/internal/log"
)

// Unallocated names the part of a parent balance not held by any
// sub-account in an internal transfer.
const Unallocated = "unallocated"

// NewTransaction describes a manual entry on a bank account or card.
// A zero Date means today.
type NewTransaction struct {
	AccountID   string
	Amount      core.Money
	Date        core.Date
	Description string
	Payee       string
	Category    string
}

func (n NewTransaction) transaction() core.Transaction {
	return core.Transaction{
		AccountID:   n.AccountID,
		Amount:      n.Amount,
		Date:        n.Date,
		Description: n.Description,
		Payee:       n.Payee,
		Category:    n.Category,
	}
}

// TransactionEdit replaces the editable fields of a transaction.
type TransactionEdit struct {
	Amount      core.Money
	Date        core.Date
	Description string
	Payee       string
	Category    string
}

// LinkedPayment decides what happens to a payment record whose transaction
// is deleted: removed with it, or kept and detached.
type LinkedPayment struct {
	Delete bool
}

// AddTransaction records one entry and applies it to the account balance
// (and its parent's) or to the card balance.
func (l *Ledger) AddTransaction(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	var created core.Transaction
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		tx, err := ch.record(in.transaction())
		created = tx
		return err
	})
	return created, err
}

// AddTransactions records several entries at once. Either all are recorded
// or none is.
func (l *Ledger) AddTransactions(ctx context.Context, in []NewTransaction) ([]core.Transaction, error) {
	var created []core.Transaction
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		for i, n := range in {
			tx, err := ch.record(n.transaction())
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			created = append(created, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EditTransaction updates a transaction and applies the amount difference.
// Transfer legs and payment-linked transactions cannot be edited here.
func (l *Ledger) EditTransaction(ctx context.Context, id string, edit TransactionEdit) (core.Transaction, error) {
	var updated core.Transaction
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		tx := ch.transaction(id)
		if tx == nil {
			return core.NotFound("transaction", id)
		}
		if tx.IsTransferLeg() {
			return core.Invalid("transferId", core.ErrTransferLeg)
		}
		if slices.ContainsFunc(ch.c.PaymentRecords, func(p core.PaymentRecord) bool { return p.TransactionID == id }) {
			return core.Invalid("transactionId", core.ErrLinkedPayment)
		}
		next := *tx
		next.Amount = edit.Amount
		next.Date = edit.Date
		next.Description = edit.Description
		next.Payee = edit.Payee
		next.Category = edit.Category
		if err := next.Validate(); err != nil {
			return err
		}
		delta := next.Amount.Sub(tx.Amount)
		*tx = next
		ch.touch(core.CollTransactions)
		if !delta.IsZero() {
			if err := ch.post(next.AccountID, delta); err != nil {
				return err
			}
		}
		updated = next
		return nil
	})
	return updated, err
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// A payment record linked to it is deleted or detached according to linked.
// A transfer leg whose counterpart still exists must be reverted instead.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string, linked LinkedPayment) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		tx := ch.transaction(id)
		if tx == nil {
			return core.NotFound("transaction", id)
		}
		if tx.IsTransferLeg() && ch.counterpart(*tx) != nil {
			return core.Invalid("transferId", core.ErrTransferLeg)
		}
		if _, err := ch.unrecord(id); err != nil {
			return err
		}
		p := find(ch.c.PaymentRecords, func(p core.PaymentRecord) bool { return p.TransactionID == id })
		if p == nil {
			return nil
		}
		if !linked.Delete {
			p.TransactionID = ""
			ch.touch(core.CollPaymentRecords)
			return nil
		}
		itemID, paymentID := p.ItemID, p.ID
		ch.c.PaymentRecords = slices.DeleteFunc(ch.c.PaymentRecords, func(r core.PaymentRecord) bool { return r.ID == paymentID })
		ch.touch(core.CollPaymentRecords)
		ch.reamortize(itemID)
		return nil
	})
}

// InternalTransfer moves money between sub-accounts of one parent. Either
// side may be Unallocated.
type InternalTransfer struct {
	ParentID string
	From     string
	To       string
	Amount   core.Money
	Date     core.Date
	Notes    string
}

// AllocateInternal moves an amount between two sub-accounts, or between a
// sub-account and the unallocated part of the parent. The parent total does
// not change. Two linked transactions are recorded.
func (l *Ledger) AllocateInternal(ctx context.Context, in InternalTransfer) ([2]core.Transaction, error) {
	var pair [2]core.Transaction
	err := l.mutate(ctx, applog.OpTransfer, func(ch *change) error {
		if !in.Amount.IsPositive() {
			return core.Invalid("amount", core.ErrInvalidAmount)
		}
		if in.From == in.To {
			return core.Invalid("to", core.ErrSelfTransfer)
		}
		parent := ch.account(in.ParentID)
		if parent == nil {
			return core.NotFound("parent account", in.ParentID)
		}
		fromID, fromName, fromBalance, err := ch.allocationSide(in.ParentID, in.From)
		if err != nil {
			return err
		}
		toID, toName, _, err := ch.allocationSide(in.ParentID, in.To)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(fromBalance) {
			return core.Invalid("amount", core.ErrInsufficientFunds)
		}

		transferID := ch.newID()
		pair, err = ch.recordPair(
			core.Transaction{
				AccountID:   fromID,
				Amount:      in.Amount.Neg(),
				Date:        in.Date,
				Description: withNotes("Internal transfer to "+toName, in.Notes),
				Payee:       "Internal",
				Category:    CategoryInternalTransfer,
				IsInternal:  true,
				TransferID:  transferID,
			},
			core.Transaction{
				AccountID:   toID,
				Amount:      in.Amount,
				Date:        in.Date,
				Description: withNotes("Internal transfer from "+fromName, in.Notes),
				Payee:       "Internal",
				Category:    CategoryInternalTransfer,
				IsInternal:  true,
				TransferID:  transferID,
			},
		)
		return err
	})
	return pair, err
}

// allocationSide resolves one side of an internal transfer to the account
// the transaction is posted to, a display name and the available balance.
func (ch *change) allocationSide(parentID, side string) (string, string, core.Money, error) {
	if side == Unallocated {
		return parentID, "Unallocated", ch.c.Unallocated(parentID), nil
	}
	sub := ch.account(side)
	if sub == nil || sub.ParentID != parentID {
		return "", "", core.Money{}, core.NotFound("sub-account", side)
	}
	return sub.ID, sub.Name, sub.Balance, nil
}

// AccountTransfer moves money between two bank accounts.
type AccountTransfer struct {
	FromID string
	ToID   string
	Amount core.Money
	Date   core.Date
	Notes  string
}

// TransferBetweenAccounts debits one account and credits another, parents
// included, and records the two linked transactions.
func (l *Ledger) TransferBetweenAccounts(ctx context.Context, in AccountTransfer) ([2]core.Transaction, error) {
	var pair [2]core.Transaction
	err := l.mutate(ctx, applog.OpTransfer, func(ch *change) error {
		if !in.Amount.IsPositive() {
			return core.Invalid("amount", core.ErrInvalidAmount)
		}
		if in.FromID == "" || in.ToID == "" {
			return core.Invalid("account", core.ErrMissingAccount)
		}
		if in.FromID == in.ToID {
			return core.Invalid("toId", core.ErrSelfTransfer)
		}
		from, to := ch.account(in.FromID), ch.account(in.ToID)
		if from == nil {
			return core.NotFound("account", in.FromID)
		}
		if to == nil {
			return core.NotFound("account", in.ToID)
		}
		if in.Amount.GreaterThan(from.Balance) {
			return core.Invalid("amount", core.ErrInsufficientFunds)
		}
		fromName, toName := from.Name, to.Name

		transferID := ch.newID()
		var err error
		pair, err = ch.recordPair(
			core.Transaction{
				AccountID:   in.FromID,
				Amount:      in.Amount.Neg(),
				Date:        in.Date,
				Description: withNotes("Transfer to "+toName, in.Notes),
				Category:    CategoryAccountTransfer,
				IsInternal:  true,
				TransferID:  transferID,
			},
			core.Transaction{
				AccountID:   in.ToID,
				Amount:      in.Amount,
				Date:        in.Date,
				Description: withNotes("Transfer from "+fromName, in.Notes),
				Category:    CategoryAccountTransfer,
				IsInternal:  true,
				TransferID:  transferID,
			},
		)
		return err
	})
	return pair, err
}

// RevertTransfer undoes a transfer given either of its two transactions:
// both balance effects are reversed and both transactions are deleted.
func (l *Ledger) RevertTransfer(ctx context.Context, transactionID string) error {
	return l.mutate(ctx, applog.OpRevert, func(ch *change) error {
		tx := ch.transaction(transactionID)
		if tx == nil {
			return core.NotFound("transaction", transactionID)
		}
		if !tx.IsTransferLeg() {
			return core.Invalid("transactionId", fmt.Errorf("transaction %s is not part of a transfer", transactionID))
		}
		return ch.revertPair(tx.TransferID)
	})
}

// recordPair records a debit and a credit leg of one transfer.
func (ch *change) recordPair(debit, credit core.Transaction) ([2]core.Transaction, error) {
	d, err := ch.record(debit)
	if err != nil {
		return [2]core.Transaction{}, err
	}
	c, err := ch.record(credit)
	if err != nil {
		return [2]core.Transaction{}, err
	}
	return [2]core.Transaction{d, c}, nil
}

// revertPair removes both legs of transferID and reverses their effects.
// counterpart returns the other leg of a transfer, or nil once it is gone.
func (ch *change) counterpart(leg core.Transaction) *core.Transaction {
	return find(ch.c.Transactions, func(t core.Transaction) bool {
		return t.TransferID == leg.TransferID && t.ID != leg.ID
	})
}

func (ch *change) revertPair(transferID string) error {
	var ids []string
	for _, t := range ch.c.Transactions {
		if t.TransferID == transferID {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) != 2 {
		return &core.ConsistencyError{Op: "revert transfer", ID: transferID, Err: core.ErrTransferPairMissing}
	}
	for _, id := range ids {
		if _, err := ch.unrecord(id); err != nil {
			return err
		}
	}
	return nil
}

func withNotes(description, notes string) string {
	if notes == "" {
		return description
	}
	return description + ": " + notes
}
