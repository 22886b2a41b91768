package ledger

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"findash/internal/amortization"
	"findash/internal/core"
	applog "findash/internal/log"
)

var errInvalidPaymentType = errors.New("payment type must be regular or extra")

// NewDebt describes a formal debt such as a loan.
type NewDebt struct {
	Name                string
	Description         string
	TotalAmount         core.Money
	InterestRate        decimal.Decimal
	NextPaymentDate     core.Date
	LoanTermYears       int
	LoanOriginationDate core.Date
	MonthlyPayment      core.Money
	MonthlyTax          core.Money
	MonthlyInsurance    core.Money
	MonthlyPMI          core.Money
}

func (n NewDebt) apply(d *core.FormalDebt) {
	d.Name = strings.TrimSpace(n.Name)
	d.Description = strings.TrimSpace(n.Description)
	d.TotalAmount = n.TotalAmount
	d.InterestRate = n.InterestRate
	d.NextPaymentDate = n.NextPaymentDate
	d.LoanTermYears = n.LoanTermYears
	d.LoanOriginationDate = n.LoanOriginationDate
	d.MonthlyPayment = n.MonthlyPayment
	d.MonthlyTax = n.MonthlyTax
	d.MonthlyInsurance = n.MonthlyInsurance
	d.MonthlyPMI = n.MonthlyPMI
}

type NewCommitment struct {
	Name    string
	Amount  core.Money
	DueDate core.Date
}

type NewReceivable struct {
	Name    string
	From    string
	Amount  core.Money
	DueDate core.Date
}

// PaymentInput is a payment against a debt, commitment or receivable.
// For a receivable AccountID is the depositing account.
type PaymentInput struct {
	ItemID      string
	AccountID   string
	Amount      core.Money
	Date        core.Date
	PaymentType core.PaymentType
}

func (l *Ledger) CreateDebt(ctx context.Context, in NewDebt) (core.FormalDebt, error) {
	var created core.FormalDebt
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		d := core.FormalDebt{ID: ch.newID(), Status: core.StatusActive, CreationDate: ch.today}
		in.apply(&d)
		if err := d.Validate(); err != nil {
			return err
		}
		ch.c.FormalDebts = append(ch.c.FormalDebts, d)
		ch.touch(core.CollFormalDebts)
		created = d
		return nil
	})
	return created, err
}

// UpdateDebt replaces the terms of a debt. Status, creation date and the
// home link are kept. Mortgage payments are re-amortized under the new terms.
func (l *Ledger) UpdateDebt(ctx context.Context, id string, in NewDebt) (core.FormalDebt, error) {
	var updated core.FormalDebt
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		d := ch.debt(id)
		if d == nil {
			return core.NotFound("debt", id)
		}
		next := *d
		in.apply(&next)
		if err := next.Validate(); err != nil {
			return err
		}
		*d = next
		ch.touch(core.CollFormalDebts)
		ch.reamortize(id)
		updated = next
		return nil
	})
	return updated, err
}

func (l *Ledger) CreateCommitment(ctx context.Context, in NewCommitment) (core.Commitment, error) {
	var created core.Commitment
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		c := core.Commitment{
			ID:           ch.newID(),
			Name:         strings.TrimSpace(in.Name),
			Amount:       in.Amount,
			DueDate:      in.DueDate,
			Status:       core.StatusActive,
			CreationDate: ch.today,
		}
		if err := c.Validate(); err != nil {
			return err
		}
		ch.c.Commitments = append(ch.c.Commitments, c)
		ch.touch(core.CollCommitments)
		created = c
		return nil
	})
	return created, err
}

func (l *Ledger) CreateReceivable(ctx context.Context, in NewReceivable) (core.Receivable, error) {
	var created core.Receivable
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		r := core.Receivable{
			ID:           ch.newID(),
			Name:         strings.TrimSpace(in.Name),
			From:         strings.TrimSpace(in.From),
			Amount:       in.Amount,
			DueDate:      in.DueDate,
			Status:       core.StatusActive,
			CreationDate: ch.today,
		}
		if err := r.Validate(); err != nil {
			return err
		}
		ch.c.Receivables = append(ch.c.Receivables, r)
		ch.touch(core.CollReceivables)
		created = r
		return nil
	})
	return created, err
}

// Archive marks a debt, commitment or receivable as paid off today.
func (l *Ledger) Archive(ctx context.Context, itemID string) error {
	return l.mutate(ctx, applog.OpArchive, func(ch *change) error {
		return ch.setStatus(itemID, core.StatusArchived, ch.today)
	})
}

// Unarchive makes an archived item active again.
func (l *Ledger) Unarchive(ctx context.Context, itemID string) error {
	return l.mutate(ctx, applog.OpArchive, func(ch *change) error {
		return ch.setStatus(itemID, core.StatusActive, core.Date{})
	})
}

func (ch *change) setStatus(itemID string, status core.ItemStatus, paidOff core.Date) error {
	if d := ch.debt(itemID); d != nil {
		d.Status, d.PaidOffDate = status, paidOff
		ch.touch(core.CollFormalDebts)
		return nil
	}
	if c := ch.commitment(itemID); c != nil {
		c.Status, c.PaidOffDate = status, paidOff
		ch.touch(core.CollCommitments)
		return nil
	}
	if r := ch.receivable(itemID); r != nil {
		r.Status, r.PaidOffDate = status, paidOff
		ch.touch(core.CollReceivables)
		return nil
	}
	return core.NotFound("item", itemID)
}

// DeleteItem removes a debt, commitment or receivable with its payment
// records. Transactions created by those payments stay on their accounts.
func (l *Ledger) DeleteItem(ctx context.Context, itemID string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		if !ch.deleteItem(itemID) {
			return core.NotFound("item", itemID)
		}
		return nil
	})
}

func (ch *change) deleteItem(itemID string) bool {
	switch {
	case ch.debt(itemID) != nil:
		ch.c.FormalDebts = slices.DeleteFunc(ch.c.FormalDebts, func(d core.FormalDebt) bool { return d.ID == itemID })
		ch.touch(core.CollFormalDebts)
		for i := range ch.c.Homes {
			if ch.c.Homes[i].LinkedDebtID == itemID {
				ch.c.Homes[i].LinkedDebtID = ""
				ch.touch(core.CollHomes)
			}
		}
	case ch.commitment(itemID) != nil:
		ch.c.Commitments = slices.DeleteFunc(ch.c.Commitments, func(c core.Commitment) bool { return c.ID == itemID })
		ch.touch(core.CollCommitments)
	case ch.receivable(itemID) != nil:
		ch.c.Receivables = slices.DeleteFunc(ch.c.Receivables, func(r core.Receivable) bool { return r.ID == itemID })
		ch.touch(core.CollReceivables)
	default:
		return false
	}
	n := len(ch.c.PaymentRecords)
	ch.c.PaymentRecords = slices.DeleteFunc(ch.c.PaymentRecords, func(p core.PaymentRecord) bool { return p.ItemID == itemID })
	if len(ch.c.PaymentRecords) != n {
		ch.touch(core.CollPaymentRecords)
	}
	return true
}

// payee describes how a payment on an item shows up in the transaction log.
type payee struct {
	name        string
	category    string
	description string
	sign        int
}

func (ch *change) payeeFor(itemID string) (payee, error) {
	if d := ch.debt(itemID); d != nil {
		return payee{d.Label(), CategoryDebtPayment, "Payment for " + d.Label(), -1}, nil
	}
	if c := ch.commitment(itemID); c != nil {
		return payee{c.Name, CategoryCommitment, "Payment for " + c.Name, -1}, nil
	}
	if r := ch.receivable(itemID); r != nil {
		return payee{r.From, CategoryReceivable, "Received for " + r.Name, 1}, nil
	}
	return payee{}, core.NotFound("item", itemID)
}

func (p payee) signed(amount core.Money) core.Money {
	if p.sign < 0 {
		return amount.Neg()
	}
	return amount
}

// validatePayment checks the amount and that the funding or depositing
// account is a bank account.
func (ch *change) validatePayment(in PaymentInput) error {
	if !in.Amount.IsPositive() {
		return core.Invalid("amount", core.ErrInvalidAmount)
	}
	if in.AccountID == "" {
		return core.Invalid("accountId", core.ErrMissingAccount)
	}
	if ch.account(in.AccountID) == nil {
		if ch.card(in.AccountID) != nil {
			return core.Invalid("accountId", core.ErrFundingAccount)
		}
		return core.NotFound("account", in.AccountID)
	}
	switch in.PaymentType {
	case "", core.PaymentRegular, core.PaymentExtra:
	default:
		return core.Invalid("paymentType", errInvalidPaymentType)
	}
	return nil
}

// RecordPayment records a payment on an item together with the transaction
// on the funding account. Mortgage payments are re-amortized.
func (l *Ledger) RecordPayment(ctx context.Context, in PaymentInput) (core.PaymentRecord, error) {
	var created core.PaymentRecord
	err := l.mutate(ctx, applog.OpPay, func(ch *change) error {
		if err := ch.validatePayment(in); err != nil {
			return err
		}
		p, err := ch.payeeFor(in.ItemID)
		if err != nil {
			return err
		}
		tx, err := ch.record(core.Transaction{
			AccountID:   in.AccountID,
			Amount:      p.signed(in.Amount),
			Date:        in.Date,
			Description: p.description,
			Payee:       p.name,
			Category:    p.category,
		})
		if err != nil {
			return err
		}
		rec := core.PaymentRecord{
			ID:            ch.newID(),
			ItemID:        in.ItemID,
			AccountID:     in.AccountID,
			Amount:        in.Amount,
			Date:          tx.Date,
			TransactionID: tx.ID,
			PaymentType:   in.PaymentType,
		}
		if rec.PaymentType == "" {
			rec.PaymentType = core.PaymentRegular
		}
		ch.c.PaymentRecords = append(ch.c.PaymentRecords, rec)
		ch.touch(core.CollPaymentRecords)
		ch.reamortize(in.ItemID)
		created = *ch.payment(rec.ID)
		return nil
	})
	return created, err
}

// EditPayment changes the account, amount, date or type of a payment. The
// linked transaction follows, moving its balance effect as needed.
func (l *Ledger) EditPayment(ctx context.Context, paymentID string, in PaymentInput) (core.PaymentRecord, error) {
	var updated core.PaymentRecord
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		rec := ch.payment(paymentID)
		if rec == nil {
			return core.NotFound("payment", paymentID)
		}
		in.ItemID = rec.ItemID
		if err := ch.validatePayment(in); err != nil {
			return err
		}
		p, err := ch.payeeFor(rec.ItemID)
		if err != nil {
			return err
		}
		date := in.Date
		if date.IsZero() {
			date = rec.Date
		}

		if rec.TransactionID != "" {
			tx := ch.transaction(rec.TransactionID)
			if tx == nil {
				return core.NotFound("payment transaction", rec.TransactionID)
			}
			if err := ch.post(tx.AccountID, tx.Amount.Neg()); err != nil && !isNotFound(err) {
				return err
			}
			tx.AccountID = in.AccountID
			tx.Amount = p.signed(in.Amount)
			tx.Date = date
			ch.touch(core.CollTransactions)
			if err := ch.post(tx.AccountID, tx.Amount); err != nil {
				return err
			}
		}

		rec.AccountID = in.AccountID
		rec.Amount = in.Amount
		rec.Date = date
		if in.PaymentType != "" {
			rec.PaymentType = in.PaymentType
		}
		ch.touch(core.CollPaymentRecords)
		ch.reamortize(rec.ItemID)
		updated = *ch.payment(paymentID)
		return nil
	})
	return updated, err
}

// DeletePayment removes a payment record. With deleteTransaction the linked
// transaction is removed too and its balance effect reversed; otherwise the
// transaction stays on the account. Mortgage payments are re-amortized.
func (l *Ledger) DeletePayment(ctx context.Context, paymentID string, deleteTransaction bool) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		rec := ch.payment(paymentID)
		if rec == nil {
			return core.NotFound("payment", paymentID)
		}
		itemID, txID := rec.ItemID, rec.TransactionID
		if deleteTransaction && txID != "" {
			if _, err := ch.unrecord(txID); err != nil {
				return err
			}
		}
		ch.c.PaymentRecords = slices.DeleteFunc(ch.c.PaymentRecords, func(p core.PaymentRecord) bool { return p.ID == paymentID })
		ch.touch(core.CollPaymentRecords)
		ch.reamortize(itemID)
		return nil
	})
}

// reamortize recomputes the breakdown of every payment of a mortgage. The
// records keep their stored position. Other items are left alone.
func (ch *change) reamortize(itemID string) {
	d := ch.debt(itemID)
	if d == nil || !d.IsMortgage() {
		return
	}
	byID := map[string]core.PaymentRecord{}
	for _, p := range amortization.Apply(*d, ch.c.PaymentsFor(itemID)) {
		byID[p.ID] = p
	}
	for i, p := range ch.c.PaymentRecords {
		if next, ok := byID[p.ID]; ok {
			ch.c.PaymentRecords[i] = next
		}
	}
	ch.touch(core.CollPaymentRecords)
}
