package ledger

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"findash/internal/core"
	applog "findash/internal/log"
)

// NewCard describes a credit card to create. A non-zero Balance is posted
// as an opening transaction dated today.
type NewCard struct {
	Name           string
	Issuer         string
	CreditLimit    core.Money
	Balance        core.Money
	APR            decimal.Decimal
	MinimumPayment core.Money
}

// CardEdit replaces the descriptive fields of a card. The balance only ever
// changes through transactions.
type CardEdit struct {
	Name           string
	Issuer         string
	CreditLimit    core.Money
	APR            decimal.Decimal
	MinimumPayment core.Money
}

// CardPayment pays a card from a bank account.
type CardPayment struct {
	CardID    string
	AccountID string
	Amount    core.Money
	Date      core.Date
}

func (l *Ledger) CreateCard(ctx context.Context, in NewCard) (core.CreditCard, error) {
	var created core.CreditCard
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		card := core.CreditCard{
			ID:             ch.newID(),
			Name:           strings.TrimSpace(in.Name),
			Issuer:         strings.TrimSpace(in.Issuer),
			CreditLimit:    in.CreditLimit,
			APR:            in.APR,
			MinimumPayment: in.MinimumPayment,
		}
		if err := card.Validate(); err != nil {
			return err
		}
		ch.c.CreditCards = append(ch.c.CreditCards, card)
		ch.touch(core.CollCreditCards)

		if !in.Balance.IsZero() {
			_, err := ch.record(core.Transaction{
				AccountID:   card.ID,
				Amount:      in.Balance,
				Description: CategoryInitialBalance,
				Payee:       "Initial Setup",
				Category:    CategoryInitialBalance,
			})
			if err != nil {
				return err
			}
		}
		ch.addCategories(card.ID, DefaultCardCategories)
		created = *ch.card(card.ID)
		return nil
	})
	return created, err
}

func (l *Ledger) UpdateCard(ctx context.Context, id string, edit CardEdit) (core.CreditCard, error) {
	var updated core.CreditCard
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		card := ch.card(id)
		if card == nil {
			return core.NotFound("credit card", id)
		}
		next := *card
		next.Name = strings.TrimSpace(edit.Name)
		next.Issuer = strings.TrimSpace(edit.Issuer)
		next.CreditLimit = edit.CreditLimit
		next.APR = edit.APR
		next.MinimumPayment = edit.MinimumPayment
		if err := next.Validate(); err != nil {
			return err
		}
		*card = next
		ch.touch(core.CollCreditCards)
		updated = next
		return nil
	})
	return updated, err
}

// DeleteCard removes a card with its transactions and categories. The bank
// side of past card payments is kept.
func (l *Ledger) DeleteCard(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		before := len(ch.c.CreditCards)
		ch.c.CreditCards = slices.DeleteFunc(ch.c.CreditCards, func(c core.CreditCard) bool { return c.ID == id })
		if len(ch.c.CreditCards) == before {
			return core.NotFound("credit card", id)
		}
		ch.touch(core.CollCreditCards)
		ids := map[string]bool{id: true}
		ch.dropTransactions(ids)
		ch.dropCategories(ids)
		return nil
	})
}

// PayCard debits a bank account and credits the card by the same amount.
// Paying more than the card owes is allowed and leaves a credit balance.
func (l *Ledger) PayCard(ctx context.Context, in CardPayment) ([2]core.Transaction, error) {
	var pair [2]core.Transaction
	err := l.mutate(ctx, applog.OpPay, func(ch *change) error {
		if !in.Amount.IsPositive() {
			return core.Invalid("amount", core.ErrInvalidAmount)
		}
		if in.AccountID == "" {
			return core.Invalid("accountId", core.ErrMissingAccount)
		}
		card := ch.card(in.CardID)
		if card == nil {
			return core.NotFound("credit card", in.CardID)
		}
		acc := ch.account(in.AccountID)
		if acc == nil {
			if ch.card(in.AccountID) != nil {
				return core.Invalid("accountId", core.ErrFundingAccount)
			}
			return core.NotFound("account", in.AccountID)
		}
		cardName, issuer, accName := card.Name, card.Issuer, acc.Name

		transferID := ch.newID()
		var err error
		pair, err = ch.recordPair(
			core.Transaction{
				AccountID:   in.AccountID,
				Amount:      in.Amount.Neg(),
				Date:        in.Date,
				Description: "Payment to " + cardName,
				Payee:       issuer,
				Category:    CategoryCardPayment,
				IsInternal:  true,
				TransferID:  transferID,
			},
			core.Transaction{
				AccountID:   in.CardID,
				Amount:      in.Amount.Neg(),
				Date:        in.Date,
				Description: "Payment from " + accName,
				Payee:       "Payment",
				Category:    CategoryPaymentCredit,
				IsInternal:  true,
				TransferID:  transferID,
			},
		)
		return err
	})
	return pair, err
}

// RevertCardPayment restores the bank account and the card and deletes
// both transactions of the payment.
func (l *Ledger) RevertCardPayment(ctx context.Context, transferID string) error {
	return l.mutate(ctx, applog.OpRevert, func(ch *change) error {
		if transferID == "" {
			return core.Invalid("transferId", core.ErrTransferPairMissing)
		}
		return ch.revertPair(transferID)
	})
}
