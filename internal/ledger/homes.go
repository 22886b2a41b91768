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

var errHasMortgage = errors.New("home already has a mortgage")

type NewHome struct {
	Name          string
	PurchasePrice core.Money
	PurchaseDate  core.Date
	CurrentValue  core.Money
	DownPayment   core.Money
	ClosingCosts  core.Money
}

func (n NewHome) apply(h *core.Home) {
	h.Name = strings.TrimSpace(n.Name)
	h.PurchasePrice = n.PurchasePrice
	h.PurchaseDate = n.PurchaseDate
	h.CurrentValue = n.CurrentValue
	h.DownPayment = n.DownPayment
	h.ClosingCosts = n.ClosingCosts
	if h.CurrentValue.IsZero() {
		h.CurrentValue = h.PurchasePrice
	}
}

// MortgageTerms describe the loan attached to a home. A zero Principal
// means purchase price minus down payment. A zero OriginationDate means
// the purchase date.
type MortgageTerms struct {
	Principal        core.Money
	InterestRate     decimal.Decimal
	TermYears        int
	OriginationDate  core.Date
	NextPaymentDate  core.Date
	MonthlyTax       core.Money
	MonthlyInsurance core.Money
	MonthlyPMI       core.Money
}

type NewImprovement struct {
	HomeID      string
	Description string
	Cost        core.Money
	Date        core.Date
}

func (l *Ledger) CreateHome(ctx context.Context, in NewHome) (core.Home, error) {
	var created core.Home
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		h := core.Home{ID: ch.newID()}
		in.apply(&h)
		if err := h.Validate(); err != nil {
			return err
		}
		ch.c.Homes = append(ch.c.Homes, h)
		ch.touch(core.CollHomes)
		created = h
		return nil
	})
	return created, err
}

// UpdateHome replaces the purchase and valuation details of a home. The
// mortgage link is kept.
func (l *Ledger) UpdateHome(ctx context.Context, id string, in NewHome) (core.Home, error) {
	var updated core.Home
	err := l.mutate(ctx, applog.OpUpdate, func(ch *change) error {
		h := ch.home(id)
		if h == nil {
			return core.NotFound("home", id)
		}
		next := *h
		in.apply(&next)
		if err := next.Validate(); err != nil {
			return err
		}
		*h = next
		ch.touch(core.CollHomes)
		updated = next
		return nil
	})
	return updated, err
}

// DeleteHome removes a home, its improvements and its mortgage with the
// mortgage's payment records.
func (l *Ledger) DeleteHome(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		h := ch.home(id)
		if h == nil {
			return core.NotFound("home", id)
		}
		if h.LinkedDebtID != "" {
			ch.deleteItem(h.LinkedDebtID)
		}
		ch.c.Homes = slices.DeleteFunc(ch.c.Homes, func(h core.Home) bool { return h.ID == id })
		ch.touch(core.CollHomes)
		n := len(ch.c.HomeImprovements)
		ch.c.HomeImprovements = slices.DeleteFunc(ch.c.HomeImprovements, func(i core.HomeImprovement) bool { return i.HomeID == id })
		if len(ch.c.HomeImprovements) != n {
			ch.touch(core.CollHomeImprovements)
		}
		return nil
	})
}

// AttachMortgage creates the mortgage of a home with its monthly principal
// and interest payment computed from the terms.
func (l *Ledger) AttachMortgage(ctx context.Context, homeID string, terms MortgageTerms) (core.FormalDebt, error) {
	var created core.FormalDebt
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		h := ch.home(homeID)
		if h == nil {
			return core.NotFound("home", homeID)
		}
		if h.LinkedDebtID != "" && ch.debt(h.LinkedDebtID) != nil {
			return core.Invalid("homeId", errHasMortgage)
		}
		if terms.TermYears <= 0 {
			return core.Invalid("loanTermYears", errors.New("loan term must be at least one year"))
		}
		principal := terms.Principal
		if principal.IsZero() {
			principal = h.PurchasePrice.Sub(h.DownPayment)
		}
		origination := terms.OriginationDate
		if origination.IsZero() {
			origination = h.PurchaseDate
		}
		d := core.FormalDebt{
			ID:                  ch.newID(),
			Name:                h.Name + " Mortgage",
			Description:         h.Name + " Mortgage",
			TotalAmount:         principal,
			InterestRate:        terms.InterestRate,
			NextPaymentDate:     terms.NextPaymentDate,
			Status:              core.StatusActive,
			CreationDate:        ch.today,
			LinkedAssetID:       homeID,
			AssetType:           core.AssetHome,
			LoanTermYears:       terms.TermYears,
			LoanOriginationDate: origination,
			MonthlyPayment:      amortization.MonthlyPayment(principal, terms.InterestRate, terms.TermYears).Round(2),
			MonthlyTax:          terms.MonthlyTax,
			MonthlyInsurance:    terms.MonthlyInsurance,
			MonthlyPMI:          terms.MonthlyPMI,
		}
		if err := d.Validate(); err != nil {
			return err
		}
		ch.c.FormalDebts = append(ch.c.FormalDebts, d)
		h.LinkedDebtID = d.ID
		ch.touch(core.CollFormalDebts, core.CollHomes)
		created = d
		return nil
	})
	return created, err
}

func (l *Ledger) AddImprovement(ctx context.Context, in NewImprovement) (core.HomeImprovement, error) {
	var created core.HomeImprovement
	err := l.mutate(ctx, applog.OpCreate, func(ch *change) error {
		if ch.home(in.HomeID) == nil {
			return core.NotFound("home", in.HomeID)
		}
		if strings.TrimSpace(in.Description) == "" {
			return core.Invalid("description", core.ErrEmptyName)
		}
		if !in.Cost.IsPositive() {
			return core.Invalid("cost", core.ErrInvalidAmount)
		}
		imp := core.HomeImprovement{
			ID:          ch.newID(),
			HomeID:      in.HomeID,
			Description: strings.TrimSpace(in.Description),
			Cost:        in.Cost,
			Date:        in.Date,
		}
		if imp.Date.IsZero() {
			imp.Date = ch.today
		}
		ch.c.HomeImprovements = append(ch.c.HomeImprovements, imp)
		ch.touch(core.CollHomeImprovements)
		created = imp
		return nil
	})
	return created, err
}

func (l *Ledger) DeleteImprovement(ctx context.Context, id string) error {
	return l.mutate(ctx, applog.OpDelete, func(ch *change) error {
		n := len(ch.c.HomeImprovements)
		ch.c.HomeImprovements = slices.DeleteFunc(ch.c.HomeImprovements, func(i core.HomeImprovement) bool { return i.ID == id })
		if len(ch.c.HomeImprovements) == n {
			return core.NotFound("home improvement", id)
		}
		ch.touch(core.CollHomeImprovements)
		return nil
	})
}
