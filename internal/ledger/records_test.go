package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

func TestRenameAccountKeepsBalance(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	acc := mustAccount(t, l, "Checking", "100", "")

	got, err := l.RenameAccount(ctx, acc.ID, "  Everyday  ", core.Savings)
	if err != nil {
		t.Fatalf("RenameAccount: %v", err)
	}
	if got.Name != "Everyday" || got.Type != core.Savings {
		t.Errorf("renamed account = %+v", got)
	}
	assertBalance(t, l, acc.ID, "100")

	if _, err := l.RenameAccount(ctx, acc.ID, " ", ""); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank name error = %v, want ErrEmptyName", err)
	}
	if _, err := l.RenameAccount(ctx, "missing", "x", ""); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing account error = %v, want ErrNotFound", err)
	}
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	acc := mustAccount(t, l, "Checking", "0", "")

	cat, err := l.AddCategory(ctx, acc.ID, "Pets")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if _, err := l.AddCategory(ctx, "missing", "Pets"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("AddCategory on missing account = %v, want ErrNotFound", err)
	}
	if err := l.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := l.DeleteCategory(ctx, cat.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteCategory = %v, want ErrNotFound", err)
	}
	c, _ := l.Snapshot()
	for _, existing := range c.Categories {
		if existing.Name == "Pets" {
			t.Error("deleted category still present")
		}
	}
}

func TestHoldingLifecycle(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	h, err := l.AddHolding(ctx, Stocks, core.Holding{
		Symbol:   " vt ",
		Quantity: decimal.NewFromInt(10),
		Price:    core.MustMoney("100"),
	})
	if err != nil {
		t.Fatalf("AddHolding: %v", err)
	}
	if h.Symbol != "VT" || h.Name != "VT" {
		t.Errorf("holding = %+v, want symbol and name VT", h)
	}

	if err := l.UpdateHoldingPrice(ctx, Stocks, h.ID, core.MustMoney("110")); err != nil {
		t.Fatalf("UpdateHoldingPrice: %v", err)
	}
	c, _ := l.Snapshot()
	if got := c.Stocks[0].Value(); !got.Equal(core.MustMoney("1100")) {
		t.Errorf("holding value = %s, want 1100", got)
	}

	if err := l.UpdateHoldingPrice(ctx, Stocks, h.ID, core.MustMoney("-1")); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative price error = %v, want ErrInvalidAmount", err)
	}
	if err := l.DeleteHolding(ctx, Crypto, h.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete from wrong kind = %v, want ErrNotFound", err)
	}
	if err := l.DeleteHolding(ctx, Stocks, h.ID); err != nil {
		t.Fatalf("DeleteHolding: %v", err)
	}
	if _, err := l.AddHolding(ctx, HoldingKind("bonds"), core.Holding{Symbol: "X"}); err == nil {
		t.Error("expected unknown holding kind to be rejected")
	}
}

func TestRetirementHoldingsBelongToRetirementAccounts(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	bank := mustAccount(t, l, "Checking", "100", "")

	roth, err := l.CreateRetirementAccount(ctx, " Roth IRA ", core.RothIRA)
	if err != nil {
		t.Fatalf("CreateRetirementAccount: %v", err)
	}
	if roth.Name != "Roth IRA" {
		t.Errorf("account name = %q", roth.Name)
	}
	h, err := l.AddHolding(ctx, Retirement, core.Holding{
		Symbol:    "VTI",
		AccountID: roth.ID,
		Quantity:  decimal.NewFromInt(4),
		Price:     core.MustMoney("250"),
	})
	if err != nil {
		t.Fatalf("AddHolding into retirement account: %v", err)
	}
	if h.AccountID != roth.ID {
		t.Errorf("holding account = %q, want %q", h.AccountID, roth.ID)
	}

	if _, err := l.AddHolding(ctx, Retirement, core.Holding{Symbol: "VTI", AccountID: bank.ID}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("retirement holding on bank account = %v, want ErrNotFound", err)
	}
	if _, err := l.AddHolding(ctx, Retirement, core.Holding{Symbol: "VTI"}); !errors.Is(err, core.ErrMissingAccount) {
		t.Errorf("retirement holding without account = %v, want ErrMissingAccount", err)
	}
	if _, err := l.AddHolding(ctx, Stocks, core.Holding{Symbol: "VTI", AccountID: roth.ID}); err == nil {
		t.Error("expected a stock holding with an account to be rejected")
	}
}

func TestDeleteRetirementAccountCascades(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	keep, err := l.CreateRetirementAccount(ctx, "Work", core.Plan401k)
	if err != nil {
		t.Fatalf("CreateRetirementAccount: %v", err)
	}
	drop, err := l.CreateRetirementAccount(ctx, "Old IRA", "")
	if err != nil {
		t.Fatalf("CreateRetirementAccount: %v", err)
	}
	if drop.Type != core.OtherRetirement {
		t.Errorf("default type = %q, want Other", drop.Type)
	}
	if _, err := l.CreateRetirementAccount(ctx, "College", "529"); err == nil {
		t.Error("expected unknown plan type to be rejected")
	}

	for _, acc := range []string{keep.ID, drop.ID} {
		if _, err := l.AddHolding(ctx, Retirement, core.Holding{Symbol: "VT", AccountID: acc, Quantity: decimal.NewFromInt(1)}); err != nil {
			t.Fatalf("AddHolding: %v", err)
		}
		if _, err := l.AddContribution(ctx, core.Contribution{AccountID: acc, Amount: core.MustMoney("500"), Date: core.NewDate(2024, 1, 5)}); err != nil {
			t.Fatalf("AddContribution: %v", err)
		}
	}
	if _, err := l.AddContribution(ctx, core.Contribution{AccountID: "missing", Amount: core.MustMoney("1"), Date: core.NewDate(2024, 1, 5)}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("contribution to missing account = %v, want ErrNotFound", err)
	}

	if err := l.DeleteRetirementAccount(ctx, drop.ID); err != nil {
		t.Fatalf("DeleteRetirementAccount: %v", err)
	}
	c, _ := l.Snapshot()
	if len(c.RetirementAccounts) != 1 || c.RetirementAccounts[0].ID != keep.ID {
		t.Errorf("accounts = %+v", c.RetirementAccounts)
	}
	if len(c.RetirementHoldings) != 1 || c.RetirementHoldings[0].AccountID != keep.ID {
		t.Errorf("holdings = %+v", c.RetirementHoldings)
	}
	if len(c.Contributions) != 1 || c.Contributions[0].AccountID != keep.ID {
		t.Errorf("contributions = %+v", c.Contributions)
	}
	if err := l.DeleteRetirementAccount(ctx, drop.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestContributionEdits(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	acc, err := l.CreateRetirementAccount(ctx, "Roth", core.RothIRA)
	if err != nil {
		t.Fatalf("CreateRetirementAccount: %v", err)
	}
	renamed, err := l.UpdateRetirementAccount(ctx, acc.ID, "Roth (Vanguard)", "")
	if err != nil || renamed.Name != "Roth (Vanguard)" || renamed.Type != core.RothIRA {
		t.Fatalf("UpdateRetirementAccount = %+v, %v", renamed, err)
	}
	ct, err := l.AddContribution(ctx, core.Contribution{AccountID: acc.ID, Amount: core.MustMoney("200"), Date: core.NewDate(2024, 2, 1)})
	if err != nil {
		t.Fatalf("AddContribution: %v", err)
	}
	edited, err := l.EditContribution(ctx, ct.ID, core.MustMoney("250"), core.NewDate(2024, 2, 3))
	if err != nil {
		t.Fatalf("EditContribution: %v", err)
	}
	if !edited.Amount.Equal(core.MustMoney("250")) || !edited.Date.Equal(core.NewDate(2024, 2, 3)) || edited.AccountID != acc.ID {
		t.Errorf("edited = %+v", edited)
	}
	if _, err := l.EditContribution(ctx, ct.ID, core.MustMoney("0"), core.NewDate(2024, 2, 3)); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount = %v, want ErrInvalidAmount", err)
	}
	if err := l.DeleteContribution(ctx, ct.ID); err != nil {
		t.Fatalf("DeleteContribution: %v", err)
	}
	if err := l.DeleteContribution(ctx, ct.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestOtherAssetsAndRecurringEvents(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	acc := mustAccount(t, l, "Checking", "0", "")

	asset, err := l.AddOtherAsset(ctx, core.OtherAsset{Name: "Car", CurrentValue: core.MustMoney("9000")})
	if err != nil {
		t.Fatalf("AddOtherAsset: %v", err)
	}
	if _, err := l.AddOtherAsset(ctx, core.OtherAsset{Name: "Debt", CurrentValue: core.MustMoney("-1")}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative asset error = %v, want ErrInvalidAmount", err)
	}

	ev, err := l.AddRecurringEvent(ctx, core.RecurringEvent{
		Name:      "Rent",
		Type:      core.Expense,
		Amount:    core.MustMoney("1200"),
		Frequency: core.Monthly,
		StartDate: core.NewDate(2024, 1, 1),
		AccountID: acc.ID,
	})
	if err != nil {
		t.Fatalf("AddRecurringEvent: %v", err)
	}
	assertBalance(t, l, acc.ID, "0")

	if err := l.DeleteOtherAsset(ctx, asset.ID); err != nil {
		t.Errorf("DeleteOtherAsset: %v", err)
	}
	if err := l.DeleteRecurringEvent(ctx, ev.ID); err != nil {
		t.Errorf("DeleteRecurringEvent: %v", err)
	}
	if err := l.DeleteRecurringEvent(ctx, ev.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteRecurringEvent = %v, want ErrNotFound", err)
	}
	c, _ := l.Snapshot()
	if len(c.OtherAssets) != 0 || len(c.RecurringEvents) != 0 {
		t.Errorf("left %d assets and %d events", len(c.OtherAssets), len(c.RecurringEvents))
	}
}

func TestUpdateAndDeleteCard(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	bank := mustAccount(t, l, "Checking", "1000", "")
	card, err := l.CreateCard(ctx, NewCard{Name: "Visa", Issuer: "Bank", CreditLimit: core.MustMoney("2000"), Balance: core.MustMoney("300")})
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}

	updated, err := l.UpdateCard(ctx, card.ID, CardEdit{Name: "Visa Gold", Issuer: "Bank", CreditLimit: core.MustMoney("5000")})
	if err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	if !updated.CreditLimit.Equal(core.MustMoney("5000")) || !updated.Balance.Equal(core.MustMoney("300")) {
		t.Errorf("updated card = %+v", updated)
	}

	if _, err := l.PayCard(ctx, CardPayment{CardID: card.ID, AccountID: bank.ID, Amount: core.MustMoney("100")}); err != nil {
		t.Fatalf("PayCard: %v", err)
	}
	if err := l.DeleteCard(ctx, card.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}

	c, _ := l.Snapshot()
	if _, ok := c.CardByID(card.ID); ok {
		t.Error("card still present")
	}
	if got := len(c.TransactionsFor(card.ID)); got != 0 {
		t.Errorf("card transactions left = %d, want 0", got)
	}
	var bankLeg bool
	for _, tx := range c.TransactionsFor(bank.ID) {
		if tx.Category == CategoryCardPayment {
			bankLeg = true
		}
	}
	if !bankLeg {
		t.Error("bank side of the card payment was removed")
	}
	assertBalance(t, l, bank.ID, "900")
}

func TestArchiveAndUnarchive(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	cm, err := l.CreateCommitment(ctx, NewCommitment{Name: "Tuition", Amount: core.MustMoney("300")})
	if err != nil {
		t.Fatalf("CreateCommitment: %v", err)
	}

	if err := l.Archive(ctx, cm.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	c, _ := l.Snapshot()
	got := c.Commitments[0]
	if got.IsActive() || !got.PaidOffDate.Equal(core.DateOf(testDay)) {
		t.Errorf("archived commitment = %+v", got)
	}

	if err := l.Unarchive(ctx, cm.ID); err != nil {
		t.Fatalf("Unarchive: %v", err)
	}
	c, _ = l.Snapshot()
	if got := c.Commitments[0]; !got.IsActive() || !got.PaidOffDate.IsZero() {
		t.Errorf("unarchived commitment = %+v", got)
	}
	if err := l.Archive(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Archive(missing) = %v, want ErrNotFound", err)
	}
}

func TestUpdateDebtReamortizesMortgage(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	bank := mustAccount(t, l, "Checking", "5000", "")
	home, err := l.CreateHome(ctx, NewHome{
		Name:          "Cottage",
		PurchasePrice: core.MustMoney("125000"),
		PurchaseDate:  core.NewDate(2024, 1, 10),
		DownPayment:   core.MustMoney("25000"),
	})
	if err != nil {
		t.Fatalf("CreateHome: %v", err)
	}
	mortgage, err := l.AttachMortgage(ctx, home.ID, MortgageTerms{InterestRate: decimal.NewFromInt(6), TermYears: 30})
	if err != nil {
		t.Fatalf("AttachMortgage: %v", err)
	}
	rec, err := l.RecordPayment(ctx, PaymentInput{ItemID: mortgage.ID, AccountID: bank.ID, Amount: core.MustMoney("1000"), Date: core.NewDate(2024, 2, 10)})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !rec.Breakdown.Interest.Equal(core.MustMoney("500")) {
		t.Fatalf("interest at 6%% = %s, want 500", rec.Breakdown.Interest)
	}

	updated, err := l.UpdateDebt(ctx, mortgage.ID, NewDebt{
		Name:           mortgage.Name,
		TotalAmount:    mortgage.TotalAmount,
		InterestRate:   decimal.Zero,
		LoanTermYears:  mortgage.LoanTermYears,
		MonthlyPayment: mortgage.MonthlyPayment,
	})
	if err != nil {
		t.Fatalf("UpdateDebt: %v", err)
	}
	if updated.LinkedAssetID != home.ID || updated.Status != core.StatusActive {
		t.Errorf("update dropped link or status: %+v", updated)
	}

	c, _ := l.Snapshot()
	p := c.PaymentsFor(mortgage.ID)[0]
	if !p.Breakdown.Interest.IsZero() || !p.Breakdown.Principal.Equal(core.MustMoney("1000")) {
		t.Errorf("breakdown after rate change = %+v", *p.Breakdown)
	}

	if _, err := l.UpdateDebt(ctx, mortgage.ID, NewDebt{Name: "Cottage Mortgage"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
}

func TestHomeDetails(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	home, err := l.CreateHome(ctx, NewHome{Name: "Flat", PurchasePrice: core.MustMoney("200000"), PurchaseDate: core.NewDate(2020, 5, 1)})
	if err != nil {
		t.Fatalf("CreateHome: %v", err)
	}
	if !home.CurrentValue.Equal(core.MustMoney("200000")) {
		t.Errorf("current value defaulted to %s, want purchase price", home.CurrentValue)
	}

	updated, err := l.UpdateHome(ctx, home.ID, NewHome{
		Name:          "Flat",
		PurchasePrice: core.MustMoney("200000"),
		PurchaseDate:  core.NewDate(2020, 5, 1),
		CurrentValue:  core.MustMoney("260000"),
	})
	if err != nil {
		t.Fatalf("UpdateHome: %v", err)
	}
	if !updated.CurrentValue.Equal(core.MustMoney("260000")) {
		t.Errorf("current value = %s, want 260000", updated.CurrentValue)
	}

	imp, err := l.AddImprovement(ctx, NewImprovement{HomeID: home.ID, Description: "Kitchen", Cost: core.MustMoney("15000")})
	if err != nil {
		t.Fatalf("AddImprovement: %v", err)
	}
	if !imp.Date.Equal(core.DateOf(testDay)) {
		t.Errorf("improvement date = %s, want today", imp.Date)
	}
	if _, err := l.AddImprovement(ctx, NewImprovement{HomeID: home.ID, Description: "Paint"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero cost error = %v, want ErrInvalidAmount", err)
	}
	if err := l.DeleteImprovement(ctx, imp.ID); err != nil {
		t.Fatalf("DeleteImprovement: %v", err)
	}
	c, _ := l.Snapshot()
	if len(c.HomeImprovements) != 0 {
		t.Errorf("improvements left = %d", len(c.HomeImprovements))
	}
}
