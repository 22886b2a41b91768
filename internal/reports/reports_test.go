package reports

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"findash/internal/cache"
	"findash/internal/core"
	"findash/internal/history"
)

func m(s string) core.Money { return core.MustMoney(s) }

func sample() *core.Collections {
	return &core.Collections{
		Accounts: []core.Account{
			{ID: "chk", Name: "Checking", Type: core.Checking, Balance: m("1000")},
			{ID: "sav", Name: "Rainy day", Type: core.Savings, Balance: m("400"), ParentID: "chk"},
			{ID: "brk", Name: "Brokerage", Type: core.OtherAccount, Balance: m("250.50")},
		},
		CreditCards: []core.CreditCard{{ID: "visa", Balance: m("300"), CreditLimit: m("1000")}},
		Stocks:      []core.Holding{{ID: "s", Symbol: "VTI", Quantity: decimal.NewFromInt(10), Price: m("250"), CostBasis: m("2000")}},
		Crypto:      []core.Holding{{ID: "c", Symbol: "BTC", Quantity: decimal.RequireFromString("0.1"), Price: m("60000")}},
		OtherAssets: []core.OtherAsset{{ID: "o", Name: "Car", CurrentValue: m("12000")}},
		Receivables: []core.Receivable{
			{ID: "r1", Name: "Loan to Sam", Amount: m("500"), Status: core.StatusActive},
			{ID: "r2", Name: "Old", Amount: m("900"), Status: core.StatusArchived},
		},
		FormalDebts: []core.FormalDebt{
			{ID: "car", TotalAmount: m("10000"), Status: core.StatusActive},
			{ID: "gone", TotalAmount: m("7000"), Status: core.StatusArchived},
		},
		Commitments: []core.Commitment{{ID: "gym", Amount: m("600"), Status: core.StatusActive}},
		PaymentRecords: []core.PaymentRecord{
			{ItemID: "car", Amount: m("1500")},
			{ItemID: "gym", Amount: m("100")},
			{ItemID: "r1", Amount: m("200")},
		},
	}
}

func TestCompute(t *testing.T) {
	got := Compute(sample())

	checks := []struct {
		name string
		got  core.Money
		want string
	}{
		{"cash", got.Cash, "1250.50"},
		{"holdings", got.Holdings, "8500"},
		{"receivables", got.Receivables, "300"},
		{"assets", got.Assets, "22050.50"},
		{"cards", got.Cards, "300"},
		{"formal debt", got.FormalDebt, "8500"},
		{"commitments", got.Commitments, "500"},
		{"liabilities", got.Liabilities, "9300"},
		{"net worth", got.NetWorth, "12750.50"},
	}
	for _, c := range checks {
		if !c.got.Equal(m(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestUtilizationBand(t *testing.T) {
	tests := []struct {
		balance string
		want    Band
	}{
		{"0", BandLow},
		{"300", BandLow},
		{"300.01", BandMedium},
		{"700", BandMedium},
		{"700.01", BandHigh},
		{"1200", BandHigh},
	}
	for _, tt := range tests {
		t.Run(tt.balance, func(t *testing.T) {
			card := core.CreditCard{Balance: m(tt.balance), CreditLimit: m("1000")}
			if got := UtilizationBand(Utilization(card)); got != tt.want {
				t.Errorf("band = %s, want %s", got, tt.want)
			}
		})
	}
	if !Utilization(core.CreditCard{Balance: m("50")}).IsZero() {
		t.Error("card without limit should report zero utilization")
	}
}

func TestProgressAndHoldings(t *testing.T) {
	if got := Progress(m("1500"), m("10000")); !got.Equal(decimal.NewFromInt(15)) {
		t.Errorf("progress = %s, want 15", got)
	}
	if got := Progress(m("1"), core.Money{}); !got.IsZero() {
		t.Errorf("progress with no total = %s", got)
	}
	h := core.Holding{Quantity: decimal.NewFromInt(10), Price: m("250"), CostBasis: m("2000")}
	if got := HoldingGain(h); !got.Equal(m("500")) {
		t.Errorf("gain = %s, want 500", got)
	}
}

func TestAllocationDropsEmptySlices(t *testing.T) {
	got := Allocation(sample())
	names := []string{"Cash", "Stocks", "Crypto", "Other Assets"}
	if len(got) != len(names) {
		t.Fatalf("allocation = %+v", got)
	}
	for i, name := range names {
		if got[i].Name != name {
			t.Errorf("slice %d = %s, want %s", i, got[i].Name, name)
		}
	}
}

func TestMonthOverview(t *testing.T) {
	c := &core.Collections{Transactions: []core.Transaction{
		{AccountID: "chk", Amount: m("3000"), Date: core.NewDate(2024, 3, 1), Category: "Salary"},
		{AccountID: "chk", Amount: m("-120"), Date: core.NewDate(2024, 3, 3), Category: "Groceries"},
		{AccountID: "chk", Amount: m("-80"), Date: core.NewDate(2024, 3, 9), Category: "Groceries"},
		{AccountID: "chk", Amount: m("-1500"), Date: core.NewDate(2024, 3, 5), Category: "Rent/Mortgage"},
		{AccountID: "chk", Amount: m("-500"), Date: core.NewDate(2024, 3, 6), IsInternal: true},
		{AccountID: "chk", Amount: m("-75"), Date: core.NewDate(2024, 4, 1), Category: "Groceries"},
		{AccountID: "sav", Amount: m("-5"), Date: core.NewDate(2024, 3, 1)},
	}}
	ov := MonthOverview(c, "chk", 2024, 3)
	if !ov.Income.Equal(m("3000")) || !ov.Spending.Equal(m("1700")) || !ov.Net.Equal(m("1300")) {
		t.Errorf("overview = %+v", ov)
	}
	if len(ov.ByCategory) != 3 || ov.ByCategory[0].Name != "Rent/Mortgage" || !ov.ByCategory[1].Amount.Equal(m("-200")) {
		t.Errorf("categories = %+v", ov.ByCategory)
	}
}

func TestHomeSummary(t *testing.T) {
	c := &core.Collections{
		Homes: []core.Home{{
			ID: "h", Name: "Maple St", PurchasePrice: m("250000"), CurrentValue: m("280000"),
			DownPayment: m("50000"), ClosingCosts: m("6000"), LinkedDebtID: "mtg",
		}},
		HomeImprovements: []core.HomeImprovement{{HomeID: "h", Cost: m("4000")}, {HomeID: "other", Cost: m("99")}},
		FormalDebts: []core.FormalDebt{{
			ID: "mtg", TotalAmount: m("200000"), InterestRate: decimal.NewFromInt(6), AssetType: core.AssetHome,
			LoanTermYears: 30, MonthlyPayment: m("1199.10"), MonthlyTax: m("200"), MonthlyInsurance: m("100"),
		}},
		PaymentRecords: []core.PaymentRecord{{
			ItemID: "mtg", Amount: m("1500"),
			Breakdown: &core.Breakdown{Principal: m("200"), Interest: m("1000"), Escrow: m("300"), Total: m("1500")},
		}},
	}
	s, err := Home(c, "h")
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	checks := []struct {
		name string
		got  core.Money
		want string
	}{
		{"mortgage balance", s.MortgageBalance, "199800"},
		{"equity", s.Equity, "80200"},
		{"net equity on sale", s.NetEquityOnSale, "70200"},
		{"cost basis", s.CostBasis, "260000"},
		{"appreciation", s.Appreciation, "30000"},
		{"interest paid", s.InterestPaid, "1000"},
		{"taxes paid", s.TaxesPaid, "200"},
		{"pmi paid", s.PMIPaid, "0"},
		{"monthly housing", s.MonthlyHousingCost, "1499.10"},
		{"projected interest", s.ProjectedTotalInterest, "231676"},
	}
	for _, c := range checks {
		if !c.got.Equal(m(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if _, err := Home(c, "missing"); err == nil {
		t.Error("expected error for unknown home")
	}
}

type fakeSource struct {
	c     *core.Collections
	rev   uint64
	calls int
}

func (f *fakeSource) Snapshot() (*core.Collections, uint64) {
	f.calls++
	return f.c, f.rev
}

func (f *fakeSource) Today() core.Date { return core.NewDate(2024, 3, 15) }

func TestReporterCachesPerRevision(t *testing.T) {
	src := &fakeSource{c: &core.Collections{
		Accounts:     []core.Account{{ID: "a", Balance: m("100")}},
		Transactions: []core.Transaction{{AccountID: "a", Amount: m("100"), Date: core.NewDate(2024, 3, 1)}},
	}, rev: 1}
	lru := cache.NewLRUCache[[]history.Point](4, 0)
	r := NewReporter(src, lru, history.Options{}, nil)
	ctx := context.Background()

	first := r.NetWorthHistory(ctx)
	first[0].Assets = m("999")
	second := r.NetWorthHistory(ctx)
	if second[0].Assets.Equal(m("999")) {
		t.Error("cached series was mutated through a returned slice")
	}
	if hits, _ := lru.Stats(); hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}

	src.rev = 2
	src.c.Accounts[0].Balance = m("150")
	third := r.NetWorthHistory(ctx)
	if last := third[len(third)-1]; !last.Assets.Equal(m("150")) {
		t.Errorf("after new revision last assets = %s, want 150", last.Assets)
	}
	if lru.Size() != 2 {
		t.Errorf("cache size = %d, want 2", lru.Size())
	}
}

func TestReporterScheduleAndForecast(t *testing.T) {
	src := &fakeSource{c: &core.Collections{
		Accounts:    []core.Account{{ID: "chk", Balance: m("100")}},
		FormalDebts: []core.FormalDebt{{ID: "loan", TotalAmount: m("1000")}},
		PaymentRecords: []core.PaymentRecord{
			{ID: "p2", ItemID: "loan", Amount: m("300"), Date: core.NewDate(2024, 3, 1)},
			{ID: "p1", ItemID: "loan", Amount: m("200"), Date: core.NewDate(2024, 2, 1)},
		},
		RecurringEvents: []core.RecurringEvent{
			{AccountID: "chk", Type: core.Expense, Amount: m("10"), Frequency: core.Daily, StartDate: core.NewDate(2024, 3, 15)},
		},
	}, rev: 1}
	r := NewReporter(src, nil, history.Options{}, nil)

	rows, err := r.Schedule("loan")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(rows) != 2 || rows[0].Payment.ID != "p1" || !rows[1].Balance.Equal(m("500")) {
		t.Errorf("schedule = %+v", rows)
	}
	if _, err := r.Schedule("missing"); err == nil {
		t.Error("expected error for unknown debt")
	}

	points, err := r.Forecast("chk", nil, 3)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !points[0].Date.Equal(core.NewDate(2024, 3, 15)) || !points[2].Balance.Equal(m("70")) {
		t.Errorf("forecast = %+v", points)
	}
}

func TestRetirementSummaries(t *testing.T) {
	c := &core.Collections{
		RetirementAccounts: []core.RetirementAccount{
			{ID: "roth", Name: "Roth", Type: core.RothIRA},
			{ID: "401k", Name: "Work", Type: core.Plan401k},
		},
		RetirementHoldings: []core.Holding{
			{ID: "h1", Symbol: "VTI", AccountID: "roth", Quantity: decimal.NewFromInt(10), Price: m("250"), CostBasis: m("2000")},
			{ID: "h2", Symbol: "BND", AccountID: "roth", Quantity: decimal.NewFromInt(5), Price: m("70"), CostBasis: m("400")},
		},
		Contributions: []core.Contribution{
			{ID: "c1", AccountID: "roth", Amount: m("1500"), Date: core.NewDate(2024, 1, 2)},
			{ID: "c2", AccountID: "roth", Amount: m("1000"), Date: core.NewDate(2024, 2, 2)},
			{ID: "c3", AccountID: "401k", Amount: m("300"), Date: core.NewDate(2024, 2, 2)},
		},
	}
	got := Retirement(c)
	if len(got) != 2 {
		t.Fatalf("summaries = %+v", got)
	}
	roth := got[0]
	if !roth.Value.Equal(m("2850")) || !roth.CostBasis.Equal(m("2400")) || !roth.Gain.Equal(m("450")) {
		t.Errorf("roth = %+v", roth)
	}
	if !roth.Contributions.Equal(m("2500")) || roth.Holdings != 2 {
		t.Errorf("roth contributions = %s over %d holdings", roth.Contributions, roth.Holdings)
	}
	if work := got[1]; !work.Value.IsZero() || !work.Contributions.Equal(m("300")) {
		t.Errorf("401k = %+v", work)
	}
}
