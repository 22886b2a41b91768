package history

import (
	"testing"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

func m(s string) core.Money { return core.MustMoney(s) }

func d(month, day int) core.Date { return core.NewDate(2024, month, day) }

func TestNetWorthEmptyLog(t *testing.T) {
	got := NetWorth(&core.Collections{}, m("1500"), m("200"), d(3, 15), Options{})
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	if !got[0].Date.Equal(d(3, 15)) || !got[0].NetWorth.Equal(m("1300")) {
		t.Errorf("point = %+v", got[0])
	}
}

func TestNetWorthWalksBackwards(t *testing.T) {
	c := &core.Collections{
		Accounts:    []core.Account{{ID: "chk", Name: "Checking", Type: core.Checking, Balance: m("900")}},
		CreditCards: []core.CreditCard{{ID: "visa", Name: "Visa", Balance: m("150")}},
		Transactions: []core.Transaction{
			{ID: "t1", AccountID: "chk", Amount: m("1000"), Date: d(3, 1)},
			{ID: "t2", AccountID: "visa", Amount: m("150"), Date: d(3, 5)},
			{ID: "t3", AccountID: "chk", Amount: m("-100"), Date: d(3, 10)},
			{ID: "gone", AccountID: "deleted", Amount: m("5000"), Date: d(3, 10)},
		},
		FormalDebts: []core.FormalDebt{{ID: "car", TotalAmount: m("5000"), CreationDate: d(3, 2), Status: core.StatusActive}},
		PaymentRecords: []core.PaymentRecord{
			{ID: "p1", ItemID: "car", AccountID: "chk", Amount: m("100"), Date: d(3, 10), TransactionID: "t3"},
		},
	}
	assets, liabilities := m("900"), m("5050") // 150 card + 4900 car

	got := NetWorth(c, assets, liabilities, d(3, 15), Options{})

	want := []struct {
		date        core.Date
		assets      string
		liabilities string
	}{
		{d(2, 29), "0", "0"},
		{d(3, 1), "1000", "0"},
		{d(3, 2), "1000", "5000"},
		{d(3, 5), "1000", "5150"},
		{d(3, 10), "900", "5050"},
		{d(3, 15), "900", "5050"},
	}
	if len(got) != len(want) {
		t.Fatalf("points = %d, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		p := got[i]
		if !p.Date.Equal(w.date) || !p.Assets.Equal(m(w.assets)) || !p.Liabilities.Equal(m(w.liabilities)) {
			t.Errorf("point %d = %s %s/%s, want %s %s/%s", i, p.Date, p.Assets, p.Liabilities, w.date, w.assets, w.liabilities)
		}
		if !p.NetWorth.Equal(p.Assets.Sub(p.Liabilities)) {
			t.Errorf("point %d net worth %s inconsistent", i, p.NetWorth)
		}
	}

	last := got[len(got)-1]
	if !last.Assets.Equal(assets) || !last.Liabilities.Equal(liabilities) {
		t.Errorf("last point %+v does not match current totals", last)
	}
}

func TestNetWorthMortgagePaymentsUsePrincipal(t *testing.T) {
	c := &core.Collections{
		FormalDebts: []core.FormalDebt{{ID: "home", TotalAmount: m("200000"), InterestRate: decimal.NewFromInt(6), AssetType: core.AssetHome, CreationDate: d(1, 1)}},
		PaymentRecords: []core.PaymentRecord{{
			ID: "p", ItemID: "home", Amount: m("1500"), Date: d(2, 1),
			Breakdown: &core.Breakdown{Principal: m("200"), Interest: m("1000"), Escrow: m("300"), Total: m("1500")},
		}},
	}
	got := NetWorth(c, core.Money{}, m("199800"), d(2, 1), Options{})
	if len(got) != 3 {
		t.Fatalf("points = %d, want 3", len(got))
	}
	if !got[1].Liabilities.Equal(m("200000")) {
		t.Errorf("liabilities after origination = %s, want 200000", got[1].Liabilities)
	}
	if !got[0].Liabilities.IsZero() {
		t.Errorf("lead-in liabilities = %s, want 0", got[0].Liabilities)
	}
}

func TestNetWorthCapsPoints(t *testing.T) {
	c := &core.Collections{Accounts: []core.Account{{ID: "a"}}}
	for i := 0; i < 20; i++ {
		c.Transactions = append(c.Transactions, core.Transaction{AccountID: "a", Amount: m("1"), Date: d(1, 1).AddDays(i)})
	}
	got := NetWorth(c, m("20"), core.Money{}, d(1, 20), Options{MaxPoints: 5})
	if len(got) != 5 {
		t.Fatalf("points = %d, want 5", len(got))
	}
	if !got[4].Date.Equal(d(1, 20)) || !got[4].Assets.Equal(m("20")) {
		t.Errorf("last point = %+v", got[4])
	}
}

func TestDebtBalance(t *testing.T) {
	c := &core.Collections{
		FormalDebts: []core.FormalDebt{{ID: "loan", TotalAmount: m("1000"), CreationDate: d(1, 10)}},
		PaymentRecords: []core.PaymentRecord{
			{ID: "b", ItemID: "loan", Amount: m("50"), Date: d(3, 1)},
			{ID: "a", ItemID: "loan", Amount: m("100"), Date: d(2, 1)},
			{ID: "c", ItemID: "loan", Amount: m("25"), Date: d(3, 1)},
			{ID: "x", ItemID: "other", Amount: m("999"), Date: d(2, 1)},
		},
	}
	got, err := DebtBalance(c, "loan", d(3, 15))
	if err != nil {
		t.Fatalf("DebtBalance: %v", err)
	}
	want := []BalancePoint{
		{d(1, 9), m("1000")},
		{d(2, 1), m("900")},
		{d(3, 1), m("825")},
	}
	if len(got) != len(want) {
		t.Fatalf("points = %+v", got)
	}
	for i := range want {
		if !got[i].Date.Equal(want[i].Date) || !got[i].Balance.Equal(want[i].Balance) {
			t.Errorf("point %d = %s %s, want %s %s", i, got[i].Date, got[i].Balance, want[i].Date, want[i].Balance)
		}
	}

	if _, err := DebtBalance(c, "missing", d(3, 15)); err == nil {
		t.Error("expected error for unknown debt")
	}
}

func TestObligations(t *testing.T) {
	c := &core.Collections{
		Commitments: []core.Commitment{
			{ID: "gym", Amount: m("600"), CreationDate: d(1, 1)},
			{ID: "phone", Amount: m("400"), CreationDate: d(2, 1)},
		},
		PaymentRecords: []core.PaymentRecord{
			{ItemID: "gym", Amount: m("50"), Date: d(2, 1)},
		},
	}
	got := Obligations(c, KindCommitments, d(3, 1))
	want := []struct {
		date    core.Date
		balance string
	}{
		{d(1, 1).AddDays(-1), "0"},
		{d(1, 1), "600"},
		{d(2, 1), "950"},
		{d(3, 1), "950"},
	}
	if len(got) != len(want) {
		t.Fatalf("points = %+v", got)
	}
	for i, w := range want {
		if !got[i].Date.Equal(w.date) || !got[i].Balance.Equal(m(w.balance)) {
			t.Errorf("point %d = %s %s, want %s %s", i, got[i].Date, got[i].Balance, w.date, w.balance)
		}
	}

	if got := Obligations(c, KindReceivables, d(3, 1)); got != nil {
		t.Errorf("receivables = %+v, want none", got)
	}
}
