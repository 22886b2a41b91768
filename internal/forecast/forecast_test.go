package forecast

import (
	"errors"
	"testing"

	"findash/internal/core"
)

func m(s string) core.Money { return core.MustMoney(s) }

func TestOccurrence_Occurs(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		start     core.Date
		day       core.Date
		want      bool
	}{
		{"daily on start", core.Daily, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 1), true},
		{"daily later", core.Daily, core.NewDate(2024, 1, 1), core.NewDate(2024, 7, 19), true},
		{"weekly same weekday", core.Weekly, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 15), true},
		{"weekly other weekday", core.Weekly, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 16), false},
		{"bi-weekly on cycle", core.BiWeekly, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 29), true},
		{"bi-weekly off cycle", core.BiWeekly, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 8), false},
		{"bi-weekly across dst", core.BiWeekly, core.NewDate(2024, 3, 4), core.NewDate(2024, 3, 18), true},
		{"monthly same day", core.Monthly, core.NewDate(2024, 1, 15), core.NewDate(2024, 5, 15), true},
		{"monthly other day", core.Monthly, core.NewDate(2024, 1, 15), core.NewDate(2024, 5, 16), false},
		{"monthly clamped to february end", core.Monthly, core.NewDate(2024, 1, 31), core.NewDate(2024, 2, 29), true},
		{"monthly clamped to april end", core.Monthly, core.NewDate(2024, 1, 31), core.NewDate(2024, 4, 30), true},
		{"monthly 31st not on 30th of long month", core.Monthly, core.NewDate(2024, 1, 31), core.NewDate(2024, 3, 30), false},
		{"yearly anniversary", core.Yearly, core.NewDate(2023, 6, 10), core.NewDate(2024, 6, 10), true},
		{"yearly other month", core.Yearly, core.NewDate(2023, 6, 10), core.NewDate(2024, 7, 10), false},
		{"yearly leap day in common year", core.Yearly, core.NewDate(2024, 2, 29), core.NewDate(2025, 2, 28), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := GetOccurrence(tt.frequency)
			if err != nil {
				t.Fatalf("GetOccurrence() error = %v", err)
			}
			if got := o.Occurs(tt.day, tt.start); got != tt.want {
				t.Errorf("Occurs(%s, %s) = %v, want %v", tt.day, tt.start, got, tt.want)
			}
		})
	}
}

func TestGetOccurrence_Unknown(t *testing.T) {
	if _, err := GetOccurrence("Fortnightly"); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestProject(t *testing.T) {
	start := core.NewDate(2024, 3, 1)
	events := []core.RecurringEvent{
		{Name: "Salary", Type: core.Income, Amount: m("2000"), Frequency: core.Monthly, StartDate: core.NewDate(2024, 1, 5)},
		{Name: "Coffee", Type: core.Expense, Amount: m("5"), Frequency: core.Daily, StartDate: core.NewDate(2024, 3, 3)},
		{Name: "Gym", Type: core.Expense, Amount: m("40"), Frequency: core.Monthly, StartDate: core.NewDate(2024, 4, 1)},
	}

	got, err := Project(m("100"), events, nil, start, Month)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if len(got) != Month {
		t.Fatalf("points = %d, want %d", len(got), Month)
	}

	tests := []struct {
		index int
		date  core.Date
		want  string
	}{
		{0, core.NewDate(2024, 3, 1), "100"},
		{1, core.NewDate(2024, 3, 2), "100"},
		{2, core.NewDate(2024, 3, 3), "95"},
		{4, core.NewDate(2024, 3, 5), "2085"},
		{29, core.NewDate(2024, 3, 30), "1960"},
	}
	for _, tt := range tests {
		p := got[tt.index]
		if !p.Date.Equal(tt.date) || !p.Balance.Equal(m(tt.want)) {
			t.Errorf("point %d = %s %s, want %s %s", tt.index, p.Date, p.Balance, tt.date, tt.want)
		}
		if p.WhatIfBalance != nil {
			t.Errorf("point %d has a what-if balance without what-if events", tt.index)
		}
	}
}

func TestProjectWhatIf(t *testing.T) {
	start := core.NewDate(2024, 3, 1)
	events := []core.RecurringEvent{
		{Name: "Rent", Type: core.Expense, Amount: m("1000"), Frequency: core.Monthly, StartDate: core.NewDate(2024, 3, 2)},
	}
	whatIf := []WhatIf{
		{Name: "Bonus", Date: core.NewDate(2024, 3, 3), Amount: m("500")},
		{Name: "Laptop", Date: core.NewDate(2024, 3, 3), Amount: m("-1200")},
	}

	got, err := Project(m("3000"), events, whatIf, start, 5)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	want := []struct{ balance, whatIf string }{
		{"3000", "3000"},
		{"2000", "2000"},
		{"2000", "1300"},
		{"2000", "1300"},
		{"2000", "1300"},
	}
	for i, w := range want {
		p := got[i]
		if p.WhatIfBalance == nil {
			t.Fatalf("point %d has no what-if balance", i)
		}
		if !p.Balance.Equal(m(w.balance)) || !p.WhatIfBalance.Equal(m(w.whatIf)) {
			t.Errorf("point %d = %s/%s, want %s/%s", i, p.Balance, *p.WhatIfBalance, w.balance, w.whatIf)
		}
	}
}

func TestProjectRejectsBadInput(t *testing.T) {
	start := core.NewDate(2024, 3, 1)
	tests := []struct {
		name   string
		events []core.RecurringEvent
		days   int
		want   error
	}{
		{"zero days", nil, 0, errDays},
		{"too many days", nil, maxDays + 1, errDays},
		{"unknown frequency", []core.RecurringEvent{{Frequency: "Hourly"}}, 10, core.ErrInvalidFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(core.Money{}, tt.events, nil, start, tt.days)
			if !errors.Is(err, tt.want) {
				t.Errorf("Project() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAccount(t *testing.T) {
	c := &core.Collections{
		Accounts: []core.Account{{ID: "chk", Balance: m("50")}, {ID: "sav", Balance: m("900")}},
		RecurringEvents: []core.RecurringEvent{
			{AccountID: "chk", Type: core.Income, Amount: m("10"), Frequency: core.Daily, StartDate: core.NewDate(2024, 1, 1)},
			{AccountID: "sav", Type: core.Expense, Amount: m("99"), Frequency: core.Daily, StartDate: core.NewDate(2024, 1, 1)},
		},
	}
	got, err := Account(c, "chk", nil, core.NewDate(2024, 3, 1), 3)
	if err != nil {
		t.Fatalf("Account() error = %v", err)
	}
	if last := got[len(got)-1]; !last.Balance.Equal(m("80")) {
		t.Errorf("last balance = %s, want 80", last.Balance)
	}

	if _, err := Account(c, "missing", nil, core.NewDate(2024, 3, 1), 3); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Account() error = %v, want ErrNotFound", err)
	}
}
