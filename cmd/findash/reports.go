package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"findash/internal/cli"
	"findash/internal/core"
	"findash/internal/forecast"
	"findash/internal/history"
	"findash/internal/reports"
)

type networthCmd struct {
	json bool
}

func (*networthCmd) Name() string     { return "networth" }
func (*networthCmd) Synopsis() string { return "show assets, liabilities and net worth" }
func (*networthCmd) Usage() string {
	return `findash networth [-json]

  Totals cash, holdings, receivables, other assets and homes against card
  balances, outstanding debts and commitments.
`
}

func (c *networthCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *networthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		t := app.Reporter.Totals()
		if c.json {
			return printJSON(struct {
				Totals     reports.Totals  `json:"totals"`
				Allocation []reports.Slice `json:"allocation"`
			}{t, app.Reporter.Allocation()})
		}
		cur := app.Config.Currency
		line := func(name string, m core.Money) string { return name + "\t" + m.Format(cur) }
		rows := []string{
			line("Cash", t.Cash),
			line("Holdings", t.Holdings),
			line("Receivables", t.Receivables),
			line("Other assets", t.OtherAssets),
			line("Homes", t.Homes),
			line("Total assets", t.Assets),
			"\t",
			line("Credit cards", t.Cards),
			line("Debts", t.FormalDebt),
			line("Commitments", t.Commitments),
			line("Total liabilities", t.Liabilities),
			"\t",
			line("Net worth", t.NetWorth),
		}
		return table("\t", rows)
	})
}

type historyCmd struct {
	item string
	kind string
	json bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the net worth or debt balance over time" }
func (*historyCmd) Usage() string {
	return `findash history [-item <id> | -kind formalDebt|commitments|receivables] [-json]

  Without flags prints the daily net worth series rebuilt from the
  transaction log. With -item prints the balance of one debt, commitment
  or receivable after each payment. With -kind prints the combined
  balance of every item of that kind.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "debt, commitment or receivable ID")
	f.StringVar(&c.kind, "kind", "", "formalDebt, commitments or receivables")
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		cur := app.Config.Currency
		if c.item != "" || c.kind != "" {
			var points []history.BalancePoint
			switch history.Kind(c.kind) {
			case "":
				var err error
				if points, err = app.Reporter.DebtHistory(c.item); err != nil {
					return err
				}
			case history.KindFormalDebt, history.KindCommitments, history.KindReceivables:
				points = app.Reporter.Obligations(history.Kind(c.kind))
			default:
				return core.Invalid("kind", fmt.Errorf("unknown kind %q", c.kind))
			}
			if c.json {
				return printJSON(points)
			}
			rows := make([]string, len(points))
			for i, p := range points {
				rows[i] = fmt.Sprintf("%s\t%s", p.Date, p.Balance.Format(cur))
			}
			return table("DATE\tBALANCE", rows)
		}

		points := app.Reporter.NetWorthHistory(ctx)
		if c.json {
			return printJSON(points)
		}
		rows := make([]string, len(points))
		for i, p := range points {
			rows[i] = fmt.Sprintf("%s\t%s\t%s\t%s", p.Date, p.Assets.Format(cur), p.Liabilities.Format(cur), p.NetWorth.Format(cur))
		}
		return table("DATE\tASSETS\tLIABILITIES\tNET WORTH", rows)
	})
}

type monthCmd struct {
	account string
	month   string
	json    bool
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "summarise one account's income and spending for a month" }
func (*monthCmd) Usage() string {
	return `findash month -account <id> [-month YYYY-MM] [-json]

  Sums income and spending by category. Transfers between your own
  accounts are left out.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "account ID")
	f.StringVar(&c.month, "month", "", "month to report (default current month)")
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *monthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var month time.Time
	if c.month != "" {
		m, err := time.Parse("2006-01", c.month)
		if err != nil {
			fmt.Fprintf(stderr, "Error parsing month: %v\n", err)
			return subcommands.ExitUsageError
		}
		month = m
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		if month.IsZero() {
			month = app.Ledger.Today().Time
		}
		ov := app.Reporter.MonthOverview(c.account, month.Year(), int(month.Month()))
		if c.json {
			return printJSON(ov)
		}
		cur := app.Config.Currency
		rows := []string{
			"Income\t" + ov.Income.Format(cur),
			"Spending\t" + ov.Spending.Format(cur),
			"Net\t" + ov.Net.Format(cur),
			"\t",
		}
		for _, cat := range ov.ByCategory {
			rows = append(rows, cat.Name+"\t"+cat.Amount.Format(cur))
		}
		return table(fmt.Sprintf("%d-%02d\t", ov.Year, ov.Month), rows)
	})
}

type homeCmd struct {
	id   string
	json bool
}

func (*homeCmd) Name() string     { return "home" }
func (*homeCmd) Synopsis() string { return "show equity and mortgage costs of a home" }
func (*homeCmd) Usage() string {
	return `findash home -id <id> [-json]
`
}

func (c *homeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "home ID")
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *homeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		s, err := app.Reporter.Home(c.id)
		if err != nil {
			return err
		}
		if c.json {
			return printJSON(s)
		}
		cur := app.Config.Currency
		line := func(name string, m core.Money) string { return name + "\t" + m.Format(cur) }
		rows := []string{
			line("Current value", s.Home.CurrentValue),
			line("Mortgage balance", s.MortgageBalance),
			line("Equity", s.Equity),
			line("Net equity on sale", s.NetEquityOnSale),
			line("Cost basis", s.CostBasis),
			line("Appreciation", s.Appreciation),
		}
		if s.Mortgage != nil {
			rows = append(rows,
				line("Principal paid", s.PrincipalPaid),
				line("Interest paid", s.InterestPaid),
				line("Taxes paid", s.TaxesPaid),
				line("PMI paid", s.PMIPaid),
				line("Monthly housing cost", s.MonthlyHousingCost),
				line("Projected interest", s.ProjectedTotalInterest),
				line("Projected loan cost", s.ProjectedTotalLoanCost),
			)
		}
		return table(s.Home.Name+"\t", rows)
	})
}

type forecastCmd struct {
	account string
	days    int
	whatIf  string
	json    bool
}

func (*forecastCmd) Name() string     { return "forecast" }
func (*forecastCmd) Synopsis() string { return "project an account balance from recurring events" }
func (*forecastCmd) Usage() string {
	return `findash forecast -account <id> [-days 30|90|365] [-what-if <file>] [-json]

  Projects the balance day by day from today. -what-if reads a JSON array
  of {"name", "date", "amount"} one-off events and adds a what-if column.
`
}

func (c *forecastCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "bank account ID")
	f.IntVar(&c.days, "days", forecast.Month, "number of days to project")
	f.StringVar(&c.whatIf, "what-if", "", "JSON file with hypothetical one-off events")
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *forecastCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var whatIf []forecast.WhatIf
	if c.whatIf != "" {
		data, err := os.ReadFile(c.whatIf)
		if err == nil {
			err = json.Unmarshal(data, &whatIf)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error reading what-if events: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		points, err := app.Reporter.Forecast(c.account, whatIf, c.days)
		if err != nil {
			return err
		}
		if c.json {
			return printJSON(points)
		}
		cur := app.Config.Currency
		rows := make([]string, len(points))
		for i, p := range points {
			rows[i] = fmt.Sprintf("%s\t%s", p.Date, p.Balance.Format(cur))
			if p.WhatIfBalance != nil {
				rows[i] += "\t" + p.WhatIfBalance.Format(cur)
			}
		}
		header := "DATE\tBALANCE"
		if len(whatIf) > 0 {
			header += "\tWHAT-IF"
		}
		return table(header, rows)
	})
}
