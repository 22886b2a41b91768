package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"findash/internal/cli"
	"findash/internal/core"
	"findash/internal/reports"
)

type addRetirementCmd struct {
	name string
	typ  string
}

func (*addRetirementCmd) Name() string     { return "add-retirement" }
func (*addRetirementCmd) Synopsis() string { return "add a retirement account" }
func (*addRetirementCmd) Usage() string {
	types := make([]string, len(core.RetirementAccountTypes))
	for i, t := range core.RetirementAccountTypes {
		types[i] = string(t)
	}
	return fmt.Sprintf(`findash add-retirement -name <name> [-type <type>]

  Types: %s
`, strings.Join(types, ", "))
}

func (c *addRetirementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "account name")
	f.StringVar(&c.typ, "type", string(core.OtherRetirement), "plan type")
}

func (c *addRetirementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		a, err := app.Ledger.CreateRetirementAccount(ctx, c.name, core.RetirementAccountType(c.typ))
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, a.ID)
		return nil
	})
}

type deleteRetirementCmd struct {
	id string
}

func (*deleteRetirementCmd) Name() string     { return "delete-retirement" }
func (*deleteRetirementCmd) Synopsis() string { return "delete a retirement account" }
func (*deleteRetirementCmd) Usage() string {
	return `findash delete-retirement -id <id>

  Deletes the account with its holdings and contributions.
`
}

func (c *deleteRetirementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "retirement account ID")
}

func (c *deleteRetirementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		return app.Ledger.DeleteRetirementAccount(ctx, c.id)
	})
}

type contributeCmd struct {
	account string
	amount  core.Money
	date    core.Date
}

func (*contributeCmd) Name() string     { return "contribute" }
func (*contributeCmd) Synopsis() string { return "record a retirement contribution" }
func (*contributeCmd) Usage() string {
	return `findash contribute -account <id> -amount <amount> -date YYYY-MM-DD

  Contributions are tracked per retirement account and move no bank balance.
`
}

func (c *contributeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "retirement account ID")
	amountVar(f, &c.amount, "amount", "amount contributed")
	dateVar(f, &c.date, "date", "contribution date")
}

func (c *contributeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		ct, err := app.Ledger.AddContribution(ctx, core.Contribution{AccountID: c.account, Amount: c.amount, Date: c.date})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, ct.ID)
		return nil
	})
}

type retirementCmd struct {
	json bool
}

func (*retirementCmd) Name() string     { return "retirement" }
func (*retirementCmd) Synopsis() string { return "show retirement accounts with value and contributions" }
func (*retirementCmd) Usage() string {
	return `findash retirement [-json]
`
}

func (c *retirementCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *retirementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		summaries := app.Reporter.Retirement()
		if c.json {
			return printJSON(struct {
				Accounts []reports.RetirementSummary `json:"accounts"`
			}{summaries})
		}
		cur := app.Config.Currency
		rows := make([]string, 0, len(summaries))
		for _, s := range summaries {
			rows = append(rows, strings.Join([]string{
				s.Account.ID, s.Account.Name, string(s.Account.Type),
				s.Value.Format(cur), s.Gain.Format(cur), s.Contributions.Format(cur),
			}, "\t"))
		}
		return table("ID\tNAME\tTYPE\tVALUE\tGAIN\tCONTRIBUTED", rows)
	})
}
