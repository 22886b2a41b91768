package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"findash/internal/cli"
	"findash/internal/core"
	"findash/internal/ledger"
	"findash/internal/reports"
)

type accountsCmd struct {
	json bool
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list bank accounts and credit cards with balances" }
func (*accountsCmd) Usage() string {
	return `findash accounts [-json]

  Lists bank accounts (sub-accounts indented under their parent, followed
  by the parent's unallocated remainder) and credit cards with utilization.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		snap, _ := app.Ledger.Snapshot()
		if c.json {
			return printJSON(struct {
				Accounts []core.Account    `json:"accounts"`
				Cards    []core.CreditCard `json:"creditCards"`
			}{snap.Accounts, snap.CreditCards})
		}

		cur := app.Config.Currency
		var rows []string
		for _, a := range snap.Accounts {
			if a.IsSubAccount() {
				continue
			}
			rows = append(rows, fmt.Sprintf("%s\t%s\t%s\t%s", a.ID, a.Name, a.Type, a.Balance.Format(cur)))
			subs := snap.SubAccounts(a.ID)
			for _, s := range subs {
				rows = append(rows, fmt.Sprintf("%s\t  %s\t%s\t%s", s.ID, s.Name, s.Type, s.Balance.Format(cur)))
			}
			if len(subs) > 0 {
				rows = append(rows, fmt.Sprintf("\t  %s\t\t%s", ledger.Unallocated, snap.Unallocated(a.ID).Format(cur)))
			}
		}
		for _, card := range snap.CreditCards {
			util := reports.Utilization(card)
			rows = append(rows, fmt.Sprintf("%s\t%s\tCard (%s, %s%% %s)\t%s",
				card.ID, card.Name, card.Issuer, util.Round(1).String(), reports.UtilizationBand(util),
				card.Balance.Format(cur)))
		}
		return table("ID\tNAME\tTYPE\tBALANCE", rows)
	})
}

type addAccountCmd struct {
	name    string
	typ     string
	parent  string
	balance core.Money
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create a bank account or sub-account" }
func (*addAccountCmd) Usage() string {
	return `findash add-account -name <name> [-type Checking|Savings|Other] [-balance <amount>] [-parent <id>]

  Creates an account. A non-zero balance is posted as an "Initial Balance"
  transaction dated today. With -parent the account is a sub-account whose
  balance is part of the parent's.
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "account name")
	f.StringVar(&c.typ, "type", string(core.Checking), "account type")
	f.StringVar(&c.parent, "parent", "", "parent account ID for a sub-account")
	signedVar(f, &c.balance, "balance", "opening balance")
}

func (c *addAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		acc, err := app.Ledger.CreateAccount(ctx, ledger.NewAccount{
			Name:     c.name,
			Type:     core.AccountType(c.typ),
			Balance:  c.balance,
			ParentID: c.parent,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, acc.ID)
		return nil
	})
}

type deleteAccountCmd struct {
	id string
}

func (*deleteAccountCmd) Name() string     { return "delete-account" }
func (*deleteAccountCmd) Synopsis() string { return "delete an account with its transactions" }
func (*deleteAccountCmd) Usage() string {
	return `findash delete-account -id <id>

  Deletes the account, its sub-accounts, their transactions and categories.
`
}

func (c *deleteAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account ID")
}

func (c *deleteAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		return app.Ledger.DeleteAccount(ctx, c.id)
	})
}

type addCardCmd struct {
	name    string
	issuer  string
	limit   core.Money
	balance core.Money
	apr     string
	minimum core.Money
}

func (*addCardCmd) Name() string     { return "add-card" }
func (*addCardCmd) Synopsis() string { return "create a credit card" }
func (*addCardCmd) Usage() string {
	return `findash add-card -name <name> -issuer <issuer> -limit <amount> [-balance <amount>] [-apr <percent>] [-minimum <amount>]

  Creates a credit card. A non-zero balance is posted as an opening charge.
`
}

func (c *addCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "card name")
	f.StringVar(&c.issuer, "issuer", "", "card issuer")
	amountVar(f, &c.limit, "limit", "credit limit")
	signedVar(f, &c.balance, "balance", "amount currently owed")
	f.StringVar(&c.apr, "apr", "0", "annual percentage rate")
	amountVar(f, &c.minimum, "minimum", "minimum monthly payment")
}

func (c *addCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	apr, err := decimal.NewFromString(c.apr)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing APR: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		card, err := app.Ledger.CreateCard(ctx, ledger.NewCard{
			Name:           c.name,
			Issuer:         c.issuer,
			CreditLimit:    c.limit,
			Balance:        c.balance,
			APR:            apr,
			MinimumPayment: c.minimum,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, card.ID)
		return nil
	})
}
