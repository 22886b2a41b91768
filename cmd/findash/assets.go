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
)

type addHoldingCmd struct {
	kind     string
	account  string
	symbol   string
	name     string
	quantity string
	price    core.Money
	cost     core.Money
}

func (*addHoldingCmd) Name() string     { return "add-holding" }
func (*addHoldingCmd) Synopsis() string { return "add a stock, crypto or retirement holding" }
func (*addHoldingCmd) Usage() string {
	return `findash add-holding -kind stocks|crypto|retirement -symbol <ticker> -quantity <n> -price <amount> [-cost <amount>] [-name <name>] [-account <id>]

  Retirement holdings need -account naming a retirement account.
`
}

func (c *addHoldingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", string(ledger.Stocks), "holding kind")
	f.StringVar(&c.account, "account", "", "retirement account ID")
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol")
	f.StringVar(&c.name, "name", "", "display name (default symbol)")
	f.StringVar(&c.quantity, "quantity", "0", "units held")
	amountVar(f, &c.price, "price", "current unit price")
	amountVar(f, &c.cost, "cost", "total cost basis")
}

func (c *addHoldingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	qty, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing quantity: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		kind, err := ledger.ParseHoldingKind(c.kind)
		if err != nil {
			return err
		}
		h, err := app.Ledger.AddHolding(ctx, kind, core.Holding{
			Symbol:    c.symbol,
			Name:      c.name,
			Quantity:  qty,
			Price:     c.price,
			CostBasis: c.cost,
			AccountID: c.account,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, h.ID)
		return nil
	})
}

type priceCmd struct {
	kind  string
	id    string
	price core.Money
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "set the current price of a holding" }
func (*priceCmd) Usage() string {
	return `findash price -kind stocks|crypto|retirement -id <id> -price <amount>
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", string(ledger.Stocks), "holding kind")
	f.StringVar(&c.id, "id", "", "holding ID")
	amountVar(f, &c.price, "price", "current unit price")
}

func (c *priceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		kind, err := ledger.ParseHoldingKind(c.kind)
		if err != nil {
			return err
		}
		return app.Ledger.UpdateHoldingPrice(ctx, kind, c.id, c.price)
	})
}

type addEventCmd struct {
	account   string
	name      string
	expense   bool
	amount    core.Money
	frequency string
	start     core.Date
}

func (*addEventCmd) Name() string     { return "add-event" }
func (*addEventCmd) Synopsis() string { return "add a recurring income or expense used by forecasts" }
func (*addEventCmd) Usage() string {
	return `findash add-event -account <id> -name <name> -amount <amount> -frequency Daily|Weekly|Bi-Weekly|Monthly|Yearly -start YYYY-MM-DD [-expense]

  Recurring events only feed the forecast; nothing is posted to the account.
`
}

func (c *addEventCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "bank account ID")
	f.StringVar(&c.name, "name", "", "event name")
	f.BoolVar(&c.expense, "expense", false, "the event is an expense rather than income")
	amountVar(f, &c.amount, "amount", "amount per occurrence")
	f.StringVar(&c.frequency, "frequency", string(core.Monthly), "how often the event repeats")
	dateVar(f, &c.start, "start", "first occurrence")
}

func (c *addEventCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ := core.Income
	if c.expense {
		typ = core.Expense
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		start := c.start
		if start.IsZero() {
			start = app.Ledger.Today()
		}
		e, err := app.Ledger.AddRecurringEvent(ctx, core.RecurringEvent{
			Name:      c.name,
			Type:      typ,
			Amount:    c.amount,
			Frequency: core.Frequency(c.frequency),
			StartDate: start,
			AccountID: c.account,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, e.ID)
		return nil
	})
}
