package main

import (
	"context"
	"flag"
	"fmt"
	"slices"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"findash/internal/cli"
	"findash/internal/core"
	"findash/internal/ledger"
)

type addDebtCmd struct {
	kind    string
	name    string
	from    string
	amount  core.Money
	rate    string
	monthly core.Money
	due     core.Date
}

func (*addDebtCmd) Name() string     { return "add-debt" }
func (*addDebtCmd) Synopsis() string { return "create a debt, commitment or receivable" }
func (*addDebtCmd) Usage() string {
	return `findash add-debt [-kind debt|commitment|receivable] -name <name> -amount <amount> [-rate <percent>] [-monthly <amount>] [-due YYYY-MM-DD] [-from <name>]

  Debts and commitments are liabilities; receivables are money owed to you
  (-from names the debtor).
`
}

func (c *addDebtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "debt", "debt, commitment or receivable")
	f.StringVar(&c.name, "name", "", "name")
	f.StringVar(&c.from, "from", "", "who owes a receivable")
	amountVar(f, &c.amount, "amount", "original amount")
	f.StringVar(&c.rate, "rate", "0", "annual interest rate of a debt, in percent")
	amountVar(f, &c.monthly, "monthly", "scheduled monthly payment of a debt")
	dateVar(f, &c.due, "due", "next payment or due date")
}

func (c *addDebtCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rate, err := decimal.NewFromString(c.rate)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing rate: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		var id string
		switch c.kind {
		case "debt":
			d, err := app.Ledger.CreateDebt(ctx, ledger.NewDebt{
				Name:            c.name,
				TotalAmount:     c.amount,
				InterestRate:    rate,
				MonthlyPayment:  c.monthly,
				NextPaymentDate: c.due,
			})
			if err != nil {
				return err
			}
			id = d.ID
		case "commitment":
			cm, err := app.Ledger.CreateCommitment(ctx, ledger.NewCommitment{Name: c.name, Amount: c.amount, DueDate: c.due})
			if err != nil {
				return err
			}
			id = cm.ID
		case "receivable":
			r, err := app.Ledger.CreateReceivable(ctx, ledger.NewReceivable{Name: c.name, From: c.from, Amount: c.amount, DueDate: c.due})
			if err != nil {
				return err
			}
			id = r.ID
		default:
			return core.Invalid("kind", fmt.Errorf("unknown kind %q", c.kind))
		}
		fmt.Fprintln(stdout, id)
		return nil
	})
}

type addHomeCmd struct {
	name     string
	price    core.Money
	bought   core.Date
	value    core.Money
	down     core.Money
	closing  core.Money
	rate     string
	years    int
	tax      core.Money
	insure   core.Money
	pmi      core.Money
	firstDue core.Date
}

func (*addHomeCmd) Name() string     { return "add-home" }
func (*addHomeCmd) Synopsis() string { return "create a home, optionally with its mortgage" }
func (*addHomeCmd) Usage() string {
	return `findash add-home -name <name> -price <amount> -bought YYYY-MM-DD [-value <amount>] [-down <amount>] [-closing <amount>]
                 [-years <n> -rate <percent> [-tax <amount>] [-insurance <amount>] [-pmi <amount>] [-first-due YYYY-MM-DD]]

  With -years the home gets a mortgage for price minus down payment. Its
  monthly principal and interest payment is computed from rate and term.
`
}

func (c *addHomeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "home name")
	amountVar(f, &c.price, "price", "purchase price")
	dateVar(f, &c.bought, "bought", "purchase date")
	amountVar(f, &c.value, "value", "current value (default purchase price)")
	amountVar(f, &c.down, "down", "down payment")
	amountVar(f, &c.closing, "closing", "closing costs")
	f.StringVar(&c.rate, "rate", "0", "mortgage interest rate in percent")
	f.IntVar(&c.years, "years", 0, "mortgage term in years; 0 for no mortgage")
	amountVar(f, &c.tax, "tax", "monthly property tax escrow")
	amountVar(f, &c.insure, "insurance", "monthly insurance escrow")
	amountVar(f, &c.pmi, "pmi", "monthly PMI")
	dateVar(f, &c.firstDue, "first-due", "first mortgage payment date")
}

func (c *addHomeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rate, err := decimal.NewFromString(c.rate)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing rate: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		h, err := app.Ledger.CreateHome(ctx, ledger.NewHome{
			Name:          c.name,
			PurchasePrice: c.price,
			PurchaseDate:  c.bought,
			CurrentValue:  c.value,
			DownPayment:   c.down,
			ClosingCosts:  c.closing,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, h.ID)
		if c.years == 0 {
			return nil
		}
		d, err := app.Ledger.AttachMortgage(ctx, h.ID, ledger.MortgageTerms{
			InterestRate:     rate,
			TermYears:        c.years,
			NextPaymentDate:  c.firstDue,
			MonthlyTax:       c.tax,
			MonthlyInsurance: c.insure,
			MonthlyPMI:       c.pmi,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s per month\n", d.ID, d.MonthlyPayment.Add(d.Escrow()).Format(app.Config.Currency))
		return nil
	})
}

type payCmd struct {
	item    string
	account string
	amount  core.Money
	date    core.Date
	extra   bool
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "record a payment on a debt, commitment or receivable" }
func (*payCmd) Usage() string {
	return `findash pay -item <id> -account <id> -amount <amount> [-date YYYY-MM-DD] [-extra]

  Posts the payment to the account and records it against the item. For a
  receivable the account receives the money. Mortgage payments are split
  into interest, escrow and principal; -extra sends the whole amount to
  principal.
`
}

func (c *payCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "debt, commitment or receivable ID")
	f.StringVar(&c.account, "account", "", "bank account ID")
	amountVar(f, &c.amount, "amount", "payment amount")
	dateVar(f, &c.date, "date", "payment date (default today)")
	f.BoolVar(&c.extra, "extra", false, "extra principal payment")
}

func (c *payCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ := core.PaymentRegular
	if c.extra {
		typ = core.PaymentExtra
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		rec, err := app.Ledger.RecordPayment(ctx, ledger.PaymentInput{
			ItemID:      c.item,
			AccountID:   c.account,
			Amount:      c.amount,
			Date:        c.date,
			PaymentType: typ,
		})
		if err != nil {
			return err
		}
		if b := rec.Breakdown; b != nil {
			cur := app.Config.Currency
			fmt.Fprintf(stdout, "%s\tprincipal %s\tinterest %s\tescrow %s\n",
				rec.ID, b.Principal.Format(cur), b.Interest.Format(cur), b.Escrow.Format(cur))
			return nil
		}
		fmt.Fprintln(stdout, rec.ID)
		return nil
	})
}

type editPaymentCmd struct {
	id      string
	account string
	amount  core.Money
	date    core.Date
	typ     string
}

func (*editPaymentCmd) Name() string     { return "edit-payment" }
func (*editPaymentCmd) Synopsis() string { return "change a recorded payment and its transaction" }
func (*editPaymentCmd) Usage() string {
	return `findash edit-payment -id <id> [-account <id>] [-amount <amount>] [-date YYYY-MM-DD] [-type regular|extra]

  Only the given flags change. The linked transaction moves with the
  payment and mortgage payments are re-amortized.
`
}

func (c *editPaymentCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "payment ID")
	f.StringVar(&c.account, "account", "", "bank account ID")
	amountVar(f, &c.amount, "amount", "payment amount")
	dateVar(f, &c.date, "date", "payment date")
	f.StringVar(&c.typ, "type", "", "regular or extra")
}

func (c *editPaymentCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		snap, _ := app.Ledger.Snapshot()
		i := slices.IndexFunc(snap.PaymentRecords, func(p core.PaymentRecord) bool { return p.ID == c.id })
		if i < 0 {
			return core.NotFound("payment", c.id)
		}
		rec := snap.PaymentRecords[i]
		in := ledger.PaymentInput{AccountID: rec.AccountID, Amount: rec.Amount, PaymentType: core.PaymentType(c.typ)}
		if set["account"] {
			in.AccountID = c.account
		}
		if set["amount"] {
			in.Amount = c.amount
		}
		if set["date"] {
			in.Date = c.date
		}
		_, err := app.Ledger.EditPayment(ctx, c.id, in)
		return err
	})
}

type deletePaymentCmd struct {
	id     string
	keepTx bool
}

func (*deletePaymentCmd) Name() string     { return "delete-payment" }
func (*deletePaymentCmd) Synopsis() string { return "delete a payment record" }
func (*deletePaymentCmd) Usage() string {
	return `findash delete-payment -id <id> [-keep-tx]

  Deletes the payment and its transaction, restoring the account balance.
  With -keep-tx the transaction stays on the account.
`
}

func (c *deletePaymentCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "payment ID")
	f.BoolVar(&c.keepTx, "keep-tx", false, "keep the linked transaction")
}

func (c *deletePaymentCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		return app.Ledger.DeletePayment(ctx, c.id, !c.keepTx)
	})
}

type archiveCmd struct {
	item string
	undo bool
}

func (*archiveCmd) Name() string     { return "archive" }
func (*archiveCmd) Synopsis() string { return "mark a debt, commitment or receivable as paid off" }
func (*archiveCmd) Usage() string {
	return `findash archive -item <id> [-undo]

  Archived items no longer count toward net worth. -undo makes the item
  active again.
`
}

func (c *archiveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "debt, commitment or receivable ID")
	f.BoolVar(&c.undo, "undo", false, "unarchive instead")
}

func (c *archiveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		if c.undo {
			return app.Ledger.Unarchive(ctx, c.item)
		}
		return app.Ledger.Archive(ctx, c.item)
	})
}

type deleteItemCmd struct {
	item string
}

func (*deleteItemCmd) Name() string     { return "delete-item" }
func (*deleteItemCmd) Synopsis() string { return "delete a debt, commitment or receivable with its payments" }
func (*deleteItemCmd) Usage() string {
	return `findash delete-item -item <id>

  Transactions created by the item's payments stay on their accounts.
`
}

func (c *deleteItemCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item, "item", "", "debt, commitment or receivable ID")
}

func (c *deleteItemCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		return app.Ledger.DeleteItem(ctx, c.item)
	})
}

type scheduleCmd struct {
	debt string
	json bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "show the amortized payments of a debt" }
func (*scheduleCmd) Usage() string {
	return `findash schedule -debt <id> [-json]

  Lists the debt's payments in date order with their principal, interest
  and escrow split and the remaining balance after each.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.debt, "debt", "", "debt ID")
	f.BoolVar(&c.json, "json", false, "print JSON instead of a table")
}

func (c *scheduleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		rows, err := app.Reporter.Schedule(c.debt)
		if err != nil {
			return err
		}
		if c.json {
			return printJSON(rows)
		}
		cur := app.Config.Currency
		lines := make([]string, len(rows))
		for i, r := range rows {
			p := r.Payment
			var b core.Breakdown
			if p.Breakdown != nil {
				b = *p.Breakdown
			} else {
				b.Principal = p.Amount
			}
			lines[i] = fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s",
				p.Date, p.PaymentType, p.Amount.Format(cur),
				b.Principal.Format(cur), b.Interest.Format(cur), b.Escrow.Format(cur), r.Balance.Format(cur))
		}
		return table("DATE\tTYPE\tAMOUNT\tPRINCIPAL\tINTEREST\tESCROW\tBALANCE", lines)
	})
}
