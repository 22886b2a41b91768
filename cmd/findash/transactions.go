package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"

	"findash/internal/cli"
	"findash/internal/core"
	"findash/internal/ledger"
)

type addTxCmd struct {
	account     string
	amount      core.Money
	date        core.Date
	description string
	payee       string
	category    string
}

func (*addTxCmd) Name() string     { return "add-tx" }
func (*addTxCmd) Synopsis() string { return "record a transaction on an account or card" }
func (*addTxCmd) Usage() string {
	return `findash add-tx -account <id> -amount <signed amount> [-date YYYY-MM-DD] [-desc <text>] [-payee <name>] [-category <name>]

  On a bank account a positive amount is income and a negative one an
  expense. On a card a positive amount is a charge and a negative one a
  refund.
`
}

func (c *addTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "account or card ID")
	signedVar(f, &c.amount, "amount", "signed amount")
	dateVar(f, &c.date, "date", "transaction date (default today)")
	f.StringVar(&c.description, "desc", "", "description")
	f.StringVar(&c.payee, "payee", "", "payee")
	f.StringVar(&c.category, "category", "", "category")
}

func (c *addTxCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		tx, err := app.Ledger.AddTransaction(ctx, ledger.NewTransaction{
			AccountID:   c.account,
			Amount:      c.amount,
			Date:        c.date,
			Description: c.description,
			Payee:       c.payee,
			Category:    c.category,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, tx.ID)
		return nil
	})
}

type importTxCmd struct {
	file string
	path string
}

func (*importTxCmd) Name() string     { return "import-tx" }
func (*importTxCmd) Synopsis() string { return "record a batch of transactions from a JSON file" }
func (*importTxCmd) Usage() string {
	return `findash import-tx -file <path> [-path <jsonpath>]

  Reads a JSON array of {"accountId", "amount", "date", "description",
  "payee", "category"} objects. When the array is nested inside a larger
  document, -path selects it (for example $.export.transactions). Either
  every row is recorded or none is.
`
}

func (c *importTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "JSON file with the transactions")
	f.StringVar(&c.path, "path", "", "JSONPath of the transaction array inside the file")
}

type importRow struct {
	AccountID   string     `json:"accountId"`
	Amount      core.Money `json:"amount"`
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
	Payee       string     `json:"payee"`
	Category    string     `json:"category"`
}

func (c *importTxCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	data, err := os.ReadFile(c.file)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading %s: %v\n", c.file, err)
		return subcommands.ExitUsageError
	}
	if c.path != "" {
		if data, err = selectPath(data, c.path); err != nil {
			fmt.Fprintf(stderr, "Error selecting %q in %s: %v\n", c.path, c.file, err)
			return subcommands.ExitUsageError
		}
	}
	var rows []importRow
	if err := json.Unmarshal(data, &rows); err != nil {
		fmt.Fprintf(stderr, "Error parsing %s: %v\n", c.file, err)
		return subcommands.ExitUsageError
	}

	in := make([]ledger.NewTransaction, len(rows))
	for i, r := range rows {
		in[i] = ledger.NewTransaction{
			AccountID:   r.AccountID,
			Amount:      r.Amount,
			Date:        r.Date,
			Description: r.Description,
			Payee:       r.Payee,
			Category:    r.Category,
		}
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		txs, err := app.Ledger.AddTransactions(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d transactions recorded\n", len(txs))
		return nil
	})
}

// selectPath returns the JSON encoding of the value found at path.
func selectPath(data []byte, path string) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

type editTxCmd struct {
	id          string
	amount      core.Money
	date        core.Date
	description string
	payee       string
	category    string
}

func (*editTxCmd) Name() string     { return "edit-tx" }
func (*editTxCmd) Synopsis() string { return "change a transaction and adjust the balance by the difference" }
func (*editTxCmd) Usage() string {
	return `findash edit-tx -id <id> [-amount <signed amount>] [-date YYYY-MM-DD] [-desc <text>] [-payee <name>] [-category <name>]

  Only the given flags change. Transfer legs cannot be edited (revert them
  instead), and neither can transactions that belong to a payment (use
  edit-payment).
`
}

func (c *editTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction ID")
	signedVar(f, &c.amount, "amount", "signed amount")
	dateVar(f, &c.date, "date", "transaction date")
	f.StringVar(&c.description, "desc", "", "description")
	f.StringVar(&c.payee, "payee", "", "payee")
	f.StringVar(&c.category, "category", "", "category")
}

func (c *editTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		snap, _ := app.Ledger.Snapshot()
		i := slices.IndexFunc(snap.Transactions, func(tx core.Transaction) bool { return tx.ID == c.id })
		if i < 0 {
			return core.NotFound("transaction", c.id)
		}
		tx := snap.Transactions[i]
		edit := ledger.TransactionEdit{
			Amount:      tx.Amount,
			Date:        tx.Date,
			Description: tx.Description,
			Payee:       tx.Payee,
			Category:    tx.Category,
		}
		if set["amount"] {
			edit.Amount = c.amount
		}
		if set["date"] {
			edit.Date = c.date
		}
		if set["desc"] {
			edit.Description = c.description
		}
		if set["payee"] {
			edit.Payee = c.payee
		}
		if set["category"] {
			edit.Category = c.category
		}
		_, err := app.Ledger.EditTransaction(ctx, c.id, edit)
		return err
	})
}

type deleteTxCmd struct {
	id            string
	deletePayment bool
}

func (*deleteTxCmd) Name() string     { return "delete-tx" }
func (*deleteTxCmd) Synopsis() string { return "delete a transaction and undo its balance effect" }
func (*deleteTxCmd) Usage() string {
	return `findash delete-tx -id <id> [-delete-payment]

  Deletes a transaction. When it funded a debt, commitment or receivable
  payment, -delete-payment removes the payment record too; otherwise the
  record is kept without a transaction. Transfers and card payments are
  undone with revert.
`
}

func (c *deleteTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction ID")
	f.BoolVar(&c.deletePayment, "delete-payment", false, "also delete the linked payment record")
}

func (c *deleteTxCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		return app.Ledger.DeleteTransaction(ctx, c.id, ledger.LinkedPayment{Delete: c.deletePayment})
	})
}

type transferCmd struct {
	from   string
	to     string
	amount core.Money
	date   core.Date
	notes  string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two bank accounts" }
func (*transferCmd) Usage() string {
	return `findash transfer -from <id> -to <id> -amount <amount> [-date YYYY-MM-DD] [-notes <text>]

  Records two linked transactions. The source must hold at least the amount.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "source account ID")
	f.StringVar(&c.to, "to", "", "destination account ID")
	amountVar(f, &c.amount, "amount", "amount to move")
	dateVar(f, &c.date, "date", "transfer date (default today)")
	f.StringVar(&c.notes, "notes", "", "notes appended to both descriptions")
}

func (c *transferCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		pair, err := app.Ledger.TransferBetweenAccounts(ctx, ledger.AccountTransfer{
			FromID: c.from,
			ToID:   c.to,
			Amount: c.amount,
			Date:   c.date,
			Notes:  c.notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, pair[0].TransferID)
		return nil
	})
}

type allocateCmd struct {
	parent string
	from   string
	to     string
	amount core.Money
	date   core.Date
	notes  string
}

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "move money between a parent account's sub-accounts" }
func (*allocateCmd) Usage() string {
	return `findash allocate -parent <id> -from <id|unallocated> -to <id|unallocated> -amount <amount>

  Moves money inside one parent account. Either side may be "unallocated",
  the part of the parent balance not held by any sub-account.
`
}

func (c *allocateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.parent, "parent", "", "parent account ID")
	f.StringVar(&c.from, "from", ledger.Unallocated, "source sub-account ID")
	f.StringVar(&c.to, "to", ledger.Unallocated, "destination sub-account ID")
	amountVar(f, &c.amount, "amount", "amount to move")
	dateVar(f, &c.date, "date", "transfer date (default today)")
	f.StringVar(&c.notes, "notes", "", "notes appended to both descriptions")
}

func (c *allocateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		pair, err := app.Ledger.AllocateInternal(ctx, ledger.InternalTransfer{
			ParentID: c.parent,
			From:     c.from,
			To:       c.to,
			Amount:   c.amount,
			Date:     c.date,
			Notes:    c.notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, pair[0].TransferID)
		return nil
	})
}

type payCardCmd struct {
	card    string
	account string
	amount  core.Money
	date    core.Date
}

func (*payCardCmd) Name() string     { return "pay-card" }
func (*payCardCmd) Synopsis() string { return "pay a credit card from a bank account" }
func (*payCardCmd) Usage() string {
	return `findash pay-card -card <id> -account <id> -amount <amount> [-date YYYY-MM-DD]

  Lowers both the bank balance and the amount owed on the card.
`
}

func (c *payCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.card, "card", "", "card ID")
	f.StringVar(&c.account, "account", "", "funding bank account ID")
	amountVar(f, &c.amount, "amount", "payment amount")
	dateVar(f, &c.date, "date", "payment date (default today)")
}

func (c *payCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		pair, err := app.Ledger.PayCard(ctx, ledger.CardPayment{
			CardID:    c.card,
			AccountID: c.account,
			Amount:    c.amount,
			Date:      c.date,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, pair[0].TransferID)
		return nil
	})
}

type revertCmd struct {
	tx          string
	cardPayment string
}

func (*revertCmd) Name() string     { return "revert" }
func (*revertCmd) Synopsis() string { return "undo a transfer or card payment" }
func (*revertCmd) Usage() string {
	return `findash revert (-tx <transaction id> | -card-payment <transfer id>)

  Reverses both legs of a transfer and deletes them. -tx takes either leg's
  transaction ID; -card-payment takes the shared transfer ID printed by
  pay-card.
`
}

func (c *revertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tx, "tx", "", "ID of either transfer transaction")
	f.StringVar(&c.cardPayment, "card-payment", "", "transfer ID of a card payment")
}

func (c *revertCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.tx == "") == (c.cardPayment == "") {
		fmt.Fprintln(stderr, "Error: exactly one of -tx or -card-payment is required")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, app *cli.App) error {
		if c.cardPayment != "" {
			return app.Ledger.RevertCardPayment(ctx, c.cardPayment)
		}
		return app.Ledger.RevertTransfer(ctx, c.tx)
	})
}
