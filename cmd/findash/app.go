package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"findash/internal/cli"
	"findash/internal/core"
	applog "findash/internal/log"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// run opens the ledger, hands it to fn and maps the outcome to an exit
// status. Rejected input is a usage error; anything else is a failure.
func run(ctx context.Context, fn func(ctx context.Context, app *cli.App) error) subcommands.ExitStatus {
	app, err := cli.Open(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	ctx = applog.NewContext(ctx, app.Log.WithComponent(applog.ComponentCLI))
	if err := fn(ctx, app); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Command failed",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorType(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// amountFlag accepts a strictly positive amount.
type amountFlag struct{ v *core.Money }

func (f amountFlag) String() string {
	if f.v == nil {
		return ""
	}
	return f.v.String()
}

func (f amountFlag) Set(s string) error {
	m, err := core.ParseAmount(s)
	if err != nil {
		return err
	}
	*f.v = m
	return nil
}

// signedFlag accepts any amount, negative for outflows.
type signedFlag struct{ v *core.Money }

func (f signedFlag) String() string {
	if f.v == nil {
		return ""
	}
	return f.v.String()
}

func (f signedFlag) Set(s string) error {
	m, err := core.ParseMoney(s)
	if err != nil {
		return err
	}
	*f.v = m.Round(2)
	return nil
}

// dateFlag accepts YYYY-MM-DD. Unset means today.
type dateFlag struct{ v *core.Date }

func (f dateFlag) String() string {
	if f.v == nil || f.v.IsZero() {
		return ""
	}
	return f.v.String()
}

func (f dateFlag) Set(s string) error {
	d, err := core.ParseDate(s)
	if err != nil {
		return err
	}
	*f.v = d
	return nil
}

func amountVar(fs *flag.FlagSet, p *core.Money, name, usage string) {
	fs.Var(amountFlag{p}, name, usage)
}

func signedVar(fs *flag.FlagSet, p *core.Money, name, usage string) {
	fs.Var(signedFlag{p}, name, usage)
}

func dateVar(fs *flag.FlagSet, p *core.Date, name, usage string) {
	fs.Var(dateFlag{p}, name, usage)
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes tab-separated rows aligned in columns.
func table(header string, rows []string) error {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	for _, r := range rows {
		fmt.Fprintln(w, r)
	}
	return w.Flush()
}
