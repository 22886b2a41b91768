// Command findash manages a personal finance ledger from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// register adds every findash command, grouped as in the help output.
func register(c *subcommands.Commander) {
	c.Register(&accountsCmd{}, "accounts")
	c.Register(&addAccountCmd{}, "accounts")
	c.Register(&deleteAccountCmd{}, "accounts")
	c.Register(&addCardCmd{}, "accounts")
	c.Register(&addHoldingCmd{}, "accounts")
	c.Register(&priceCmd{}, "accounts")
	c.Register(&addRetirementCmd{}, "accounts")
	c.Register(&deleteRetirementCmd{}, "accounts")
	c.Register(&contributeCmd{}, "accounts")
	c.Register(&addEventCmd{}, "accounts")

	c.Register(&addTxCmd{}, "transactions")
	c.Register(&importTxCmd{}, "transactions")
	c.Register(&editTxCmd{}, "transactions")
	c.Register(&deleteTxCmd{}, "transactions")
	c.Register(&transferCmd{}, "transactions")
	c.Register(&allocateCmd{}, "transactions")
	c.Register(&payCardCmd{}, "transactions")
	c.Register(&revertCmd{}, "transactions")

	c.Register(&addDebtCmd{}, "debts")
	c.Register(&addHomeCmd{}, "debts")
	c.Register(&payCmd{}, "debts")
	c.Register(&editPaymentCmd{}, "debts")
	c.Register(&deletePaymentCmd{}, "debts")
	c.Register(&archiveCmd{}, "debts")
	c.Register(&deleteItemCmd{}, "debts")
	c.Register(&scheduleCmd{}, "debts")

	c.Register(&networthCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&monthCmd{}, "reports")
	c.Register(&homeCmd{}, "reports")
	c.Register(&retirementCmd{}, "reports")
	c.Register(&forecastCmd{}, "reports")
}
