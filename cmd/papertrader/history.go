package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/trogers1052/paper-trader/internal/config"
	"github.com/trogers1052/paper-trader/internal/database"
	"github.com/trogers1052/paper-trader/internal/models"
	"github.com/trogers1052/paper-trader/internal/portfolio"
)

type historyCmd struct {
	username string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print a user's transaction ledger and cash" }
func (*historyCmd) Usage() string {
	return `papertrader history -u <username>

  Prints every buy and sell the user made, oldest first, followed by
  their current cash balance.
`
}

func (h *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&h.username, "u", "", "Username whose ledger to print.")
}

func (h *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if h.username == "" {
		fmt.Fprintln(os.Stderr, "-u is required")
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	user, err := db.GetUserByUsername(ctx, h.username)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ledger, err := db.ListTransactionsByUser(ctx, user.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	writeLedger(os.Stdout, user, ledger)
	return subcommands.ExitSuccess
}

func writeLedger(out io.Writer, user *models.User, ledger []*models.Transaction) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Side\tSymbol\tShares\tPrice\tTotal\tExecuted\t")
	for _, t := range ledger {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t\n",
			t.TradeType(),
			t.Symbol,
			t.Shares,
			portfolio.USD(t.Price),
			portfolio.USD(t.Total()),
			t.ExecutedAt.UTC().Format(time.DateTime),
		)
	}
	w.Flush()
	fmt.Fprintf(out, "\nCash: %s\n", portfolio.USD(user.Cash))
}
