package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/ledger"
)

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Show the daily collection register",
		Long: `Show the daily collection register.

Payments grouped by day, newest first, with today's total on top.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			reg := ledger.DailyRegister(app.Engine.Replica().Payments(), time.Now())
			if days > 0 && len(reg.Days) > days {
				reg.Days = reg.Days[:days]
			}
			if rootOpts.Format == "json" {
				return app.Out.Success(reg, "")
			}
			return app.Out.Success(nil, renderRegister(reg))
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "number of days to show (0 for all)")

	return cmd
}

func renderRegister(reg ledger.Register) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's collection: %s  (%d transactions overall)\n",
		Money(reg.TodayTotal), reg.Transactions)

	for _, day := range reg.Days {
		fmt.Fprintf(&b, "\n%s\n", day.Date)
		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for _, p := range day.Payments {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\ttxn %s\n",
				p.StudentName, Money(p.Amount), p.Mode, p.CollectedBy, p.Txn)
		}
		w.Flush()
	}
	return strings.TrimRight(b.String(), "\n")
}
