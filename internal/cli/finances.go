package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/engine"
	"github.com/gurukul/gdl/internal/ledger"
	"github.com/gurukul/gdl/internal/model"
)

// NewFinancesCommand creates the finances command.
func NewFinancesCommand(rootOpts *RootOptions) *cobra.Command {
	var expenses bool

	cmd := &cobra.Command{
		Use:   "finances",
		Short: "Show the income/expense summary",
		Long: `Show the income/expense summary.

Totals all collections against all recorded expenses. Staff accounts cannot
view finances.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.Engine.Session(cmd.Context())
			if err != nil {
				return app.refusal(err)
			}
			if user.Role == model.RoleStaff {
				return app.refusal(engine.ErrForbidden)
			}

			sum := ledger.Finances(app.Engine.Replica().Payments(), app.Engine.Replica().Expenses())
			if rootOpts.Format == "json" {
				return app.Out.Success(sum, "")
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Income:   %s\nExpenses: %s\nNet:      %s",
				Money(sum.Income), Money(sum.Expense), Money(sum.Net))
			if expenses {
				fmt.Fprintf(&b, "\n")
				w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "\nDATE\tITEM\tCATEGORY\tAMOUNT")
				for _, e := range ledger.ExpensesByDateDesc(app.Engine.Replica().Expenses()) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						model.FormatDisplay(e.Date), e.Item, e.Category, Money(e.Amount))
				}
				w.Flush()
			}
			return app.Out.Success(nil, strings.TrimRight(b.String(), "\n"))
		},
	}

	cmd.Flags().BoolVar(&expenses, "expenses", false, "include the expense list")

	return cmd
}
