package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/model"
)

// NewExpenseCommand creates the expense command.
func NewExpenseCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date     string
		category string
	)

	cmd := &cobra.Command{
		Use:   "expense <item> <amount>",
		Short: "Record an operational expense",
		Long: `Record an operational expense.

Example:
  gdl expense "Electricity bill" 1200 --category Utilities`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("amount %q is not a number", args[1]))
			}

			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			expense, err := app.Engine.AddExpense(cmd.Context(), args[0], model.Rupees(amount), date, category)
			if err != nil {
				return app.refusal(err)
			}
			return app.Out.Success(expense,
				fmt.Sprintf("Recorded %s for %s (%s). Queued for sync.",
					Money(expense.Amount), expense.Item, expense.Category))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&category, "category", "Gen", "expense category")

	return cmd
}
