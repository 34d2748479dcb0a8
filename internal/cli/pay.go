package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/model"
)

// NewPayCommand creates the pay command.
func NewPayCommand(rootOpts *RootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "pay <student-id> <amount>",
		Short: "Record a fee collection",
		Long: `Record a fee collection.

The payment applies to the local ledger at once and stays pending until the
endpoint assigns a transaction id on a later sync.

Example:
  gdl pay 018f3c7e-... 500 --mode UPI`,
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

			payment, err := app.Engine.Pay(cmd.Context(), args[0], model.Rupees(amount), mode)
			if err != nil {
				return app.refusal(err)
			}
			return app.Out.Success(payment,
				fmt.Sprintf("Collected %s from %s (%s, txn %s). Queued for sync.",
					Money(payment.Amount), payment.StudentName, payment.Mode, payment.Txn))
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "Cash", "payment mode (Cash|UPI|...)")

	return cmd
}
