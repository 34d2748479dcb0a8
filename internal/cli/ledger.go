package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/ledger"
	"github.com/gurukul/gdl/internal/model"
)

// NewLedgerCommand creates the ledger command.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	var remind bool

	cmd := &cobra.Command{
		Use:   "ledger <student-id>",
		Short: "Show a student's month-by-month fee ledger",
		Long: `Show a student's month-by-month fee ledger.

One row per calendar month from the join month through the current month.
--remind prints the fee-status message to forward to the student instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			student, ok := app.Engine.Replica().Student(args[0])
			if !ok {
				app.Out.Error("unknown-student", "no such student")
				return &ExitError{Code: ExitFailure, Message: "no such student", Printed: true}
			}

			l := ledger.Calculate(student, app.Engine.Replica().Payments(), time.Now())
			if remind {
				return app.Out.Success(
					map[string]string{"message": ledger.ReminderMessage(student, l)},
					ledger.ReminderMessage(student, l))
			}
			if rootOpts.Format == "json" {
				return app.Out.Success(map[string]any{"student": student, "ledger": l}, "")
			}
			return app.Out.Success(nil, renderLedger(student, l))
		},
	}

	cmd.Flags().BoolVar(&remind, "remind", false, "print the reminder message instead of the table")

	return cmd
}

func renderLedger(student model.Student, l ledger.Ledger) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  (seat %s, %s, %s/month)\n\n",
		student.Name, student.SeatNo, student.Shift, Money(student.MonthlyFee))

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tFEE\tSTATUS")
	for _, m := range l.Months {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, Money(m.Fee), m.Status)
	}
	w.Flush()

	fmt.Fprintf(&b, "\nTotal due:  %s\nTotal paid: %s\nBalance:    %s",
		Money(l.TotalDue), Money(l.TotalPaid), Money(l.Balance))
	return b.String()
}
