package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/engine"
	"github.com/gurukul/gdl/internal/model"
)

// AdmitOptions holds flags for the admit command.
type AdmitOptions struct {
	*RootOptions
	FatherName string
	Contact    string
	Seat       string
	Shift      string
	Fee        int64
	Gender     string
	Address    string
	JoinDate   string
}

// NewAdmitCommand creates the admit command.
func NewAdmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "admit <name>",
		Short: "Register a new student",
		Long: `Register a new student.

The admission applies locally at once and syncs on the next cycle; no
network is needed.

Example:
  gdl admit "Ravi Kumar" --fee 500 --shift Morning --seat 12 --contact 9876543210`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			student, err := app.Engine.Admit(cmd.Context(), engine.AdmissionInput{
				Name:       args[0],
				FatherName: opts.FatherName,
				Contact:    opts.Contact,
				SeatNo:     opts.Seat,
				Shift:      model.Shift(opts.Shift),
				MonthlyFee: model.Rupees(opts.Fee),
				Gender:     opts.Gender,
				Address:    opts.Address,
				JoinDate:   opts.JoinDate,
			})
			if err != nil {
				return app.refusal(err)
			}
			return app.Out.Success(student,
				fmt.Sprintf("Admitted %s (id %s, %s/month). Queued for sync.",
					student.Name, student.ID, Money(student.MonthlyFee)))
		},
	}

	cmd.Flags().StringVar(&opts.FatherName, "father", "", "father's name")
	cmd.Flags().StringVar(&opts.Contact, "contact", "", "contact number")
	cmd.Flags().StringVar(&opts.Seat, "seat", "", "seat number")
	cmd.Flags().StringVar(&opts.Shift, "shift", string(model.ShiftFullDay), "shift (Morning|Evening|Night|Full Day|combinations)")
	cmd.Flags().Int64Var(&opts.Fee, "fee", 0, "monthly fee in rupees")
	cmd.Flags().StringVar(&opts.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&opts.Address, "address", "", "address")
	cmd.Flags().StringVar(&opts.JoinDate, "join-date", "", "join date (YYYY-MM-DD, defaults to today)")

	return cmd
}
