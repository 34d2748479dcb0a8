package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/model"
)

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdmitOptions{RootOptions: rootOpts}
	var name string

	cmd := &cobra.Command{
		Use:   "edit <student-id>",
		Short: "Update a student's record",
		Long: `Update a student's record.

Only the flags given change; everything else keeps its current value.

Example:
  gdl edit 018f3c7e-... --seat 15 --shift "Morning + Evening"`,
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

			flags := cmd.Flags()
			if flags.Changed("name") {
				student.Name = name
			}
			if flags.Changed("father") {
				student.FatherName = opts.FatherName
			}
			if flags.Changed("contact") {
				student.Contact = opts.Contact
			}
			if flags.Changed("seat") {
				student.SeatNo = model.FlexString(opts.Seat)
			}
			if flags.Changed("shift") {
				student.Shift = model.Shift(opts.Shift)
			}
			if flags.Changed("fee") {
				student.MonthlyFee = model.Rupees(opts.Fee)
			}
			if flags.Changed("gender") {
				student.Gender = opts.Gender
			}
			if flags.Changed("address") {
				student.Address = opts.Address
			}

			if err := app.Engine.EditStudent(cmd.Context(), student); err != nil {
				return app.refusal(err)
			}
			return app.Out.Success(student,
				fmt.Sprintf("Updated %s. Queued for sync.", student.Name))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "student name")
	cmd.Flags().StringVar(&opts.FatherName, "father", "", "father's name")
	cmd.Flags().StringVar(&opts.Contact, "contact", "", "contact number")
	cmd.Flags().StringVar(&opts.Seat, "seat", "", "seat number")
	cmd.Flags().StringVar(&opts.Shift, "shift", "", "shift")
	cmd.Flags().Int64Var(&opts.Fee, "fee", 0, "monthly fee in rupees")
	cmd.Flags().StringVar(&opts.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&opts.Address, "address", "", "address")

	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <student-id>",
		Short: "Mark a student as left",
		Long: `Mark a student as left.

Removal is a soft delete: the record and payment history stay for audits.
Staff accounts cannot remove students.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Engine.RemoveStudent(cmd.Context(), args[0]); err != nil {
				return app.refusal(err)
			}
			return app.Out.Success(map[string]string{"id": args[0], "status": model.StatusLeft},
				"Student marked as left. Queued for sync.")
		},
	}
}
