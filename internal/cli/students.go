package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/model"
)

// StudentsOptions holds flags for the students command.
type StudentsOptions struct {
	*RootOptions
	Shift  string
	Search string
	All    bool
}

// NewStudentsCommand creates the students command.
func NewStudentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StudentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "students",
		Short: "List students",
		Long: `List students from the local replica.

Active students only by default; --all includes students who have left.

Example:
  gdl students --shift Morning --search kumar`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			students := filterStudents(app.Engine.Replica().Students(), opts)
			if opts.Format == "json" {
				return app.Out.Success(students, "")
			}
			return app.Out.Success(nil, renderStudents(students))
		},
	}

	cmd.Flags().StringVar(&opts.Shift, "shift", "", "filter by shift")
	cmd.Flags().StringVar(&opts.Search, "search", "", "filter by name, contact, or seat")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include students who have left")

	return cmd
}

func filterStudents(students []model.Student, opts *StudentsOptions) []model.Student {
	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	out := make([]model.Student, 0, len(students))
	for _, s := range students {
		if !opts.All && !s.Active() {
			continue
		}
		if opts.Shift != "" && !strings.Contains(string(s.Shift), opts.Shift) {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(s.Name + " " + s.Contact + " " + string(s.SeatNo))
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func renderStudents(students []model.Student) string {
	if len(students) == 0 {
		return "No students found."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSEAT\tSHIFT\tFEE\tSTATUS")
	for _, s := range students {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.SeatNo, s.Shift, Money(s.MonthlyFee), s.Status)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
