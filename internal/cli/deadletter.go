package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewDeadLetterCommand creates the deadletter command.
func NewDeadLetterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deadletter",
		Short: "List mutations abandoned after repeated rejection",
		Long: `List mutations abandoned after repeated rejection.

A queued mutation the endpoint keeps refusing is parked here instead of
blocking the queue forever. Entries are kept for manual review; the data
they carry was already applied locally.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			letters, err := app.Store.DeadLetters(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "read dead letters", err)
			}
			if rootOpts.Format == "json" {
				return app.Out.Success(letters, "")
			}
			if len(letters) == 0 {
				return app.Out.Success(nil, "No dead letters.")
			}

			var b strings.Builder
			w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tACTION\tATTEMPTS\tFAILED\tREASON")
			for _, dl := range letters {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					dl.ID, dl.Envelope.Action, dl.Attempts,
					dl.FailedAt.Format("02/01/2006 15:04"), dl.Reason)
			}
			w.Flush()
			return app.Out.Success(nil, strings.TrimRight(b.String(), "\n"))
		},
	}
}
