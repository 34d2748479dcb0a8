package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/ledger"
)

// NewSeatsCommand creates the seats command.
func NewSeatsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		capacity int
		free     bool
	)

	cmd := &cobra.Command{
		Use:   "seats",
		Short: "Show the seat occupancy map",
		Long: `Show the seat occupancy map.

A seat is Full when active students cover all three day slots (morning,
evening, night); anything less is Partial.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			seats := ledger.SeatMap(app.Engine.Replica().Students(), capacity)
			if free {
				kept := seats[:0]
				for _, s := range seats {
					if s.Status != ledger.SeatFull {
						kept = append(kept, s)
					}
				}
				seats = kept
			}
			if rootOpts.Format == "json" {
				return app.Out.Success(seats, "")
			}
			return app.Out.Success(nil, renderSeats(seats))
		},
	}

	cmd.Flags().IntVar(&capacity, "capacity", ledger.DefaultSeatCapacity, "number of seats in the hall")
	cmd.Flags().BoolVar(&free, "free", false, "only seats with an open slot")

	return cmd
}

func renderSeats(seats []ledger.SeatInfo) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEAT\tSTATUS\tOCCUPANTS")
	for _, s := range seats {
		names := make([]string, 0, len(s.Occupants))
		for _, o := range s.Occupants {
			names = append(names, fmt.Sprintf("%s (%s)", o.Name, o.Shift))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Seat, s.Status, strings.Join(names, ", "))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
