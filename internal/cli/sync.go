package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/engine"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Watch    bool
	Interval time.Duration
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push queued mutations and pull remote changes",
		Long: `Push queued mutations and pull remote changes.

Runs one full cycle: the outbound queue drains in order, then remote deltas
since the last checkpoint are merged. Going offline mid-cycle is not an
error; queued work waits for the next cycle.

With --watch the cycle repeats until interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "keep syncing on an interval")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 30*time.Second, "watch interval")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	app, err := openApp(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	if opts.Watch {
		err := app.Engine.Watch(cmd.Context(), opts.Interval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	queued := app.Engine.Queue().Len()
	if err := app.Engine.Sync(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "sync", err)
	}

	remaining := app.Engine.Queue().Len()
	status := app.Engine.Status()
	data := map[string]any{
		"status":  status.String(),
		"pushed":  queued - remaining,
		"pending": remaining,
	}
	switch status {
	case engine.StatusOffline:
		return app.Out.Success(data,
			fmt.Sprintf("Offline. %d mutation(s) waiting for connectivity.", remaining))
	case engine.StatusRejected:
		return app.Out.Success(data,
			fmt.Sprintf("Endpoint refused the delta pull; local data unchanged. Pushed %d, %d pending.",
				queued-remaining, remaining))
	default:
		return app.Out.Success(data,
			fmt.Sprintf("Synced. Pushed %d, %d pending.", queued-remaining, remaining))
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show session, queue, and checkpoint state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			who := "not logged in"
			user, err := app.Engine.Session(ctx)
			if err == nil {
				who = fmt.Sprintf("%s (%s)", user.Name, user.Role)
			} else if !errors.Is(err, engine.ErrNotLoggedIn) {
				return WrapExitError(ExitCommandError, "read session", err)
			}

			checkpoint, err := app.Store.Checkpoint(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "read checkpoint", err)
			}
			lastSync := "never"
			if checkpoint > 0 {
				lastSync = time.UnixMilli(checkpoint).Format("02/01/2006 15:04")
			}

			letters, err := app.Store.DeadLetters(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "read dead letters", err)
			}

			data := map[string]any{
				"user":        who,
				"queued":      app.Engine.Queue().Len(),
				"deadLetters": len(letters),
				"lastSync":    checkpoint,
				"students":    len(app.Engine.Replica().Students()),
			}
			text := fmt.Sprintf("User:         %s\nQueued:       %d\nDead letters: %d\nLast sync:    %s\nStudents:     %d",
				who, app.Engine.Queue().Len(), len(letters), lastSync, len(app.Engine.Replica().Students()))
			return app.Out.Success(data, text)
		},
	}
}
