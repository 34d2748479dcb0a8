package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gurukul/gdl/internal/engine"
	"github.com/gurukul/gdl/internal/remote"
	"github.com/gurukul/gdl/internal/store"
)

// App bundles the opened store, engine, and output formatter for one command
// invocation.
type App struct {
	Store  *store.Store
	Engine *engine.Engine
	Out    *OutputFormatter
}

// openApp resolves config, opens the database, and assembles the engine.
// Callers must Close.
func openApp(cmd *cobra.Command, opts *RootOptions) (*App, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if cfg.Endpoint == "" {
		return nil, NewExitError(ExitCommandError,
			"no endpoint configured: set endpoint in "+opts.ConfigPath+" or pass --endpoint")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create data directory", err)
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	eng, err := engine.Load(cmd.Context(), st, remote.New(cfg.Endpoint))
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "load state", err)
	}

	return &App{
		Store:  st,
		Engine: eng,
		Out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// Close releases the database.
func (a *App) Close() {
	a.Store.Close()
}

// refusal translates an engine refusal into an ExitFailure after printing it
// in the configured format. Storage and config errors pass through unchanged.
func (a *App) refusal(err error) error {
	switch {
	case engine.IsValidation(err):
		a.Out.Error("invalid-input", err.Error())
	case errors.Is(err, engine.ErrNoSuchStudent):
		a.Out.Error("unknown-student", err.Error())
	case errors.Is(err, engine.ErrNotLoggedIn):
		a.Out.Error("not-logged-in", "log in first with: gdl login")
	case errors.Is(err, engine.ErrForbidden):
		a.Out.Error("forbidden", err.Error())
	case remote.IsRejection(err):
		a.Out.Error("rejected", err.Error())
	case errors.Is(err, remote.ErrOffline):
		a.Out.Error("offline", "endpoint unreachable")
	default:
		return err
	}
	return &ExitError{Code: ExitFailure, Message: err.Error(), Printed: true}
}
