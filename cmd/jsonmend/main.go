// Command jsonmend repairs malformed JSON from files, stdin or HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leofalp/jsonmend/core/repair"
	"github.com/leofalp/jsonmend/internal/config"
	"github.com/leofalp/jsonmend/providers/observability"
)

// Set at build time via -ldflags.
var (
	version   = "dev"
	gitCommit = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

// app carries the global flags and the loaded configuration.
type app struct {
	configPath string
	envFiles   []string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "jsonmend",
		Short:         "Repair malformed JSON",
		Long:          "jsonmend turns almost-JSON (fenced, prose-wrapped, truncated or sloppy) into strict JSON,\nescalating to a language model only when deterministic repair is not enough.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" || cmd.Name() == "version" {
				return nil
			}
			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file (.yaml or .toml)")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "Load environment variables from these files (default .env)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newLoadCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newCacheCmd(a),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) loadConfig() error {
	if err := config.LoadEnv(a.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg
	return nil
}

// pipeline is everything a command needs to run sessions.
type pipeline struct {
	loader   *repair.Loader
	observer observability.Provider
	close    func()
}

// open builds the observer, completion router and cache from the config.
// Logs go to logOut. The caller must call close.
func (a *app) open(ctx context.Context, logOut io.Writer) (*pipeline, error) {
	observer, flush, err := a.cfg.Observer(logOut)
	if err != nil {
		return nil, err
	}

	service, err := a.cfg.Services(observer)
	if err != nil {
		return nil, err
	}

	store, closeCache, err := a.cfg.OpenCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	options := []repair.Option{repair.WithObserver(observer)}
	if store != nil {
		options = append(options, repair.WithCache(store))
	}

	return &pipeline{
		loader:   repair.NewLoader(service, a.cfg.RepairOptions(), options...),
		observer: observer,
		close: func() {
			if err := closeCache(); err != nil {
				observer.Warn(ctx, "closing cache", observability.Error(err))
			}
			_ = flush()
		},
	}, nil
}

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	fmt.Fprintln(os.Stderr, "Error:", err)
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return 1
}
