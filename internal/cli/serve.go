package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/export"
	"github.com/roach88/formexport/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	source sourceFlags
	hooks  hookFlags
	Addr   string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve exports over HTTP",
		Long: `Start an HTTP server exposing GET /export, /healthz and /metrics.

Each /export request runs a fresh export with the configured options; the
include query parameter adds form fields (?include=owner,created).

Example:
  formexport serve --db ./formio.db --addr :8080
  formexport serve --config ./formexport.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	opts.source.register(cmd)
	opts.hooks.register(cmd)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, "failed to load config", err)
	}
	opts.source.apply(&cfg.Source)
	opts.hooks.apply(&cfg.Hooks)
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	logger, err := newLogger(cfg.Log, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return outputCommandError(formatter, ErrCodeConfig, "failed to build logger", err)
	}
	defer func() { _ = logger.Sync() }()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	src, closeSource, err := openSource(ctx, cfg.Source, logger)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSource, "failed to open source", err)
	}
	defer func() {
		if closeErr := closeSource(); closeErr != nil {
			logger.Error("error closing source", zap.Error(closeErr))
		}
	}()

	metrics := server.NewMetrics()
	exp := export.New(src,
		export.WithLogger(logger),
		export.WithHooks(cfg.Hooks.Build()...),
		export.WithStageObserver(metrics.ObserveStage),
	)
	srv := server.New(exp,
		server.WithDefaults(cfg.Export),
		server.WithMetrics(metrics),
		server.WithLogger(logger),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Serving exports on %s. Press Ctrl-C to stop.\n", cfg.Server.Addr)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
