package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"conduit/internal/app"
	"conduit/internal/domain"
)

type serveOptions struct {
	configPath string
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := serveOptions{
		configPath: domain.DefaultConfigPath,
	}

	root := &cobra.Command{
		Use:   "conduitd",
		Short: "Tool bridge routing calls to real or simulated server backends",
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the server configuration file")

	root.AddCommand(
		newServeCmd(logger, &opts),
		newValidateCmd(logger, &opts),
	)

	return root
}

func newServeCmd(logger *zap.Logger, opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tool bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application := app.New(logger)
			return application.Serve(ctx, app.ServeConfig{
				ConfigPath:      opts.configPath,
				ForceSimulation: forceSimulationFromEnv(),
			})
		},
	}
}

func newValidateCmd(logger *zap.Logger, opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without connecting servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.New(logger)
			return application.Validate(cmd.Context(), app.ValidateConfig{
				ConfigPath: opts.configPath,
			})
		},
	}
}

// forceSimulationFromEnv resolves the global force switch exactly once; the
// router receives it as an option and never touches the environment itself.
func forceSimulationFromEnv() bool {
	raw, ok := os.LookupEnv(domain.ForceSimulationEnvVar)
	if !ok {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
