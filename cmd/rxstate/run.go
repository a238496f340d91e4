package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rxstate/internal/config"
	"github.com/vango-dev/rxstate/internal/scenario"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

type runOptions struct {
	configPath  string
	metricsAddr string
	logLevel    string
	trace       bool
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print watched emissions",
		Long: `Build the streams of a scenario, apply its steps and print every
emission of the watched streams as a JSON line on stdout. Logs go to
stderr.

With --metrics-addr the process keeps serving /metrics, /healthz and
/streams after the steps finish, until interrupted.

Examples:
  rxstate run counter.yaml
  rxstate run cart.yaml --config rxstate.yaml --trace
  rxstate run cart.yaml --metrics-addr :9090 --log-level debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file (default: built-in defaults)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics on this address after the run")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Log an OpenTelemetry span for every stream operation (implies --log-level debug unless set)")

	return cmd
}

// loadConfig reads path, or returns the defaults when path is empty, then
// applies flag overrides. --trace without --log-level lowers the level to
// debug so span records are visible.
func loadConfig(path string, opts runOptions) (*config.Config, error) {
	cfg := config.New()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.trace {
		cfg.Tracing.Enabled = true
		if opts.logLevel == "" {
			cfg.Log.Level = "debug"
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScenario(ctx context.Context, path string, opts runOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts.configPath, opts)
	if err != nil {
		return err
	}

	sc, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	ctx = statestream.NewContext(ctx, a.runtime)
	env, err := sc.Build(ctx)
	if err != nil {
		return err
	}
	defer env.Dispose()

	if err := sc.Run(ctx, env, stdout); err != nil {
		return err
	}
	a.logger.Info("scenario finished", "scenario", path, "steps", len(sc.Steps))

	if cfg.Metrics.Addr == "" {
		return nil
	}
	a.logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
	return serve(ctx, cfg.Metrics.Addr, newRouter(a.registry, env))
}
