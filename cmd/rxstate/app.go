package main

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/rxstate/internal/config"
	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/plugins"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

// app is a runtime configured from a Config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	runtime  *statestream.Runtime
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	logger, err := cfg.Logger(logOut)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		runtime: statestream.NewRuntime(
			statestream.WithLogger(logger.With("component", "statestream")),
		),
	}

	var installed []*statestream.Plugin
	if cfg.Updates.Log {
		installed = append(installed, plugins.Logging(logger,
			plugins.WithLogLevel(slog.LevelInfo),
			plugins.WithValues(cfg.Updates.Values),
		))
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := plugins.NewMetrics(
			plugins.WithRegistry(a.registry),
			plugins.WithNamespace(cfg.Metrics.Namespace),
			plugins.WithSubsystem(cfg.Metrics.Subsystem),
		)
		installed = append(installed, m.Plugin())
	}
	if cfg.Tracing.Enabled {
		installed = append(installed, plugins.OpenTelemetry(
			plugins.WithTracerName(cfg.Tracing.TracerName),
			plugins.WithTracerProvider(newLogTracerProvider(logger)),
		))
	}

	if err := a.runtime.Setup(statestream.SetupOptions{
		Primitive: observable.Basic{},
		Plugins:   installed,
	}); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	a.runtime.Teardown()
}
