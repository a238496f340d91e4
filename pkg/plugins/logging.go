package plugins

import (
	"context"
	"log/slog"

	"github.com/vango-dev/rxstate/pkg/statestream"
)

// LoggingOption configures the Logging plugin.
type LoggingOption func(*loggingConfig)

type loggingConfig struct {
	level     slog.Level
	logValues bool
}

// WithLogLevel sets the level updates are logged at (default: Debug).
func WithLogLevel(level slog.Level) LoggingOption {
	return func(c *loggingConfig) {
		c.level = level
	}
}

// WithValues includes the new state in update records. Off by default
// since state may be large or sensitive.
func WithValues(enabled bool) LoggingOption {
	return func(c *loggingConfig) {
		c.logValues = enabled
	}
}

// Logging returns a plugin that writes a structured record for every
// update and disposal. A nil logger uses slog.Default().
func Logging(logger *slog.Logger, opts ...LoggingOption) *statestream.Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	config := loggingConfig{level: slog.LevelDebug}
	for _, opt := range opts {
		opt(&config)
	}

	return statestream.NewPlugin("logging", func(s statestream.Stream) statestream.Stream {
		return &loggedStream{
			Stream: s,
			logger: logger.With("stream", s.Name()),
			config: config,
		}
	})
}

type loggedStream struct {
	statestream.Stream
	logger *slog.Logger
	config loggingConfig
}

func (s *loggedStream) Next(updater statestream.Updater) error {
	err := s.Stream.Next(updater)
	if err != nil {
		s.logger.Error("state update failed", "error", err)
		return err
	}

	attrs := []any{"disposed", s.Disposed()}
	if s.config.logValues {
		attrs = append(attrs, "state", s.GetState())
	}
	s.logger.Log(context.Background(), s.config.level, "state updated", attrs...)
	return nil
}

func (s *loggedStream) Emit(name string, args ...any) error {
	s.logger.Log(context.Background(), s.config.level, "emitter called", "emitter", name, "args", len(args))
	return s.Stream.Emit(name, args...)
}

func (s *loggedStream) Dispose() {
	already := s.Disposed()
	s.Stream.Dispose()
	if !already {
		s.logger.Log(context.Background(), s.config.level, "stream disposed")
	}
}
