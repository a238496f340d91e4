package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rxstate/internal/scenario"
	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario without running its steps",
		Long: `Parse a scenario file and build its streams without applying
any step. Exits non-zero with a formatted error when a reference does
not resolve or a stream cannot be built.

Examples:
  rxstate validate counter.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}

			rt := statestream.NewRuntime(
				statestream.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
				statestream.WithPrimitive(observable.Basic{}),
			)
			env, err := sc.Build(statestream.NewContext(context.Background(), rt))
			if err != nil {
				return err
			}
			env.Dispose()

			success(cmd, "%s: %d streams, %d steps", args[0], len(sc.Streams), len(sc.Steps))
			return nil
		},
	}
}
