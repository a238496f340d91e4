package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/rxstate/pkg/statestream"
)

func TestResolveBenchConfig(t *testing.T) {
	cfg, err := resolveBenchConfig("FAST", -1, 2, 0, "")
	require.NoError(t, err)
	require.Equal(t, "fast", cfg.Profile)
	require.Equal(t, benchProfiles["fast"].Sources, cfg.Sources)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, benchProfiles["fast"].Duration, cfg.Duration)

	_, err = resolveBenchConfig("huge", -1, -1, 0, "")
	require.ErrorIs(t, err, statestream.ErrValue)
	_, err = resolveBenchConfig("fast", 0, -1, 0, "")
	require.ErrorIs(t, err, statestream.ErrValue)
	_, err = resolveBenchConfig("fast", -1, -1, -time.Second, "")
	require.ErrorIs(t, err, statestream.ErrValue)
}

func TestRunBench(t *testing.T) {
	cfg := benchConfig{Profile: "test", Sources: 3, Workers: 2, Duration: 50 * time.Millisecond}
	report, err := runBench(context.Background(), cfg)
	require.NoError(t, err)

	require.NotZero(t, report.Throughput.UpdatesTotal)
	require.Equal(t, report.Throughput.UpdatesTotal, report.Throughput.EmissionsTotal,
		"every update after the first aggregate produces one emission")
	require.Zero(t, report.Throughput.Failures)
	require.LessOrEqual(t, report.LatencyUS.Min, report.LatencyUS.P50)
	require.LessOrEqual(t, report.LatencyUS.P99, report.LatencyUS.Max)

	var summary bytes.Buffer
	writeBenchSummary(&summary, report)
	require.Contains(t, summary.String(), "Sources: 3")

	var out bytes.Buffer
	require.NoError(t, writeBenchJSON("-", &out, report))
	var decoded benchReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, report.Throughput.UpdatesTotal, decoded.Throughput.UpdatesTotal)
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.Equal(t, time.Duration(0), percentile(nil, 0.5))
	require.Equal(t, time.Duration(1), percentile(sorted, 0))
	require.Equal(t, time.Duration(5), percentile(sorted, 0.5))
	require.Equal(t, time.Duration(10), percentile(sorted, 0.99))
	require.Equal(t, time.Duration(10), percentile(sorted, 1))
}
