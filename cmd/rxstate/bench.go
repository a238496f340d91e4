package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rxstate/internal/errors"
	"github.com/vango-dev/rxstate/pkg/observable"
	"github.com/vango-dev/rxstate/pkg/statestream"
)

type benchProfile struct {
	Name     string
	Sources  int
	Workers  int
	Duration time.Duration
}

var benchProfiles = map[string]benchProfile{
	"fast": {
		Name:     "fast",
		Sources:  4,
		Workers:  4,
		Duration: 2 * time.Second,
	},
	"standard": {
		Name:     "standard",
		Sources:  16,
		Workers:  8,
		Duration: 10 * time.Second,
	},
	"stress": {
		Name:     "stress",
		Sources:  64,
		Workers:  32,
		Duration: 30 * time.Second,
	},
}

type benchConfig struct {
	Profile    string
	Sources    int
	Workers    int
	Duration   time.Duration
	JSONOutput string
}

func benchCmd() *cobra.Command {
	var (
		profile  string
		sources  int
		workers  int
		duration time.Duration
		jsonOut  string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure update latency through a combined stream",
		Long: `Build N source streams combined into one aggregate stream, then
let concurrent workers update random sources for a fixed duration.
Each sample is the time Next takes to apply the update and deliver
the new aggregate to its subscriber.

Profiles: fast, standard, stress. Flags override profile values.

Examples:
  rxstate bench --profile fast
  rxstate bench --sources 32 --workers 16 --duration 5s --json report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveBenchConfig(profile, sources, workers, duration, jsonOut)
			if err != nil {
				return err
			}
			report, err := runBench(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			writeBenchSummary(cmd.ErrOrStderr(), report)
			if cfg.JSONOutput == "" {
				return nil
			}
			return writeBenchJSON(cfg.JSONOutput, cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "standard", "Profile: fast|standard|stress")
	cmd.Flags().IntVar(&sources, "sources", -1, "Number of source streams")
	cmd.Flags().IntVar(&workers, "workers", -1, "Number of concurrent updating goroutines")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Benchmark duration, e.g. 5s")
	cmd.Flags().StringVar(&jsonOut, "json", "", "Write a JSON report to this path ('-' for stdout)")

	return cmd
}

func resolveBenchConfig(profile string, sources, workers int, duration time.Duration, jsonOut string) (benchConfig, error) {
	name := strings.ToLower(strings.TrimSpace(profile))
	if name == "" {
		name = "standard"
	}
	base, ok := benchProfiles[name]
	if !ok {
		return benchConfig{}, errors.Newf(errors.CategoryValue, "unknown profile %q", name)
	}

	cfg := benchConfig{
		Profile:    base.Name,
		Sources:    base.Sources,
		Workers:    base.Workers,
		Duration:   base.Duration,
		JSONOutput: strings.TrimSpace(jsonOut),
	}
	if sources != -1 {
		cfg.Sources = sources
	}
	if workers != -1 {
		cfg.Workers = workers
	}
	if duration != 0 {
		cfg.Duration = duration
	}

	if cfg.Sources <= 0 {
		return benchConfig{}, errors.Newf(errors.CategoryValue, "--sources must be > 0")
	}
	if cfg.Workers <= 0 {
		return benchConfig{}, errors.Newf(errors.CategoryValue, "--workers must be > 0")
	}
	if cfg.Duration <= 0 {
		return benchConfig{}, errors.Newf(errors.CategoryValue, "--duration must be > 0")
	}
	return cfg, nil
}

func runBench(ctx context.Context, cfg benchConfig) (benchReport, error) {
	rt := statestream.NewRuntime(
		statestream.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		statestream.WithPrimitive(observable.Basic{}),
	)

	srcs := make([]statestream.Stream, cfg.Sources)
	for i := range srcs {
		s, err := rt.New(fmt.Sprintf("source%d", i), 0)
		if err != nil {
			return benchReport{}, err
		}
		srcs[i] = s
	}
	aggregate, err := rt.New("aggregate", 0, srcs...)
	if err != nil {
		return benchReport{}, err
	}
	defer func() {
		aggregate.Dispose()
		for _, s := range srcs {
			s.Dispose()
		}
	}()

	var emissions atomic.Uint64
	sub := aggregate.State().Subscribe(observable.NextFunc(func(any) {
		emissions.Add(1)
	}))
	defer sub.Unsubscribe()
	baseline := emissions.Load()

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var (
		samplesMu sync.Mutex
		samples   []time.Duration
		updates   atomic.Uint64
		failures  atomic.Uint64
	)
	inc := statestream.Reduce(func(n int) int { return n + 1 })

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, 1024)
			for ctx.Err() == nil {
				s := srcs[rand.IntN(len(srcs))]
				t0 := time.Now()
				if err := s.Next(inc); err != nil {
					failures.Add(1)
					continue
				}
				local = append(local, time.Since(t0))
				updates.Add(1)
			}
			samplesMu.Lock()
			samples = append(samples, local...)
			samplesMu.Unlock()
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)

	slices.Sort(samples)
	return buildBenchReport(cfg, elapsed, samples, updates.Load(), emissions.Load()-baseline, failures.Load(), before, after), nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        benchRunInfo   `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyUS  latencyInfo    `json:"latency_us"`
	Throughput throughputInfo `json:"throughput"`
	GC         gcInfo         `json:"gc"`
}

type benchRunInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	Version   string `json:"rxstate_version"`
}

type workloadInfo struct {
	Profile    string `json:"profile"`
	Sources    int    `json:"sources"`
	Workers    int    `json:"workers"`
	DurationMS int64  `json:"duration_ms"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	UpdatesTotal   uint64  `json:"updates_total"`
	UpdatesPerSec  float64 `json:"updates_per_sec"`
	EmissionsTotal uint64  `json:"emissions_total"`
	Failures       uint64  `json:"failures"`
}

type gcInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	HeapLiveMB   float64 `json:"heap_live_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

func buildBenchReport(
	cfg benchConfig,
	elapsed time.Duration,
	latencies []time.Duration,
	updates uint64,
	emissions uint64,
	failures uint64,
	before runtime.MemStats,
	after runtime.MemStats,
) benchReport {
	latency := latencyInfo{}
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: us(latencies[0]),
			P50: us(percentile(latencies, 0.50)),
			P95: us(percentile(latencies, 0.95)),
			P99: us(percentile(latencies, 0.99)),
			Max: us(latencies[len(latencies)-1]),
		}
	}

	return benchReport{
		Version: "1",
		Run: benchRunInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			Version:   version,
		},
		Workload: workloadInfo{
			Profile:    cfg.Profile,
			Sources:    cfg.Sources,
			Workers:    cfg.Workers,
			DurationMS: cfg.Duration.Milliseconds(),
		},
		LatencyUS: latency,
		Throughput: throughputInfo{
			UpdatesTotal:   updates,
			UpdatesPerSec:  float64(updates) / math.Max(0.001, elapsed.Seconds()),
			EmissionsTotal: emissions,
			Failures:       failures,
		},
		GC: gcInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:   float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: float64(after.PauseTotalNs-before.PauseTotalNs) / float64(time.Millisecond),
		},
	}
}

func writeBenchSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== rxstate combine benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Sources: %d\n", report.Workload.Sources)
	fmt.Fprintf(w, "Workers: %d\n", report.Workload.Workers)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Updates: %d (%.0f/s)\n", report.Throughput.UpdatesTotal, report.Throughput.UpdatesPerSec)
	fmt.Fprintf(w, "Aggregate emissions: %d\n", report.Throughput.EmissionsTotal)
	fmt.Fprintf(w, "Failures: %d\n", report.Throughput.Failures)
	fmt.Fprintln(w)

	if report.LatencyUS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "Next latency (update -> aggregate delivered):")
		fmt.Fprintf(w, "  min: %.2f µs\n", report.LatencyUS.Min)
		fmt.Fprintf(w, "  p50: %.2f µs\n", report.LatencyUS.P50)
		fmt.Fprintf(w, "  p95: %.2f µs\n", report.LatencyUS.P95)
		fmt.Fprintf(w, "  p99: %.2f µs\n", report.LatencyUS.P99)
		fmt.Fprintf(w, "  max: %.2f µs\n", report.LatencyUS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC:")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
}

func writeBenchJSON(path string, stdout io.Writer, report benchReport) error {
	out := stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
