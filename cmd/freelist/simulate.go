package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/freelist/internal/sim"
	"github.com/ajitpratap0/freelist/pkg/config"
	"github.com/ajitpratap0/freelist/pkg/json"
	"github.com/ajitpratap0/freelist/pkg/logger"
	"github.com/ajitpratap0/freelist/pkg/metrics"
	"github.com/ajitpratap0/freelist/pkg/observability"
)

// simulateFlags holds command line overrides for a simulation run.
type simulateFlags struct {
	configFile string
	poolName   string
	mode       string
	prewarm    int
	ticks      int
	spawn      int
	seed       int64
	logLevel   string
	timeout    time.Duration
	trace      bool
	metrics    bool
	jsonOutput bool
}

func newSimulateCommand() *cobra.Command {
	var f simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a pooled spawn/expire simulation",
		Long: `Run a pooled spawn/expire simulation. Settings come from the defaults, then
the optional YAML file, then any flag given explicitly.

Example:
  freelist simulate --config freelist.yaml --mode authoring --ticks 600 --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &f)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()
			return runSimulation(ctx, cfg, f.jsonOutput, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configFile, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVar(&f.poolName, "pool", "", "Pool name used in logs, metrics and the container")
	flags.StringVar(&f.mode, "mode", "", "Container teardown mode (runtime, authoring)")
	flags.IntVar(&f.prewarm, "prewarm", 0, "Instances built before the first tick")
	flags.IntVar(&f.ticks, "ticks", 0, "Number of simulated ticks")
	flags.IntVar(&f.spawn, "spawn", 0, "Instances allocated per tick")
	flags.Int64Var(&f.seed, "seed", 0, "Random seed for lifetimes")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.DurationVar(&f.timeout, "timeout", time.Minute, "Simulation timeout")
	flags.BoolVar(&f.trace, "trace", false, "Export the run span and one span per tick to stderr")
	flags.BoolVar(&f.metrics, "metrics", false, "Dump pool metrics in Prometheus text format after the run (to stderr with --json)")
	flags.BoolVar(&f.jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

// resolveConfig layers the config file and explicitly set flags over the
// defaults and validates the result.
func resolveConfig(cmd *cobra.Command, f *simulateFlags) (*config.SimConfig, error) {
	cfg := config.NewSimConfig()
	if f.configFile != "" {
		if err := config.Load(f.configFile, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("pool") {
		cfg.Pool.Name = f.poolName
	}
	if flags.Changed("mode") {
		cfg.Pool.Mode = f.mode
	}
	if flags.Changed("prewarm") {
		cfg.Pool.Prewarm = f.prewarm
	}
	if flags.Changed("ticks") {
		cfg.Simulation.Ticks = f.ticks
	}
	if flags.Changed("spawn") {
		cfg.Simulation.SpawnPerTick = f.spawn
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = f.seed
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("trace") {
		cfg.Observability.EnableTracing = f.trace
	}
	if flags.Changed("metrics") {
		cfg.Observability.EnableMetrics = f.metrics
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runSimulation wires logging, metrics and tracing around a simulator run and
// writes the report to out. Traces go to diag. The metrics dump follows a
// text report on out but goes to diag when the report is JSON, so out stays
// a single JSON document.
func runSimulation(ctx context.Context, cfg *config.SimConfig, asJSON bool, out, diag io.Writer) error {
	if len(cfg.Logging.OutputPaths) == 0 {
		cfg.Logging.OutputPaths = []string{"stderr"}
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("component", "freelist-cli"))

	opts := []sim.Option{sim.WithLogger(log)}

	var registry *prometheus.Registry
	if cfg.Observability.EnableMetrics {
		registry = prometheus.NewRegistry()
		collector, err := metrics.NewCollector(registry)
		if err != nil {
			return err
		}
		opts = append(opts, sim.WithObserver(collector))
	}

	if cfg.Observability.EnableTracing {
		tp, err := observability.NewTracerProvider(observability.DefaultTracingConfig(version), diag)
		if err != nil {
			return err
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("failed to flush traces", zap.Error(err))
			}
		}()
		opts = append(opts, sim.WithTracer(tp.Tracer("freelist")))
	}

	s, err := sim.New(cfg, opts...)
	if err != nil {
		return err
	}
	report, err := s.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if asJSON {
		if err := json.NewEncoder(json.WithIndent("  ")).Encode(out, report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	} else {
		printReport(out, report)
	}

	if registry != nil {
		dump := out
		if asJSON {
			dump = diag
		}
		if err := metrics.Dump(dump, registry); err != nil {
			return err
		}
	}
	return nil
}

func printReport(w io.Writer, r *sim.Report) {
	fmt.Fprintf(w, "pool %q (%s mode), %d ticks\n", r.Pool, r.Mode, r.Ticks)
	fmt.Fprintf(w, "  spawned:          %d\n", r.Spawned)
	fmt.Fprintf(w, "  released:         %d\n", r.Released)
	fmt.Fprintf(w, "  peak outstanding: %d\n", r.PeakOutstanding)
	fmt.Fprintf(w, "  constructed:      %d\n", r.Stats.Constructed)
	fmt.Fprintf(w, "  hit rate:         %.1f%%\n", r.HitRate*100)
	fmt.Fprintf(w, "  destroyed:        %d\n", r.DestroyedOnDispose)
	if r.RSSBytes > 0 {
		fmt.Fprintf(w, "  rss:              %.1f MiB\n", float64(r.RSSBytes)/(1<<20))
	}
	fmt.Fprintf(w, "  duration:         %s\n", r.Duration)
}
