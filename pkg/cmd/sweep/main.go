// Command sweep runs every configured interaction × method × view × k
// combination and writes the evaluation tables, labeled partitions and
// run manifest to the output directory.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/interaction-clustering/pkg/config"
	"github.com/gilchrisn/interaction-clustering/pkg/metrics"
	"github.com/gilchrisn/interaction-clustering/pkg/pipeline"
	"github.com/gilchrisn/interaction-clustering/pkg/sink"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	outputDir := flag.String("output", "", "output directory (overrides output.dir)")
	interactions := flag.String("interactions", "", "comma-separated interactions (overrides sweep.interactions)")
	methods := flag.String("methods", "", "comma-separated methods (overrides sweep.methods)")
	workers := flag.Int("workers", 0, "concurrent combinations (overrides sweep.workers)")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *outputDir != "" {
		cfg.Set("output.dir", *outputDir)
	}
	if *interactions != "" {
		cfg.Set("sweep.interactions", strings.Split(*interactions, ","))
	}
	if *methods != "" {
		cfg.Set("sweep.methods", strings.Split(*methods, ","))
	}
	if *workers > 0 {
		cfg.Set("sweep.workers", *workers)
	}
	log.Logger = log.Logger.Level(cfg.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := cfg.SweepOptions()
	if opts.OutputDir == "" {
		log.Fatal().Msg("output.dir (or --output) is required")
	}

	source, closeSource, err := cfg.Provider(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open input source")
	}
	defer closeSource()

	out, err := sink.NewCSVDir(opts.OutputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	sweep := pipeline.NewSweep(source, out, cfg.Methods(log.Logger), opts, log.Logger)
	sweep.Metrics = metrics.NewCollector()
	sweep.Progress = func(done, total int) {
		log.Debug().Int("done", done).Int("total", total).Msg("Progress")
	}

	log.Info().
		Strs("methods", opts.Methods).
		Strs("views", opts.Views).
		Ints("cluster_counts", opts.ClusterCounts).
		Int("workers", opts.Workers).
		Str("output", opts.OutputDir).
		Msg("Starting sweep")

	report, err := sweep.Run(ctx)
	if report != nil {
		log.Info().
			Str("run_id", report.RunID).
			Int("runs", len(report.Runs)).
			Int("failures", len(report.Failures)).
			Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
			Msg("Sweep finished")
		for _, f := range report.Failures {
			log.Warn().Str("run", f.Name).Str("error", f.Error).Msg("Combination failed")
		}
	}
	if err != nil {
		stop()
		closeSource()
		log.Fatal().Err(err).Msg("Sweep aborted")
	}
}
