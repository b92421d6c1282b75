// Command centrality exports PageRank, betweenness and closeness scores of
// the category subgraph of every configured interaction.
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
	"github.com/gilchrisn/interaction-clustering/pkg/pipeline"
	"github.com/gilchrisn/interaction-clustering/pkg/sink"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	outputDir := flag.String("output", "", "output directory (overrides output.dir)")
	interactions := flag.String("interactions", "", "comma-separated interactions (overrides sweep.interactions)")
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
	summary, err := sweep.RunCentrality(ctx, cfg.Centrality())
	if summary != nil {
		for interaction, exported := range summary.Exported {
			log.Info().Str("interaction", string(interaction)).Int("metrics", len(exported)).Msg("Scores exported")
		}
		for interaction, ferr := range summary.Failed {
			log.Warn().Str("interaction", string(interaction)).Err(ferr).Msg("Interaction skipped")
		}
	}
	if err != nil {
		stop()
		closeSource()
		log.Fatal().Err(err).Msg("Centrality run aborted")
	}
}
