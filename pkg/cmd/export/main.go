// Command export writes the category subgraph of one interaction as a JSON
// document or Graphviz DOT, optionally grouped by a Louvain partition.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/config"
	"github.com/gilchrisn/interaction-clustering/pkg/export"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/pipeline"
	"github.com/gilchrisn/interaction-clustering/pkg/sink"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	interaction := flag.String("interaction", string(models.Mentions), "interaction to export")
	format := flag.String("format", "json", "json, html or dot")
	group := flag.Bool("group", false, "group nodes by their Louvain community")
	outPath := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Logger = log.Logger.Level(cfg.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, models.Interaction(*interaction), *format, *group, *outPath); err != nil {
		stop()
		log.Fatal().Err(err).Msg("Export failed")
	}
}

func run(ctx context.Context, cfg *config.Config, interaction models.Interaction, format string, group bool, outPath string) error {
	switch format {
	case "json", "html", "dot":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	source, closeSource, err := cfg.Provider(ctx)
	if err != nil {
		return fmt.Errorf("open input source: %w", err)
	}
	defer closeSource()

	cats, err := source.Lists(ctx)
	if err != nil {
		return fmt.Errorf("load category lists: %w", err)
	}

	methods := cfg.Methods(log.Logger)
	sweep := pipeline.NewSweep(source, sink.NewMemory(), methods, cfg.SweepOptions(), log.Logger)
	sub, err := sweep.Prepare(ctx, interaction, cats)
	if err != nil {
		return err
	}

	var assignment clustering.Assignment
	if group {
		louvain, ok := methods.Get(clustering.MethodLouvain)
		if !ok {
			return fmt.Errorf("method %q is not registered", clustering.MethodLouvain)
		}
		res, err := louvain.Cluster(ctx, clustering.Input{Nodes: sub.Graph.Nodes(), Graph: sub.Graph})
		if err != nil {
			return fmt.Errorf("louvain: %w", err)
		}
		assignment = res.Assignment
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "dot":
		dot, err := export.DOT(string(interaction), sub.Graph, cats, assignment)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, dot)
		return err
	case "html":
		return export.WriteHTMLScript(w, string(interaction)+"-graph", sub.Graph, cats)
	default:
		return export.WriteJSON(w, sub.Graph, cats, assignment)
	}
}
