// Command serve exposes sweep jobs over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/interaction-clustering/pkg/api"
	"github.com/gilchrisn/interaction-clustering/pkg/config"
	"github.com/gilchrisn/interaction-clustering/pkg/metrics"
	"github.com/gilchrisn/interaction-clustering/pkg/pipeline"
	"github.com/gilchrisn/interaction-clustering/pkg/service"
	"github.com/gilchrisn/interaction-clustering/pkg/sink"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	address := flag.String("address", "", "listen address (overrides server.address)")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting interaction clustering server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *address != "" {
		cfg.Set("server.address", *address)
	}
	log.Logger = log.Logger.Level(cfg.LogLevel())

	serverCfg := cfg.Server()
	jobsCfg := cfg.Jobs()
	log.Info().
		Str("address", serverCfg.Address).
		Int("max_workers", jobsCfg.MaxWorkers).
		Dur("job_timeout", jobsCfg.Timeout).
		Msg("Configuration loaded")

	source, closeSource, err := cfg.Provider(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open input source")
	}
	defer closeSource()

	collector := metrics.NewCollector()
	methods := cfg.Methods(log.Logger)
	factory := func(opts pipeline.Options, out sink.Sink) *pipeline.Sweep {
		sweep := pipeline.NewSweep(source, out, methods, opts, log.Logger)
		sweep.Metrics = collector
		return sweep
	}

	jobService := service.NewJobService(jobsCfg, cfg.SweepOptions(), factory, log.Logger)
	defer jobService.Close()

	handlers := api.NewHandlers(jobService, methods.List())
	server := &http.Server{
		Addr:         serverCfg.Address,
		Handler:      api.NewRouter(handlers, collector, serverCfg.AllowedOrigins),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	go func() {
		log.Info().
			Str("address", serverCfg.Address).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server shutdown complete")
}
