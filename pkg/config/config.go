// Package config loads application settings from defaults, an optional YAML
// file and ICLUSTER_-prefixed environment variables, and builds the
// components the commands wire together.
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/interaction-clustering/pkg/centrality"
	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/louvain"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/pipeline"
	"github.com/gilchrisn/interaction-clustering/pkg/provider"
	"github.com/gilchrisn/interaction-clustering/pkg/transform"
)

// EnvPrefix prefixes every environment variable, e.g. ICLUSTER_SWEEP_WORKERS.
const EnvPrefix = "ICLUSTER"

// Config manages application configuration using Viper
type Config struct {
	v *viper.Viper
}

// New returns a configuration holding only defaults and the environment.
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Config{v: v}
}

// Load returns New with the YAML file at path merged in. An empty path skips
// the file.
func Load(path string) (*Config, error) {
	c := New()
	if path == "" {
		return c, nil
	}
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	sweep := pipeline.DefaultOptions()
	interactions := make([]string, len(sweep.Interactions))
	for i, in := range sweep.Interactions {
		interactions[i] = string(in)
	}

	v.SetDefault("input.source", "csv")
	v.SetDefault("input.edges_dir", "data/edges")
	v.SetDefault("input.categories_dir", "data/categories")
	v.SetDefault("input.postgres_dsn", "")

	v.SetDefault("sweep.interactions", interactions)
	v.SetDefault("sweep.methods", sweep.Methods)
	v.SetDefault("sweep.views", sweep.Views)
	v.SetDefault("sweep.cluster_counts", sweep.ClusterCounts)
	v.SetDefault("sweep.workers", sweep.Workers)
	v.SetDefault("sweep.random_seed", sweep.Seed)
	v.SetDefault("sweep.selection", string(sweep.Selection))
	v.SetDefault("sweep.min_indegree", 0)
	v.SetDefault("sweep.sample_fraction", 1.0)

	v.SetDefault("spectral.kmeans_init", 10)
	v.SetDefault("spectral.kmeans_max_iter", 300)

	v.SetDefault("fuzzy.m", 1.0)
	v.SetDefault("fuzzy.error", 0.005)
	v.SetDefault("fuzzy.max_iter", 1000)
	v.SetDefault("fuzzy.threshold", 0.0)

	v.SetDefault("transform.alpha", 0.5)
	v.SetDefault("transform.beta", 0.5)
	v.SetDefault("transform.zero_degree", string(transform.Isolate))

	v.SetDefault("evaluation.weighted", true)

	v.SetDefault("centrality.damping", 0.85)
	v.SetDefault("centrality.tolerance", 1e-6)
	v.SetDefault("centrality.weighted", true)
	v.SetDefault("centrality.closeness_weighted", false)

	v.SetDefault("output.dir", "output")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("jobs.max_workers", 2)
	v.SetDefault("jobs.timeout", 30*time.Minute)
	v.SetDefault("jobs.cleanup_interval", 5*time.Minute)
	v.SetDefault("jobs.result_ttl", time.Hour)

	// louvain.* and logging.level
	louvain.FromViper(v)
}

// Viper exposes the underlying store.
func (c *Config) Viper() *viper.Viper { return c.v }

// Set overrides one key.
func (c *Config) Set(key string, value interface{}) { c.v.Set(key, value) }

// SweepOptions resolves the sweep.* keys plus the transform, evaluation and
// output settings.
func (c *Config) SweepOptions() pipeline.Options {
	names := c.v.GetStringSlice("sweep.interactions")
	interactions := make([]models.Interaction, len(names))
	for i, n := range names {
		interactions[i] = models.Interaction(strings.ToLower(n))
	}
	return pipeline.Options{
		Interactions:   interactions,
		Methods:        c.v.GetStringSlice("sweep.methods"),
		Views:          c.v.GetStringSlice("sweep.views"),
		ClusterCounts:  c.v.GetIntSlice("sweep.cluster_counts"),
		Workers:        c.v.GetInt("sweep.workers"),
		Seed:           c.v.GetInt64("sweep.random_seed"),
		Selection:      pipeline.Selection(c.v.GetString("sweep.selection")),
		MinInDegree:    c.v.GetInt("sweep.min_indegree"),
		SampleFraction: c.v.GetFloat64("sweep.sample_fraction"),
		Transform: transform.Options{
			Alpha:      c.v.GetFloat64("transform.alpha"),
			Beta:       c.v.GetFloat64("transform.beta"),
			ZeroDegree: transform.ZeroDegreePolicy(c.v.GetString("transform.zero_degree")),
		},
		WeightedConductance: c.v.GetBool("evaluation.weighted"),
		OutputDir:           c.OutputDir(),
	}
}

// OutputDir is where sinks and the manifest write.
func (c *Config) OutputDir() string { return c.v.GetString("output.dir") }

// Louvain returns the Louvain configuration backed by the same store.
func (c *Config) Louvain(logger zerolog.Logger) *louvain.Config {
	return louvain.FromViper(c.v).WithLogger(logger.With().Str("component", "louvain").Logger())
}

// Methods builds the clustering registry. Spectral and fuzzy c-means share
// the sweep seed.
func (c *Config) Methods(logger zerolog.Logger) *clustering.Registry {
	seed := c.v.GetInt64("sweep.random_seed")

	spectral := clustering.NewSpectral(seed)
	spectral.NInit = c.v.GetInt("spectral.kmeans_init")
	spectral.MaxIter = c.v.GetInt("spectral.kmeans_max_iter")

	fuzzy := clustering.NewFuzzyCMeans(seed, logger.With().Str("component", "fuzzy").Logger())
	fuzzy.M = c.v.GetFloat64("fuzzy.m")
	fuzzy.Error = c.v.GetFloat64("fuzzy.error")
	fuzzy.MaxIter = c.v.GetInt("fuzzy.max_iter")
	fuzzy.Rule = clustering.RuleFor(c.v.GetFloat64("fuzzy.threshold"))

	return clustering.NewRegistry(clustering.NewLouvain(c.Louvain(logger)), spectral, fuzzy)
}

// Centrality builds the centrality calculator.
func (c *Config) Centrality() *centrality.Calculator {
	return centrality.NewCalculator().
		WithDampingFactor(c.v.GetFloat64("centrality.damping")).
		WithTolerance(c.v.GetFloat64("centrality.tolerance")).
		WithWeights(c.v.GetBool("centrality.weighted")).
		WithClosenessWeights(c.v.GetBool("centrality.closeness_weighted"))
}

// Provider opens the configured input source. The returned func releases it.
func (c *Config) Provider(ctx context.Context) (provider.Provider, func(), error) {
	switch source := c.v.GetString("input.source"); source {
	case "csv":
		return provider.NewCSVDir(c.v.GetString("input.edges_dir"), c.v.GetString("input.categories_dir")), func() {}, nil
	case "postgres":
		dsn := c.v.GetString("input.postgres_dsn")
		if dsn == "" {
			return nil, nil, fmt.Errorf("input.postgres_dsn is required for the postgres source")
		}
		p, pool, err := provider.ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return p, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown input source %q", source)
	}
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// JobConfig holds background sweep job settings.
type JobConfig struct {
	MaxWorkers      int
	Timeout         time.Duration
	CleanupInterval time.Duration
	ResultTTL       time.Duration
}

func (c *Config) Server() ServerConfig {
	return ServerConfig{
		Address:        c.v.GetString("server.address"),
		ReadTimeout:    c.v.GetDuration("server.read_timeout"),
		WriteTimeout:   c.v.GetDuration("server.write_timeout"),
		AllowedOrigins: c.v.GetStringSlice("server.allowed_origins"),
	}
}

func (c *Config) Jobs() JobConfig {
	return JobConfig{
		MaxWorkers:      c.v.GetInt("jobs.max_workers"),
		Timeout:         c.v.GetDuration("jobs.timeout"),
		CleanupInterval: c.v.GetDuration("jobs.cleanup_interval"),
		ResultTTL:       c.v.GetDuration("jobs.result_ttl"),
	}
}

// LogLevel returns the configured level, falling back to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.v.GetString("logging.level"))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Logger creates a console logger at the configured level.
func (c *Config) Logger(out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}).Level(c.LogLevel()).With().Timestamp().Logger()
}
