package louvain

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages algorithm configuration using Viper
type Config struct {
	v      *viper.Viper
	logger *zerolog.Logger
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return FromViper(viper.New())
}

// FromViper registers the Louvain defaults on v and reads parameters from it.
// Keys live under "louvain.".
func FromViper(v *viper.Viper) *Config {
	v.SetDefault("louvain.max_levels", 10)
	v.SetDefault("louvain.max_iterations", 100)
	v.SetDefault("louvain.min_modularity_gain", 1e-7)
	v.SetDefault("louvain.resolution", 1.0)
	v.SetDefault("louvain.random_seed", 42)
	v.SetDefault("louvain.enable_progress", false)

	v.SetDefault("logging.level", "info")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *Config) MaxLevels() int             { return c.v.GetInt("louvain.max_levels") }
func (c *Config) MaxIterations() int         { return c.v.GetInt("louvain.max_iterations") }
func (c *Config) MinModularityGain() float64 { return c.v.GetFloat64("louvain.min_modularity_gain") }
func (c *Config) Resolution() float64        { return c.v.GetFloat64("louvain.resolution") }
func (c *Config) RandomSeed() int64          { return c.v.GetInt64("louvain.random_seed") }
func (c *Config) EnableProgress() bool       { return c.v.GetBool("louvain.enable_progress") }
func (c *Config) LogLevel() string           { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// WithLogger makes Run log through l instead of a logger built from the config.
func (c *Config) WithLogger(l zerolog.Logger) *Config {
	c.logger = &l
	return c
}

// Logger returns the logger attached with WithLogger, or CreateLogger().
func (c *Config) Logger() zerolog.Logger {
	if c.logger != nil {
		return *c.logger
	}
	return c.CreateLogger()
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "louvain").Logger()
}
