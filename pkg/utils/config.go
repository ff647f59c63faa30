package utils

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/lioia/personalized-pagerank/pkg/graph"
)

type Config struct {
	Alpha         float64 `mapstructure:"alpha"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
	Sources       []int   `mapstructure:"sources"`
	Workers       int     `mapstructure:"workers"`
	Graph         string  `mapstructure:"graph"`  // default graph resource for the client
	Output        string  `mapstructure:"output"` // default output file for the client ("" = stdout)
}

// Load config.json (or the given file), falling back to defaults.
// PAGERANK_* environment variables override file values.
func LoadConfiguration(path string) (config Config, err error) {
	v := viper.New()
	v.SetDefault("alpha", 0.85)
	v.SetDefault("max_iterations", 100)
	v.SetDefault("tolerance", 1e-6)
	v.SetDefault("sources", []int{367, 249, 145})
	v.SetDefault("workers", 1)
	v.SetDefault("graph", "")
	v.SetDefault("output", "")

	v.SetEnvPrefix("PAGERANK")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Missing config.json is fine, a missing explicit file is not
		if path != "" || !errors.As(err, &notFound) {
			err = fmt.Errorf("read: %w", err)
			return
		}
		err = nil
	}
	if err = v.Unmarshal(&config); err != nil {
		err = fmt.Errorf("parse: %w", err)
		return
	}
	return
}

// Solver options described by the configuration
func (c Config) Options() graph.Options {
	return graph.Options{
		Alpha:         c.Alpha,
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
		Workers:       c.Workers,
	}
}
