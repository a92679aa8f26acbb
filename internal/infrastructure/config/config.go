package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=3001"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Version is reported by the health endpoint.
	Version string `env:"API_VERSION, default=1.0.0"`

	// SimulationSeed pins the randomized endpoints to a deterministic
	// sequence when non-zero. Leave zero for wall-clock seeding.
	SimulationSeed int64 `env:"SIMULATION_SEED, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
