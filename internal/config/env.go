package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RuntimeEnv holds process settings read from the environment. CLI flags
// use these values as their defaults, so an explicit flag always wins.
type RuntimeEnv struct {
	DBPath     string `env:"MERGEDROP_DB"`
	ConfigPath string `env:"MERGEDROP_CONFIG"`
	LogLevel   string `env:"MERGEDROP_LOG_LEVEL" envDefault:"info"`
	LogFile    string `env:"MERGEDROP_LOG_FILE"`
	Sound      bool   `env:"MERGEDROP_SOUND" envDefault:"false"`
	Seed       int64  `env:"MERGEDROP_SEED" envDefault:"0"`
	Difficulty string `env:"MERGEDROP_DIFFICULTY" envDefault:"normal"`
}

// ParseEnv populates target from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadRuntimeEnv reads RuntimeEnv from the process environment.
func LoadRuntimeEnv() (RuntimeEnv, error) {
	var e RuntimeEnv
	if err := ParseEnv(&e); err != nil {
		return e, err
	}
	return e, nil
}
