// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/derat/cancer/rates"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// config holds settings read from the environment. Flags may override them.
type config struct {
	DeathsURL     string        `env:"CANCER_DEATHS_URL"`
	PopulationURL string        `env:"CANCER_POPULATION_URL"`
	Addr          string        `env:"CANCER_DASHBOARD_ADDR" envDefault:":8080"`
	FetchTimeout  time.Duration `env:"CANCER_FETCH_TIMEOUT"  envDefault:"1m"`
}

// loadConfig reads config from environment variables.
func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing environment")
	}
	if cfg.DeathsURL == "" {
		cfg.DeathsURL = rates.DefaultDeathsURL
	}
	if cfg.PopulationURL == "" {
		cfg.PopulationURL = rates.DefaultPopulationURL
	}
	if cfg.FetchTimeout <= 0 {
		return cfg, errors.Errorf("bad fetch timeout %v", cfg.FetchTimeout)
	}
	return cfg, nil
}

// loader returns a rates.Loader that fetches the sources named by cfg.
func (cfg *config) loader(log *zap.Logger) *rates.Loader {
	return &rates.Loader{
		DeathsURL:     cfg.DeathsURL,
		PopulationURL: cfg.PopulationURL,
		Client:        &http.Client{Timeout: cfg.FetchTimeout},
		Log:           log,
	}
}
