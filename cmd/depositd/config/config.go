// Package config builds component configurations from CLI flags and
// environment values.
package config

import (
	"fmt"
	"time"

	"deposit-reconciliation-service/internal/recon"
	"deposit-reconciliation-service/internal/scheduler"
	"deposit-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// CreateLoggerConfig creates a logger configuration for the CLI
func CreateLoggerConfig(verbose bool, format string) (*logger.Config, error) {
	cfg := logger.DefaultConfig()
	if verbose {
		cfg.Level = logger.DebugLevel
	}

	switch format {
	case "", "text":
		cfg.Format = logger.TextFormat
	case "json":
		cfg.Format = logger.JSONFormat
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}

	return cfg, nil
}

// CreateReconConfig creates a reconciliation configuration with the specified
// tolerances. Zero values select the defaults.
func CreateReconConfig(amountTolerance float64, matchWindow, staleAfter time.Duration) (*recon.Config, error) {
	cfg := recon.DefaultConfig()

	if amountTolerance != 0 {
		cfg.AmountTolerance = decimal.NewFromFloat(amountTolerance)
	}
	if matchWindow != 0 {
		cfg.MatchWindow = matchWindow
	}
	if staleAfter != 0 {
		cfg.StaleAfter = staleAfter
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateSchedulerConfig creates a scheduler configuration with the specified
// cadences. Zero values select the defaults.
func CreateSchedulerConfig(matchInterval, sweepInterval time.Duration) (*scheduler.Config, error) {
	cfg := scheduler.DefaultConfig()

	if matchInterval != 0 {
		cfg.MatchInterval = matchInterval
	}
	if sweepInterval != 0 {
		cfg.SweepInterval = sweepInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
