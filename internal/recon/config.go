package recon

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the tolerance parameters for reconciliation and staleness
// flagging.
//
// AmountTolerance is a strict upper bound on the absolute difference between
// a deposit's claimed amount and the observed ledger amount. The default of
// 0.01 guards against floating-point noise in upstream signal parsing, not a
// business tolerance for partial payments.
//
// MatchWindow is a strict bound on the distance, in either direction, between
// deposit creation and the observed payment time.
type Config struct {
	// AmountTolerance: match requires |deposit.amount - entry.amount| < this
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`

	// MatchWindow: match requires |deposit.created_at - entry.timestamp| < this
	MatchWindow time.Duration `json:"match_window"`

	// StaleAfter: deposits pending with proof at least this long and with no
	// ledger entry sharing their UTR and method are flagged by the sweep
	StaleAfter time.Duration `json:"stale_after"`
}

// DefaultConfig returns the production tolerances: one cent, a thirty-minute
// match window and a sixty-minute staleness cutoff.
func DefaultConfig() *Config {
	return &Config{
		AmountTolerance: decimal.NewFromFloat(0.01),
		MatchWindow:     30 * time.Minute,
		StaleAfter:      60 * time.Minute,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.AmountTolerance.IsPositive() {
		return fmt.Errorf("amount tolerance must be positive: %s", c.AmountTolerance)
	}

	if c.MatchWindow <= 0 {
		return fmt.Errorf("match window must be positive: %s", c.MatchWindow)
	}

	if c.StaleAfter <= 0 {
		return fmt.Errorf("stale-after duration must be positive: %s", c.StaleAfter)
	}

	return nil
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// String returns a human-readable description of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{AmountTolerance: %s, MatchWindow: %s, StaleAfter: %s}",
		c.AmountTolerance.String(), c.MatchWindow, c.StaleAfter)
}
