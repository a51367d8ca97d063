// Package recon implements the reconciliation engine and the staleness
// sweeper, the two scheduled passes that resolve pending deposit claims
// against the incoming ledger.
//
// Matching is greedy and order-dependent: deposits are scanned in id order and
// each takes the first unmatched ledger entry that satisfies all the match
// conditions. No global optimal assignment is attempted; UTR/hash values are
// unique per transaction in practice, so at most one valid match normally
// exists. When duplicate UTRs do occur, the entry with the lowest id wins.
package recon

import (
	"context"

	"deposit-reconciliation-service/internal/models"
	"deposit-reconciliation-service/internal/store"
	"deposit-reconciliation-service/pkg/logger"

	"time"
)

// Engine runs reconciliation passes and staleness sweeps against the store
type Engine struct {
	store *store.Store
	cfg   *Config
	log   logger.Logger
	now   func() time.Time
}

// NewEngine creates an engine with the given configuration. A nil config
// selects the default tolerances.
func NewEngine(st *store.Store, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		store: st,
		cfg:   cfg.Clone(),
		log:   logger.WithComponent("recon"),
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() *Config {
	return e.cfg.Clone()
}

// SetClock overrides the engine clock, for tests
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// RunPass executes one reconciliation pass and returns the number of deposits
// matched. The whole pass runs inside a single store mutation: a deposit
// transitioning to SUCCESS and its ledger entry becoming matched are one
// atomic step, and an entry claimed early in the pass is excluded from
// matching any later deposit.
//
// Per-deposit problems are skipped with a log line; only a store failure
// aborts the pass, to be retried on the next scheduled invocation.
func (e *Engine) RunPass(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	matched := 0
	err := e.store.Write(func(st *store.State) error {
		for _, deposit := range st.Deposits {
			if deposit.Status != models.DepositPending || !deposit.HasProof() {
				continue
			}
			if deposit.CreatedAt.IsZero() {
				e.log.Warnf("deposit %d has no creation time, skipping", deposit.ID)
				continue
			}

			entry := e.findMatch(st, deposit)
			if entry == nil {
				continue
			}

			verifiedAt := e.now()
			deposit.Status = models.DepositSuccess
			deposit.VerifiedAt = &verifiedAt
			entry.Matched = true
			matched++

			e.log.Infof("matched deposit %d with ledger entry %d", deposit.ID, entry.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.log.Infof("reconciliation pass matched %d deposits", matched)
	return matched, nil
}

// findMatch returns the first unmatched ledger entry satisfying every match
// condition for the deposit, or nil. Entries are scanned in id order.
func (e *Engine) findMatch(st *store.State, deposit *models.Deposit) *models.LedgerEntry {
	for _, entry := range st.IncomingLedger {
		if entry.Matched {
			continue
		}
		if entry.UTROrHash != deposit.UTROrHash || entry.Method != deposit.Method {
			continue
		}

		// Strict bounds: a difference equal to the tolerance is a miss.
		amountDiff := deposit.Amount.Sub(entry.Amount).Abs()
		if !amountDiff.LessThan(e.cfg.AmountTolerance) {
			continue
		}

		timeDiff := deposit.CreatedAt.Sub(entry.Timestamp)
		if timeDiff < 0 {
			timeDiff = -timeDiff
		}
		if timeDiff >= e.cfg.MatchWindow {
			continue
		}

		return entry
	}
	return nil
}
