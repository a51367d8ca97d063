package recon

import (
	"context"

	"deposit-reconciliation-service/internal/models"
	"deposit-reconciliation-service/internal/store"
)

// RunSweep executes one staleness sweep and returns the number of deposits
// flagged. A deposit is flagged when it has been PENDING with proof for at
// least the configured stale-after duration and no ledger entry at all,
// matched or not, shares its UTR/hash and method.
//
// A deposit whose candidate entry exists but failed the amount or time
// tolerance is left PENDING: the signal arrived, so flagging it as "never
// observed" would be wrong, and resolving the tolerance mismatch is an admin
// review concern. Sweeping never touches ledger entries.
func (e *Engine) RunSweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cutoff := e.now().Add(-e.cfg.StaleAfter)

	flagged := 0
	err := e.store.Write(func(st *store.State) error {
		for _, deposit := range st.Deposits {
			if deposit.Status != models.DepositPending || !deposit.HasProof() {
				continue
			}
			if deposit.CreatedAt.After(cutoff) {
				continue
			}
			if hasSignal(st, deposit) {
				continue
			}

			deposit.Status = models.DepositFlagged
			flagged++
			e.log.Infof("flagged stale deposit %d", deposit.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.log.Infof("staleness sweep flagged %d deposits", flagged)
	return flagged, nil
}

// hasSignal reports whether any ledger entry, regardless of matched state,
// shares the deposit's UTR/hash and method.
func hasSignal(st *store.State, deposit *models.Deposit) bool {
	for _, entry := range st.IncomingLedger {
		if entry.UTROrHash == deposit.UTROrHash && entry.Method == deposit.Method {
			return true
		}
	}
	return false
}
