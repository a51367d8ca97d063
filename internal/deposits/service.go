// Package deposits implements the deposit lifecycle: creation, proof
// submission and admin overrides. Status moves PENDING to one of SUCCESS,
// FAILED or FLAGGED; only admin overrides may force a transition from a
// terminal state.
package deposits

import (
	"sort"
	"strings"
	"time"

	"deposit-reconciliation-service/internal/models"
	"deposit-reconciliation-service/internal/store"
	"deposit-reconciliation-service/pkg/errors"
	"deposit-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Service exposes the deposit lifecycle operations
type Service struct {
	store *store.Store
	log   logger.Logger
	now   func() time.Time
}

// NewService creates a deposit service backed by the given store
func NewService(st *store.Store) *Service {
	return &Service{
		store: st,
		log:   logger.WithComponent("deposits"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create records a new PENDING deposit claim with no proof attached
func (s *Service) Create(userID int64, method models.PaymentMethod, amount decimal.Decimal) (*models.Deposit, error) {
	if !method.IsValid() {
		return nil, errors.Validation("method", method.String(), "invalid deposit method")
	}
	if !amount.IsPositive() {
		return nil, errors.Validation("amount", amount.String(), "deposit amount must be positive")
	}

	var created *models.Deposit
	err := s.store.Write(func(st *store.State) error {
		created = &models.Deposit{
			ID:        st.NextID(store.BucketDeposits),
			UserID:    userID,
			Method:    method,
			Amount:    amount,
			Status:    models.DepositPending,
			CreatedAt: s.now(),
		}
		st.Deposits = append(st.Deposits, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("created deposit %d for user %d", created.ID, userID)
	return created.Clone(), nil
}

// SubmitProof attaches a UTR/transaction hash to a pending deposit. The proof
// must not already appear on any other deposit, regardless of that deposit's
// status; matching itself happens asynchronously in the reconciliation pass.
func (s *Service) SubmitProof(depositID int64, utrOrHash string) (*models.Deposit, error) {
	utrOrHash = strings.TrimSpace(utrOrHash)
	if utrOrHash == "" {
		return nil, errors.Validation("utr_or_hash", utrOrHash, "proof string cannot be empty")
	}

	var updated *models.Deposit
	err := s.store.Write(func(st *store.State) error {
		deposit := findDeposit(st, depositID)
		if deposit == nil {
			return errors.NotFound("deposit", depositID)
		}
		if deposit.Status != models.DepositPending {
			return errors.InvalidState("deposit", depositID, "proof can only be submitted while pending")
		}
		if deposit.HasProof() {
			return errors.InvalidState("deposit", depositID, "proof already submitted")
		}
		for _, other := range st.Deposits {
			if other.ID != depositID && other.UTROrHash == utrOrHash {
				return errors.Conflict("utr_or_hash", utrOrHash, "UTR/hash already used").
					WithContext("deposit_id", other.ID)
			}
		}

		deposit.UTROrHash = utrOrHash
		updated = deposit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("deposit %d proof submitted", depositID)
	return updated.Clone(), nil
}

// Get returns the deposit with the given id
func (s *Service) Get(depositID int64) (*models.Deposit, error) {
	for _, d := range s.store.Read().Deposits {
		if d.ID == depositID {
			return d, nil
		}
	}
	return nil, errors.NotFound("deposit", depositID)
}

// ListFilter narrows List results. Nil fields are ignored.
type ListFilter struct {
	UserID *int64
	Status *models.DepositStatus
}

// List returns deposits matching the filter, newest first
func (s *Service) List(filter ListFilter) []*models.Deposit {
	var result []*models.Deposit
	for _, d := range s.store.Read().Deposits {
		if filter.UserID != nil && d.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		result = append(result, d)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// AdminApprove forces a deposit to SUCCESS and stamps verified_at, bypassing
// matching. There is no status precondition: overrides are privileged
// transitions allowed from any state.
func (s *Service) AdminApprove(depositID int64) (*models.Deposit, error) {
	updated, err := s.override(depositID, models.DepositSuccess)
	if err != nil {
		return nil, err
	}
	s.log.Infof("admin approved deposit %d", depositID)
	return updated, nil
}

// AdminReject forces a deposit to FAILED, bypassing matching
func (s *Service) AdminReject(depositID int64) (*models.Deposit, error) {
	updated, err := s.override(depositID, models.DepositFailed)
	if err != nil {
		return nil, err
	}
	s.log.Infof("admin rejected deposit %d", depositID)
	return updated, nil
}

func (s *Service) override(depositID int64, status models.DepositStatus) (*models.Deposit, error) {
	var updated *models.Deposit
	err := s.store.Write(func(st *store.State) error {
		deposit := findDeposit(st, depositID)
		if deposit == nil {
			return errors.NotFound("deposit", depositID)
		}

		deposit.Status = status
		if status == models.DepositSuccess {
			verifiedAt := s.now()
			deposit.VerifiedAt = &verifiedAt
		}
		updated = deposit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

func findDeposit(st *store.State, depositID int64) *models.Deposit {
	for _, d := range st.Deposits {
		if d.ID == depositID {
			return d
		}
	}
	return nil
}
