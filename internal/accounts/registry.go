// Package accounts implements the payment account registry. Accounts are
// created PENDING through bulk upload, approved or rejected by an admin, and
// activated one at a time: the registry guarantees at most one account with
// is_active=true per account type.
package accounts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"deposit-reconciliation-service/internal/models"
	"deposit-reconciliation-service/internal/store"
	"deposit-reconciliation-service/pkg/errors"
	"deposit-reconciliation-service/pkg/logger"
)

// CreatePayload describes a single account in a bulk upload
type CreatePayload struct {
	IdentifierName string            `json:"identifier_name,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
}

// Registry exposes the payment account operations
type Registry struct {
	store *store.Store
	log   logger.Logger
	now   func() time.Time
}

// NewRegistry creates an account registry backed by the given store
func NewRegistry(st *store.Store) *Registry {
	return &Registry{
		store: st,
		log:   logger.WithComponent("accounts"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the registry clock, for tests
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// BulkCreate registers accounts grouped by type. Every account starts
// PENDING and inactive; an empty identifier name defaults to a generated
// "<type>_<id>" label. Fails with a validation error when no accounts result.
func (r *Registry) BulkCreate(grouped map[models.PaymentMethod][]CreatePayload) ([]*models.PaymentAccount, error) {
	for accountType := range grouped {
		if !accountType.IsValid() {
			return nil, errors.Validation("account_type", accountType.String(), "invalid account type")
		}
	}

	var created []*models.PaymentAccount
	err := r.store.Write(func(st *store.State) error {
		// Iterate types in a fixed order so generated labels are stable.
		types := make([]models.PaymentMethod, 0, len(grouped))
		for accountType := range grouped {
			types = append(types, accountType)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

		for _, accountType := range types {
			for _, payload := range grouped[accountType] {
				id := st.NextID(store.BucketPaymentAccounts)
				name := strings.TrimSpace(payload.IdentifierName)
				if name == "" {
					name = fmt.Sprintf("%s_%d", strings.ToLower(accountType.String()), id)
				}

				details := make(map[string]string, len(payload.Details))
				for k, v := range payload.Details {
					details[k] = v
				}

				account := &models.PaymentAccount{
					ID:             id,
					AccountType:    accountType,
					IdentifierName: name,
					Status:         models.AccountPending,
					Details:        details,
					CreatedAt:      r.now(),
				}
				st.PaymentAccounts = append(st.PaymentAccounts, account)
				created = append(created, account)
			}
		}

		if len(created) == 0 {
			return errors.Validation("accounts", nil, "no valid accounts found in upload")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]*models.PaymentAccount, len(created))
	for i, account := range created {
		result[i] = account.Clone()
	}
	r.log.Infof("created %d payment accounts", len(result))
	return result, nil
}

// Approve marks an account ACTIVE and stamps the approver. Approval does not
// activate the account; that is a separate explicit step.
func (r *Registry) Approve(accountID, approvedBy int64) (*models.PaymentAccount, error) {
	var updated *models.PaymentAccount
	err := r.store.Write(func(st *store.State) error {
		account := findAccount(st, accountID)
		if account == nil {
			return errors.NotFound("payment account", accountID)
		}

		approvedAt := r.now()
		account.Status = models.AccountActive
		account.ApprovedAt = &approvedAt
		account.ApprovedBy = &approvedBy
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("approved payment account %d", accountID)
	return updated.Clone(), nil
}

// Reject marks an account INACTIVE and forces it out of active rotation
func (r *Registry) Reject(accountID int64) (*models.PaymentAccount, error) {
	var updated *models.PaymentAccount
	err := r.store.Write(func(st *store.State) error {
		account := findAccount(st, accountID)
		if account == nil {
			return errors.NotFound("payment account", accountID)
		}

		account.Status = models.AccountInactive
		account.IsActive = false
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("rejected payment account %d", accountID)
	return updated.Clone(), nil
}

// Activate makes the account the single active one for its type. The target
// must already be approved. Deactivating every sibling of the same type
// happens in the same store mutation, so there is no window where zero or two
// accounts of a type are active.
func (r *Registry) Activate(accountID int64) (*models.PaymentAccount, error) {
	var updated *models.PaymentAccount
	err := r.store.Write(func(st *store.State) error {
		target := findAccount(st, accountID)
		if target == nil {
			return errors.NotFound("payment account", accountID)
		}
		if target.Status != models.AccountActive {
			return errors.InvalidState("payment account", accountID, "account must be approved before activation")
		}

		for _, account := range st.PaymentAccounts {
			if account.AccountType == target.AccountType {
				account.IsActive = account.ID == target.ID
			}
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("activated payment account %d (%s)", accountID, updated.AccountType)
	return updated.Clone(), nil
}

// Delete removes an account and returns the removed record
func (r *Registry) Delete(accountID int64) (*models.PaymentAccount, error) {
	var removed *models.PaymentAccount
	err := r.store.Write(func(st *store.State) error {
		for i, account := range st.PaymentAccounts {
			if account.ID == accountID {
				removed = account
				st.PaymentAccounts = append(st.PaymentAccounts[:i], st.PaymentAccounts[i+1:]...)
				return nil
			}
		}
		return errors.NotFound("payment account", accountID)
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("deleted payment account %d", accountID)
	return removed.Clone(), nil
}

// ListFilter narrows List results. Nil fields are ignored.
type ListFilter struct {
	AccountType *models.PaymentMethod
	Status      *models.AccountStatus
}

// List returns accounts matching the filter, newest first
func (r *Registry) List(filter ListFilter) []*models.PaymentAccount {
	var result []*models.PaymentAccount
	for _, account := range r.store.Read().PaymentAccounts {
		if filter.AccountType != nil && account.AccountType != *filter.AccountType {
			continue
		}
		if filter.Status != nil && account.Status != *filter.Status {
			continue
		}
		result = append(result, account)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// ActiveByType returns the details of the currently active and approved
// account per type, keyed by account type. The identifier name is merged into
// the detail map under "identifier_name". Types with no active account are
// absent from the result; callers supply their own fallback defaults.
func (r *Registry) ActiveByType() map[models.PaymentMethod]map[string]string {
	active := make(map[models.PaymentMethod]map[string]string)
	for _, account := range r.store.Read().PaymentAccounts {
		if !account.IsActive || account.Status != models.AccountActive {
			continue
		}

		details := map[string]string{"identifier_name": account.IdentifierName}
		for k, v := range account.Details {
			details[k] = v
		}
		active[account.AccountType] = details
	}
	return active
}

func findAccount(st *store.State, accountID int64) *models.PaymentAccount {
	for _, account := range st.PaymentAccounts {
		if account.ID == accountID {
			return account
		}
	}
	return nil
}
