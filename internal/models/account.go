package models

import (
	"fmt"
	"time"
)

// PaymentAccount is a collection endpoint administrators expose to users as
// the destination for new deposits. Accounts are created PENDING, must be
// approved (status ACTIVE) before activation, and at most one account per
// type may have IsActive set at any time.
type PaymentAccount struct {
	ID             int64             `json:"id"`
	AccountType    PaymentMethod     `json:"account_type"`
	IdentifierName string            `json:"identifier_name"`
	Status         AccountStatus     `json:"status"`
	Details        map[string]string `json:"details"`
	IsActive       bool              `json:"is_active"`
	CreatedAt      time.Time         `json:"created_at"`
	ApprovedAt     *time.Time        `json:"approved_at,omitempty"`
	ApprovedBy     *int64            `json:"approved_by,omitempty"`
}

// Validate performs basic validation on the PaymentAccount
func (a *PaymentAccount) Validate() error {
	if !a.AccountType.IsValid() {
		return fmt.Errorf("invalid account type: %s", a.AccountType)
	}

	if a.IdentifierName == "" {
		return fmt.Errorf("account identifier name cannot be empty")
	}

	if !a.Status.IsValid() {
		return fmt.Errorf("invalid account status: %s", a.Status)
	}

	return nil
}

// Clone returns an independent copy of the payment account
func (a *PaymentAccount) Clone() *PaymentAccount {
	if a == nil {
		return nil
	}

	clone := *a
	if a.Details != nil {
		clone.Details = make(map[string]string, len(a.Details))
		for k, v := range a.Details {
			clone.Details[k] = v
		}
	}
	if a.ApprovedAt != nil {
		approvedAt := *a.ApprovedAt
		clone.ApprovedAt = &approvedAt
	}
	if a.ApprovedBy != nil {
		approvedBy := *a.ApprovedBy
		clone.ApprovedBy = &approvedBy
	}
	return &clone
}

// String returns a string representation of the PaymentAccount
func (a *PaymentAccount) String() string {
	return fmt.Sprintf("PaymentAccount{ID: %d, Type: %s, Name: %s, Status: %s, Active: %t}",
		a.ID, a.AccountType, a.IdentifierName, a.Status, a.IsActive)
}
