package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is a user's claim to have sent money through one of the supported
// payment rails. It is created PENDING with no proof; the proof string
// (UTR or transaction hash) arrives later and is the join key the
// reconciliation engine uses against the incoming ledger.
type Deposit struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	Method     PaymentMethod     `json:"method"`
	Amount     decimal.Decimal   `json:"amount"`
	UTROrHash  string            `json:"utr_or_hash,omitempty"`
	Status     DepositStatus     `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	VerifiedAt *time.Time        `json:"verified_at,omitempty"`
}

// HasProof reports whether the deposit carries a proof string
func (d *Deposit) HasProof() bool {
	return strings.TrimSpace(d.UTROrHash) != ""
}

// Validate performs basic validation on the Deposit
func (d *Deposit) Validate() error {
	if d.UserID <= 0 {
		return fmt.Errorf("deposit user id must be positive")
	}

	if !d.Method.IsValid() {
		return fmt.Errorf("invalid deposit method: %s", d.Method)
	}

	if !d.Amount.IsPositive() {
		return fmt.Errorf("deposit amount must be positive")
	}

	if !d.Status.IsValid() {
		return fmt.Errorf("invalid deposit status: %s", d.Status)
	}

	if d.CreatedAt.IsZero() {
		return fmt.Errorf("deposit creation time cannot be zero")
	}

	return nil
}

// Clone returns an independent copy of the deposit
func (d *Deposit) Clone() *Deposit {
	if d == nil {
		return nil
	}

	clone := *d
	if d.Metadata != nil {
		clone.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			clone.Metadata[k] = v
		}
	}
	if d.VerifiedAt != nil {
		verifiedAt := *d.VerifiedAt
		clone.VerifiedAt = &verifiedAt
	}
	return &clone
}

// String returns a string representation of the Deposit
func (d *Deposit) String() string {
	return fmt.Sprintf("Deposit{ID: %d, User: %d, Method: %s, Amount: %s, Status: %s}",
		d.ID, d.UserID, d.Method, d.Amount.String(), d.Status)
}
