package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a canonical record of an externally observed payment event,
// produced by signal collaborators (email/SMS extractors, chain lookups).
//
// Timestamp is when the payment occurred according to the signal; CreatedAt is
// when the entry was ingested. Matched is owned by the reconciliation engine
// and moves false to true exactly once.
type LedgerEntry struct {
	ID        int64             `json:"id"`
	Source    LedgerSource      `json:"source"`
	Method    PaymentMethod     `json:"method"`
	UTROrHash string            `json:"utr_or_hash"`
	Amount    decimal.Decimal   `json:"amount"`
	Sender    string            `json:"sender,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	RawData   map[string]string `json:"raw_data,omitempty"`
	Matched   bool              `json:"matched"`
	CreatedAt time.Time         `json:"created_at"`
}

// Validate performs basic validation on the LedgerEntry
func (e *LedgerEntry) Validate() error {
	if !e.Source.IsValid() {
		return fmt.Errorf("invalid ledger source: %s", e.Source)
	}

	if !e.Method.IsLedgerMethod() {
		return fmt.Errorf("invalid ledger method: %s", e.Method)
	}

	if strings.TrimSpace(e.UTROrHash) == "" {
		return fmt.Errorf("ledger entry UTR/hash cannot be empty")
	}

	if !e.Amount.IsPositive() {
		return fmt.Errorf("ledger entry amount must be positive")
	}

	if e.Timestamp.IsZero() {
		return fmt.Errorf("ledger entry timestamp cannot be zero")
	}

	return nil
}

// Clone returns an independent copy of the ledger entry
func (e *LedgerEntry) Clone() *LedgerEntry {
	if e == nil {
		return nil
	}

	clone := *e
	if e.RawData != nil {
		clone.RawData = make(map[string]string, len(e.RawData))
		for k, v := range e.RawData {
			clone.RawData[k] = v
		}
	}
	return &clone
}

// String returns a string representation of the LedgerEntry
func (e *LedgerEntry) String() string {
	return fmt.Sprintf("LedgerEntry{ID: %d, Source: %s, Method: %s, UTR: %s, Amount: %s, Matched: %t}",
		e.ID, e.Source, e.Method, e.UTROrHash, e.Amount.String(), e.Matched)
}
