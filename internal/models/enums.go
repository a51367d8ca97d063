// Package models defines the persisted entities of the deposit reconciliation
// service: users, deposits, payment accounts and incoming ledger entries.
//
// Enum-like values are proper string types validated at the edges; amounts are
// shopspring decimals so tolerance comparisons are exact.
package models

import "fmt"

// PaymentMethod identifies the payment rail a deposit claims to have used.
// Ledger entries share the same value space minus PAYPAL (no automated signal
// source exists for it), and payment accounts use it as their account type.
type PaymentMethod string

const (
	MethodUPI    PaymentMethod = "UPI"
	MethodBank   PaymentMethod = "BANK"
	MethodCrypto PaymentMethod = "CRYPTO"
	MethodCard   PaymentMethod = "CARD"
	MethodPayPal PaymentMethod = "PAYPAL"
)

// String returns the string representation of the PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodUPI, MethodBank, MethodCrypto, MethodCard, MethodPayPal:
		return true
	}
	return false
}

// IsLedgerMethod checks if the method can appear on an incoming ledger entry
func (m PaymentMethod) IsLedgerMethod() bool {
	return m.IsValid() && m != MethodPayPal
}

// ParsePaymentMethod parses and validates a payment method from string
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", s)
	}
	return m, nil
}

// DepositStatus represents the lifecycle state of a deposit claim.
// PENDING is the initial state; the others are terminal for automated
// processing, though an admin override may force SUCCESS or FAILED from any
// state.
type DepositStatus string

const (
	DepositPending DepositStatus = "PENDING"
	DepositSuccess DepositStatus = "SUCCESS"
	DepositFailed  DepositStatus = "FAILED"
	DepositFlagged DepositStatus = "FLAGGED"
)

// String returns the string representation of the DepositStatus
func (s DepositStatus) String() string {
	return string(s)
}

// IsValid checks if the deposit status is valid
func (s DepositStatus) IsValid() bool {
	switch s {
	case DepositPending, DepositSuccess, DepositFailed, DepositFlagged:
		return true
	}
	return false
}

// ParseDepositStatus parses and validates a deposit status from string
func ParseDepositStatus(s string) (DepositStatus, error) {
	status := DepositStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid deposit status %q", s)
	}
	return status, nil
}

// LedgerSource identifies where an incoming ledger entry was observed
type LedgerSource string

const (
	SourceEmail      LedgerSource = "EMAIL"
	SourceSMS        LedgerSource = "SMS"
	SourceBlockchain LedgerSource = "BLOCKCHAIN"
)

// String returns the string representation of the LedgerSource
func (s LedgerSource) String() string {
	return string(s)
}

// IsValid checks if the ledger source is valid
func (s LedgerSource) IsValid() bool {
	switch s {
	case SourceEmail, SourceSMS, SourceBlockchain:
		return true
	}
	return false
}

// AccountStatus represents the approval state of a payment collection account
type AccountStatus string

const (
	AccountPending  AccountStatus = "PENDING"
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// String returns the string representation of the AccountStatus
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid checks if the account status is valid
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountPending, AccountActive, AccountInactive:
		return true
	}
	return false
}
