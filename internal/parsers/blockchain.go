package parsers

import (
	"fmt"
	"strings"
	"time"

	"deposit-reconciliation-service/internal/ledger"
	"deposit-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// ChainTransaction is an already-fetched blockchain transaction payload, as
// returned by an explorer lookup. The HTTP lookup itself happens outside the
// core; this type only normalizes the result.
type ChainTransaction struct {
	TxID    string `json:"txid"`
	Amount  string `json:"amount"`
	Token   string `json:"token"`
	Network string `json:"network"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// ChainParser normalizes blockchain transaction payloads into canonical
// ledger entries.
type ChainParser struct {
	// Now supplies the observation timestamp; chain lookups do not report
	// a reliable payment time, so ingestion observes "now"
	Now func() time.Time
}

// NewChainParser creates a chain parser using the wall clock
func NewChainParser() *ChainParser {
	return &ChainParser{Now: func() time.Time { return time.Now().UTC() }}
}

// Parse converts a chain transaction into a canonical CRYPTO ledger entry
func (p *ChainParser) Parse(tx ChainTransaction) (ledger.CanonicalEntry, error) {
	if strings.TrimSpace(tx.TxID) == "" {
		return ledger.CanonicalEntry{}, fmt.Errorf("chain transaction has no txid")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(tx.Amount))
	if err != nil {
		return ledger.CanonicalEntry{}, fmt.Errorf("invalid chain transaction amount %q: %w", tx.Amount, err)
	}

	return ledger.CanonicalEntry{
		Source:    models.SourceBlockchain,
		Method:    models.MethodCrypto,
		UTROrHash: tx.TxID,
		Amount:    amount,
		Sender:    tx.From,
		Timestamp: p.Now(),
		RawData: map[string]string{
			"txid":    tx.TxID,
			"token":   tx.Token,
			"network": tx.Network,
			"from":    tx.From,
			"to":      tx.To,
		},
	}, nil
}
