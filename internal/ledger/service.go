// Package ledger stores canonical incoming ledger entries, the externally
// observed payment events the reconciliation engine matches deposits against.
//
// The service does not parse raw signals. Collaborators (email/SMS extractors,
// chain lookups, see the parsers package) normalize raw payloads into
// CanonicalEntry values; the service owns id allocation, the ingestion
// timestamp and the matched flag.
package ledger

import (
	"sort"
	"time"

	"deposit-reconciliation-service/internal/models"
	"deposit-reconciliation-service/internal/store"
	"deposit-reconciliation-service/pkg/errors"
	"deposit-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// CanonicalEntry is the normalized form collaborators must produce.
// Timestamp is the actual payment time according to the signal, not the time
// of ingestion. Collaborators never set matched; the service initializes it.
type CanonicalEntry struct {
	Source    models.LedgerSource
	Method    models.PaymentMethod
	UTROrHash string
	Amount    decimal.Decimal
	Sender    string
	Timestamp time.Time
	RawData   map[string]string
}

// Extractor turns a raw signal payload into zero or more canonical entries.
// Implementations live in the parsers package; the ledger service only
// consumes their output.
type Extractor interface {
	Extract(raw string) ([]CanonicalEntry, error)
}

// Service exposes ledger ingestion and listing
type Service struct {
	store *store.Store
	log   logger.Logger
	now   func() time.Time
}

// NewService creates a ledger service backed by the given store
func NewService(st *store.Store) *Service {
	return &Service{
		store: st,
		log:   logger.WithComponent("ledger"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Ingest stores a canonical entry. The entry is persisted unmatched with a
// fresh id and the current time as its ingestion timestamp.
func (s *Service) Ingest(entry CanonicalEntry) (*models.LedgerEntry, error) {
	stored := &models.LedgerEntry{
		Source:    entry.Source,
		Method:    entry.Method,
		UTROrHash: entry.UTROrHash,
		Amount:    entry.Amount,
		Sender:    entry.Sender,
		Timestamp: entry.Timestamp,
		RawData:   entry.RawData,
		Matched:   false,
	}
	if err := stored.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "invalid ledger entry")
	}

	err := s.store.Write(func(st *store.State) error {
		stored.ID = st.NextID(store.BucketIncomingLedger)
		stored.CreatedAt = s.now()
		st.IncomingLedger = append(st.IncomingLedger, stored)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("ingested ledger entry %d (%s %s via %s)",
		stored.ID, stored.Amount.String(), stored.Method, stored.Source)
	return stored.Clone(), nil
}

// IngestAll stores each canonical entry in turn, returning the stored records
func (s *Service) IngestAll(entries []CanonicalEntry) ([]*models.LedgerEntry, error) {
	stored := make([]*models.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		record, err := s.Ingest(entry)
		if err != nil {
			return stored, err
		}
		stored = append(stored, record)
	}
	return stored, nil
}

// List returns ledger entries, newest ingestion first. A non-nil matched
// filter keeps only entries with that matched value.
func (s *Service) List(matched *bool) []*models.LedgerEntry {
	var result []*models.LedgerEntry
	for _, entry := range s.store.Read().IncomingLedger {
		if matched != nil && entry.Matched != *matched {
			continue
		}
		result = append(result, entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
