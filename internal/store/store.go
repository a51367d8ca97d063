// Package store implements the durable record store backing the service.
//
// All persisted state lives in a single JSON document holding four named
// collections plus a per-collection counter map. Reads return independent
// snapshots; writes apply a mutator function under a single global lock and
// persist the result via an atomic temp-file-then-rename replace, so a crash
// mid-write never corrupts the durable copy.
//
// Cross-entity invariants that need read-then-write atomicity (proof
// uniqueness, one-active-account-per-type, match pairing) must run inside a
// single Write call.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"deposit-reconciliation-service/internal/models"
	"deposit-reconciliation-service/pkg/errors"
	"deposit-reconciliation-service/pkg/logger"
)

// Collection bucket names, also used as counter keys
const (
	BucketUsers           = "users"
	BucketDeposits        = "deposits"
	BucketPaymentAccounts = "payment_accounts"
	BucketIncomingLedger  = "incoming_ledger"
)

// State is the complete persisted dataset. Slices keep insertion order, which
// is also id order because ids are allocated monotonically per collection.
type State struct {
	Users           []*models.User           `json:"users"`
	Deposits        []*models.Deposit        `json:"deposits"`
	PaymentAccounts []*models.PaymentAccount `json:"payment_accounts"`
	IncomingLedger  []*models.LedgerEntry    `json:"incoming_ledger"`
	Counters        map[string]int64         `json:"counters"`
}

// NewState returns an empty state with zeroed counters
func NewState() *State {
	return &State{
		Users:           []*models.User{},
		Deposits:        []*models.Deposit{},
		PaymentAccounts: []*models.PaymentAccount{},
		IncomingLedger:  []*models.LedgerEntry{},
		Counters: map[string]int64{
			BucketUsers:           0,
			BucketDeposits:        0,
			BucketPaymentAccounts: 0,
			BucketIncomingLedger:  0,
		},
	}
}

// NextID allocates the next id for a bucket. IDs are monotonic and never
// reused, even after deletion.
func (s *State) NextID(bucket string) int64 {
	if s.Counters == nil {
		s.Counters = make(map[string]int64)
	}
	s.Counters[bucket]++
	return s.Counters[bucket]
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	clone := &State{
		Users:           make([]*models.User, len(s.Users)),
		Deposits:        make([]*models.Deposit, len(s.Deposits)),
		PaymentAccounts: make([]*models.PaymentAccount, len(s.PaymentAccounts)),
		IncomingLedger:  make([]*models.LedgerEntry, len(s.IncomingLedger)),
		Counters:        make(map[string]int64, len(s.Counters)),
	}

	for i, u := range s.Users {
		clone.Users[i] = u.Clone()
	}
	for i, d := range s.Deposits {
		clone.Deposits[i] = d.Clone()
	}
	for i, a := range s.PaymentAccounts {
		clone.PaymentAccounts[i] = a.Clone()
	}
	for i, e := range s.IncomingLedger {
		clone.IncomingLedger[i] = e.Clone()
	}
	for k, v := range s.Counters {
		clone.Counters[k] = v
	}

	return clone
}

// Mutator is applied to a private copy of the state inside Store.Write. It
// may mutate the state freely; returning an error discards the mutation.
type Mutator func(*State) error

// Store is the JSON-backed record store. Writers are strictly serialized
// behind a single mutex; readers receive independent snapshots and never
// block writers.
type Store struct {
	path string
	mu   sync.Mutex
	// state is the committed in-memory dataset, always consistent with the
	// durable file. Mutations happen on a clone that is only swapped in
	// after a successful persist, so a failed persist rolls back for free.
	state *State
	log   logger.Logger
}

// Open loads the store from path, creating parent directories as needed.
// A missing file starts from an empty state; an unreadable or corrupted file
// also falls back to an empty state with a warning, matching the behavior of
// the durable format's previous custodian.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Storage("open", err).WithContext("path", path)
	}

	log := logger.WithComponent("store")

	state, err := load(path)
	if err != nil {
		log.WithError(err).Warnf("state file %s unreadable, starting from empty state", path)
		state = NewState()
	}

	return &Store{
		path:  path,
		state: state,
		log:   log,
	}, nil
}

func load(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	state := NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decoding state file: %w", err)
	}
	return state, nil
}

// Read returns an independent point-in-time snapshot of all collections
func (s *Store) Read() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Write applies the mutator to the state and persists the result durably.
// The mutator runs against a private clone; only after the clone has been
// written to disk does it become the live state. Pointers captured by the
// mutator reference the committed state afterwards, so callers must clone
// anything they hand back out.
func (s *Store) Write(mutate Mutator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := mutate(next); err != nil {
		return err
	}

	if err := s.persist(next); err != nil {
		return errors.Storage("persist", err).WithContext("path", s.path)
	}

	s.state = next
	return nil
}

// persist writes the state to a temporary file and renames it over the
// durable copy. Rename is atomic on POSIX filesystems.
func (s *Store) persist(state *State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing temp state file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}

	return nil
}

// Path returns the durable file location
func (s *Store) Path() string {
	return s.path
}
