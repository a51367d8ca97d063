// Package users manages registration and credential checks for the identities
// that own deposits. Emails are unique case-insensitively; passwords are
// stored as bcrypt hashes.
package users

import (
	"strings"
	"time"

	"deposit-reconciliation-service/internal/models"
	"deposit-reconciliation-service/internal/store"
	"deposit-reconciliation-service/pkg/errors"
	"deposit-reconciliation-service/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// Service exposes user registration and lookup
type Service struct {
	store *store.Store
	log   logger.Logger
	now   func() time.Time
}

// NewService creates a user service backed by the given store
func NewService(st *store.Store) *Service {
	return &Service{
		store: st,
		log:   logger.WithComponent("users"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with a bcrypt-hashed password. Fails with a
// conflict error when the email is already taken, compared case-insensitively.
func (s *Service) Register(email, password string, isAdmin bool) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.Validation("email", email, "email cannot be empty")
	}
	if password == "" {
		return nil, errors.Validation("password", nil, "password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "hashing password failed")
	}

	var created *models.User
	err = s.store.Write(func(st *store.State) error {
		lowered := strings.ToLower(email)
		for _, u := range st.Users {
			if strings.ToLower(u.Email) == lowered {
				return errors.Conflict("email", email, "email already exists")
			}
		}

		created = &models.User{
			ID:           st.NextID(store.BucketUsers),
			Email:        email,
			PasswordHash: string(hash),
			IsAdmin:      isAdmin,
			CreatedAt:    s.now(),
		}
		st.Users = append(st.Users, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("registered user %d (%s)", created.ID, created.Email)
	return created.Clone(), nil
}

// Authenticate verifies the credentials and returns the matching user.
// Both an unknown email and a wrong password produce the same not-found
// error so callers cannot probe for registered addresses.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	user := s.findByEmail(email)
	if user == nil {
		return nil, errors.New(errors.KindNotFound, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New(errors.KindNotFound, "invalid credentials")
	}

	return user, nil
}

// Get returns the user with the given id
func (s *Service) Get(userID int64) (*models.User, error) {
	for _, u := range s.store.Read().Users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, errors.NotFound("user", userID)
}

// GetByEmail returns the user with the given email, compared
// case-insensitively
func (s *Service) GetByEmail(email string) (*models.User, error) {
	user := s.findByEmail(email)
	if user == nil {
		return nil, errors.Newf(errors.KindNotFound, "user %s not found", email).
			WithContext("email", email)
	}
	return user, nil
}

// EnsureAdmin registers an admin account if no user with the email exists.
// Used at startup to bootstrap the first administrator; a concurrent
// registration of the same email is tolerated.
func (s *Service) EnsureAdmin(email, password string) error {
	if s.findByEmail(email) != nil {
		return nil
	}

	_, err := s.Register(email, password, true)
	if err != nil && errors.IsConflict(err) {
		return nil
	}
	return err
}

func (s *Service) findByEmail(email string) *models.User {
	lowered := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.store.Read().Users {
		if strings.ToLower(u.Email) == lowered {
			return u
		}
	}
	return nil
}
