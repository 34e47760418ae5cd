package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/laptrack/internal/repository"
)

const minPasswordLen = 6

// AccountRepository manages account persistence.
type AccountRepository interface {
	Create(ctx context.Context, acct *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

// Listener observes identity changes. It receives the new account id,
// or the empty string when the user signs out.
type Listener func(userID string)

// Service handles sign-up, sign-in and sign-out, and exposes the
// current identity as a reactive signal. Listeners are invoked
// synchronously on every change, in subscription order.
type Service struct {
	accounts AccountRepository
	logger   *slog.Logger

	mu        sync.Mutex
	current   *Account
	listeners map[int]Listener
	nextSub   int
}

// NewService creates an identity service with no signed-in user.
func NewService(accounts AccountRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		accounts:  accounts,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// CurrentUserID returns the signed-in account id, or "" if anonymous.
func (s *Service) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

// CurrentEmail returns the signed-in email, or "" if anonymous.
func (s *Service) CurrentEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Email
}

// Subscribe registers a listener for identity changes and returns its
// unsubscribe function.
func (s *Service) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SignUp registers a new account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Account, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	acct := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashPassword(password),
		CreatedAt:    time.Now(),
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info("account created", "account_id", acct.ID)
	s.setCurrent(acct)
	return acct, nil
}

// SignIn authenticates an email/password pair and makes the account
// the current identity.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Account, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if acct.Disabled {
		return nil, ErrUserDisabled
	}
	if acct.PasswordHash != hashPassword(password) {
		return nil, ErrWrongPassword
	}

	s.logger.Info("signed in", "account_id", acct.ID)
	s.setCurrent(acct)
	return acct, nil
}

// SignOut clears the current identity. No-op when already anonymous.
func (s *Service) SignOut() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	id := s.current.ID
	s.mu.Unlock()

	s.logger.Info("signed out", "account_id", id)
	s.setCurrent(nil)
}

func (s *Service) setCurrent(acct *Account) {
	s.mu.Lock()
	s.current = acct
	userID := ""
	if acct != nil {
		userID = acct.ID
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(userID)
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
