package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ganot/laptrack/internal/domain/identity"
	"github.com/ganot/laptrack/internal/domain/session"
)

// SessionRepository is a mock for repository.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Insert(ctx context.Context, accountID string, sess session.Session) error {
	args := m.Called(ctx, accountID, sess)
	return args.Error(0)
}

func (m *SessionRepository) FetchAll(ctx context.Context, accountID string) ([]session.Session, error) {
	args := m.Called(ctx, accountID)
	if sessions, ok := args.Get(0).([]session.Session); ok {
		return sessions, args.Error(1)
	}
	return nil, args.Error(1)
}

// AccountRepository is a mock for identity.AccountRepository.
type AccountRepository struct {
	mock.Mock
}

func (m *AccountRepository) Create(ctx context.Context, acct *identity.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

func (m *AccountRepository) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	args := m.Called(ctx, email)
	if acct, ok := args.Get(0).(*identity.Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

// LocalStore is a mock for repository.LocalStore.
type LocalStore struct {
	mock.Mock
}

func (m *LocalStore) Get(key string, out any) (bool, error) {
	args := m.Called(key, out)
	return args.Bool(0), args.Error(1)
}

func (m *LocalStore) Set(key string, value any) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *LocalStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}
