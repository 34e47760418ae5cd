package repository

import (
	"context"

	"github.com/ganot/laptrack/internal/domain/session"
)

// SessionRepository manages the per-account cloud session collection.
// The backend guarantees neither ordering nor a size cap; consumers
// order and truncate on read.
type SessionRepository interface {
	// Insert stores one session as a new document. Inserting a
	// session id that already exists for the account returns
	// ErrDuplicate, which makes replayed migrations harmless.
	Insert(ctx context.Context, accountID string, sess session.Session) error
	// FetchAll returns every session stored for the account.
	FetchAll(ctx context.Context, accountID string) ([]session.Session, error)
}

// LocalStore is the on-device key-value storage used for anonymous
// history. Values are whole serialized documents keyed by fixed
// string keys.
type LocalStore interface {
	// Get reads the value stored under key into out, reporting
	// whether the key existed.
	Get(key string, out any) (bool, error)
	Set(key string, value any) error
	Delete(key string) error
}
