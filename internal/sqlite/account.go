package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ganot/laptrack/internal/domain/identity"
	"github.com/ganot/laptrack/internal/repository"
)

// AccountRepository implements identity.AccountRepository for SQLite
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, acct *identity.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, disabled, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		acct.ID,
		acct.Email,
		acct.PasswordHash,
		acct.Disabled,
		acct.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	query := `
		SELECT id, email, password_hash, disabled, created_at
		FROM accounts
		WHERE email = ?
	`

	var acct identity.Account
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&acct.ID,
		&acct.Email,
		&acct.PasswordHash,
		&acct.Disabled,
		&acct.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acct, nil
}
