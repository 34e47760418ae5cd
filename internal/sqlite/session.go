package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
	"github.com/ganot/laptrack/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert stores one session as a new document for the account. Each
// document gets a fresh doc id; (account_id, session_id) uniqueness
// maps to repository.ErrDuplicate so callers can skip already-stored
// sessions.
func (r *SessionRepository) Insert(ctx context.Context, accountID string, sess session.Session) error {
	laps, err := json.Marshal(sess.Laps)
	if err != nil {
		return fmt.Errorf("failed to encode laps: %w", err)
	}

	query := `
		INSERT INTO session_docs (
			doc_id, account_id, session_id, title, date,
			total_time, lap_count, laps, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		uuid.NewString(),
		accountID,
		sess.ID,
		sess.Title,
		sess.Date,
		int64(sess.TotalTime),
		sess.LapCount,
		string(laps),
		time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// FetchAll returns every session stored for the account, in no
// particular order.
func (r *SessionRepository) FetchAll(ctx context.Context, accountID string) ([]session.Session, error) {
	query := `
		SELECT session_id, title, date, total_time, lap_count, laps
		FROM session_docs
		WHERE account_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var sess session.Session
		var totalTime int64
		var laps string
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Date, &totalTime, &sess.LapCount, &laps); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.TotalTime = stopwatch.Millis(totalTime)
		if err := json.Unmarshal([]byte(laps), &sess.Laps); err != nil {
			return nil, fmt.Errorf("failed to decode laps: %w", err)
		}
		if sess.Laps == nil {
			sess.Laps = []stopwatch.Lap{}
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}
