package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/zoobzio/metricz"

	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/repository"
)

// Limit is the maximum number of sessions the store keeps visible.
// Older sessions beyond the limit are evicted on write and truncated
// on read.
const Limit = 50

// localKey is the device store key holding anonymous history.
const localKey = "stopwatch-history"

// Metric keys exposed by the store.
const (
	ArchivedKey metricz.Key = "history_sessions_archived"
	EvictedKey  metricz.Key = "history_sessions_evicted"
	MigratedKey metricz.Key = "history_sessions_migrated"
	FaultsKey   metricz.Key = "history_persistence_faults"
)

// ErrNotFound is returned when a session id is not in the loaded
// history.
var ErrNotFound = errors.New("session not found")

// Store keeps the current history in memory and writes through to one
// of two backends: the device store while anonymous, the per-account
// cloud collection once signed in. The in-memory copy is the source of
// truth for reads; a failed backend write is logged and counted, never
// surfaced to the caller.
type Store struct {
	local  repository.LocalStore
	cloud  repository.SessionRepository
	logger *slog.Logger

	archived metricz.Counter
	evicted  metricz.Counter
	migrated metricz.Counter
	faults   metricz.Counter

	mu       sync.RWMutex
	userID   string
	sessions []session.Session
}

// NewStore creates a history store. The registry may be shared with
// other components.
func NewStore(local repository.LocalStore, cloud repository.SessionRepository, registry *metricz.Registry, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if registry == nil {
		registry = metricz.New()
	}
	return &Store{
		local:    local,
		cloud:    cloud,
		logger:   logger,
		archived: registry.Counter(ArchivedKey),
		evicted:  registry.Counter(EvictedKey),
		migrated: registry.Counter(MigratedKey),
		faults:   registry.Counter(FaultsKey),
		sessions: []session.Session{},
	}
}

// Sessions returns the loaded history, newest first.
func (s *Store) Sessions() []session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]session.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Get returns the loaded session with the given id.
func (s *Store) Get(id int64) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return session.Session{}, ErrNotFound
}

// Load replaces the in-memory history from the active backend. Cloud
// results carry no ordering guarantee, so they are sorted newest first
// and truncated to the limit here.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	if s.userID != "" {
		sessions, err := s.cloud.FetchAll(ctx, s.userID)
		if err != nil {
			return fmt.Errorf("failed to load cloud history: %w", err)
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].ID > sessions[j].ID
		})
		if len(sessions) > Limit {
			sessions = sessions[:Limit]
		}
		if sessions == nil {
			sessions = []session.Session{}
		}
		s.sessions = sessions
		return nil
	}

	sessions, err := s.readLocal()
	if err != nil {
		return err
	}
	s.sessions = sessions
	return nil
}

func (s *Store) readLocal() ([]session.Session, error) {
	var sessions []session.Session
	found, err := s.local.Get(localKey, &sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to load local history: %w", err)
	}
	if !found || sessions == nil {
		sessions = []session.Session{}
	}
	return sessions, nil
}

// Append records a newly archived session. The session is prepended
// in memory, the cap enforced, and the result written through to the
// active backend. The in-memory update survives a backend failure so
// the session stays visible for the rest of the process lifetime; the
// error is returned only so callers can report it.
func (s *Store) Append(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]session.Session, 0, len(s.sessions)+1)
	next = append(next, sess)
	next = append(next, s.sessions...)
	if len(next) > Limit {
		s.evicted.Add(float64(len(next) - Limit))
		next = next[:Limit]
	}
	s.sessions = next
	s.archived.Inc()

	if s.userID != "" {
		err := s.cloud.Insert(ctx, s.userID, sess)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			s.faults.Inc()
			return fmt.Errorf("failed to store session in cloud: %w", err)
		}
		return nil
	}
	if err := s.local.Set(localKey, s.sessions); err != nil {
		s.faults.Inc()
		return fmt.Errorf("failed to store session locally: %w", err)
	}
	return nil
}

// Clear drops the in-memory history and the local copy. Cloud data is
// left untouched; a signed-in user sees it again on the next load.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = []session.Session{}
	if err := s.local.Delete(localKey); err != nil {
		return fmt.Errorf("failed to clear local history: %w", err)
	}
	return nil
}

// OnIdentityChange switches the active backend when the signed-in
// user changes. On sign-in, any anonymous local history is migrated
// into the account's cloud collection first, then the history is
// reloaded from the cloud. On sign-out the store reverts to whatever
// the device holds.
func (s *Store) OnIdentityChange(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	if userID != "" {
		if err := s.migrateLocalLocked(ctx, userID); err != nil {
			s.fault("failed to migrate local history", err, "user_id", userID)
		}
	}
	if err := s.loadLocked(ctx); err != nil {
		s.fault("failed to reload history", err, "user_id", userID)
		s.sessions = []session.Session{}
	}
}

// migrateLocalLocked moves the anonymous local history into the
// account's cloud collection, then deletes the local copy. The stored
// list is newest-first; inserts run in reverse so that an interrupted
// migration has preserved the oldest sessions, and the final ordering
// is unaffected since loads re-sort by id. Sessions the account
// already holds are skipped, so a migration interrupted mid-way is
// safe to replay: the local copy is only deleted once every session
// has been stored.
func (s *Store) migrateLocalLocked(ctx context.Context, userID string) error {
	sessions, err := s.readLocal()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	for i := len(sessions) - 1; i >= 0; i-- {
		err := s.cloud.Insert(ctx, userID, sessions[i])
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to migrate session %d: %w", sessions[i].ID, err)
		}
		s.migrated.Inc()
	}

	if err := s.local.Delete(localKey); err != nil {
		return fmt.Errorf("failed to remove migrated local history: %w", err)
	}
	s.logger.Info("migrated local history to cloud", "user_id", userID, "sessions", len(sessions))
	return nil
}

func (s *Store) fault(msg string, err error, args ...any) {
	s.faults.Inc()
	s.logger.Error(msg, append(args, "error", err)...)
}
