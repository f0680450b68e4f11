// Package session keeps the authenticated identity of the terminal: the
// bearer token and the user profile. Both live in memory and in the local
// metadata table so a restarted client resumes the session.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bitacora/internal/dbx"
	"github.com/dmitrijs2005/bitacora/internal/logging"
)

// Persistence keys.
const (
	KeyToken = "authToken"
	KeyUser  = "authUser"
)

type Store struct {
	db  *sql.DB
	log logging.Logger

	mu    sync.RWMutex
	token string
	user  *models.User
}

func NewStore(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{db: db, log: log}
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Restore loads a persisted session. Missing or unreadable data leaves the
// store logged out; it is never an error for the caller.
func (s *Store) Restore(ctx context.Context) {
	r := s.repo(s.db)

	token, ok, err := r.Get(ctx, KeyToken)
	if err != nil || !ok || len(token) == 0 {
		if err != nil {
			s.log.Warn(ctx, "session restore failed", "error", err)
		}
		return
	}

	raw, ok, err := r.Get(ctx, KeyUser)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn(ctx, "session restore failed", "error", err)
		}
		return
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.log.Warn(ctx, "stored user is unreadable, ignoring session", "error", err)
		return
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = &u
	s.mu.Unlock()
	s.log.Debug(ctx, "session restored", "username", u.Username)
}

// Commit persists token and user in one transaction and then makes them the
// current session. On failure the in-memory session is left unchanged.
func (s *Store) Commit(ctx context.Context, token string, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Set(ctx, KeyToken, []byte(token)); err != nil {
			return err
		}
		return r.Set(ctx, KeyUser, raw)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	u := *user
	s.mu.Lock()
	s.token = token
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Clear drops the session. Memory is always cleared, even when removing the
// persisted keys fails. Calling it twice is harmless.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.repo(s.db).Delete(ctx, KeyToken, KeyUser); err != nil {
		s.log.Error(ctx, "failed to remove persisted session", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Invalidate is called by the request client after a 401.
func (s *Store) Invalidate(ctx context.Context) {
	_ = s.Clear(ctx)
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsStaff
}

// User returns a copy of the current profile, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
