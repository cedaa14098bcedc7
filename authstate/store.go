package authstate

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Store holds the process-wide auth state: current access token plus
// authenticated user, with every mutation snapshotted to the configured
// [Storage]. One instance exists per client session.
//
// All methods are safe for concurrent use. The mutex spans the full
// read-modify-persist cycle of each mutator, so once a mutator returns,
// every subsequent read observes the new state and never a partial one.
type Store struct {
	mu       sync.Mutex
	state    State
	restored bool

	storage Storage
	persist bool

	now func() time.Time
}

// NewStore creates an empty store. storage may be nil when persist is
// false.
func NewStore(storage Storage, persist bool) *Store {
	return &Store{
		storage: storage,
		persist: persist && storage != nil,
		now:     time.Now,
	}
}

// Restore rehydrates the store from durable storage. Absent, unreadable, or
// corrupt snapshots all leave the store empty — a damaged snapshot must
// never prevent startup. Returns true when a non-empty state was restored;
// such state is reported by [Store.RestoredUnverified] until the first
// ConfirmRestored or SetAuth.
func (s *Store) Restore(ctx context.Context) bool {
	if !s.persist {
		return false
	}

	data, err := s.storage.Load(ctx)
	if errors.Is(err, ErrNoState) {
		return false
	}
	if err != nil {
		log.Print("hubauth: state restore read failed")
		return false
	}

	state, err := Decode(data)
	if err != nil {
		log.Print("hubauth: persisted state corrupt, starting empty")
		if clearErr := s.storage.Clear(ctx); clearErr != nil {
			log.Print("hubauth: corrupt state cleanup failed")
		}
		return false
	}
	if !state.IsAuthenticated {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = *state
	s.restored = true
	return true
}

// RestoredUnverified reports whether the current state came from a
// persisted snapshot that has not yet been confirmed against the backend.
// The token inside may have expired since it was written.
func (s *Store) RestoredUnverified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

// ConfirmRestored marks rehydrated state as validated, after a refresh or
// an authenticated call succeeded with the restored token.
func (s *Store) ConfirmRestored() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restored = false
}

// SetAuth unconditionally replaces token and user together and derives
// IsAuthenticated. The token is treated as opaque — no format validation.
// Idempotent.
func (s *Store) SetAuth(ctx context.Context, token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	s.state = State{
		AccessToken:     token,
		User:            &u,
		IsAuthenticated: true,
		UpdatedAt:       s.now().Unix(),
	}
	s.restored = false
	s.persistLocked(ctx)
}

// ClearAuth resets token, user, and the derived flag together and erases
// the persisted snapshot. Safe to call on an already-empty store.
func (s *Store) ClearAuth(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{UpdatedAt: s.now().Unix()}
	s.restored = false
	if s.persist {
		if err := s.storage.Clear(ctx); err != nil {
			log.Print("hubauth: state clear persist failed")
		}
	}
}

// UpdateUser merges the patch into the current user without touching the
// access token. No-op when no user is set.
func (s *Store) UpdateUser(ctx context.Context, patch UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.User == nil {
		return
	}

	u := *s.state.User
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	s.state.User = &u
	s.state.UpdatedAt = s.now().Unix()
	s.persistLocked(ctx)
}

// SetRole updates only the user's role. No-op when no user is set.
func (s *Store) SetRole(ctx context.Context, role Role) {
	r := role
	s.UpdateUser(ctx, UserPatch{Role: &r})
}

// CurrentToken returns the in-memory access token, "" when absent. Never
// performs I/O.
func (s *Store) CurrentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

// CurrentUser returns a copy of the in-memory user, nil when absent. Never
// performs I/O.
func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// IsAuthenticated reports the derived flag: true iff both token and user
// are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	if s.state.User != nil {
		u := *s.state.User
		out.User = &u
	}
	return out
}

// persistLocked snapshots the current state. Persistence failures are
// logged, never surfaced: durable storage is an optimization, the in-memory
// state stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	if !s.persist {
		return
	}
	data, err := Encode(&s.state)
	if err != nil {
		log.Print("hubauth: state snapshot encode failed")
		return
	}
	if err := s.storage.Save(ctx, data); err != nil {
		log.Print("hubauth: state snapshot persist failed")
	}
}
