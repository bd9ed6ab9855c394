// Package session holds the signed-in user's profile and addresses.
//
// The cached user blob is trusted as-is on startup; nothing is verified with
// the backend, so the session is a convenience and not a security boundary.
// The active user id and the selected address id are separate pointers,
// stored independently of the user blob.
package session

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/kv"
)

// Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	store  kv.Store
	logger *zap.Logger
	user   *api.User
}

// Load builds a Session from the cached user blob, if any.
func Load(ctx context.Context, store kv.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{store: store, logger: logger}
	var u api.User
	ok, err := kv.GetJSON(ctx, store, kv.KeyUser, &u)
	if err != nil {
		logger.Warn("load cached user", zap.Error(err))
		return s
	}
	if ok {
		s.user = &u
	}
	return s
}

// User returns a copy of the current user.
func (s *Session) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return api.User{}, false
	}
	u := *s.user
	u.Addresses = slices.Clone(s.user.Addresses)
	return u, true
}

// SaveUser replaces the user record and mirrors it to storage.
func (s *Session) SaveUser(ctx context.Context, u api.User) error {
	u.Addresses = slices.Clone(u.Addresses)
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return s.persist(ctx, u)
}

// UpdateAddress replaces the address with the same id, or appends it. It
// does not contact the backend.
func (s *Session) UpdateAddress(ctx context.Context, addr api.Address) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	s.user.Addresses = UpsertAddress(s.user.Addresses, addr)
	u := *s.user
	s.mu.Unlock()
	return s.persist(ctx, u)
}

// RemoveAddress drops an address from the cached user.
func (s *Session) RemoveAddress(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	before := len(s.user.Addresses)
	s.user.Addresses = slices.DeleteFunc(slices.Clone(s.user.Addresses), func(a api.Address) bool {
		return a.ID == id
	})
	if len(s.user.Addresses) == before {
		s.mu.Unlock()
		return nil
	}
	u := *s.user
	s.mu.Unlock()
	return s.persist(ctx, u)
}

// UpsertAddress returns a copy of list with addr replacing the entry that
// has the same id, or appended when there is none.
func UpsertAddress(list []api.Address, addr api.Address) []api.Address {
	out := slices.Clone(list)
	if addr.ID != "" {
		if i := slices.IndexFunc(out, func(a api.Address) bool { return a.ID == addr.ID }); i >= 0 {
			out[i] = addr
			return out
		}
	}
	return append(out, addr)
}

// Logout clears the user and removes the user, userId and addressId keys.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if err := s.store.Remove(ctx, kv.KeyUser, kv.KeyUserID, kv.KeyAddressID); err != nil {
		s.logger.Warn("clear session keys", zap.Error(err))
		return err
	}
	return nil
}

// ActiveUserID reads the userId pointer.
func (s *Session) ActiveUserID(ctx context.Context) (string, error) {
	return kv.GetString(ctx, s.store, kv.KeyUserID)
}

// SetActiveUserID writes the userId pointer.
func (s *Session) SetActiveUserID(ctx context.Context, id string) error {
	return kv.SetJSON(ctx, s.store, kv.KeyUserID, id)
}

// SelectedAddressID reads the addressId pointer.
func (s *Session) SelectedAddressID(ctx context.Context) (string, error) {
	return kv.GetString(ctx, s.store, kv.KeyAddressID)
}

// SelectAddress writes the addressId pointer. An empty id removes it.
func (s *Session) SelectAddress(ctx context.Context, id string) error {
	if id == "" {
		return s.store.Remove(ctx, kv.KeyAddressID)
	}
	return kv.SetJSON(ctx, s.store, kv.KeyAddressID, id)
}

func (s *Session) persist(ctx context.Context, u api.User) error {
	if err := kv.SetJSON(ctx, s.store, kv.KeyUser, u); err != nil {
		s.logger.Warn("persist user", zap.Error(err))
		return err
	}
	return nil
}
