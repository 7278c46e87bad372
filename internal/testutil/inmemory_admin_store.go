package testutil

import (
	"context"
	"strings"
	"time"

	"killbill-service/internal/domain/admin"
	xerrors "killbill-service/internal/pkg/errors"
)

// InMemoryAdminStore implements admin.Repository
type InMemoryAdminStore struct {
	db *InMemoryDB
}

func (s *InMemoryAdminStore) Create(ctx context.Context, a *admin.Admin) (*admin.Admin, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	for _, existing := range s.db.admins {
		if strings.EqualFold(existing.Email, a.Email) {
			return nil, xerrors.ErrConflict
		}
	}
	a.ID = s.db.nextID("admins")
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	s.db.admins[a.ID] = *a
	return a, nil
}

func (s *InMemoryAdminStore) FindByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	for _, a := range s.db.admins {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (s *InMemoryAdminStore) FindByID(ctx context.Context, id int64) (*admin.Admin, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	a, ok := s.db.admins[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryAdminStore) update(id int64, fn func(*admin.Admin)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	a, ok := s.db.admins[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	fn(&a)
	a.UpdatedAt = time.Now()
	s.db.admins[id] = a
	return nil
}

func (s *InMemoryAdminStore) UpdateLastLogin(ctx context.Context, id int64) error {
	now := time.Now()
	return s.update(id, func(a *admin.Admin) { a.LastLogin = &now })
}

func (s *InMemoryAdminStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.update(id, func(a *admin.Admin) { a.PasswordHash = passwordHash })
}

func (s *InMemoryAdminStore) Count(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return 0, s.db.Err
	}
	return int64(len(s.db.admins)), nil
}
