package testutil

import (
	"context"
	"sort"
	"strings"
	"time"

	"killbill-service/internal/domain/client"
	xerrors "killbill-service/internal/pkg/errors"
)

// InMemoryClientStore implements client.Repository
type InMemoryClientStore struct {
	db *InMemoryDB
}

func (s *InMemoryClientStore) Create(ctx context.Context, c *client.Client) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	c.ID = s.db.nextID("clients")
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.db.clients[c.ID] = *c
	return nil
}

func (s *InMemoryClientStore) Update(ctx context.Context, c *client.Client) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	if _, ok := s.db.clients[c.ID]; !ok {
		return xerrors.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	s.db.clients[c.ID] = *c
	return nil
}

func (s *InMemoryClientStore) FindByID(ctx context.Context, id int64) (*client.Client, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	c, ok := s.db.clients[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryClientStore) List(ctx context.Context, search string) ([]client.Client, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	var out []client.Client
	for _, c := range s.db.clients {
		if search != "" && !strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyName != out[j].CompanyName {
			return out[i].CompanyName < out[j].CompanyName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
