package testutil

import (
	"context"
	"sort"
	"time"

	"killbill-service/internal/domain/subscription"
	xerrors "killbill-service/internal/pkg/errors"
)

// InMemoryPlanStore implements subscription.PlanRepository
type InMemoryPlanStore struct {
	db *InMemoryDB
}

func (s *InMemoryPlanStore) Create(ctx context.Context, plan *subscription.SubscriptionPlan) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	plan.ID = s.db.nextID("plans")
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	s.db.plans[plan.ID] = *plan
	return nil
}

func (s *InMemoryPlanStore) Update(ctx context.Context, plan *subscription.SubscriptionPlan) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	if _, ok := s.db.plans[plan.ID]; !ok {
		return xerrors.ErrNotFound
	}
	plan.UpdatedAt = time.Now()
	s.db.plans[plan.ID] = *plan
	return nil
}

func (s *InMemoryPlanStore) FindByID(ctx context.Context, id int64) (*subscription.SubscriptionPlan, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	p, ok := s.db.plans[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &p, nil
}

func (s *InMemoryPlanStore) List(ctx context.Context, activeOnly bool) ([]subscription.SubscriptionPlan, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	var out []subscription.SubscriptionPlan
	for _, p := range s.db.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemoryPlanStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	if _, ok := s.db.plans[id]; !ok {
		return xerrors.ErrNotFound
	}
	for _, sub := range s.db.subscriptions {
		if sub.PlanID == id {
			return xerrors.ErrProtected
		}
	}
	delete(s.db.plans, id)
	return nil
}
