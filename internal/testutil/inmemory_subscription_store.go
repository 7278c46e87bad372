package testutil

import (
	"context"
	"sort"
	"time"

	"killbill-service/internal/domain/subscription"
	xerrors "killbill-service/internal/pkg/errors"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	db *InMemoryDB
}

// joined returns a copy with client and plan attached. Callers hold the lock.
func (s *InMemorySubscriptionStore) joined(sub subscription.Subscription) subscription.Subscription {
	if c, ok := s.db.clients[sub.ClientID]; ok {
		sub.Client = &c
	}
	if p, ok := s.db.plans[sub.PlanID]; ok {
		sub.Plan = &p
	}
	if sub.EndDate != nil {
		end := *sub.EndDate
		sub.EndDate = &end
	}
	return sub
}

func (s *InMemorySubscriptionStore) store(sub *subscription.Subscription) {
	stored := *sub
	stored.Client = nil
	stored.Plan = nil
	s.db.subscriptions[sub.ID] = stored
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	if _, ok := s.db.clients[sub.ClientID]; !ok {
		return xerrors.ErrNotFound
	}
	if _, ok := s.db.plans[sub.PlanID]; !ok {
		return xerrors.ErrNotFound
	}
	sub.ID = s.db.nextID("subscriptions")
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	s.store(sub)
	return nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	if _, ok := s.db.subscriptions[sub.ID]; !ok {
		return xerrors.ErrNotFound
	}
	sub.UpdatedAt = time.Now()
	s.store(sub)
	return nil
}

func (s *InMemorySubscriptionStore) UpdateStatus(ctx context.Context, id int64, status subscription.SubscriptionStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	sub, ok := s.db.subscriptions[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now()
	s.db.subscriptions[id] = sub
	return nil
}

func (s *InMemorySubscriptionStore) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	sub, ok := s.db.subscriptions[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	out := s.joined(sub)
	return &out, nil
}

func (s *InMemorySubscriptionStore) filter(keep func(subscription.Subscription) bool) ([]subscription.Subscription, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	var out []subscription.Subscription
	for _, sub := range s.db.subscriptions {
		if keep(sub) {
			out = append(out, s.joined(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filters *subscription.SubscriptionListFilters) ([]subscription.Subscription, error) {
	return s.filter(func(sub subscription.Subscription) bool {
		if filters.ClientID != 0 && sub.ClientID != filters.ClientID {
			return false
		}
		switch filters.Filter {
		case subscription.FilterActive:
			return sub.Status == subscription.StatusActive
		case subscription.FilterExpired:
			return sub.Status == subscription.StatusExpired
		case subscription.FilterExpiring:
			return sub.IsExpiringSoon(filters.Today, subscription.ExpiringSoonWindow)
		}
		return true
	})
}

func (s *InMemorySubscriptionStore) ListExpiringWithin(ctx context.Context, after, through time.Time) ([]subscription.Subscription, error) {
	return s.filter(func(sub subscription.Subscription) bool {
		return sub.Status == subscription.StatusActive && sub.EndDate != nil &&
			sub.EndDate.After(after) && !sub.EndDate.After(through)
	})
}

func (s *InMemorySubscriptionStore) ListEndingOn(ctx context.Context, day time.Time) ([]subscription.Subscription, error) {
	return s.filter(func(sub subscription.Subscription) bool {
		return sub.EndDate != nil && sub.EndDate.Equal(day)
	})
}

func (s *InMemorySubscriptionStore) ListNonCancelled(ctx context.Context) ([]subscription.Subscription, error) {
	return s.filter(func(sub subscription.Subscription) bool {
		return sub.Status != subscription.StatusCancelled
	})
}

func (s *InMemorySubscriptionStore) ListByPlan(ctx context.Context, planID int64) ([]subscription.Subscription, error) {
	return s.filter(func(sub subscription.Subscription) bool { return sub.PlanID == planID })
}

func (s *InMemorySubscriptionStore) ListByClient(ctx context.Context, clientID int64) ([]subscription.Subscription, error) {
	return s.filter(func(sub subscription.Subscription) bool { return sub.ClientID == clientID })
}

func (s *InMemorySubscriptionStore) CountByStatus(ctx context.Context, status subscription.SubscriptionStatus) (int64, error) {
	subs, err := s.filter(func(sub subscription.Subscription) bool { return sub.Status == status })
	return int64(len(subs)), err
}
