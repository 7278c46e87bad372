package testutil

import (
	"context"
	"sort"
	"time"

	"killbill-service/internal/domain/payment"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	db *InMemoryDB
}

// insertPayment stores p. Callers hold the lock.
func insertPayment(db *InMemoryDB, p *payment.Payment) {
	p.ID = db.nextID("payments")
	p.CreatedAt = time.Now()
	db.payments[p.ID] = *p
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	insertPayment(s.db, p)
	return nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filters *payment.ListFilters) ([]payment.Payment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	var out []payment.Payment
	for _, p := range s.db.payments {
		sub := s.db.subscriptions[p.SubscriptionID]
		p.ClientID = sub.ClientID
		p.CompanyName = s.db.clients[sub.ClientID].CompanyName

		if filters.ClientID != 0 && p.ClientID != filters.ClientID {
			continue
		}
		if !filters.FromDate.IsZero() && p.PaymentDate.Before(filters.FromDate) {
			continue
		}
		if !filters.ToDate.IsZero() && p.PaymentDate.After(filters.ToDate) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// All returns every payment in insertion order.
func (s *InMemoryPaymentStore) All() []payment.Payment {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]payment.Payment, 0, len(s.db.payments))
	for _, p := range s.db.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
