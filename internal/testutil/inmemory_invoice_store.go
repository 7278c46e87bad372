package testutil

import (
	"context"
	"sort"
	"time"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/payment"
	xerrors "killbill-service/internal/pkg/errors"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	db *InMemoryDB
}

// joined returns a copy with the subscription, client and plan attached.
// Callers hold the lock.
func (s *InMemoryInvoiceStore) joined(inv invoice.Invoice) invoice.Invoice {
	if sub, ok := s.db.subscriptions[inv.SubscriptionID]; ok {
		j := (&InMemorySubscriptionStore{db: s.db}).joined(sub)
		inv.Subscription = &j
	}
	return inv
}

func (s *InMemoryInvoiceStore) last() *invoice.Invoice {
	var last *invoice.Invoice
	for _, inv := range s.db.invoices {
		if last == nil || inv.ID > last.ID {
			cp := inv
			last = &cp
		}
	}
	return last
}

func (s *InMemoryInvoiceStore) insert(inv *invoice.Invoice) error {
	if _, ok := s.db.subscriptions[inv.SubscriptionID]; !ok {
		return xerrors.ErrNotFound
	}
	for _, existing := range s.db.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return xerrors.ErrConflict
		}
		if inv.Source == invoice.SourceRenewal && existing.Source == invoice.SourceRenewal &&
			existing.SubscriptionID == inv.SubscriptionID && existing.DueDate.Equal(inv.DueDate) {
			return xerrors.ErrConflict
		}
	}

	inv.ID = s.db.nextID("invoices")
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	stored := *inv
	stored.Subscription = nil
	s.db.invoices[inv.ID] = stored
	return nil
}

func (s *InMemoryInvoiceStore) build(fn invoice.BuildFunc) (*invoice.Invoice, error) {
	inv := fn(s.last())
	number, err := invoice.FreeNumber(inv.InvoiceNumber, func(number string) (bool, error) {
		for _, existing := range s.db.invoices {
			if existing.InvoiceNumber == number {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	inv.InvoiceNumber = number
	return inv, nil
}

func (s *InMemoryInvoiceStore) FindOrCreateForPeriod(ctx context.Context, subID int64, dueDate time.Time, build invoice.BuildFunc) (*invoice.Invoice, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, false, s.db.Err
	}

	var found *invoice.Invoice
	for _, inv := range s.db.invoices {
		if inv.SubscriptionID == subID && inv.DueDate.Equal(dueDate) && (found == nil || inv.ID < found.ID) {
			cp := inv
			found = &cp
		}
	}
	if found != nil {
		out := s.joined(*found)
		return &out, false, nil
	}

	inv, err := s.build(build)
	if err != nil {
		return nil, false, err
	}
	if err := s.insert(inv); err != nil {
		return nil, false, err
	}
	out := s.joined(*inv)
	return &out, true, nil
}

func (s *InMemoryInvoiceStore) CreateNumbered(ctx context.Context, build invoice.BuildFunc) (*invoice.Invoice, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	inv, err := s.build(build)
	if err != nil {
		return nil, err
	}
	if err := s.insert(inv); err != nil {
		return nil, err
	}
	out := s.joined(*inv)
	return &out, nil
}

// Put stores inv as-is, bypassing numbering. For seeding tests.
func (s *InMemoryInvoiceStore) Put(inv *invoice.Invoice) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if inv.ID == 0 {
		inv.ID = s.db.nextID("invoices")
	} else if inv.ID > s.db.seq["invoices"] {
		s.db.seq["invoices"] = inv.ID
	}
	stored := *inv
	stored.Subscription = nil
	s.db.invoices[inv.ID] = stored
}

func (s *InMemoryInvoiceStore) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	inv, ok := s.db.invoices[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	out := s.joined(inv)
	return &out, nil
}

func (s *InMemoryInvoiceStore) filter(keep func(invoice.Invoice) bool) ([]invoice.Invoice, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	var out []invoice.Invoice
	for _, inv := range s.db.invoices {
		if keep(inv) {
			out = append(out, s.joined(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filters *invoice.ListFilters) ([]invoice.Invoice, error) {
	return s.filter(func(inv invoice.Invoice) bool {
		if filters.Status != "" && inv.Status != filters.Status {
			return false
		}
		return filters.SubscriptionID == 0 || inv.SubscriptionID == filters.SubscriptionID
	})
}

func (s *InMemoryInvoiceStore) ListOpen(ctx context.Context) ([]invoice.Invoice, error) {
	return s.filter(func(inv invoice.Invoice) bool { return inv.Status != invoice.StatusPaid })
}

func (s *InMemoryInvoiceStore) ListOpenDueBetween(ctx context.Context, from, through time.Time) ([]invoice.Invoice, error) {
	return s.filter(func(inv invoice.Invoice) bool {
		return inv.IsOpen() && !inv.DueDate.Before(from) && !inv.DueDate.After(through)
	})
}

func (s *InMemoryInvoiceStore) ListOpenDueBefore(ctx context.Context, day time.Time) ([]invoice.Invoice, error) {
	return s.filter(func(inv invoice.Invoice) bool {
		return inv.IsOpen() && inv.DueDate.Before(day)
	})
}

func (s *InMemoryInvoiceStore) update(id int64, fn func(*invoice.Invoice)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	inv, ok := s.db.invoices[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	fn(&inv)
	inv.UpdatedAt = time.Now()
	s.db.invoices[id] = inv
	return nil
}

func (s *InMemoryInvoiceStore) UpdateStatus(ctx context.Context, id int64, status invoice.Status) error {
	return s.update(id, func(inv *invoice.Invoice) { inv.Status = status })
}

func (s *InMemoryInvoiceStore) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	return s.update(id, func(inv *invoice.Invoice) { inv.LastReminderSentAt = &at })
}

func (s *InMemoryInvoiceStore) MarkPaid(ctx context.Context, id int64, paidAt time.Time, pay *payment.Payment) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return false, s.db.Err
	}

	inv, ok := s.db.invoices[id]
	if !ok {
		return false, xerrors.ErrNotFound
	}
	if inv.Status == invoice.StatusPaid {
		return false, nil
	}

	inv.Status = invoice.StatusPaid
	inv.PaidAt = &paidAt
	inv.UpdatedAt = paidAt
	s.db.invoices[id] = inv

	pay.InvoiceID = &id
	insertPayment(s.db, pay)
	return true, nil
}
