package testutil

import (
	"context"
	"strings"
	"time"

	"killbill-service/internal/domain/notification"
)

// InMemoryEmailLogStore implements notification.LogRepository
type InMemoryEmailLogStore struct {
	db *InMemoryDB
}

func (s *InMemoryEmailLogStore) Create(ctx context.Context, entry *notification.EmailLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	entry.ID = s.db.nextID("email_logs")
	entry.CreatedAt = time.Now()
	s.db.emailLogs = append(s.db.emailLogs, *entry)
	return nil
}

func (s *InMemoryEmailLogStore) List(ctx context.Context, filters *notification.LogFilters) ([]notification.EmailLog, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	var out []notification.EmailLog
	for i := len(s.db.emailLogs) - 1; i >= 0; i-- {
		l := s.db.emailLogs[i]
		if filters.Status != "" && l.Status != filters.Status {
			continue
		}
		if filters.Recipient != "" && !strings.Contains(strings.ToLower(l.Recipient), strings.ToLower(filters.Recipient)) {
			continue
		}
		out = append(out, l)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

// All returns every log row in insertion order.
func (s *InMemoryEmailLogStore) All() []notification.EmailLog {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return append([]notification.EmailLog(nil), s.db.emailLogs...)
}
