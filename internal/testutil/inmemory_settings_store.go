package testutil

import (
	"context"
	"time"

	"killbill-service/internal/domain/settings"
)

// InMemorySettingsStore implements settings.Repository
type InMemorySettingsStore struct {
	db *InMemoryDB
}

func (s *InMemorySettingsStore) GetSite(ctx context.Context) (*settings.SiteConfiguration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	if s.db.site == nil {
		s.db.site = settings.DefaultSite()
	}
	cp := *s.db.site
	return &cp, nil
}

func (s *InMemorySettingsStore) SaveSite(ctx context.Context, cfg *settings.SiteConfiguration) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	cfg.ID = 1
	cfg.UpdatedAt = time.Now()
	cp := *cfg
	s.db.site = &cp
	return nil
}

func (s *InMemorySettingsStore) GetInvoice(ctx context.Context) (*settings.InvoiceConfiguration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}

	if s.db.invoiceConfig == nil {
		s.db.invoiceConfig = settings.DefaultInvoice()
	}
	cp := *s.db.invoiceConfig
	return &cp, nil
}

func (s *InMemorySettingsStore) SaveInvoice(ctx context.Context, cfg *settings.InvoiceConfiguration) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}

	cfg.ID = 1
	cfg.UpdatedAt = time.Now()
	cp := *cfg
	s.db.invoiceConfig = &cp
	return nil
}
