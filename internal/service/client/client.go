// internal/service/client/client.go
package client

import (
	"context"
	"fmt"
	"strings"

	"killbill-service/internal/domain/client"
	"killbill-service/internal/domain/subscription"

	"go.uber.org/zap"
)

type ClientService struct {
	clientRepo       client.Repository
	subscriptionRepo subscription.Repository
	logger           *zap.Logger
}

func NewClientService(clientRepo client.Repository, subscriptionRepo subscription.Repository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo:       clientRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// ClientDetail is a client with its subscriptions.
type ClientDetail struct {
	Client        *client.Client              `json:"client"`
	Subscriptions []subscription.Subscription `json:"subscriptions"`
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, req *client.CreateClientRequest) (*client.Client, error) {
	c := &client.Client{
		CompanyName:   strings.TrimSpace(req.CompanyName),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         strings.TrimSpace(req.Phone),
		Status:        req.Status,
	}
	if c.Status == "" {
		c.Status = client.StatusActive
	}

	if err := s.clientRepo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create client", zap.Error(err))
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created", zap.Int64("client_id", c.ID), zap.String("company", c.CompanyName))
	return c, nil
}

// UpdateClient applies the non-nil fields of req
func (s *ClientService) UpdateClient(ctx context.Context, id int64, req *client.UpdateClientRequest) (*client.Client, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil {
		c.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.ContactPerson != nil {
		c.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	if req.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Status != nil {
		c.Status = *req.Status
	}

	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return c, nil
}

// GetClient returns the client with its subscriptions
func (s *ClientService) GetClient(ctx context.Context, id int64) (*ClientDetail, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subs, err := s.subscriptionRepo.ListByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	return &ClientDetail{Client: c, Subscriptions: subs}, nil
}

// ListClients lists clients, optionally filtered by company name
func (s *ClientService) ListClients(ctx context.Context, filters *client.ClientListFilters) ([]client.Client, error) {
	return s.clientRepo.List(ctx, strings.TrimSpace(filters.Search))
}
