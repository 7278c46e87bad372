// internal/domain/client/entity.go
package client

import (
	"context"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Client is a billed company. It owns zero or more subscriptions.
type Client struct {
	ID            int64     `json:"id" db:"id"`
	CompanyName   string    `json:"company_name" db:"company_name"`
	ContactPerson string    `json:"contact_person" db:"contact_person"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	Status        Status    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type Repository interface {
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, id int64) (*Client, error)
	// List orders by company name; search matches company name case-insensitively.
	List(ctx context.Context, search string) ([]Client, error)
}
