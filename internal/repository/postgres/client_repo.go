// internal/repository/postgres/client_repo.go
package postgres

import (
	"context"
	"time"

	"killbill-service/internal/domain/client"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepository struct {
	db *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, company_name, contact_person, email, phone, status, created_at, updated_at`

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactPerson, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (company_name, contact_person, email, phone, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, c.CompanyName, c.ContactPerson, c.Email, c.Phone, c.Status).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err, "create client")
}

// Update updates a client
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET company_name = $1, contact_person = $2, email = $3, phone = $4, status = $5, updated_at = $6
		WHERE id = $7
	`

	c.UpdatedAt = time.Now()
	result, err := r.db.Exec(ctx, query, c.CompanyName, c.ContactPerson, c.Email, c.Phone, c.Status, c.UpdatedAt, c.ID)
	if err != nil {
		return mapError(err, "update client")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// FindByID retrieves a client by ID
func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "find client")
	}
	return c, nil
}

// List returns clients ordered by company name
func (r *ClientRepository) List(ctx context.Context, search string) ([]client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var args []any
	if search != "" {
		query += ` WHERE company_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY company_name, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list clients")
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, mapError(err, "scan client")
		}
		clients = append(clients, *c)
	}
	return clients, mapError(rows.Err(), "list clients")
}
