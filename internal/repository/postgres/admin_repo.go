// internal/repository/postgres/admin_repo.go
package postgres

import (
	"context"
	"time"

	"killbill-service/internal/domain/admin"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `id, full_name, email, password_hash, is_active, last_login_at, created_at, updated_at`

func scanAdmin(row pgx.Row) (*admin.Admin, error) {
	var a admin.Admin
	if err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.IsActive, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin
func (r *AdminRepository) Create(ctx context.Context, a *admin.Admin) (*admin.Admin, error) {
	query := `
		INSERT INTO admins (full_name, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, a.FullName, a.Email, a.PasswordHash, a.IsActive).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "create admin")
	}
	return a, nil
}

// FindByEmail retrieves an admin by email
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	a, err := scanAdmin(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, mapError(err, "find admin")
	}
	return a, nil
}

// FindByID retrieves an admin by ID
func (r *AdminRepository) FindByID(ctx context.Context, id int64) (*admin.Admin, error) {
	a, err := scanAdmin(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "find admin")
	}
	return a, nil
}

// UpdateLastLogin stamps the login time
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	now := time.Now()
	result, err := r.db.Exec(ctx, `UPDATE admins SET last_login_at = $1, updated_at = $1 WHERE id = $2`, now, id)
	if err != nil {
		return mapError(err, "update last login")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.Exec(ctx, `UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now(), id)
	if err != nil {
		return mapError(err, "update password")
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Count returns the number of admins
func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, mapError(err, "count admins")
}
