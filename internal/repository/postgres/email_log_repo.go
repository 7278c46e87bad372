// internal/repository/postgres/email_log_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"killbill-service/internal/domain/notification"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EmailLogRepository struct {
	db *pgxpool.Pool
}

func NewEmailLogRepository(db *pgxpool.Pool) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Create appends a log row
func (r *EmailLogRepository) Create(ctx context.Context, entry *notification.EmailLog) error {
	query := `
		INSERT INTO email_logs (recipient, subject, status, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, entry.Recipient, entry.Subject, entry.Status, entry.ErrorMessage).
		Scan(&entry.ID, &entry.CreatedAt)
	return mapError(err, "create email log")
}

// List returns the newest entries first
func (r *EmailLogRepository) List(ctx context.Context, filters *notification.LogFilters) ([]notification.EmailLog, error) {
	var conditions []string
	var args []any
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}
	if filters.Recipient != "" {
		conditions = append(conditions, fmt.Sprintf("recipient ILIKE $%d", argPos))
		args = append(args, "%"+filters.Recipient+"%")
		argPos++
	}

	limit := filters.Limit
	if limit < 1 {
		limit = 100
	}

	query := `SELECT id, recipient, subject, status, error_message, created_at FROM email_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argPos)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list email logs")
	}
	defer rows.Close()

	var logs []notification.EmailLog
	for rows.Next() {
		var l notification.EmailLog
		if err := rows.Scan(&l.ID, &l.Recipient, &l.Subject, &l.Status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, mapError(err, "scan email log")
		}
		logs = append(logs, l)
	}
	return logs, mapError(rows.Err(), "list email logs")
}
