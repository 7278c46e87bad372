// internal/domain/notification/entity.go
package notification

import (
	"context"
	"time"
)

type LogStatus string

const (
	LogSent   LogStatus = "sent"
	LogFailed LogStatus = "failed"
)

// EmailLog is one delivery attempt to one recipient. Rows are never updated.
type EmailLog struct {
	ID           int64     `json:"id" db:"id"`
	Recipient    string    `json:"recipient" db:"recipient"`
	Subject      string    `json:"subject" db:"subject"`
	Status       LogStatus `json:"status" db:"status"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Message is a rendered email ready to hand to the transport.
type Message struct {
	Subject string
	Text    string
	HTML    string
	To      []string
}

// Result reports the outcome of one send. Err holds the transport error text.
type Result struct {
	Sent bool   `json:"sent"`
	Err  string `json:"error,omitempty"`
}

type LogFilters struct {
	Status    LogStatus `form:"status" binding:"omitempty,oneof=sent failed"`
	Recipient string    `form:"recipient"`
	Limit     int       `form:"limit" binding:"omitempty,min=1,max=500"`
}

// LogRepository is append-only.
type LogRepository interface {
	Create(ctx context.Context, entry *EmailLog) error
	List(ctx context.Context, filters *LogFilters) ([]EmailLog, error)
}
