// internal/domain/invoice/dto.go
package invoice

import "time"

type CreateInvoiceRequest struct {
	SubscriptionID int64  `json:"subscription_id" binding:"required"`
	IssueDate      string `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate        string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

type ListFilters struct {
	Status         Status `form:"status" binding:"omitempty,oneof=unpaid paid overdue"`
	SubscriptionID int64  `form:"subscription_id"`
}

// OverdueItem is an open invoice past its due date.
type OverdueItem struct {
	Invoice     Invoice `json:"invoice"`
	DaysOverdue int     `json:"days_overdue"`
}

// ReminderReport lists open invoices due soon and those already overdue.
type ReminderReport struct {
	Today    time.Time     `json:"today"`
	Upcoming []Invoice     `json:"upcoming"`
	Overdue  []OverdueItem `json:"overdue"`
}
