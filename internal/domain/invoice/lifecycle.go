package invoice

import "time"

// DefaultTermDays is the gap between issue and due date on manual invoices.
const DefaultTermDays = 14

// ComputeStatus derives the status for today. Paid is terminal.
func ComputeStatus(current Status, due, today time.Time) Status {
	if current == StatusPaid {
		return StatusPaid
	}
	if today.After(due) {
		return StatusOverdue
	}
	return StatusUnpaid
}

// Prepare recomputes Status. It must run before every write.
func (i *Invoice) Prepare(today time.Time) {
	i.Status = ComputeStatus(i.Status, i.DueDate, today)
}

// IsOpen reports whether the invoice still awaits payment.
func (i *Invoice) IsOpen() bool {
	return i.Status != StatusPaid
}

// DaysOverdue counts whole days past the due date, zero when not yet due.
func (i *Invoice) DaysOverdue(today time.Time) int {
	if !today.After(i.DueDate) {
		return 0
	}
	return int(today.Sub(i.DueDate).Hours() / 24)
}
