package subscription

import "time"

// ExpiringSoonWindow is the look-ahead used by the dashboard and the
// "expiring" list filter.
const ExpiringSoonWindow = 30

// ComputeEndDate returns the inclusive last day of the period that starts on
// start. The same calendar day N months later is clamped to the length of
// the target month, then one day is subtracted.
func ComputeEndDate(start time.Time, cycle BillingCycle) time.Time {
	y, m, d := start.Date()

	total := int(m) - 1 + cycle.Months()
	year := y + total/12
	month := time.Month(total%12 + 1)
	day := min(d, daysIn(year, month))

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ComputeStatus derives the status for today. Cancelled is terminal.
func ComputeStatus(current SubscriptionStatus, endDate *time.Time, today time.Time) SubscriptionStatus {
	if current == StatusCancelled {
		return StatusCancelled
	}
	if endDate != nil && today.After(*endDate) {
		return StatusExpired
	}
	return StatusActive
}

// Prepare recomputes the derived fields. It must run before every write.
func (s *Subscription) Prepare(today time.Time) {
	if !s.StartDate.IsZero() {
		end := ComputeEndDate(s.StartDate, s.BillingCycle)
		s.EndDate = &end
	}
	s.Status = ComputeStatus(s.Status, s.EndDate, today)
}

// IsExpiringSoon reports an active subscription ending within days of today
// (today itself included).
func (s *Subscription) IsExpiringSoon(today time.Time, days int) bool {
	if s.EndDate == nil || s.Status != StatusActive {
		return false
	}
	return !s.EndDate.Before(today) && !s.EndDate.After(today.AddDate(0, 0, days))
}
