package expiry

import (
	"fmt"
	"io"
	"time"

	"killbill-service/internal/pkg/clock"
)

type Action string

const (
	ActionCreated       Action = "created"
	ActionAlreadyExists Action = "already_exists"
	ActionExpiredNotice Action = "expired_notice"
)

// Detail is one subscription handled by a scan.
type Detail struct {
	Client        string `json:"client"`
	Email         string `json:"email,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Action        Action `json:"action"`
	EmailSent     bool   `json:"email_sent"`
	Error         string `json:"error,omitempty"`
}

// Summary is the outcome of one scan run.
type Summary struct {
	Today              time.Time `json:"today"`
	DaysBeforeExpiry   int       `json:"days_before_expiry"`
	Skipped            bool      `json:"skipped"`
	SubscriptionsFound int       `json:"subscriptions_found"`
	InvoicesCreated    int       `json:"invoices_created"`
	InvoicesExisting   int       `json:"invoices_existing"`
	ExpiredOn          time.Time `json:"expired_on"`
	ExpiredFound       int       `json:"expired_found"`
	EmailsSent         int       `json:"emails_sent"`
	EmailsFailed       int       `json:"emails_failed"`
	Details            []Detail  `json:"details"`
}

// WriteText prints the operator-facing report of a run.
func (s *Summary) WriteText(w io.Writer) error {
	if s.Skipped {
		_, err := fmt.Fprintln(w, "Another expiry scan is running, skipped")
		return err
	}

	p := &printer{w: w}
	p.line("Running subscription emails (invoice %d days or less before expiry)", s.DaysBeforeExpiry)
	p.line("Found %d subscriptions expiring within %d days", s.SubscriptionsFound, s.DaysBeforeExpiry)

	for _, d := range s.Details {
		switch d.Action {
		case ActionCreated:
			p.line("  Created invoice %s for %s", d.InvoiceNumber, d.Client)
			if d.EmailSent {
				p.line("  Sent invoice email to %s", d.Client)
			} else {
				p.line("  Failed to send email to %s", d.Client)
			}
		case ActionAlreadyExists:
			p.line("  Invoice %s already exists for %s", d.InvoiceNumber, d.Client)
		}
	}

	renewalEmails := 0
	for _, d := range s.Details {
		if d.Action == ActionCreated && d.EmailSent {
			renewalEmails++
		}
	}
	p.line("Summary: %d invoices created, %d already existed, %d emails sent",
		s.InvoicesCreated, s.InvoicesExisting, renewalEmails)

	p.line("\nFound %d subscriptions expired on %s", s.ExpiredFound, s.ExpiredOn.Format(clock.DateLayout))
	for _, d := range s.Details {
		if d.Action != ActionExpiredNotice {
			continue
		}
		if d.EmailSent {
			p.line("  Sent email to %s", d.Email)
		} else {
			p.line("  Failed to send email to %s: %s", d.Email, d.Error)
		}
	}
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
