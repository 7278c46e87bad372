package testutil

import (
	"context"
	"sync"
)

// SentMail is one message accepted by FakeMailer.
type SentMail struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// FakeMailer records messages. FailFor makes sends to a recipient fail.
type FakeMailer struct {
	mu      sync.Mutex
	Sent    []SentMail
	Calls   int
	FailFor map[string]error
	// Err fails every send when set.
	Err error
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{FailFor: make(map[string]error)}
}

func (m *FakeMailer) Send(ctx context.Context, to []string, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	for _, rcpt := range to {
		if err, ok := m.FailFor[rcpt]; ok {
			return err
		}
	}
	m.Sent = append(m.Sent, SentMail{To: append([]string(nil), to...), Subject: subject, Text: text, HTML: html})
	return nil
}

// Subjects lists the subjects of every accepted message.
func (m *FakeMailer) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.Sent))
	for _, s := range m.Sent {
		out = append(out, s.Subject)
	}
	return out
}
