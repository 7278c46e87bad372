package notification

import (
	"context"
	"errors"
	"testing"

	"killbill-service/internal/domain/notification"
	"killbill-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDispatcher(t *testing.T) (*Dispatcher, *testutil.FakeMailer, *testutil.Stores) {
	t.Helper()
	stores := testutil.NewStores()
	mailer := testutil.NewFakeMailer()
	return NewDispatcher(mailer, stores.EmailLogs, zap.NewNop()), mailer, stores
}

func TestDispatcher_SendSuccess(t *testing.T) {
	d, mailer, stores := newDispatcher(t)

	res := d.Send(context.Background(), notification.Message{
		Subject: "Subscription Expired",
		Text:    "text",
		HTML:    "<p>html</p>",
		To:      []string{"billing@acme.test", " billing@acme.test ", "", "ops@acme.test"},
	})

	assert.True(t, res.Sent)
	assert.Empty(t, res.Err)
	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, []string{"billing@acme.test", "ops@acme.test"}, mailer.Sent[0].To)

	logs := stores.EmailLogs.All()
	require.Len(t, logs, 2, "one log row per distinct recipient")
	for _, l := range logs {
		assert.Equal(t, notification.LogSent, l.Status)
		assert.Equal(t, "Subscription Expired", l.Subject)
		assert.Nil(t, l.ErrorMessage)
	}
}

func TestDispatcher_SendFailureIsCaptured(t *testing.T) {
	d, mailer, stores := newDispatcher(t)
	mailer.Err = errors.New("connection refused")

	res := d.Send(context.Background(), notification.Message{
		Subject: "Subscription Expired",
		To:      []string{"a@x.test", "b@x.test"},
	})

	assert.False(t, res.Sent)
	assert.Equal(t, "connection refused", res.Err)
	assert.Equal(t, 1, mailer.Calls, "exactly one attempt")

	logs := stores.EmailLogs.All()
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, notification.LogFailed, l.Status)
		require.NotNil(t, l.ErrorMessage)
		assert.Equal(t, "connection refused", *l.ErrorMessage)
	}
}

func TestDispatcher_NoRecipients(t *testing.T) {
	d, mailer, stores := newDispatcher(t)

	res := d.Send(context.Background(), notification.Message{Subject: "x", To: []string{"  "}})

	assert.False(t, res.Sent)
	assert.Zero(t, mailer.Calls)
	assert.Empty(t, stores.EmailLogs.All())
}

func TestDispatcher_LogWriteFailureDoesNotChangeResult(t *testing.T) {
	d, _, stores := newDispatcher(t)
	stores.DB.Err = errors.New("database down")

	res := d.Send(context.Background(), notification.Message{Subject: "x", To: []string{"a@x.test"}})
	assert.True(t, res.Sent)
}
