package client

import (
	"context"
	"testing"

	"killbill-service/internal/domain/client"
	xerrors "killbill-service/internal/pkg/errors"
	"killbill-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientService_CreateUpdateList(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := NewClientService(stores.Clients, stores.Subscriptions, zap.NewNop())

	acme, err := svc.CreateClient(ctx, &client.CreateClientRequest{
		CompanyName:   " Acme ",
		ContactPerson: "Jane",
		Email:         "Billing@Acme.test",
		Phone:         "123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", acme.CompanyName)
	assert.Equal(t, "billing@acme.test", acme.Email)
	assert.Equal(t, client.StatusActive, acme.Status)

	_, err = svc.CreateClient(ctx, &client.CreateClientRequest{CompanyName: "Globex", ContactPerson: "Hank", Email: "g@x.test", Phone: "1"})
	require.NoError(t, err)

	inactive := client.StatusInactive
	updated, err := svc.UpdateClient(ctx, acme.ID, &client.UpdateClientRequest{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, client.StatusInactive, updated.Status)
	assert.Equal(t, "Jane", updated.ContactPerson)

	all, err := svc.ListClients(ctx, &client.ClientListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme", all[0].CompanyName)

	found, err := svc.ListClients(ctx, &client.ClientListFilters{Search: "glob"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Globex", found[0].CompanyName)

	detail, err := svc.GetClient(ctx, acme.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Subscriptions)
}

func TestClientService_NotFound(t *testing.T) {
	stores := testutil.NewStores()
	svc := NewClientService(stores.Clients, stores.Subscriptions, zap.NewNop())

	_, err := svc.GetClient(context.Background(), 99)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = svc.UpdateClient(context.Background(), 99, &client.UpdateClientRequest{})
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
