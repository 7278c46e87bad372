package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"killbill-service/internal/domain/admin"
	xerrors "killbill-service/internal/pkg/errors"
	"killbill-service/internal/pkg/jwt"
	"killbill-service/internal/pkg/session"
	"killbill-service/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*AuthService, *jwt.Manager, *testutil.Stores) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	m := jwt.NewManager(key, &key.PublicKey, jwt.Config{Issuer: "killbill", Audience: "admin", TTL: time.Hour})
	stores := testutil.NewStores()
	svc := NewAuthService(stores.Admins, m, session.NewRateLimiter(client), session.NewRevocations(client), zap.NewNop())
	return svc, m, stores
}

func TestEnsureBootstrapAdmin_OnlyWhenEmpty(t *testing.T) {
	svc, _, stores := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "Root@Example.com", "s3cret-pass", ""))
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "other@example.com", "s3cret-pass", "Other"))

	count, err := stores.Admins.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	a, err := stores.Admins.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", a.FullName)
	assert.NotEqual(t, "s3cret-pass", a.PasswordHash)
}

func TestEnsureBootstrapAdmin_NoCredentials(t *testing.T) {
	svc, _, stores := newAuthService(t)

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "", "", ""))
	count, err := stores.Admins.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLogin(t *testing.T) {
	svc, m, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "root@example.com", "s3cret-pass", "Root"))

	resp, err := svc.Login(ctx, &admin.LoginRequest{Email: "ROOT@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Root", resp.Admin.FullName)

	claims, err := m.Verifier.VerifyAccessToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin.ID, claims.AdminID)

	_, err = svc.Login(ctx, &admin.LoginRequest{Email: "root@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)

	_, err = svc.Login(ctx, &admin.LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	info, err := svc.CreateAdmin(ctx, &admin.CreateAdminRequest{FullName: "Ops", Email: "ops@example.com", Password: "first-pass"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, info.ID, &admin.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "second-pass"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	require.NoError(t, svc.ChangePassword(ctx, info.ID, &admin.ChangePasswordRequest{CurrentPassword: "first-pass", NewPassword: "second-pass"}))

	_, err = svc.Login(ctx, &admin.LoginRequest{Email: "ops@example.com", Password: "first-pass"})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	_, err = svc.Login(ctx, &admin.LoginRequest{Email: "ops@example.com", Password: "second-pass"})
	assert.NoError(t, err)

	_, err = svc.CreateAdmin(ctx, &admin.CreateAdminRequest{FullName: "Dup", Email: "OPS@example.com", Password: "third-pass"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestLogin_RateLimited(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "root@example.com", "s3cret-pass", "Root"))

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, &admin.LoginRequest{Email: "root@example.com", Password: "wrong-pass", IPAddress: "10.0.0.1"})
		assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	}

	_, err := svc.Login(ctx, &admin.LoginRequest{Email: "root@example.com", Password: "s3cret-pass", IPAddress: "10.0.0.1"})
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)

	_, err = svc.Login(ctx, &admin.LoginRequest{Email: "root@example.com", Password: "s3cret-pass", IPAddress: "10.0.0.2"})
	assert.NoError(t, err)
}
