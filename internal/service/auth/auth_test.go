package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"leaddist-service/internal/domain/admin"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/jwt"
	"leaddist-service/internal/pkg/ratelimit"
	"leaddist-service/internal/pkg/session"
	"leaddist-service/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*AuthService, *testutil.Memory) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := jwt.Build(jwt.Config{
		Secret:   "test-secret-0123456789",
		Issuer:   "leaddist-service",
		Audience: "leaddist-admin",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	mem := testutil.NewMemory()
	limiter := ratelimit.NewLoginLimiter(client, 3, time.Minute)
	return NewAuthService(mem.Admins(), tokens, limiter, session.NewDenylist(client), zap.NewNop()), mem
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &admin.RegisterRequest{Name: "Ops Lead", Email: " Ops@Example.com ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ops@example.com", reg.Admin.Email)
	assert.Equal(t, admin.RoleAdmin, reg.Admin.Role)

	_, err = svc.Register(ctx, &admin.RegisterRequest{Name: "Again", Email: "ops@example.com", Password: "correct-horse"})
	assert.True(t, errors.Is(err, xerrors.ErrDuplicateEntry))

	res, err := svc.Login(ctx, &admin.LoginRequest{Email: "OPS@example.com", Password: "correct-horse", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Admin.ID, claims.AdminID)

	me, err := svc.Me(ctx, claims.AdminID)
	require.NoError(t, err)
	assert.NotNil(t, me.LastLogin)
}

func TestRegister_Invalid(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Register(context.Background(), &admin.RegisterRequest{Name: "Ops", Email: "ops@example.com", Password: "short"})
	assert.True(t, errors.Is(err, xerrors.ErrInvalidInput))
}

func TestLogin_WrongPasswordIsRateLimited(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, &admin.RegisterRequest{Name: "Ops", Email: "ops@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	bad := &admin.LoginRequest{Email: "ops@example.com", Password: "wrong-password", IPAddress: "10.0.0.2"}
	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err = svc.Login(ctx, &admin.LoginRequest{Email: "ops@example.com", Password: "correct-horse", IPAddress: "10.0.0.2"})
	assert.True(t, errors.Is(err, xerrors.ErrRateLimited))

	_, err = svc.Login(ctx, &admin.LoginRequest{Email: "ops@example.com", Password: "correct-horse", IPAddress: "10.0.0.3"})
	assert.NoError(t, err)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Login(context.Background(), &admin.LoginRequest{Email: "ghost@example.com", Password: "whatever1", IPAddress: "10.0.0.4"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, errors.Is(err, xerrors.ErrUnauthorized))
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.True(t, errors.Is(err, xerrors.ErrUnauthorized))
}

func TestEnsureSuperAdminExists(t *testing.T) {
	svc, mem := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureSuperAdminExists(ctx, "Root@Example.com", "super-secret", "Root"))
	a, err := mem.Admins().FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.RoleSuperAdmin, a.Role)
	assert.NotEqual(t, "super-secret", a.PasswordHash)

	require.NoError(t, svc.EnsureSuperAdminExists(ctx, "other@example.com", "super-secret", "Other"))
	exists, err := mem.Admins().ExistsByEmail(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnsureSuperAdminExists_RequiresCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	assert.Error(t, svc.EnsureSuperAdminExists(context.Background(), "", "", "Root"))
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, &admin.RegisterRequest{Name: "Ops", Email: "ops@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.AdminID, claims.ID, res.ExpiresAt))
	_, err = svc.ValidateToken(ctx, res.Token)
	assert.True(t, errors.Is(err, xerrors.ErrUnauthorized))
}
