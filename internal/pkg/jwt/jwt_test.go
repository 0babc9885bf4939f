package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Secret:   "a-test-secret-of-decent-length",
		Issuer:   "leaddist",
		Audience: "leaddist-admins",
		TTL:      time.Hour,
	}
}

func TestManager_RoundTrip(t *testing.T) {
	m, err := Build(testConfig())
	require.NoError(t, err)

	token, jti, expiresAt, err := m.Generator.Generate(42, "ops@example.com", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AdminID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "42", claims.Subject)
	assert.False(t, claims.IsSuperAdmin())
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	m, err := Build(testConfig())
	require.NoError(t, err)
	token, _, _, err := m.Generator.Generate(1, "a@b.io", "admin")
	require.NoError(t, err)

	other := testConfig()
	other.Secret = "another-secret-entirely-different"
	m2, err := Build(other)
	require.NoError(t, err)

	_, err = m2.Verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_RejectsWrongIssuerAndAudience(t *testing.T) {
	m, err := Build(testConfig())
	require.NoError(t, err)
	token, _, _, err := m.Generator.Generate(1, "a@b.io", "admin")
	require.NoError(t, err)

	cfg := testConfig()
	_, err = NewVerifier([]byte(cfg.Secret), "someone-else", cfg.Audience).Verify(token)
	assert.ErrorContains(t, err, "invalid issuer")

	_, err = NewVerifier([]byte(cfg.Secret), cfg.Issuer, "other-aud").Verify(token)
	assert.ErrorContains(t, err, "invalid audience")
}

func TestVerifier_RejectsExpired(t *testing.T) {
	cfg := testConfig()
	gen := NewGenerator([]byte(cfg.Secret), cfg.Issuer, cfg.Audience, time.Minute)
	gen.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, _, err := gen.Generate(1, "a@b.io", "admin")
	require.NoError(t, err)

	_, err = NewVerifier([]byte(cfg.Secret), cfg.Issuer, cfg.Audience).Verify(token)
	assert.Error(t, err)
}

func TestBuild_Validation(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = "short"
	_, err := Build(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.TTL = 0
	_, err = Build(cfg)
	assert.Error(t, err)
}
