package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing-with-hs512-signatures"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing-with-hs512-signatures"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testAuthConfig(secret string) config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            secret,
		Issuer:               "localhost:8080",
		TokenLifetimeMinutes: 60,
	}
}

// clock is a settable time source.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestTokenService(t *testing.T, secret string, c *clock) TokenService {
	t.Helper()
	svc, err := NewTokenServiceWithClock(testAuthConfig(secret), c.Now)
	require.NoError(t, err)
	return svc
}

func alice() *domain.User {
	return &domain.User{ID: 1, Username: "alice", Role: domain.RoleStudent}
}

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(testAuthConfig("too-short"))
	assert.Error(t, err)

	_, err = NewTokenService(testAuthConfig(strings.Repeat("k", MinSecretLength-1)))
	assert.Error(t, err, "secrets shorter than the SHA-512 output size are rejected")

	_, err = NewTokenService(testAuthConfig(strings.Repeat("k", MinSecretLength)))
	assert.NoError(t, err)

	cfg := testAuthConfig(testSecret)
	cfg.TokenLifetimeMinutes = 0
	_, err = NewTokenService(cfg)
	assert.Error(t, err)

	svc, err := NewTokenService(testAuthConfig(testSecret))
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestIssue(t *testing.T) {
	t.Parallel()
	c := &clock{now: fixedTime}
	svc := newTestTokenService(t, testSecret, c)

	issued, err := svc.Issue(context.Background(), alice())
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.Equal(t, fixedTime.Add(time.Hour), issued.ExpiresAt.UTC())

	claims, err := svc.Verify(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "localhost:8080", claims.Issuer)
	assert.Equal(t, domain.RoleStudent, claims.Scope)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	parsed, _, err := jwt.NewParser().ParseUnverified(issued.Token, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS512", parsed.Header["alg"])

	second, err := svc.Issue(context.Background(), alice())
	require.NoError(t, err)
	secondClaims, err := svc.Verify(context.Background(), second.Token)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, secondClaims.ID)

	_, err = svc.Issue(context.Background(), &domain.User{})
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	signWith := func(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	validClaims := jwtScopeClaims{
		Scope: "STUDENT",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(fixedTime),
			ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
		},
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		now     time.Time
		wantErr error
	}{
		{
			name:  "valid token",
			token: func(t *testing.T) string { return signWith(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims) },
			now:   fixedTime.Add(30 * time.Minute),
		},
		{
			name:    "empty token",
			token:   func(t *testing.T) string { return "" },
			now:     fixedTime,
			wantErr: ErrMalformedToken,
		},
		{
			name:    "not a jwt",
			token:   func(t *testing.T) string { return "not-a-jwt" },
			now:     fixedTime,
			wantErr: ErrMalformedToken,
		},
		{
			name:    "garbage segments",
			token:   func(t *testing.T) string { return "a.b.c" },
			now:     fixedTime,
			wantErr: ErrMalformedToken,
		},
		{
			name:    "signed with another secret",
			token:   func(t *testing.T) string { return signWith(t, jwt.SigningMethodHS512, []byte(wrongSecret), validClaims) },
			now:     fixedTime,
			wantErr: ErrBadSignature,
		},
		{
			name: "tampered payload",
			token: func(t *testing.T) string {
				good := signWith(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims)
				forged := validClaims
				forged.Scope = "ADMIN"
				other := signWith(t, jwt.SigningMethodHS512, []byte(wrongSecret), forged)
				parts := strings.Split(good, ".")
				otherParts := strings.Split(other, ".")
				return parts[0] + "." + otherParts[1] + "." + parts[2]
			},
			now:     fixedTime,
			wantErr: ErrBadSignature,
		},
		{
			name:    "unexpected algorithm",
			token:   func(t *testing.T) string { return signWith(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims) },
			now:     fixedTime,
			wantErr: ErrBadSignature,
		},
		{
			name: "alg none",
			token: func(t *testing.T) string {
				return signWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims)
			},
			now:     fixedTime,
			wantErr: ErrBadSignature,
		},
		{
			name:    "expired exactly at exp",
			token:   func(t *testing.T) string { return signWith(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims) },
			now:     fixedTime.Add(time.Hour),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "expired token with bad signature reports signature",
			token:   func(t *testing.T) string { return signWith(t, jwt.SigningMethodHS512, []byte(wrongSecret), validClaims) },
			now:     fixedTime.Add(2 * time.Hour),
			wantErr: ErrBadSignature,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				noExp := validClaims
				noExp.ExpiresAt = nil
				return signWith(t, jwt.SigningMethodHS512, []byte(testSecret), noExp)
			},
			now:     fixedTime,
			wantErr: ErrMalformedToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestTokenService(t, testSecret, &clock{now: tt.now})

			claims, err := svc.Verify(ctx, tt.token(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Subject)
		})
	}
}

func TestIntrospectAcrossTokenLifetime(t *testing.T) {
	t.Parallel()
	c := &clock{now: fixedTime}
	svc := newTestTokenService(t, testSecret, c)

	issued, err := svc.Issue(context.Background(), alice())
	require.NoError(t, err)

	assert.True(t, svc.Introspect(context.Background(), issued.Token))

	c.now = fixedTime.Add(59 * time.Minute)
	assert.True(t, svc.Introspect(context.Background(), issued.Token))

	c.now = fixedTime.Add(time.Hour)
	assert.False(t, svc.Introspect(context.Background(), issued.Token))

	other := newTestTokenService(t, wrongSecret, &clock{now: fixedTime})
	assert.False(t, other.Introspect(context.Background(), issued.Token))
}
