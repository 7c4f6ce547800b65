package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyan0723/study--student-mangement/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

type revokeAll struct{}

func (revokeAll) IsRevoked(context.Context, string) bool { return true }

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig(), nil)

	pair, err := issuer.IssuePair("user-1", "alice", "student")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.Verify(context.Background(), pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)

	claims, err = issuer.Verify(context.Background(), pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestTokenVerifyIdempotent(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig(), nil)

	access, err := issuer.IssueAccess("user-1", "alice", "student")
	require.NoError(t, err)

	// Verification is a pure read: checking the same token again yields
	// the same identity.
	first, err := issuer.Verify(context.Background(), access, TokenTypeAccess)
	require.NoError(t, err)
	second, err := issuer.Verify(context.Background(), access, TokenTypeAccess)
	require.NoError(t, err)

	assert.Equal(t, first.Subject, second.Subject)
	assert.Equal(t, first.Username, second.Username)
	assert.Equal(t, first.Role, second.Role)
	assert.Equal(t, first.TokenType, second.TokenType)
	assert.Equal(t, first.ID, second.ID)
}

func TestTokenTypeConfusion(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig(), nil)

	pair, err := issuer.IssuePair("user-1", "alice", "student")
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify(context.Background(), pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig(), nil)

	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	access, err := issuer.IssueAccess("user-1", "alice", "student")
	require.NoError(t, err)

	// Just inside the lifetime.
	issuer.now = func() time.Time { return issued.Add(15*time.Minute - time.Second) }
	_, err = issuer.Verify(context.Background(), access, TokenTypeAccess)
	assert.NoError(t, err)

	// Just past it.
	issuer.now = func() time.Time { return issued.Add(15*time.Minute + time.Second) }
	_, err = issuer.Verify(context.Background(), access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTamperedSignature(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig(), nil)

	access, err := issuer.IssueAccess("user-1", "alice", "student")
	require.NoError(t, err)

	other := NewTokenIssuer(config.AuthConfig{
		AccessSecret:  "different-secret",
		RefreshSecret: "different-refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, nil)

	_, err = other.Verify(context.Background(), access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify(context.Background(), access+"x", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbageInput(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig(), nil)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := issuer.Verify(context.Background(), token, TokenTypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenRevocation(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig(), revokeAll{})

	access, err := issuer.IssueAccess("user-1", "alice", "student")
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
