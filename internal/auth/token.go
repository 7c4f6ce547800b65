package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shuyan0723/study--student-mangement/config"
)

// Token types embedded in the type claim. A refresh token presented
// where an access token is expected fails verification, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature,
// expired, malformed, revoked, or wrong token type. Callers never learn
// which.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload of an issued token. Kept minimal: role
// profiles and other account details are looked up per request, never
// embedded.
type Claims struct {
	Username  string `json:"username,omitempty"`
	Role      string `json:"role"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// RevocationChecker lets a future server-side logout veto otherwise
// valid tokens by their jti. The stateless default accepts everything.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

type noopRevocation struct{}

func (noopRevocation) IsRevoked(context.Context, string) bool { return false }

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer signs and verifies access and refresh tokens with HS256.
// Access and refresh tokens use distinct secrets so a leaked secret
// compromises only one class of token.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	revocation    RevocationChecker

	// now is swapped out by tests to pin expiry boundaries.
	now func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer from config. A nil revocation
// checker means no token is ever considered revoked.
func NewTokenIssuer(cfg config.AuthConfig, revocation RevocationChecker) *TokenIssuer {
	if revocation == nil {
		revocation = noopRevocation{}
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		revocation:    revocation,
		now:           time.Now,
	}
}

// AccessTTL reports the configured access token lifetime. Response
// bodies derive their expiresIn from this so the advertised expiry
// always matches the token's real exp claim.
func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

// IssueAccess signs a short-lived access token for the subject.
func (t *TokenIssuer) IssueAccess(userID, username, role string) (string, error) {
	return t.issue(userID, username, role, TokenTypeAccess, t.accessSecret, t.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the subject.
func (t *TokenIssuer) IssueRefresh(userID, username, role string) (string, error) {
	return t.issue(userID, username, role, TokenTypeRefresh, t.refreshSecret, t.refreshTTL)
}

// IssuePair signs both tokens for the subject.
func (t *TokenIssuer) IssuePair(userID, username, role string) (TokenPair, error) {
	access, err := t.IssueAccess(userID, username, role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.IssueRefresh(userID, username, role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) issue(userID, username, role, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Username:  username,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify validates signature, expiry, type, and revocation for a token
// of the expected type. Every failure maps to ErrInvalidToken.
func (t *TokenIssuer) Verify(ctx context.Context, tokenString, expectedType string) (*Claims, error) {
	secret := t.accessSecret
	if expectedType == TokenTypeRefresh {
		secret = t.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return secret, nil
		},
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if t.revocation.IsRevoked(ctx, claims.ID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
