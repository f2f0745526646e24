package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators carried in the "type" claim so a refresh token
// can never be presented where an access token is expected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Token verification errors.
var (
	// ErrInvalidToken covers malformed, expired, or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrWrongTokenType is returned when a token parses fine but carries the
	// wrong "type" claim for the operation (e.g. refresh used as access).
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the JWT payload minted for every token. Subject holds the user's
// ObjectID hex; IsAdmin mirrors the user's super_user flag at issue time.
type Claims struct {
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair bundles a freshly minted access and refresh token. It is returned
// by login and refresh and never persisted.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenManager mints and verifies HMAC-signed JWT pairs.
//
// It is safe for concurrent use. The zero value is not usable; construct via
// NewTokenManager.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is a seam for tests.
	now func() time.Time
}

// NewTokenManager returns a TokenManager signing with secret and issuing
// tokens with the given lifetimes.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair mints an access/refresh token pair for the given subject. The
// is_admin claim is embedded in both tokens so a refresh can re-mint the pair
// without a user lookup.
func (m *TokenManager) IssuePair(subject string, isAdmin bool) (TokenPair, error) {
	access, err := m.issue(subject, isAdmin, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.issue(subject, isAdmin, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) issue(subject string, isAdmin bool, typ string, ttl time.Duration) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		IsAdmin:   isAdmin,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseAccess verifies an access token and returns its claims.
func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (m *TokenManager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh)
}

func (m *TokenManager) parse(token, wantType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
