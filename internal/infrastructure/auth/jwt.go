// Package auth validates the bearer tokens minted by the identity service.
// The billing engine never issues production tokens; Issue exists for
// operator tooling and tests.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrTenantNotAllowed = errors.New("principal is not a member of the requested tenant")
)

// Claims carries the principal and its tenant memberships
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Username string   `json:"username,omitempty"`
	TenantID string   `json:"tenant_id"`
	Tenants  []string `json:"tenants,omitempty"`
}

// UserUUID parses the user id
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// TenantUUID parses the home tenant id
func (c *Claims) TenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// MemberOf reports whether the principal may act for tenantID. The home
// tenant is always allowed.
func (c *Claims) MemberOf(tenantID uuid.UUID) bool {
	id := tenantID.String()
	return c.TenantID == id || slices.Contains(c.Tenants, id)
}

// TokenValidator verifies HS256 tokens against a shared secret
type TokenValidator struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewTokenValidator creates a validator from config
func NewTokenValidator(cfg config.JWTConfig) *TokenValidator {
	return &TokenValidator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: 30 * time.Second,
		now:    time.Now,
	}
}

// Validate parses tokenString and returns its claims. Tokens must be HS256,
// unexpired, from the configured issuer and carry user and tenant ids.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if _, err := claims.UserUUID(); err != nil {
		return nil, ErrMissingUserID
	}
	if _, err := claims.TenantUUID(); err != nil {
		return nil, ErrMissingTenantID
	}
	return claims, nil
}

// IssueInput describes a token to mint
type IssueInput struct {
	UserID   uuid.UUID
	Username string
	TenantID uuid.UUID
	Tenants  []uuid.UUID
	TTL      time.Duration
}

// Issue signs a token the validator accepts
func (v *TokenValidator) Issue(in IssueInput) (string, error) {
	ttl := in.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := v.now()
	tenants := make([]string, 0, len(in.Tenants))
	for _, t := range in.Tenants {
		tenants = append(tenants, t.String())
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    v.issuer,
			Subject:   in.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   in.UserID.String(),
		Username: in.Username,
		TenantID: in.TenantID.String(),
		Tenants:  tenants,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
