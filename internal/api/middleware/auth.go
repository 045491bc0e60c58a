// Package middleware provides HTTP middleware for the Gin router.
//
// Go Learning Note — Middleware Pattern (Gin):
// In Gin, middleware is any function with the signature `gin.HandlerFunc`, which
// is `func(*gin.Context)`. Middleware functions form a chain: each one runs,
// optionally calls c.Next() to pass control to the next handler, and can call
// c.Abort() to stop the chain. Middleware is applied with .Use() on an engine
// or route group, or listed before the handler on a single route.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"healthease/internal/config"
)

// Context keys for the authenticated identity.
const (
	SubjectKey = "auth_subject"
	RoleKey    = "auth_role"
)

// Roles.
const (
	RoleStaff   = "staff"
	RolePatient = "patient"
)

// AnonymousSubject is the identity injected when auth is disabled.
const AnonymousSubject = "anonymous"

var (
	ErrUnknownRole  = errors.New("role must be staff or patient")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the JWT payload: the standard registered claims plus a role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 tokens.
//
// Go Learning Note — "github.com/golang-jwt/jwt/v5":
// ParseWithClaims decodes the token into our Claims struct and calls the key
// function to get the verification key. WithValidMethods pins the algorithm
// so a token signed with "none" or an RSA key is rejected before the key is
// ever used. Expiry and issuer are checked by the parser options.
type Authenticator struct {
	enabled bool
	secret  []byte
	issuer  string
	ttl     time.Duration
	now     func() time.Time
}

func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		enabled: cfg.Enabled,
		secret:  []byte(cfg.Secret),
		issuer:  cfg.Issuer,
		ttl:     cfg.TokenTTL,
		now:     time.Now,
	}
}

// Enabled reports whether tokens are checked.
func (a *Authenticator) Enabled() bool { return a.enabled }

// IssueToken signs a token for subject with role.
func (a *Authenticator) IssueToken(subject, role string) (string, error) {
	if role != RoleStaff && role != RolePatient {
		return "", ErrUnknownRole
	}
	if len(a.secret) == 0 {
		return "", errors.New("auth secret is not configured")
	}
	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken verifies a signed token and returns its claims.
func (a *Authenticator) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Role != RoleStaff && claims.Role != RolePatient {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, ErrUnknownRole)
	}
	return claims, nil
}

// Authenticate stores the caller's identity in the context. Requests without
// an Authorization header pass through anonymously so public reads keep
// working; a header that is present must carry a valid token. With auth
// disabled every request is anonymous staff.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.enabled {
			c.Set(SubjectKey, AnonymousSubject)
			c.Set(RoleKey, RoleStaff)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// strings.SplitN splits into at most 2 parts, handling tokens with spaces.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := a.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole rejects callers without one of roles. It must run after
// Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": strings.Join(roles, " or ") + " access required"})
			return
		}
		c.Next()
	}
}

// GetRole returns the caller's role, or "" when unauthenticated.
func GetRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}

// GetSubject returns the caller's subject, or "" when unauthenticated.
func GetSubject(c *gin.Context) string {
	return c.GetString(SubjectKey)
}
