package v1handler

import (
	"aviators/internal/config"
	"aviators/pkg/domain"
	"aviators/pkg/serrors"
	"context"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CtxKey is a string-based type used for storing values in request contexts.
type CtxKey string

// PrincipalKey is the context key of the authenticated domain.Principal.
const PrincipalKey CtxKey = "principal"

// Claims are the claims of an admin token. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims

	Role domain.Role `json:"role"`
}

// SecHandlerOptions configures token verification.
type SecHandlerOptions struct {
	// PublicKey is the PEM encoded RSA key tokens are verified with.
	PublicKey string
	// CookieName is the session cookie checked when there is no bearer token.
	CookieName string
}

// NewSecHandlerOptions constructs a SecHandlerOptions value from the provided application config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey, CookieName: cfg.JWT.CookieName}
}

// SecHandler authenticates admin requests with RS256 JWTs.
type SecHandler struct {
	key        *rsa.PublicKey
	cookieName string
}

func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{key: key, cookieName: opts.CookieName}, nil
}

// HandleBearerAuth verifies token and returns ctx carrying its principal.
func (s *SecHandler) HandleBearerAuth(ctx context.Context, token string) (context.Context, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}
	if !claims.Role.Valid() {
		return nil, serrors.With(serrors.ErrForbidden, "unknown role %q", claims.Role)
	}

	return context.WithValue(ctx, PrincipalKey, domain.Principal{
		UserID: domain.UserID(userID),
		Role:   claims.Role,
	}), nil
}

func (s *SecHandler) token(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if t, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(t)
		}

		return ""
	}
	if s.cookieName != "" {
		if t, err := c.Cookie(s.cookieName); err == nil {
			return t
		}
	}

	return ""
}

// Authenticate returns a middleware that requires a valid admin token in the
// Authorization header or the session cookie.
func (s *SecHandler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.token(c)
		if token == "" {
			Fail(c, serrors.With(serrors.ErrUnauthorized, "missing credentials"))

			return
		}

		ctx, err := s.HandleBearerAuth(c.Request.Context(), token)
		if err != nil {
			Fail(c, err)

			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated caller.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(domain.Principal)

	return p, ok
}

func principal(c *gin.Context) domain.Principal {
	p, _ := PrincipalFromContext(c.Request.Context())

	return p
}
