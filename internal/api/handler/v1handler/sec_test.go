package v1handler_test

import (
	"aviators/internal/api/handler/v1handler"
	"aviators/pkg/domain"
	"aviators/pkg/serrors"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// genRSAKeys generates an RSA key pair and returns the private key and PEM-encoded public key.
func genRSAKeys(tb testing.TB) (*rsa.PrivateKey, string) {
	tb.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(tb, err, "failed to generate RSA key")
	pubASN1, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(tb, err, "failed to marshal public key")
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubASN1})

	return priv, string(pubPEM)
}

func newSecHandlerForTest(t *testing.T, pubPEM string) *v1handler.SecHandler {
	t.Helper()
	sh, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{PublicKey: pubPEM, CookieName: "aviators_session"})
	require.NoError(t, err, "NewSecHandler failed")

	return sh
}

func signJWTRS256(tb testing.TB, priv *rsa.PrivateKey, sub string, role domain.Role, issuedAt, exp time.Time) string {
	tb.Helper()
	claims := v1handler.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(priv)
	require.NoError(tb, err, "failed to sign token")

	return signed
}

func TestNewSecHandler_InvalidKey(t *testing.T) {
	_, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{PublicKey: "not a key"})
	require.Error(t, err)
}

func TestHandleBearerAuth_ValidToken(t *testing.T) {
	priv, pubPEM := genRSAKeys(t)
	sh := newSecHandlerForTest(t, pubPEM)

	uid := uuid.New()
	now := time.Now()
	tkn := signJWTRS256(t, priv, uid.String(), domain.RoleEditor, now, now.Add(time.Hour))

	ctx, err := sh.HandleBearerAuth(context.Background(), tkn)
	require.NoError(t, err)

	p, ok := v1handler.PrincipalFromContext(ctx)
	require.True(t, ok, "expected principal in context")
	require.Equal(t, domain.Principal{UserID: domain.UserID(uid), Role: domain.RoleEditor}, p)
}

func TestHandleBearerAuth_Rejections(t *testing.T) {
	priv, pubPEM := genRSAKeys(t)
	sh := newSecHandlerForTest(t, pubPEM)
	privOther, _ := genRSAKeys(t)
	now := time.Now()

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, v1handler.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: domain.RoleAdmin,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodRS256, v1handler.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
		Role:             domain.RoleAdmin,
	}).SignedString(priv)
	require.NoError(t, err)

	cases := map[string]struct {
		token string
		kind  error
	}{
		"invalid signature": {signJWTRS256(t, privOther, uuid.NewString(), domain.RoleAdmin, now, now.Add(time.Hour)), serrors.ErrUnauthorized},
		"expired":           {signJWTRS256(t, priv, uuid.NewString(), domain.RoleAdmin, now.Add(-2*time.Hour), now.Add(-time.Hour)), serrors.ErrUnauthorized},
		"invalid subject":   {signJWTRS256(t, priv, "not-a-uuid", domain.RoleAdmin, now, now.Add(time.Hour)), serrors.ErrUnauthorized},
		"wrong algorithm":   {hs256, serrors.ErrUnauthorized},
		"no expiry":         {noExpiry, serrors.ErrUnauthorized},
		"unknown role":      {signJWTRS256(t, priv, uuid.NewString(), "owner", now, now.Add(time.Hour)), serrors.ErrForbidden},
		"garbage":           {"abc.def", serrors.ErrUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := sh.HandleBearerAuth(context.Background(), tc.token)
			require.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	priv, pubPEM := genRSAKeys(t)
	sh := newSecHandlerForTest(t, pubPEM)
	now := time.Now()
	tkn := signJWTRS256(t, priv, uuid.NewString(), domain.RoleAuthor, now, now.Add(time.Hour))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", sh.Authenticate(), func(c *gin.Context) {
		p, _ := v1handler.PrincipalFromContext(c.Request.Context())
		c.String(http.StatusOK, string(p.Role))
	})

	do := func(mutate func(r *http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		mutate(req)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		return rec
	}

	rec := do(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tkn) })
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "author", rec.Body.String())

	rec = do(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "aviators_session", Value: tkn}) })
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(func(*http.Request) {})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"code":"UNAUTHORIZED","message":"missing credentials"}`, rec.Body.String())

	rec = do(func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") })
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") })
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"code":"UNAUTHORIZED","message":"invalid token"}`, rec.Body.String())
}
