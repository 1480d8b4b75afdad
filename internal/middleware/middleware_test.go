package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(StructuredLoggingMiddleware(slog.Default()))
	r.GET("/protected", append(mw, func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, userID)
	})...)
	return r
}

func doGet(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(AuthMiddleware(testSecret, "pricing-admin"))
	valid := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "pricing-admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	t.Run("valid token", func(t *testing.T) {
		w := doGet(r, map[string]string{"Authorization": "Bearer " + signToken(t, valid, testSecret)})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("missing header", func(t *testing.T) {
		w := doGet(r, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := doGet(r, map[string]string{"Authorization": "Token abc"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := valid
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		w := doGet(r, map[string]string{"Authorization": "Bearer " + signToken(t, expired, testSecret)})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := doGet(r, map[string]string{"Authorization": "Bearer " + signToken(t, valid, "other")})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := valid
		other.Issuer = "someone-else"
		w := doGet(r, map[string]string{"Authorization": "Bearer " + signToken(t, other, testSecret)})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing subject", func(t *testing.T) {
		noSub := valid
		noSub.Subject = ""
		w := doGet(r, map[string]string{"Authorization": "Bearer " + signToken(t, noSub, testSecret)})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSyncAPIKeyAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sync-key"), bcrypt.MinCost)
	require.NoError(t, err)

	r := newTestRouter(SyncAPIKeyAuth(string(hash)), AuthMiddleware(testSecret, ""))

	w := doGet(r, map[string]string{"x-api-key": "sync-key"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, SyncSystemUserID, w.Body.String())

	// A wrong key falls through to JWT auth, which then rejects the request
	w = doGet(r, map[string]string{"x-api-key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := signToken(t, jwt.RegisteredClaims{Subject: "admin-7"}, testSecret)
	w = doGet(r, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-7", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	lim, err := NewMemoryLimiter("2-M")
	require.NoError(t, err)

	r := newTestRouter(RateLimit(lim), func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), "u"))
	})

	assert.Equal(t, http.StatusOK, doGet(r, nil).Code)
	assert.Equal(t, http.StatusOK, doGet(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, nil).Code)

	_, err = NewMemoryLimiter("lots")
	assert.Error(t, err)
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, slog.Default(), GetLoggerFromCtx(req.Context()))

	custom := slog.New(slog.NewTextHandler(nil, nil))
	assert.Same(t, custom, GetLoggerFromCtx(WithLogger(req.Context(), custom)))
}

func TestRateLimit_APIKeyHasOwnBucket(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sync-key"), bcrypt.MinCost)
	require.NoError(t, err)
	lim, err := NewMemoryLimiter("1-M")
	require.NoError(t, err)

	r := newTestRouter(SyncAPIKeyAuth(string(hash)), RateLimit(lim), AuthMiddleware(testSecret, ""))
	keyed := map[string]string{"x-api-key": "sync-key"}
	bearer := map[string]string{"Authorization": "Bearer " + signToken(t, jwt.RegisteredClaims{Subject: "admin-7"}, testSecret)}

	w := doGet(r, keyed)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, keyed).Code)

	// Same client IP, different bucket
	assert.Equal(t, http.StatusOK, doGet(r, bearer).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, bearer).Code)
}
