package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculo/internal/api/middleware"
)

type authAPI struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
}

func newAuthAPI(t *testing.T, opts AuthOptions) *authAPI {
	t.Helper()
	db := openTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := NewAuthHandler(db, testAuthService(), client, nil, opts)
	r := NewRouter(nil, nil)
	g := r.Group("/v1/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	r.GET("/v1/me", middleware.AuthMiddleware(testAuthService()), h.Me)
	return &authAPI{router: r, mr: mr}
}

func defaultAuthOptions() AuthOptions {
	return AuthOptions{LoginRateLimitPerHour: 10, LoginLockThreshold: 3, LoginLockTTL: time.Minute}
}

func (a *authAPI) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, a.router, http.MethodPost, path, body)
}

func TestRegisterLowercasesEmailAndRejectsDuplicates(t *testing.T) {
	a := newAuthAPI(t, defaultAuthOptions())

	w := a.post(t, "/v1/auth/register", map[string]string{
		"name": "Maria", "email": "  Maria@Example.COM ", "password": "segredo1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[tokenResponse](t, w)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotNil(t, resp.User)
	assert.Equal(t, "maria@example.com", resp.User.Email)

	var refreshCookie bool
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshTokenCookieName && c.Value != "" && c.HttpOnly {
			refreshCookie = true
		}
	}
	assert.True(t, refreshCookie)

	w = a.post(t, "/v1/auth/register", map[string]string{
		"name": "Outra", "email": "maria@example.com", "password": "segredo2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.post(t, "/v1/auth/register", map[string]string{
		"name": "Curta", "email": "curta@example.com", "password": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.post(t, "/v1/auth/register", map[string]string{
		"name": "Sem email", "email": "not-an-email", "password": "segredo1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAndMe(t *testing.T) {
	a := newAuthAPI(t, defaultAuthOptions())
	require.Equal(t, http.StatusCreated, a.post(t, "/v1/auth/register", map[string]string{
		"name": "João", "email": "joao@example.com", "password": "segredo1",
	}).Code)

	w := a.post(t, "/v1/auth/login", map[string]string{"email": "joao@example.com", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", errorMessage(t, w))

	w = a.post(t, "/v1/auth/login", map[string]string{"email": "ninguem@example.com", "password": "segredo1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.post(t, "/v1/auth/login", map[string]string{"email": "JOAO@example.com", "password": "segredo1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[tokenResponse](t, w)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[userResponse](t, rec)
	assert.Equal(t, "João", me.Name)
	assert.Equal(t, "joao@example.com", me.Email)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	a := newAuthAPI(t, AuthOptions{LoginRateLimitPerHour: 100, LoginLockThreshold: 2, LoginLockTTL: time.Minute})
	require.Equal(t, http.StatusCreated, a.post(t, "/v1/auth/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "segredo1",
	}).Code)

	for i := 0; i < 2; i++ {
		w := a.post(t, "/v1/auth/login", map[string]string{"email": "ana@example.com", "password": "errada"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := a.post(t, "/v1/auth/login", map[string]string{"email": "ana@example.com", "password": "segredo1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "account temporarily locked", errorMessage(t, w))

	a.mr.FastForward(2 * time.Minute)
	w = a.post(t, "/v1/auth/login", map[string]string{"email": "ana@example.com", "password": "segredo1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	a := newAuthAPI(t, AuthOptions{LoginRateLimitPerHour: 1, LoginLockThreshold: 10, LoginLockTTL: time.Minute})

	w := a.post(t, "/v1/auth/login", map[string]string{"email": "x@example.com", "password": "segredo1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.post(t, "/v1/auth/login", map[string]string{"email": "x@example.com", "password": "segredo1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limit exceeded", errorMessage(t, w))
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	a := newAuthAPI(t, defaultAuthOptions())

	w := a.post(t, "/v1/auth/register", map[string]string{
		"name": "Rui", "email": "rui@example.com", "password": "segredo1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	refresh := cookieValue(w, refreshTokenCookieName)
	require.NotEmpty(t, refresh)

	w = a.post(t, "/v1/auth/refresh", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := cookieValue(w, refreshTokenCookieName)
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, refresh, rotated)

	// 旧令牌已被吊销
	w = a.post(t, "/v1/auth/refresh", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// access token 不能当作 refresh token
	access := decode[tokenResponse](t, a.post(t, "/v1/auth/login", map[string]string{
		"email": "rui@example.com", "password": "segredo1",
	})).AccessToken
	w = a.post(t, "/v1/auth/refresh", map[string]string{"refresh_token": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.post(t, "/v1/auth/logout", map[string]string{"refresh_token": rotated})
	require.Equal(t, http.StatusOK, w.Code)
	w = a.post(t, "/v1/auth/refresh", map[string]string{"refresh_token": rotated})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.post(t, "/v1/auth/logout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func cookieValue(w *httptest.ResponseRecorder, name string) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestIncrWithTTLRepairsMissingExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mr.Set("rate:test", "3")
	count, err := incrWithTTL(ctx, client, "rate:test", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
	assert.Equal(t, time.Minute, mr.TTL("rate:test"))

	count, err = incrWithTTL(ctx, client, "rate:fresh", time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, time.Hour, mr.TTL("rate:fresh"))
}
