package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/modguard/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("staff-1", "mod", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffIdentity)
	assert.Equal(t, "mod", claims.StaffName)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("staff-1", "mod", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("staff-1", "mod", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func authTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"identity": GetStaffIdentity(c),
			"name":     GetStaffName(c),
		})
	})
	return r
}

func TestStaffAuth(t *testing.T) {
	sec := config.SecurityConfig{JWTSecret: "secret"}
	r := authTestRouter(StaffAuth(sec))

	// No header.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token carries the identity into the handler.
	token, err := GenerateToken("staff-1", "mod", "secret", time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "staff-1")
	assert.Contains(t, w.Body.String(), "mod")
}

func TestAdminAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	r := authTestRouter(AdminAuth(string(hash)))

	// Missing key.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong key.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(AdminKeyHeader, "wrong")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Matching key.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(AdminKeyHeader, "hunter2")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthDisabledWithoutHash(t *testing.T) {
	r := authTestRouter(AdminAuth(""))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(AdminKeyHeader, "anything")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
