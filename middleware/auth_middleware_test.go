package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskloop/api/utils"
)

func newAuthTestRouter(tokens *utils.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(tokens), func(c *gin.Context) {
		userID := c.MustGet("user_id").(int)
		c.String(http.StatusOK, strconv.Itoa(userID))
	})
	return r
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	r := newAuthTestRouter(utils.NewTokenManager("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, w.Body.String())
}

func TestAuthRequired_MalformedHeader(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret")
	tokenString, err := tokens.Generate(1)
	require.NoError(t, err)

	r := newAuthTestRouter(tokens)

	for _, header := range []string{
		"Basic abc123",
		"Bearer ",
		tokenString, // valid token but no Bearer prefix
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	r := newAuthTestRouter(utils.NewTokenManager("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
}

func TestAuthRequired_ForeignSecretToken(t *testing.T) {
	foreign, err := utils.NewTokenManager("other-secret").Generate(1)
	require.NoError(t, err)

	r := newAuthTestRouter(utils.NewTokenManager("test-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired_ValidToken(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret")
	tokenString, err := tokens.Generate(42)
	require.NoError(t, err)

	r := newAuthTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())
}
