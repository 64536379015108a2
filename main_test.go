package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskloop/api/config"
	"taskloop/api/store"
	"taskloop/api/utils"
)

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{JWTSecret: "test-secret"}
	userStore := store.NewUserStore(db)
	todoStore := store.NewTodoStore(db)
	tokens := utils.NewTokenManager(cfg.JWTSecret)

	// nil activity store: tracking disabled, requests still succeed.
	return newRouter(cfg, userStore, todoStore, nil, tokens), mock
}

func request(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func todoRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "completed", "user_id", "created_at", "updated_at"})
}

// Full lifecycle: signup, login, create, complete, delete, list.
func TestEndToEndScenario(t *testing.T) {
	r, mock := newTestServer(t)
	now := time.Now()

	// signup
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u@x.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "created_at", "updated_at"}).
			AddRow(1, "u@x.com", now, now))

	w := request(r, http.MethodPost, "/signup", "", gin.H{"email": "u@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)

	// login
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, hashed_password")).
		WithArgs("u@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "created_at", "updated_at"}).
			AddRow(1, "u@x.com", hash, now, now))

	w = request(r, http.MethodPost, "/login", "", gin.H{"email": "u@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	token := loginResp["token"]
	require.NotEmpty(t, token)

	// create
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO todos")).
		WithArgs("buy milk", 1).
		WillReturnRows(todoRows().AddRow(1, "buy milk", false, 1, now, now))

	w = request(r, http.MethodPost, "/todos", token, gin.H{"title": "buy milk"})
	require.Equal(t, http.StatusOK, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, false, created["completed"])
	assert.Equal(t, float64(1), created["userId"])

	// update: mark completed
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(todoRows().AddRow(1, "buy milk", false, 1, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE todos")).
		WithArgs(1, nil, true).
		WillReturnRows(todoRows().AddRow(1, "buy milk", true, 1, now, now))

	w = request(r, http.MethodPut, "/todos/1", token, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "buy milk", updated["title"])
	assert.Equal(t, created["id"], updated["id"])

	// delete
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(todoRows().AddRow(1, "buy milk", true, 1, now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM todos")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w = request(r, http.MethodDelete, "/todos/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Deleted"}`, w.Body.String())

	// list no longer contains the deleted todo
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1")).
		WithArgs(1).
		WillReturnRows(todoRows())

	w = request(r, http.MethodGet, "/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	r, _ := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodPut, "/todos/1"},
		{http.MethodDelete, "/todos/1"},
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/stats/action-counts"},
	} {
		w := request(r, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestProfile_ReturnsCallerIdentity(t *testing.T) {
	r, _ := newTestServer(t)

	token, err := utils.NewTokenManager("test-secret").Generate(7)
	require.NoError(t, err)

	w := request(r, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(7), resp["user_id"])
}

func TestStats_DisabledWithoutClickHouse(t *testing.T) {
	r, _ := newTestServer(t)

	token, err := utils.NewTokenManager("test-secret").Generate(7)
	require.NoError(t, err)

	w := request(r, http.MethodGet, "/stats/action-counts?interval=Day", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
