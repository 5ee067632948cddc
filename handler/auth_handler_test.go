package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-io/docchat-be/types"
)

type fakeUserService struct {
	registerUser *types.User
	registerErr  error
	loginToken   string
	loginUser    *types.User
	loginErr     error
}

func (f *fakeUserService) Register(ctx context.Context, req types.RegisterRequest) (*types.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerUser, nil
}

func (f *fakeUserService) Login(ctx context.Context, req types.LoginRequest) (string, *types.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func newAuthRouter(svc *fakeUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAuthHandler(svc)
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newAuthRouter(&fakeUserService{
			registerUser: &types.User{ID: "user-1", Email: "alice@example.com"},
		})

		w := postJSON(router, "/api/auth/register", `{"email":"alice@example.com","password":"s3cret!"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp types.DataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newAuthRouter(&fakeUserService{})

		w := postJSON(router, "/api/auth/register", `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		router := newAuthRouter(&fakeUserService{registerErr: types.ErrInvalidRequest})

		w := postJSON(router, "/api/auth/register", `{"email":"alice@example.com","password":"s3cret!"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp types.DataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "invalid_request", resp.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newAuthRouter(&fakeUserService{
			loginToken: "signed.jwt.token",
			loginUser:  &types.User{ID: "user-1", Email: "alice@example.com"},
		})

		w := postJSON(router, "/api/auth/login", `{"email":"alice@example.com","password":"s3cret!"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "signed.jwt.token")
	})

	t.Run("bad credentials", func(t *testing.T) {
		router := newAuthRouter(&fakeUserService{loginErr: types.ErrUnauthorized})

		w := postJSON(router, "/api/auth/login", `{"email":"alice@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp types.DataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unauthorized", resp.Code)
	})
}
