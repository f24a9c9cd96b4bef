package handler

import (
	"context"
	"net/http"
	"testing"

	"gatherly/internal/auth"
	"gatherly/internal/model"
	"gatherly/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuthService struct {
	err   error
	user  *model.User
	token string
}

func (s *stubAuthService) Register(ctx context.Context, email, password, displayName, username string) (*model.User, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.token, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.token, nil
}

func (s *stubAuthService) SignOut(ctx context.Context, uid string) error       { return s.err }
func (s *stubAuthService) DeleteAccount(ctx context.Context, uid string) error { return s.err }

func setupAuthRouter(authn service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(authn)
	router := gin.New()
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	return router
}

func TestRegisterCreated(t *testing.T) {
	authn := &stubAuthService{user: &model.User{ID: "u1"}, token: "tok"}
	router := setupAuthRouter(authn)

	rec := doJSON(router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "sam@example.com",
		Password: "hunter2hunter2",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"tok"`)
}

func TestRegisterValidation(t *testing.T) {
	router := setupAuthRouter(&stubAuthService{})

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing email", body: map[string]string{"password": "hunter2hunter2"}},
		{name: "bad email", body: map[string]string{"email": "not-an-email", "password": "hunter2hunter2"}},
		{name: "short password", body: map[string]string{"email": "sam@example.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(router, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	router := setupAuthRouter(&stubAuthService{err: service.ErrEmailTaken})

	rec := doJSON(router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "sam@example.com",
		Password: "hunter2hunter2",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginOK(t *testing.T) {
	authn := &stubAuthService{user: &model.User{ID: "u1"}, token: "tok"}
	router := setupAuthRouter(authn)

	rec := doJSON(router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "sam@example.com",
		Password: "hunter2hunter2",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"tok"`)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := setupAuthRouter(&stubAuthService{err: auth.ErrInvalidCredentials})

	rec := doJSON(router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "sam@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
