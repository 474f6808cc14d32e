package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkov/taskboard/internal/middleware"
	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/service"
	"github.com/stretchr/testify/assert"
)

type mockAuthService struct {
	RegisterFunc func(ctx context.Context, email, password, displayName string) (*models.User, error)
	LoginFunc    func(ctx context.Context, email, password string) (*models.Session, error)
	LogoutFunc   func(ctx context.Context, token string) error
	GetUserFunc  func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	return m.RegisterFunc(ctx, email, password, displayName)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	return m.LoginFunc(ctx, email, password)
}
func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.LogoutFunc(ctx, token)
}
func (m *mockAuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserFunc(ctx, id)
}

func TestAuthRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		register   func(ctx context.Context, email, password, displayName string) (*models.User, error)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"email":"alice@example.com","password":"password123"}`,
			register: func(_ context.Context, email, _, _ string) (*models.User, error) {
				return &models.User{ID: "u1", Email: email}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid credentials",
			body: `{"email":"nobody","password":"short"}`,
			register: func(context.Context, string, string, string) (*models.User, error) {
				return nil, service.ErrInvalid
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "email taken",
			body: `{"email":"alice@example.com","password":"password123"}`,
			register: func(context.Context, string, string, string) (*models.User, error) {
				return nil, service.ErrEmailTaken
			},
			wantStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &AuthHandler{AuthService: &mockAuthService{RegisterFunc: tt.register}}

			req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		login      func(ctx context.Context, email, password string) (*models.Session, error)
		wantStatus int
	}{
		{
			name: "success",
			body: `{"email":"alice@example.com","password":"password123"}`,
			login: func(context.Context, string, string) (*models.Session, error) {
				return &models.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bad credentials",
			body: `{"email":"alice@example.com","password":"wrong"}`,
			login: func(context.Context, string, string) (*models.Session, error) {
				return nil, service.ErrBadCredentials
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed json",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &AuthHandler{AuthService: &mockAuthService{LoginFunc: tt.login}}

			req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Body.String(), "tok")
			}
		})
	}
}

func TestAuthLogout_RevokesPresentedToken(t *testing.T) {
	var revoked string
	handler := &AuthHandler{AuthService: &mockAuthService{
		LogoutFunc: func(_ context.Context, token string) error {
			revoked = token
			return nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tok-123", revoked)
}

func TestAuthMe(t *testing.T) {
	handler := &AuthHandler{AuthService: &mockAuthService{
		GetUserFunc: func(_ context.Context, id string) (*models.User, error) {
			assert.Equal(t, "u1", id)
			return &models.User{ID: id, Email: "alice@example.com"}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}
