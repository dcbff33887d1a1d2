package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	internalauth "github.com/vmshq/vms-backend/internal/auth"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
)

type stubAuthService struct {
	resp *internalauth.LoginResponse
	err  error
}

func (s *stubAuthService) Login(ctx context.Context, req internalauth.LoginRequest) (*internalauth.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubAuthService) Register(ctx context.Context, req internalauth.RegisterRequest) (*internalauth.UserSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &internalauth.UserSummary{Username: req.Username}, nil
}

func (s *stubAuthService) EnsureDefaultAdmin(ctx context.Context) error { return nil }

func TestLoginReturnsToken(t *testing.T) {
	svc := &stubAuthService{resp: &internalauth.LoginResponse{AccessToken: "token", TokenType: "bearer"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ops","password":"secret"}`))
	rec := httptest.NewRecorder()

	Login(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"access_token":"token"`) {
		t.Fatalf("expected token in response, got %s", rec.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ops","password":"wrong"}`))
	rec := httptest.NewRecorder()

	Login(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestLoginValidatesBody(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ops"}`))
	rec := httptest.NewRecorder()

	Login(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRegisterReturnsCreated(t *testing.T) {
	svc := &stubAuthService{}
	body := `{"username":"newop","password":"long enough secret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Register(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
}
