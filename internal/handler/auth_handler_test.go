package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginErr error
	lastReg  models.RegisterRequest
}

func (f *fakeAuthSrv) Register(_ context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	f.lastReg = req
	return &models.LoginResponse{AccessToken: "token", User: models.UserInfo{Email: req.Email}}, nil
}

func (f *fakeAuthSrv) Login(context.Context, models.LoginRequest) (*models.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{AccessToken: "token"}, nil
}

func (f *fakeAuthSrv) Me(_ context.Context, userID string) (*models.UserInfo, error) {
	return &models.UserInfo{ID: userID, Email: "ot@example.com"}, nil
}

func TestAuthHandlerRegister(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv)
	c, rec := newTestContext(http.MethodPost, "/auth/register", models.RegisterRequest{FullName: "Jo", Email: "jo@example.com", Password: "secret123"}, "")

	h.Register(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "jo@example.com", srv.lastReg.Email)
	assert.Equal(t, "token", decodeEnvelope(rec).Data["access_token"])
}

func TestAuthHandlerLoginRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{})
	c, rec := newTestContext(http.MethodPost, "/auth/login", nil, "")

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(rec).Error["code"])
}

func TestAuthHandlerLoginPropagatesServiceError(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.ErrInvalidCredentials})
	c, rec := newTestContext(http.MethodPost, "/auth/login", models.LoginRequest{Email: "a@b.co", Password: "x"}, "")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMeRequiresClaims(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{})

	c, rec := newTestContext(http.MethodGet, "/auth/me", nil, "")
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/auth/me", nil, "user-1")
	h.Me(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", decodeEnvelope(rec).Data["id"])
}
