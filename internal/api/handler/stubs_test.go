package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/api/middleware"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// newContext builds an echo context with an empty storage injected.
func newContext(method, target, contentType, body string) (echo.Context, *httptest.ResponseRecorder, *domain.Storage) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	st := domain.NewStorage(nil, nil)
	st.SetID("sid-1")
	middleware.SetStorage(c, st)
	return c, rec, st
}

type stubGates struct {
	submitFn func(st *domain.Storage, in ports.GateSubmission) (ports.GateResult, error)
	logoutFn func(st *domain.Storage, scope domain.ScopeName) (string, error)
}

func (s *stubGates) Submit(st *domain.Storage, in ports.GateSubmission, _ time.Time) (ports.GateResult, error) {
	return s.submitFn(st, in)
}

func (s *stubGates) Logout(st *domain.Storage, scope domain.ScopeName) (string, error) {
	return s.logoutFn(st, scope)
}

func (s *stubGates) GatePage(scope domain.ScopeName) (string, error) {
	return string(scope) + ".html", nil
}

type stubDiscordAuth struct {
	beginFn    func(st *domain.Storage, destination, origin string) (string, error)
	completeFn func(in ports.CallbackInput) (string, error)
}

func (s *stubDiscordAuth) Begin(st *domain.Storage, destination, origin string) (string, error) {
	return s.beginFn(st, destination, origin)
}

func (s *stubDiscordAuth) Complete(_ context.Context, _ *domain.Storage, in ports.CallbackInput, _ time.Time) (string, error) {
	return s.completeFn(in)
}

func (s *stubDiscordAuth) Logout(*domain.Storage) string { return "/index.html" }

func (s *stubDiscordAuth) LoginPage() string { return domain.PageDiscordLogin }

type stubAccounts struct {
	overviewFn func() (*domain.AccountOverview, error)
	saveFn     func(save *bool) (bool, error)
}

func (s *stubAccounts) Overview(context.Context, *domain.Storage, time.Time) (*domain.AccountOverview, error) {
	return s.overviewFn()
}

func (s *stubAccounts) Refresh(context.Context, *domain.Storage, time.Time) (*domain.AccountOverview, error) {
	return s.overviewFn()
}

func (s *stubAccounts) SetSaveLogin(_ *domain.Storage, save *bool, _ time.Time) (bool, error) {
	return s.saveFn(save)
}

func (s *stubAccounts) Logout(*domain.Storage) string { return "/discord_login.html" }
