package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/api/middleware"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/service"
)

func newViewerHandler() *ViewerHandler {
	access := service.NewAccessEvaluator(service.DefaultScopes(service.ScopeOptions{
		PasscodeTimeout: 30 * time.Minute,
	}), nil, zerolog.Nop())
	return NewViewerHandler(service.NewViewerService(service.DefaultDocuments(), zerolog.Nop()), access)
}

// grantTrainer writes a fresh trainer passcode grant.
func grantTrainer(st *domain.Storage) {
	st.SetBool(domain.AreaSession, domain.KeyTrainerAuth, true)
	st.SetTime(domain.AreaSession, domain.KeyTrainerTimestamp, time.Now())
}

func viewerContext(method, target, body string, names, values []string) (echo.Context, *httptest.ResponseRecorder, *domain.Storage) {
	ct := ""
	if body != "" {
		ct = echo.MIMEApplicationJSON
	}
	c, rec, st := newContext(method, target, ct, body)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec, st
}

func decodeViewer(t *testing.T, rec *httptest.ResponseRecorder) viewerResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp viewerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestViewerHandler_ZoomIn(t *testing.T) {
	h := newViewerHandler()
	c, rec, st := viewerContext(http.MethodPost, "/api/viewer/std/zoom-in", "",
		[]string{"doc", "action"}, []string{"std", "zoom-in"})
	grantTrainer(st)

	if err := h.Action(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeViewer(t, rec)
	if resp.State.Zoom != 125 || resp.Scale != 1.25 {
		t.Fatalf("unexpected state %+v", resp)
	}
	if resp.PrintURL != "" {
		t.Fatalf("print url set for zoom")
	}
}

func TestViewerHandler_Print(t *testing.T) {
	h := newViewerHandler()
	c, rec, st := viewerContext(http.MethodPost, "/api/viewer/std/print", "",
		[]string{"doc", "action"}, []string{"std", "print"})
	grantTrainer(st)

	if err := h.Action(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeViewer(t, rec); resp.PrintURL != "/documents/STD.pdf" {
		t.Fatalf("unexpected print url %q", resp.PrintURL)
	}
}

func TestViewerHandler_UnknownAction(t *testing.T) {
	h := newViewerHandler()
	c, _, st := viewerContext(http.MethodPost, "/api/viewer/std/rotate", "",
		[]string{"doc", "action"}, []string{"std", "rotate"})
	grantTrainer(st)

	if err := h.Action(c); !errors.Is(err, domain.ErrUnknownViewerAction) {
		t.Fatalf("expected ErrUnknownViewerAction, got %v", err)
	}
}

func TestViewerHandler_UnknownDocument(t *testing.T) {
	h := newViewerHandler()
	c, _, _ := viewerContext(http.MethodGet, "/api/viewer/nope", "", []string{"doc"}, []string{"nope"})

	if err := h.Get(c); !errors.Is(err, domain.ErrUnknownDocument) {
		t.Fatalf("expected ErrUnknownDocument, got %v", err)
	}
}

func TestViewerHandler_ScopeNotGranted(t *testing.T) {
	h := newViewerHandler()
	c, _, st := viewerContext(http.MethodGet, "/api/viewer/swpd", "", []string{"doc"}, []string{"swpd"})
	grantTrainer(st)

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestViewerHandler_PagesThenKey(t *testing.T) {
	h := newViewerHandler()
	c, rec, st := viewerContext(http.MethodPut, "/api/viewer/std/pages", `{"total":3}`,
		[]string{"doc"}, []string{"std"})
	grantTrainer(st)

	if err := h.Pages(c); err != nil {
		t.Fatalf("pages error: %v", err)
	}
	if resp := decodeViewer(t, rec); resp.State.TotalPages != 3 || resp.State.Page != 1 {
		t.Fatalf("unexpected state %+v", resp.State)
	}

	// Reuse the same storage for the keyboard request.
	c2, rec2, _ := viewerContext(http.MethodPost, "/api/viewer/std/key", `{"key":"ArrowRight"}`,
		[]string{"doc"}, []string{"std"})
	middleware.SetStorage(c2, st)

	if err := h.Key(c2); err != nil {
		t.Fatalf("key error: %v", err)
	}
	resp := decodeViewer(t, rec2)
	if resp.State.Page != 2 || resp.Action != domain.ViewerNext {
		t.Fatalf("unexpected response %+v", resp)
	}
}
