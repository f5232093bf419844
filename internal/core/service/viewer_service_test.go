package service

import (
	"errors"
	"testing"

	"github.com/fsrp/document-portal/internal/core/domain"
)

func newTestViewer() *viewerService {
	return NewViewerService([]domain.Document{
		{ID: "std", Title: "Staff Training Document", URL: "docs/STD.pdf", Scope: domain.ScopeTrainer},
	}, testLog).(*viewerService)
}

func TestViewerService_ZoomBounds(t *testing.T) {
	svc := newTestViewer()
	st := emptyStorage()

	var state domain.ViewerState
	for i := 0; i < 10; i++ {
		state, _ = svc.Apply(st, "std", domain.ViewerZoomIn)
	}
	if state.Zoom != domain.ZoomMax {
		t.Fatalf("expected zoom capped at %d, got %d", domain.ZoomMax, state.Zoom)
	}
	for i := 0; i < 10; i++ {
		state, _ = svc.Apply(st, "std", domain.ViewerZoomOut)
	}
	if state.Zoom != domain.ZoomMin {
		t.Fatalf("expected zoom floored at %d, got %d", domain.ZoomMin, state.Zoom)
	}
	state, _ = svc.Apply(st, "std", domain.ViewerZoomReset)
	if state.Zoom != domain.ZoomDefault || state.Scale() != 1 {
		t.Fatalf("unexpected reset state: %+v", state)
	}
}

func TestViewerService_Pages(t *testing.T) {
	svc := newTestViewer()
	st := emptyStorage()

	if state, _ := svc.Apply(st, "std", domain.ViewerNext); state.Page != 1 {
		t.Fatalf("next without a page count must be a no-op, got %d", state.Page)
	}
	if _, err := svc.SetTotalPages(st, "std", 2); err != nil {
		t.Fatalf("SetTotalPages returned error: %v", err)
	}
	state, _ := svc.Apply(st, "std", domain.ViewerNext)
	state, _ = svc.Apply(st, "std", domain.ViewerNext)
	if state.Page != 2 {
		t.Fatalf("expected to stop at the last page, got %d", state.Page)
	}
	if got := svc.State(st, "std"); got != state {
		t.Fatalf("state not persisted: %+v", got)
	}
}

func TestViewerService_Keys(t *testing.T) {
	svc := newTestViewer()
	st := emptyStorage()

	state, action, err := svc.Key(st, "std", "f", false)
	if err != nil || action != domain.ViewerFullscreen || !state.Fullscreen {
		t.Fatalf("unexpected result: %+v %s %v", state, action, err)
	}
	if _, action, _ := svc.Key(st, "std", "p", true); action != domain.ViewerPrint {
		t.Fatalf("expected ctrl+p to print, got %s", action)
	}
	if _, _, err := svc.Key(st, "std", "p", false); !errors.Is(err, domain.ErrUnknownViewerAction) {
		t.Fatalf("expected plain p to be unbound, got %v", err)
	}
	if _, err := svc.Apply(st, "std", "spin"); !errors.Is(err, domain.ErrUnknownViewerAction) {
		t.Fatalf("expected ErrUnknownViewerAction, got %v", err)
	}
}

func TestViewerService_MalformedState(t *testing.T) {
	svc := newTestViewer()
	st := emptyStorage()
	st.Set(domain.AreaSession, domain.ViewerKey("std"), "nope")

	if got := svc.State(st, "std"); got != domain.NewViewerState() {
		t.Fatalf("expected fresh state, got %+v", got)
	}
}
