package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// ViewerHandler exposes the document viewer controls.
type ViewerHandler struct {
	viewer ports.ViewerService
	access ports.AccessEvaluator
}

func NewViewerHandler(viewer ports.ViewerService, access ports.AccessEvaluator) *ViewerHandler {
	return &ViewerHandler{viewer: viewer, access: access}
}

// document resolves :doc and checks the caller holds its scope.
func (h *ViewerHandler) document(c echo.Context, st *domain.Storage) (domain.Document, error) {
	id := c.Param("doc")
	doc, ok := h.viewer.Document(id)
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %q", domain.ErrUnknownDocument, id)
	}
	if !h.access.Granted(st, doc.Scope, time.Now()) {
		return domain.Document{}, echo.NewHTTPError(http.StatusForbidden, "document scope not granted")
	}
	return doc, nil
}

func respond(c echo.Context, doc domain.Document, state domain.ViewerState, action domain.ViewerAction) error {
	resp := viewerResponse{Document: doc, State: state, Scale: state.Scale(), Action: action}
	if action == domain.ViewerPrint {
		resp.PrintURL = doc.URL
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/viewer/:doc.
//
// @Summary      Viewer state of a document
// @Tags         viewer
// @Produce      json
// @Param        doc  path      string  true  "Document id"
// @Success      200  {object}  viewerResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/viewer/{doc} [get]
func (h *ViewerHandler) Get(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	doc, err := h.document(c, st)
	if err != nil {
		return err
	}
	return respond(c, doc, h.viewer.State(st, doc.ID), "")
}

// Action handles POST /api/viewer/:doc/:action.
//
// @Summary      Apply a viewer control
// @Tags         viewer
// @Produce      json
// @Param        doc     path      string  true  "Document id"
// @Param        action  path      string  true  "zoom-in, zoom-out, zoom-reset, next, prev, fullscreen or print"
// @Success      200     {object}  viewerResponse
// @Failure      400     {object}  errorResponse
// @Router       /api/viewer/{doc}/{action} [post]
func (h *ViewerHandler) Action(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	doc, err := h.document(c, st)
	if err != nil {
		return err
	}
	action := domain.ViewerAction(c.Param("action"))
	state, err := h.viewer.Apply(st, doc.ID, action)
	if err != nil {
		return err
	}
	return respond(c, doc, state, action)
}

// Key handles POST /api/viewer/:doc/key.
//
// @Summary      Apply a keyboard shortcut
// @Tags         viewer
// @Accept       json
// @Produce      json
// @Param        doc   path      string            true  "Document id"
// @Param        body  body      viewerKeyRequest  true  "Key and modifier"
// @Success      200   {object}  viewerResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/viewer/{doc}/key [post]
func (h *ViewerHandler) Key(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	doc, err := h.document(c, st)
	if err != nil {
		return err
	}
	var req viewerKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	state, action, err := h.viewer.Key(st, doc.ID, req.Key, req.Ctrl)
	if err != nil {
		return err
	}
	return respond(c, doc, state, action)
}

// Pages handles PUT /api/viewer/:doc/pages.
//
// @Summary      Report the page count of a document
// @Tags         viewer
// @Accept       json
// @Produce      json
// @Param        doc   path      string              true  "Document id"
// @Param        body  body      viewerPagesRequest  true  "Total pages"
// @Success      200   {object}  viewerResponse
// @Router       /api/viewer/{doc}/pages [put]
func (h *ViewerHandler) Pages(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	doc, err := h.document(c, st)
	if err != nil {
		return err
	}
	var req viewerPagesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	state, err := h.viewer.SetTotalPages(st, doc.ID, req.Total)
	if err != nil {
		return err
	}
	return respond(c, doc, state, "")
}
