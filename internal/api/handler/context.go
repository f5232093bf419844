package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/api/middleware"
	"github.com/fsrp/document-portal/internal/core/domain"
)

// ctxStorage returns the storage injected by the Storage middleware. Its
// absence means the route was registered without it.
func ctxStorage(c echo.Context) (*domain.Storage, error) {
	st, ok := middleware.StorageFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "storage not loaded")
	}
	return st, nil
}

// wantsJSON reports whether the caller is a script rather than a form post.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// navigate sends the browser to url: a 303 for form posts, a JSON body for
// scripts.
func navigate(c echo.Context, url string) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, redirectResponse{Redirect: url})
	}
	return c.Redirect(http.StatusSeeOther, url)
}

// origin is the scheme and host the request was addressed to.
func origin(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
