package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/api/metrics"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// Access guards page requests. Requests failing a scope are redirected to the
// scope's gate page with the current page as destination. The site gate page
// itself sends already granted browsers to the site home.
func Access(eval ports.AccessEvaluator, log zerolog.Logger) echo.MiddlewareFunc {
	site, hasSite := eval.Scope(domain.ScopeSite)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}
			st, ok := StorageFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "storage not loaded")
			}

			path := domain.CanonicalPath(req.URL.Path)
			now := time.Now()

			if hasSite && strings.EqualFold(strings.TrimPrefix(path, "/"), site.GatePage) &&
				eval.Granted(st, domain.ScopeSite, now) {
				return c.Redirect(http.StatusFound, domain.Root(site.Home))
			}

			d := eval.Evaluate(st, path, now)
			if !d.Allowed {
				metrics.AccessRedirectsTotal.WithLabelValues(string(d.Scope)).Inc()
				log.Debug().Str("path", path).Str("scope", string(d.Scope)).Msg("redirecting to gate")
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
				return c.Redirect(http.StatusFound, d.Redirect)
			}
			return next(c)
		}
	}
}

// RequireScope rejects API calls whose storage does not satisfy scope. The
// JSON body carries the gate URL the page should navigate to.
func RequireScope(eval ports.AccessEvaluator, scope domain.ScopeName, destination string) echo.MiddlewareFunc {
	gate := ""
	if s, ok := eval.Scope(scope); ok {
		gate = domain.GateRedirect(s.GatePage, destination)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st, ok := StorageFrom(c)
			if !ok || !eval.Granted(st, scope, time.Now()) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":    domain.ErrNotLoggedIn.Error(),
					"redirect": gate,
				})
			}
			return next(c)
		}
	}
}
