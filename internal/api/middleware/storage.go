package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/api/metrics"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

const storageContextKey = "storage"

// StorageFrom returns the storage loaded by the Storage middleware.
func StorageFrom(c echo.Context) (*domain.Storage, bool) {
	st, ok := c.Get(storageContextKey).(*domain.Storage)
	return st, ok && st != nil
}

// SetStorage injects st into the request context.
func SetStorage(c echo.Context, st *domain.Storage) {
	c.Set(storageContextKey, st)
}

// Storage loads both storage areas addressed by the request cookies and
// injects them into the context. Changes are saved right before the response
// header is written, together with any cookie that must be (re)issued.
func Storage(repo ports.StorageRepository, codec *CookieCodec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			sid, sessionIssued := cookieID(c, codec, domain.AreaSession)
			pid, _ := cookieID(c, codec, domain.AreaPersistent)

			st, err := repo.Load(req.Context(), sid, pid)
			if err != nil {
				metrics.StorageErrorsTotal.WithLabelValues("load").Inc()
				return err
			}
			st.SetID(sid)
			SetStorage(c, st)

			c.Response().Before(func() {
				if !st.Dirty() {
					return
				}
				changes := st.Changes()
				if err := repo.Save(req.Context(), sid, pid, changes); err != nil {
					metrics.StorageErrorsTotal.WithLabelValues("save").Inc()
					log.Error().Err(err).Str("path", req.URL.Path).Msg("storage save failed")
					return
				}
				st.ResetChanges()

				now := time.Now()
				if sessionIssued && len(changes[domain.AreaSession]) > 0 {
					setCookie(c, codec, domain.AreaSession, sid, now, log)
				}
				if len(changes[domain.AreaPersistent]) > 0 {
					setCookie(c, codec, domain.AreaPersistent, pid, now, log)
				}
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
			})

			return next(c)
		}
	}
}

// cookieID returns the area id carried by the request, or a fresh id when the
// cookie is missing or does not verify. issued reports the latter.
func cookieID(c echo.Context, codec *CookieCodec, area domain.Area) (id string, issued bool) {
	name := SessionCookie
	if area == domain.AreaPersistent {
		name = PersistentCookie
	}
	ck, err := c.Cookie(name)
	if err == nil && ck.Value != "" {
		if id, err := codec.Parse(area, ck.Value); err == nil {
			return id, false
		}
	}
	return NewID(), true
}

func setCookie(c echo.Context, codec *CookieCodec, area domain.Area, id string, now time.Time, log zerolog.Logger) {
	ck, err := codec.Cookie(area, id, now)
	if err != nil {
		log.Error().Err(err).Str("area", string(area)).Msg("issue storage cookie")
		return
	}
	http.SetCookie(c.Response(), ck)
}
