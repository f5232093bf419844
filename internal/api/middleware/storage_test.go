package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/infrastructure/db/memory"
)

const testSecret = "test-secret"

func newCodec() *CookieCodec {
	return NewCookieCodec(testSecret, false, 30*24*time.Hour)
}

// serve runs h behind the Storage middleware and returns the recorder.
func serve(t *testing.T, mw echo.MiddlewareFunc, h echo.HandlerFunc, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(h)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestStorage_IssuesSessionCookieOnWrite(t *testing.T) {
	repo := memory.NewStorageRepository(time.Hour, time.Hour)
	mw := Storage(repo, newCodec(), zerolog.Nop())

	rec := serve(t, mw, func(c echo.Context) error {
		st, ok := StorageFrom(c)
		if !ok {
			t.Fatalf("storage not injected")
		}
		st.Set(domain.AreaSession, domain.KeySiteAccess, "granted")
		return c.NoContent(http.StatusNoContent)
	})

	session := findCookie(rec, SessionCookie)
	if session == nil {
		t.Fatalf("expected %s cookie, got %v", SessionCookie, rec.Result().Cookies())
	}
	if session.MaxAge != 0 || !session.HttpOnly {
		t.Fatalf("session cookie must be an HttpOnly browser-session cookie: %+v", session)
	}
	if findCookie(rec, PersistentCookie) != nil {
		t.Fatalf("persistent cookie issued without persistent changes")
	}

	var got string
	serve(t, mw, func(c echo.Context) error {
		st, _ := StorageFrom(c)
		got, _ = st.Get(domain.AreaSession, domain.KeySiteAccess)
		return c.NoContent(http.StatusNoContent)
	}, session)
	if got != "granted" {
		t.Fatalf("expected value to survive across requests, got %q", got)
	}
}

func TestStorage_PersistentCookieHasExpiry(t *testing.T) {
	repo := memory.NewStorageRepository(time.Hour, time.Hour)
	mw := Storage(repo, newCodec(), zerolog.Nop())

	rec := serve(t, mw, func(c echo.Context) error {
		st, _ := StorageFrom(c)
		st.SetBool(domain.AreaPersistent, domain.KeyDiscordSaveLogin, true)
		return c.NoContent(http.StatusNoContent)
	})

	persist := findCookie(rec, PersistentCookie)
	if persist == nil {
		t.Fatalf("expected %s cookie", PersistentCookie)
	}
	if persist.MaxAge != int((30 * 24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected max-age %d", persist.MaxAge)
	}
}

func TestStorage_NoCookiesWithoutChanges(t *testing.T) {
	repo := memory.NewStorageRepository(time.Hour, time.Hour)
	rec := serve(t, Storage(repo, newCodec(), zerolog.Nop()), func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookies, got %v", rec.Result().Cookies())
	}
}

func TestStorage_ForgedCookieStartsFresh(t *testing.T) {
	repo := memory.NewStorageRepository(time.Hour, time.Hour)
	mw := Storage(repo, newCodec(), zerolog.Nop())

	rec := serve(t, mw, func(c echo.Context) error {
		st, _ := StorageFrom(c)
		st.Set(domain.AreaSession, domain.KeySiteAccess, "granted")
		return c.NoContent(http.StatusNoContent)
	})
	issued := findCookie(rec, SessionCookie)

	// Same id, signed with another secret.
	id, err := newCodec().Parse(domain.AreaSession, issued.Value)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	forged, err := NewCookieCodec("other-secret", false, time.Hour).Cookie(domain.AreaSession, id, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	serve(t, mw, func(c echo.Context) error {
		st, _ := StorageFrom(c)
		if st.Has(domain.KeySiteAccess) {
			t.Fatalf("forged cookie must not address the real area")
		}
		if st.ID() == id {
			t.Fatalf("forged cookie id reused")
		}
		return c.NoContent(http.StatusNoContent)
	}, forged)
}

type failingRepo struct{}

func (failingRepo) Load(context.Context, string, string) (*domain.Storage, error) {
	return nil, domain.ErrStorageUnavailable
}

func (failingRepo) Save(context.Context, string, string, domain.Changes) error {
	return domain.ErrStorageUnavailable
}

func (failingRepo) Ping(context.Context) error { return domain.ErrStorageUnavailable }

func TestStorage_LoadFailure(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Storage(failingRepo{}, newCodec(), zerolog.Nop())(func(echo.Context) error {
		t.Fatalf("handler must not run")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestCookieCodec_RejectsOtherArea(t *testing.T) {
	cc := newCodec()
	ck, err := cc.Cookie(domain.AreaSession, NewID(), time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := cc.Parse(domain.AreaPersistent, ck.Value); err == nil {
		t.Fatalf("session cookie accepted as persistent")
	}
	if _, err := cc.Parse(domain.AreaSession, "not-a-token"); err == nil {
		t.Fatalf("garbage accepted")
	}
}
