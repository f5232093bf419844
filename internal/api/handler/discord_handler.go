package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/api/metrics"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

//go:embed templates/discord_callback.html
var templateFS embed.FS

var relayTemplate = template.Must(template.ParseFS(templateFS, "templates/discord_callback.html"))

// CallbackPath is where the relay page posts the grant response.
const CallbackPath = "/auth/discord/callback"

type relayData struct {
	CallbackURL string
	Fallback    string
	TimeoutMS   int64
}

// DiscordHandler runs the browser side of the Discord implicit grant.
type DiscordHandler struct {
	auth         ports.DiscordAuthService
	relayTimeout time.Duration
}

const defaultRelayTimeout = 5 * time.Second

// NewDiscordHandler creates a DiscordHandler. relayTimeout bounds how long the
// callback page waits before giving up with bot_offline; zero means 5s.
func NewDiscordHandler(auth ports.DiscordAuthService, relayTimeout time.Duration) *DiscordHandler {
	if relayTimeout <= 0 {
		relayTimeout = defaultRelayTimeout
	}
	return &DiscordHandler{auth: auth, relayTimeout: relayTimeout}
}

// Login handles GET /auth/discord/login?destination=…
//
// @Summary      Start a Discord login
// @Tags         discord
// @Param        destination  query  string  false  "Page to return to"
// @Success      302
// @Failure      404  {object}  errorResponse
// @Router       /auth/discord/login [get]
func (h *DiscordHandler) Login(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	authorize, err := h.auth.Begin(st, c.QueryParam("destination"), origin(c))
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, authorize)
}

// Relay serves the page Discord redirects back to. The grant arrives in the
// URL fragment, which only the browser can read, so the page posts it to
// Callback.
func (h *DiscordHandler) Relay(c echo.Context) error {
	var buf bytes.Buffer
	err := relayTemplate.Execute(&buf, relayData{
		CallbackURL: CallbackPath,
		Fallback:    domain.ErrorRedirect(h.auth.LoginPage(), domain.CodeBotOffline),
		TimeoutMS:   h.relayTimeout.Milliseconds(),
	})
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	c.Response().Header().Set("Referrer-Policy", "no-referrer")
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// Callback handles POST /auth/discord/callback.
//
// @Summary      Complete a Discord login
// @Tags         discord
// @Accept       json
// @Produce      json
// @Param        body  body      callbackRequest  true  "Fragment and query of the callback URL"
// @Success      200   {object}  callbackResponse
// @Failure      400   {object}  callbackResponse
// @Router       /auth/discord/callback [post]
func (h *DiscordHandler) Callback(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	var req callbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	query, err := url.ParseQuery(strings.TrimPrefix(req.Query, "?"))
	if err != nil {
		query = url.Values{}
	}

	start := time.Now()
	redirect, err := h.auth.Complete(c.Request().Context(), st, ports.CallbackInput{
		Fragment: req.Fragment,
		Query:    query,
		Origin:   origin(c),
	}, start)
	metrics.DiscordCallbackDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		code := domain.CallbackErrorCode(err)
		metrics.DiscordLoginsTotal.WithLabelValues(code).Inc()
		return c.JSON(http.StatusBadRequest, callbackResponse{Redirect: redirect, Error: code})
	}
	metrics.DiscordLoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, callbackResponse{Redirect: redirect})
}

// Logout handles POST /auth/discord/logout.
//
// @Summary      Forget the Discord login
// @Tags         discord
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Success      303
// @Router       /auth/discord/logout [post]
func (h *DiscordHandler) Logout(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	return navigate(c, h.auth.Logout(st))
}
