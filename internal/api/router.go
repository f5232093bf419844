package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/api/handler"
	"github.com/fsrp/document-portal/internal/api/middleware"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
	infrahttp "github.com/fsrp/document-portal/internal/infrastructure/http"
	"github.com/fsrp/document-portal/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	// StaticDir holds the portal's pages and documents.
	StaticDir string
	// RelayTimeout is how long the Discord callback page waits for the
	// server before falling back to bot_offline.
	RelayTimeout time.Duration

	Storage  ports.StorageRepository
	Cookies  *middleware.CookieCodec
	Access   ports.AccessEvaluator
	Gates    ports.GateService
	Discord  ports.DiscordAuthService
	Accounts ports.AccountService
	Notify   ports.NotificationService
	Viewer   ports.ViewerService

	// Health lists the dependencies pinged by the readiness probe.
	Health map[string]handlers.Pinger
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))

	// --- Probes and metrics (no storage) ---
	infrahttp.RegisterHealth(e, deps.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	storage := middleware.Storage(deps.Storage, deps.Cookies, deps.Log)

	// --- Passcode gates ---
	gateHandler := handler.NewGateHandler(deps.Gates)
	gates := e.Group("/gate", storage)
	gates.POST("/:scope", gateHandler.Submit)
	gates.POST("/:scope/logout", gateHandler.Logout)

	// --- Discord login ---
	discordHandler := handler.NewDiscordHandler(deps.Discord, deps.RelayTimeout)
	e.GET(domain.Root(domain.PageDiscordCallback), discordHandler.Relay)
	discord := e.Group("/auth/discord", storage)
	discord.GET("/login", discordHandler.Login)
	discord.POST("/callback", discordHandler.Callback)
	discord.POST("/logout", discordHandler.Logout)

	// --- Page APIs ---
	api := e.Group("/api", storage)

	accountHandler := handler.NewAccountHandler(deps.Accounts)
	requireAccount := middleware.RequireScope(deps.Access, domain.ScopeAccount, domain.PageAccount)
	api.GET("/account", accountHandler.Get, requireAccount)
	api.POST("/account/refresh", accountHandler.Refresh, requireAccount)
	api.POST("/account/save-login", accountHandler.SaveLogin, requireAccount)
	api.POST("/account/logout", accountHandler.Logout)

	notificationHandler := handler.NewNotificationHandler(deps.Notify)
	api.GET("/notifications", notificationHandler.List)
	api.DELETE("/notifications/prompt", notificationHandler.DismissPrompt)

	viewerHandler := handler.NewViewerHandler(deps.Viewer, deps.Access)
	api.GET("/viewer/:doc", viewerHandler.Get)
	api.POST("/viewer/:doc/key", viewerHandler.Key)
	api.PUT("/viewer/:doc/pages", viewerHandler.Pages)
	api.POST("/viewer/:doc/:action", viewerHandler.Action)

	// --- Static portal behind the access evaluator ---
	static := echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Root:  deps.StaticDir,
		Index: domain.PageIndex,
	})
	access := middleware.Access(deps.Access, deps.Log)
	e.GET("/*", notFound, storage, access, static)
	e.HEAD("/*", notFound, storage, access, static)

	return e
}

func notFound(echo.Context) error {
	return echo.NewHTTPError(http.StatusNotFound, "not found")
}
