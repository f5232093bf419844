package http

import (
	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/infrastructure/http/handlers"
)

// RegisterHealth mounts the health probes. They sit outside the storage and
// access middleware so probes never create storage areas.
func RegisterHealth(e *echo.Echo, deps map[string]handlers.Pinger) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – storage and audit reachable?
}
