package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/api/metrics"
	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// GateHandler handles passcode gate submissions.
type GateHandler struct {
	gates ports.GateService
}

func NewGateHandler(gates ports.GateService) *GateHandler {
	return &GateHandler{gates: gates}
}

// Submit handles POST /gate/:scope.
//
// Form posts are answered with a 303 either to the destination or back to
// the gate page carrying ?error=invalid_passcode. JSON callers get the same
// URL in the body.
//
// @Summary      Submit a passcode
// @Tags         gates
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        scope  path      string       true  "site, trainer or staff"
// @Param        body   body      gateRequest  true  "Passcode and destination"
// @Success      200    {object}  redirectResponse
// @Success      303
// @Failure      401    {object}  gateErrorResponse
// @Failure      404    {object}  errorResponse
// @Router       /gate/{scope} [post]
func (h *GateHandler) Submit(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	var req gateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	scope := domain.ScopeName(c.Param("scope"))
	res, err := h.gates.Submit(st, ports.GateSubmission{
		Scope:       scope,
		Passcode:    req.Passcode,
		Destination: req.Destination,
	}, time.Now())

	switch {
	case errors.Is(err, domain.ErrInvalidPasscode):
		metrics.GateAttemptsTotal.WithLabelValues(string(scope), "rejected").Inc()
		if wantsJSON(c) {
			return c.JSON(http.StatusUnauthorized, gateErrorResponse{
				Error:          err.Error(),
				Redirect:       res.Redirect,
				DismissAfterMS: res.DismissAfter.Milliseconds(),
			})
		}
		return c.Redirect(http.StatusSeeOther, res.Redirect)
	case err != nil:
		return err
	}

	metrics.GateAttemptsTotal.WithLabelValues(string(scope), "granted").Inc()
	return navigate(c, res.Redirect)
}

// Logout handles POST /gate/:scope/logout.
//
// @Summary      Leave a passcode gate
// @Tags         gates
// @Produce      json
// @Param        scope  path      string  true  "site, trainer or staff"
// @Success      200    {object}  redirectResponse
// @Success      303
// @Failure      404    {object}  errorResponse
// @Router       /gate/{scope}/logout [post]
func (h *GateHandler) Logout(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	url, err := h.gates.Logout(st, domain.ScopeName(c.Param("scope")))
	if err != nil {
		return err
	}
	return navigate(c, url)
}
