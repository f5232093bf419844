package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/core/ports"
)

// AccountHandler serves the account dashboard API.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Get handles GET /api/account.
//
// @Summary      Account overview
// @Tags         account
// @Produce      json
// @Success      200  {object}  domain.AccountOverview
// @Failure      401  {object}  errorResponse
// @Router       /api/account [get]
func (h *AccountHandler) Get(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	overview, err := h.accounts.Overview(c.Request().Context(), st, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}

// Refresh handles POST /api/account/refresh. It re-reads Discord and queues a
// welcome toast.
//
// @Summary      Refresh account data from Discord
// @Tags         account
// @Produce      json
// @Success      200  {object}  domain.AccountOverview
// @Failure      401  {object}  errorResponse
// @Router       /api/account/refresh [post]
func (h *AccountHandler) Refresh(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	overview, err := h.accounts.Refresh(c.Request().Context(), st, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}

// SaveLogin handles POST /api/account/save-login.
//
// @Summary      Set or toggle the save-login preference
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      saveLoginRequest  false  "Explicit value; omit to toggle"
// @Success      200   {object}  saveLoginResponse
// @Router       /api/account/save-login [post]
func (h *AccountHandler) SaveLogin(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	var req saveLoginRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}
	saved, err := h.accounts.SetSaveLogin(st, req.Save, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saveLoginResponse{SaveLogin: saved})
}

// Logout handles POST /api/account/logout.
//
// @Summary      Log out of Discord from the dashboard
// @Tags         account
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /api/account/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	st, err := ctxStorage(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, redirectResponse{Redirect: h.accounts.Logout(st)})
}
