package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fsrp/document-portal/internal/core/domain"
)

func TestAccountHandler_Get(t *testing.T) {
	stub := &stubAccounts{
		overviewFn: func() (*domain.AccountOverview, error) {
			return &domain.AccountOverview{Profile: domain.Profile{ID: "42", Username: "alice"}}, nil
		},
	}
	c, rec, _ := newContext(http.MethodGet, "/api/account", "", "")

	if err := NewAccountHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := resp["profile"].(map[string]any); !ok {
		t.Fatalf("expected profile in response: %+v", resp)
	}
}

func TestAccountHandler_Get_NotLoggedIn(t *testing.T) {
	stub := &stubAccounts{
		overviewFn: func() (*domain.AccountOverview, error) { return nil, domain.ErrNotLoggedIn },
	}
	c, _, _ := newContext(http.MethodGet, "/api/account", "", "")

	if err := NewAccountHandler(stub).Get(c); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestAccountHandler_SaveLogin(t *testing.T) {
	cases := []struct {
		name string
		body string
		want *bool
	}{
		{"explicit", `{"save":true}`, boolPtr(true)},
		{"toggle", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAccounts{
				saveFn: func(save *bool) (bool, error) {
					if (save == nil) != (tc.want == nil) || (save != nil && *save != *tc.want) {
						t.Fatalf("unexpected save argument %v", save)
					}
					return true, nil
				},
			}
			ct := ""
			if tc.body != "" {
				ct = echo.MIMEApplicationJSON
			}
			c, rec, _ := newContext(http.MethodPost, "/api/account/save-login", ct, tc.body)

			if err := NewAccountHandler(stub).SaveLogin(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			var resp saveLoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if !resp.SaveLogin {
				t.Fatalf("unexpected payload %+v", resp)
			}
		})
	}
}

func TestAccountHandler_Logout(t *testing.T) {
	c, rec, _ := newContext(http.MethodPost, "/api/account/logout", "", "")

	if err := NewAccountHandler(&stubAccounts{}).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp redirectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/discord_login.html" {
		t.Fatalf("unexpected redirect %q", resp.Redirect)
	}
}

func boolPtr(b bool) *bool { return &b }
