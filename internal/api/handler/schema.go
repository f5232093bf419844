package handler

import "github.com/fsrp/document-portal/internal/core/domain"

type gateRequest struct {
	Passcode    string `json:"passcode"    form:"passcode"    validate:"max=256"`
	Destination string `json:"destination" form:"destination" validate:"max=512"`
}

type callbackRequest struct {
	Fragment string `json:"fragment" form:"fragment" validate:"max=4096"`
	Query    string `json:"query"    form:"query"    validate:"max=4096"`
}

type saveLoginRequest struct {
	// Save is optional; without it the preference is toggled.
	Save *bool `json:"save" form:"save"`
}

type viewerKeyRequest struct {
	Key  string `json:"key"  validate:"required,max=16"`
	Ctrl bool   `json:"ctrl"`
}

type viewerPagesRequest struct {
	Total int `json:"total" validate:"min=0,max=10000"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type gateErrorResponse struct {
	Error          string `json:"error"`
	Redirect       string `json:"redirect"`
	DismissAfterMS int64  `json:"dismiss_after_ms"`
}

type callbackResponse struct {
	Redirect string `json:"redirect"`
	Error    string `json:"error,omitempty"`
}

type saveLoginResponse struct {
	SaveLogin bool `json:"save_login"`
}

type viewerResponse struct {
	Document domain.Document     `json:"document"`
	State    domain.ViewerState  `json:"state"`
	Scale    float64             `json:"scale"`
	Action   domain.ViewerAction `json:"action,omitempty"`
	// PrintURL is set for the print action; the page loads it into a hidden
	// frame and prints from there.
	PrintURL string `json:"print_url,omitempty"`
}
