package domain

import (
	"net/url"
	"strings"
)

// Default pages of the static site.
const (
	PageIndex           = "index.html"
	PageComingSoon      = "coming_soon.html"
	PageTrainerLogin    = "login.html"
	PageTrainerDocument = "STD.html"
	PageStaffLogin      = "swpd_login.html"
	PageStaffDocument   = "SWPD.html"
	PageDiscordLogin    = "discord_login.html"
	PageDiscordCallback = "discord_callback.html"
	PageAccount         = "account.html"
)

// SanitizeDestination keeps destinations on this site. Anything absolute,
// scheme-relative or otherwise suspicious falls back to fallback.
func SanitizeDestination(raw, fallback string) string {
	d := strings.TrimSpace(raw)
	if d == "" {
		return fallback
	}
	if strings.ContainsAny(d, "\\\r\n") || strings.HasPrefix(d, "//") {
		return fallback
	}
	u, err := url.Parse(d)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	d = strings.TrimPrefix(d, "/")
	if d == "" || strings.HasPrefix(d, "/") {
		return fallback
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == ".." {
			return fallback
		}
	}
	return d
}

// Root turns a site-relative page into an absolute path.
func Root(page string) string {
	return "/" + strings.TrimPrefix(page, "/")
}

// WithQuery appends query parameters to a site-relative page.
func WithQuery(page string, params url.Values) string {
	if len(params) == 0 {
		return Root(page)
	}
	return Root(page) + "?" + params.Encode()
}

// GateRedirect builds the gate URL carrying the page to return to.
func GateRedirect(gatePage, destination string) string {
	params := url.Values{}
	if d := strings.TrimPrefix(destination, "/"); d != "" {
		params.Set("destination", d)
	}
	return WithQuery(gatePage, params)
}

// ErrorRedirect builds the login page URL carrying an error code.
func ErrorRedirect(loginPage, code string) string {
	return WithQuery(loginPage, url.Values{"error": {code}})
}
