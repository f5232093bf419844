package domain

import (
	"fmt"
	"strings"
	"time"
)

const defaultRoleColor = "#7289DA"

// RoleBadge is a role as rendered on the account dashboard.
type RoleBadge struct {
	Name      string `json:"name"`
	Class     string `json:"class"`
	Icon      string `json:"icon"`
	Color     string `json:"color,omitempty"`
	TextColor string `json:"text_color,omitempty"`
}

var badgeClasses = []struct {
	match, class, icon string
}{
	{"staff", "staff", "fa-shield-alt"},
	{"trainer", "trainer", "fa-graduation-cap"},
	{"admin", "admin", "fa-crown"},
	{"moderator", "moderator", "fa-gavel"},
	{"developer", "developer", "fa-code"},
	{"vip", "vip", "fa-star"},
}

// NewRoleBadge classifies a role by name. color is Discord's decimal RGB;
// a negative color leaves the badge uncoloured.
func NewRoleBadge(name string, color int) RoleBadge {
	b := RoleBadge{Name: name, Class: "member", Icon: "fa-user"}
	lower := strings.ToLower(name)
	for _, c := range badgeClasses {
		if strings.Contains(lower, c.match) {
			b.Class, b.Icon = c.class, c.icon
			break
		}
	}
	if color >= 0 {
		b.Color = ColorHex(color)
		b.TextColor = ContrastColor(b.Color)
	}
	return b
}

// MemberBadge is shown when a user has no roles to display.
func MemberBadge() RoleBadge {
	return RoleBadge{Name: "Member", Class: "member", Icon: "fa-user"}
}

// ColorHex converts Discord's decimal colour; 0 means "no colour".
func ColorHex(color int) string {
	if color == 0 {
		return defaultRoleColor
	}
	return fmt.Sprintf("#%06x", color)
}

// ContrastColor picks black or white text for a background colour.
func ContrastColor(hex string) string {
	h := strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b); err != nil {
		return "#ffffff"
	}
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

// Permission is one row of the dashboard's document access list.
type Permission struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Access      bool   `json:"access"`
	URL         string `json:"url"`
}

// Permissions lists the documents and whether the entitlements open them.
func Permissions(e Entitlements, loginPage string) []Permission {
	locked := func(page string) string {
		return strings.TrimPrefix(GateRedirect(loginPage, page), "/")
	}
	pick := func(ok bool, page string) string {
		if ok {
			return page
		}
		return locked(page)
	}
	return []Permission{
		{
			Name:        "Staff Training Document",
			Description: "Access to the full staff training document",
			Access:      e.Trainer,
			URL:         pick(e.Trainer, PageTrainerDocument),
		},
		{
			Name:        "Staff Warning Policy Document",
			Description: "Access to the staff warning policy document",
			Access:      e.Staff,
			URL:         pick(e.Staff, PageStaffDocument),
		},
		{
			Name:        "Account Dashboard",
			Description: "Access to view and manage your account information",
			Access:      true,
			URL:         PageAccount,
		},
	}
}

// LoginStatus describes the current Discord login.
type LoginStatus struct {
	Active    bool      `json:"active"`
	SaveLogin bool      `json:"save_login"`
	LoginAt   time.Time `json:"login_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountOverview is everything the dashboard renders.
type AccountOverview struct {
	Profile     Profile      `json:"profile"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Initial     string       `json:"initial"`
	Premium     string       `json:"premium,omitempty"`
	Roles       []RoleBadge  `json:"roles"`
	Permissions []Permission `json:"permissions"`
	Status      LoginStatus  `json:"status"`
	// Live is false when any part came from cached data.
	Live     bool     `json:"live"`
	Warnings []string `json:"warnings,omitempty"`
}
