package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// DiscordConfig is the shared OAuth/guild configuration.
type DiscordConfig struct {
	ClientID       string
	GuildID        string
	TrainerRoleIDs []string
	StaffRoleIDs   []string
	Scope          string
	AuthorizeURL   string
	// BaseURL overrides the request origin when computing the redirect URI.
	BaseURL      string
	CallbackPage string
	LoginPage    string
}

// Enabled reports whether Discord login is configured.
func (c DiscordConfig) Enabled() bool {
	return c.ClientID != ""
}

// RedirectURI is the callback page on the given origin, or on BaseURL when
// one is configured.
func (c DiscordConfig) RedirectURI(origin string) string {
	base := c.BaseURL
	if base == "" {
		base = origin
	}
	return strings.TrimRight(base, "/") + Root(c.CallbackPage)
}

// AuthorizationURL builds the implicit-grant authorization URL.
func (c DiscordConfig) AuthorizationURL(origin string) string {
	var b strings.Builder
	b.WriteString(c.AuthorizeURL)
	b.WriteString("?client_id=")
	b.WriteString(EncodeURIComponent(c.ClientID))
	b.WriteString("&redirect_uri=")
	b.WriteString(EncodeURIComponent(c.RedirectURI(origin)))
	b.WriteString("&response_type=token&scope=")
	b.WriteString(EncodeURIComponent(c.Scope))
	return b.String()
}

// EncodeURIComponent escapes s the way browsers escape query components
// (spaces become %20, not +).
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Entitlements derives the trainer/staff booleans from member role ids.
func (c DiscordConfig) Entitlements(roleIDs []string) Entitlements {
	return Entitlements{
		Trainer: intersects(roleIDs, c.TrainerRoleIDs),
		Staff:   intersects(roleIDs, c.StaffRoleIDs),
	}
}

func intersects(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// CredentialKind selects the Authorization scheme.
type CredentialKind string

const (
	CredentialBearer CredentialKind = "Bearer"
	CredentialBot    CredentialKind = "Bot"
)

// Credential is a token presented to the Discord API.
type Credential struct {
	Kind  CredentialKind
	Token string
}

// Header renders the Authorization header value.
func (c Credential) Header() string {
	return string(c.Kind) + " " + c.Token
}

// Bearer wraps a user access token.
func Bearer(token string) Credential { return Credential{Kind: CredentialBearer, Token: token} }

// Bot wraps a bot token.
func Bot(token string) Credential { return Credential{Kind: CredentialBot, Token: token} }

// Profile is the subset of the Discord user object the portal displays.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar,omitempty"`
	Email       string `json:"email,omitempty"`
	Verified    *bool  `json:"verified,omitempty"`
	PremiumType int    `json:"premium_type,omitempty"`
}

var premiumTypes = []string{"None", "Nitro Classic", "Nitro", "Nitro Basic"}

// Premium names the Nitro subscription, or "" for none.
func (p Profile) Premium() string {
	if p.PremiumType == 0 {
		return ""
	}
	if p.PremiumType < len(premiumTypes) {
		return premiumTypes[p.PremiumType]
	}
	return "Nitro Subscriber"
}

// AvatarURL returns the CDN avatar, or "" when the user has none.
func (p Profile) AvatarURL() string {
	if p.Avatar == "" || p.ID == "" {
		return ""
	}
	return "https://cdn.discordapp.com/avatars/" + p.ID + "/" + p.Avatar + ".png"
}

// Initial is the fallback avatar letter.
func (p Profile) Initial() string {
	if p.Username == "" || p.Username == "Unknown User" {
		return "?"
	}
	return strings.ToUpper(string([]rune(p.Username)[:1]))
}

// GuildRole is an entry of the guild role catalogue.
type GuildRole struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color int    `json:"color"`
}

// GuildMember is the caller's membership in the guild.
type GuildMember struct {
	UserID string
	Roles  []string
}

// GuildSummary is an entry of the caller's guild list.
type GuildSummary struct {
	ID   string
	Name string
}

// Entitlements are the role-derived document permissions.
type Entitlements struct {
	Trainer bool `json:"trainer"`
	Staff   bool `json:"staff"`
	// Fallback marks entitlements assumed by the failure policy rather than
	// derived from live roles.
	Fallback bool `json:"fallback,omitempty"`
}

// FailurePolicy decides entitlements when verification cannot complete.
type FailurePolicy string

const (
	// FailOpen grants both entitlements. This reproduces the portal's
	// historical behaviour and is not a security boundary.
	FailOpen FailurePolicy = "open"
	// FailClosed keeps previously cached entitlements, or none.
	FailClosed FailurePolicy = "closed"
)

// Verification is the result of checking a token against Discord.
type Verification struct {
	Profile      *Profile
	RoleIDs      []string
	RoleNames    []string
	Roles        []GuildRole
	Entitlements Entitlements
	// Strategy names the member strategy that succeeded, or "fallback".
	Strategy string
	// Err is the last error seen when the fallback policy applied.
	Err error
}

// RoleNames maps member role ids to names, skipping @everyone and ids that
// are not in the catalogue.
func RoleNames(roleIDs []string, catalogue []GuildRole) ([]string, []GuildRole) {
	byID := make(map[string]GuildRole, len(catalogue))
	for _, r := range catalogue {
		byID[r.ID] = r
	}
	names := make([]string, 0, len(roleIDs))
	roles := make([]GuildRole, 0, len(roleIDs))
	for _, id := range roleIDs {
		r, ok := byID[id]
		if !ok || r.Name == "@everyone" {
			continue
		}
		names = append(names, r.Name)
		roles = append(roles, r)
	}
	return names, roles
}

// CallbackResult is the token delivered in the implicit-grant fragment.
type CallbackResult struct {
	AccessToken string
	TokenType   string
	Scope       string
	ExpiresIn   int
}

// ParseCallback inspects the fragment (without '#') and query of the
// callback URL.
func ParseCallback(fragment string, query url.Values) (CallbackResult, error) {
	frag, _ := url.ParseQuery(strings.TrimPrefix(fragment, "#"))

	if token := frag.Get("access_token"); token != "" {
		expires, _ := strconv.Atoi(frag.Get("expires_in"))
		return CallbackResult{
			AccessToken: token,
			TokenType:   frag.Get("token_type"),
			Scope:       frag.Get("scope"),
			ExpiresIn:   expires,
		}, nil
	}
	if code := frag.Get("error"); code != "" {
		return CallbackResult{}, &ProviderError{Code: code, Description: frag.Get("error_description")}
	}
	if code := query.Get("error"); code != "" {
		return CallbackResult{}, &ProviderError{Code: code, Description: query.Get("error_description")}
	}
	if query.Get("code") != "" {
		return CallbackResult{}, ErrInvalidResponse
	}
	return CallbackResult{}, ErrNoToken
}
