package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
)

const (
	defaultTimeout = 5 * time.Second
	userAgent      = "DiscordBot (https://github.com/fsrp/document-portal, 1.0)"
)

// Config captures the settings of the Discord REST client.
type Config struct {
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client reads profiles, roles and guild members through discordgo. A
// session is built per call because every user brings their own token.
type Client struct {
	http *http.Client
	log  zerolog.Logger
}

// NewClient returns a Client. A default timeout is applied when none is
// provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{http: hc, log: log}
}

func (c *Client) session(cred domain.Credential) (*discordgo.Session, error) {
	s, err := discordgo.New(cred.Header())
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Client = c.http
	s.UserAgent = userAgent
	s.ShouldRetryOnRateLimit = false
	s.MaxRestRetries = 0
	return s, nil
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.Profile, error) {
	s, err := c.session(domain.Bearer(token))
	if err != nil {
		return nil, err
	}
	u, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("get current user", err)
	}
	verified := u.Verified
	return &domain.Profile{
		ID:          u.ID,
		Username:    u.Username,
		Avatar:      u.Avatar,
		Email:       u.Email,
		Verified:    &verified,
		PremiumType: int(u.PremiumType),
	}, nil
}

func (c *Client) CurrentUserGuilds(ctx context.Context, token string) ([]domain.GuildSummary, error) {
	s, err := c.session(domain.Bearer(token))
	if err != nil {
		return nil, err
	}
	guilds, err := s.UserGuilds(200, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("list current user guilds", err)
	}
	out := make([]domain.GuildSummary, 0, len(guilds))
	for _, g := range guilds {
		out = append(out, domain.GuildSummary{ID: g.ID, Name: g.Name})
	}
	return out, nil
}

// CurrentUserGuildMember reads the caller's own membership, which only
// needs the guilds.members.read scope.
func (c *Client) CurrentUserGuildMember(ctx context.Context, token, guildID string) (*domain.GuildMember, error) {
	s, err := c.session(domain.Bearer(token))
	if err != nil {
		return nil, err
	}
	endpoint := discordgo.EndpointUserGuilds("@me") + "/" + guildID + "/member"
	body, err := s.RequestWithBucketID(http.MethodGet, endpoint, nil, discordgo.EndpointUserGuilds("@me"), discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("get current user guild member", err)
	}
	var m discordgo.Member
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode guild member: %w", err)
	}
	return toMember(&m), nil
}

func (c *Client) GuildRoles(ctx context.Context, cred domain.Credential, guildID string) ([]domain.GuildRole, error) {
	s, err := c.session(cred)
	if err != nil {
		return nil, err
	}
	roles, err := s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("list guild roles", err)
	}
	out := make([]domain.GuildRole, 0, len(roles))
	for _, r := range roles {
		out = append(out, domain.GuildRole{ID: r.ID, Name: r.Name, Color: r.Color})
	}
	return out, nil
}

func (c *Client) GuildMember(ctx context.Context, cred domain.Credential, guildID, userID string) (*domain.GuildMember, error) {
	s, err := c.session(cred)
	if err != nil {
		return nil, err
	}
	m, err := s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrap("get guild member", err)
	}
	return toMember(m), nil
}

func toMember(m *discordgo.Member) *domain.GuildMember {
	out := &domain.GuildMember{Roles: m.Roles}
	if m.User != nil {
		out.UserID = m.User.ID
	}
	return out
}

// wrap maps "not a member" answers to ErrNotGuildMember.
func wrap(op string, err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrNotGuildMember, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
