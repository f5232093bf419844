package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

// StrategyFallback names verifications settled by the failure policy.
const StrategyFallback = "fallback"

// MemberStrategy is one way of reading the caller's guild roles.
type MemberStrategy interface {
	Name() string
	Member(ctx context.Context, token, userID string) (*domain.GuildMember, error)
}

type bearerMemberStrategy struct {
	api     ports.DiscordAPI
	guildID string
}

func (s bearerMemberStrategy) Name() string { return "bearer-member" }

func (s bearerMemberStrategy) Member(ctx context.Context, token, userID string) (*domain.GuildMember, error) {
	return s.api.GuildMember(ctx, domain.Bearer(token), s.guildID, userID)
}

type userGuildMemberStrategy struct {
	api     ports.DiscordAPI
	guildID string
}

func (s userGuildMemberStrategy) Name() string { return "user-guild-member" }

func (s userGuildMemberStrategy) Member(ctx context.Context, token, _ string) (*domain.GuildMember, error) {
	return s.api.CurrentUserGuildMember(ctx, token, s.guildID)
}

// botMemberStrategy confirms membership with the user's token, then reads
// the member with the bot token.
type botMemberStrategy struct {
	api      ports.DiscordAPI
	guildID  string
	botToken string
}

func (s botMemberStrategy) Name() string { return "bot-member" }

func (s botMemberStrategy) Member(ctx context.Context, token, userID string) (*domain.GuildMember, error) {
	guilds, err := s.api.CurrentUserGuilds(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	member := false
	for _, g := range guilds {
		if g.ID == s.guildID {
			member = true
			break
		}
	}
	if !member {
		return nil, domain.ErrNotGuildMember
	}
	return s.api.GuildMember(ctx, domain.Bot(s.botToken), s.guildID, userID)
}

// DefaultMemberStrategies is the member lookup order. The bot strategy is
// only included when a bot token is configured.
func DefaultMemberStrategies(api ports.DiscordAPI, guildID, botToken string) []MemberStrategy {
	out := []MemberStrategy{
		bearerMemberStrategy{api: api, guildID: guildID},
		userGuildMemberStrategy{api: api, guildID: guildID},
	}
	if botToken != "" {
		out = append(out, botMemberStrategy{api: api, guildID: guildID, botToken: botToken})
	}
	return out
}

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	Discord  domain.DiscordConfig
	BotToken string
	Policy   domain.FailurePolicy
}

type verifier struct {
	api        ports.DiscordAPI
	cfg        VerifierConfig
	strategies []MemberStrategy
	log        zerolog.Logger
}

// NewVerifier returns a Verifier trying strategies in order. When every
// strategy fails the configured FailurePolicy decides the entitlements.
func NewVerifier(api ports.DiscordAPI, cfg VerifierConfig, strategies []MemberStrategy, log zerolog.Logger) ports.Verifier {
	if strategies == nil {
		strategies = DefaultMemberStrategies(api, cfg.Discord.GuildID, cfg.BotToken)
	}
	if cfg.Policy == "" {
		cfg.Policy = domain.FailOpen
	}
	return &verifier{api: api, cfg: cfg, strategies: strategies, log: log}
}

// Verify fetches the profile, the guild role catalogue and the member roles.
// It never returns an error: failures resolve through the failure policy
// and are reported in Verification.Err.
func (v *verifier) Verify(ctx context.Context, st *domain.Storage, token string) domain.Verification {
	profile, err := v.api.CurrentUser(ctx, token)
	if err != nil {
		return v.fallback(st, nil, fmt.Errorf("fetch profile: %w", err))
	}

	catalogue, err := v.roleCatalogue(ctx, token)
	if err != nil {
		return v.fallback(st, profile, fmt.Errorf("fetch guild roles: %w", err))
	}

	var errs []error
	for _, s := range v.strategies {
		member, err := s.Member(ctx, token, profile.ID)
		if err != nil {
			v.log.Warn().Err(err).Str("strategy", s.Name()).Msg("member lookup failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		names, roles := domain.RoleNames(member.Roles, catalogue)
		return domain.Verification{
			Profile:      profile,
			RoleIDs:      member.Roles,
			RoleNames:    names,
			Roles:        roles,
			Entitlements: v.cfg.Discord.Entitlements(member.Roles),
			Strategy:     s.Name(),
		}
	}
	return v.fallback(st, profile, errors.Join(errs...))
}

func (v *verifier) roleCatalogue(ctx context.Context, token string) ([]domain.GuildRole, error) {
	roles, err := v.api.GuildRoles(ctx, domain.Bearer(token), v.cfg.Discord.GuildID)
	if err == nil || v.cfg.BotToken == "" {
		return roles, err
	}
	v.log.Debug().Err(err).Msg("guild roles with bearer token failed, retrying with bot token")
	return v.api.GuildRoles(ctx, domain.Bot(v.cfg.BotToken), v.cfg.Discord.GuildID)
}

func (v *verifier) fallback(st *domain.Storage, profile *domain.Profile, err error) domain.Verification {
	out := domain.Verification{Profile: profile, Strategy: StrategyFallback, Err: err}

	switch v.cfg.Policy {
	case domain.FailClosed:
		out.Entitlements = domain.Entitlements{
			Trainer:  st.Bool(domain.KeyDiscordIsTrainer),
			Staff:    st.Bool(domain.KeyDiscordIsStaff),
			Fallback: true,
		}
	default:
		out.Entitlements = domain.Entitlements{Trainer: true, Staff: true, Fallback: true}
	}

	names, cacheErr := st.Strings(domain.KeyDiscordRoles)
	if cacheErr != nil {
		v.log.Warn().Err(cacheErr).Msg("cached roles unreadable, treating as empty")
	}
	out.RoleNames = names

	v.log.Warn().Err(err).Str("policy", string(v.cfg.Policy)).Msg("discord verification fell back")
	return out
}

// StoreVerification caches a verification next to the token. Keys left in
// the other area are removed so lookups never see a stale copy.
func StoreVerification(st *domain.Storage, area domain.Area, v domain.Verification) {
	setBool(st, area, domain.KeyDiscordIsTrainer, v.Entitlements.Trainer)
	setBool(st, area, domain.KeyDiscordIsStaff, v.Entitlements.Staff)
	if v.Profile != nil {
		setString(st, area, domain.KeyDiscordUsername, v.Profile.Username)
		setString(st, area, domain.KeyDiscordUserID, v.Profile.ID)
	}
	if v.Strategy != StrategyFallback {
		st.Remove(other(area), domain.KeyDiscordRoles)
		st.SetStrings(area, domain.KeyDiscordRoles, v.RoleNames)
	}
}

// TokenArea is where the Discord token belongs given the save-login
// preference.
func TokenArea(st *domain.Storage) domain.Area {
	if st.Bool(domain.KeyDiscordSaveLogin) {
		return domain.AreaPersistent
	}
	return domain.AreaSession
}

func other(area domain.Area) domain.Area {
	if area == domain.AreaPersistent {
		return domain.AreaSession
	}
	return domain.AreaPersistent
}

func setBool(st *domain.Storage, area domain.Area, key domain.Key, v bool) {
	st.Remove(other(area), key)
	st.SetBool(area, key, v)
}

func setString(st *domain.Storage, area domain.Area, key domain.Key, v string) {
	st.Remove(other(area), key)
	st.Set(area, key, v)
}
