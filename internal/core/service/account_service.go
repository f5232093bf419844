package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

const (
	warnLiveDataUnavailable = "Could not fetch live data from Discord"
	warnCachedRoles         = "Using cached roles"
)

type accountService struct {
	discord  domain.DiscordConfig
	grant    domain.DiscordGrant
	verifier ports.Verifier
	notify   ports.NotificationService
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

// NewAccountService returns the account dashboard service.
func NewAccountService(
	discord domain.DiscordConfig,
	grant domain.DiscordGrant,
	verifier ports.Verifier,
	notify ports.NotificationService,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.AccountService {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &accountService{
		discord:  discord,
		grant:    grant,
		verifier: verifier,
		notify:   notify,
		audit:    audit,
		log:      log,
	}
}

func (s *accountService) status(st *domain.Storage, now time.Time) domain.LoginStatus {
	save := st.Bool(domain.KeyDiscordSaveLogin)
	status := domain.LoginStatus{SaveLogin: save}
	issued, ok := st.Time(domain.KeyDiscordTimestamp)
	if !ok {
		return status
	}
	timeout := s.grant.Timeout(save)
	status.LoginAt = issued
	status.ExpiresAt = issued.Add(timeout)
	status.Active = st.Has(domain.KeyDiscordToken) && !domain.Expired(issued, now, timeout)
	return status
}

// Overview verifies the login against Discord and assembles the dashboard.
// When Discord cannot be reached the cached values are used and the
// overview carries warnings.
func (s *accountService) Overview(ctx context.Context, st *domain.Storage, now time.Time) (*domain.AccountOverview, error) {
	token, _, ok := st.Lookup(domain.KeyDiscordToken)
	if !ok || token == "" {
		return nil, domain.ErrNotLoggedIn
	}

	v := s.verifier.Verify(ctx, st, token)
	StoreVerification(st, TokenArea(st), v)

	ov := &domain.AccountOverview{
		Status: s.status(st, now),
		Live:   v.Strategy != StrategyFallback,
	}

	if v.Profile != nil {
		ov.Profile = *v.Profile
	} else {
		ov.Profile = domain.Profile{
			ID:       cachedOr(st, domain.KeyDiscordUserID, "Unknown"),
			Username: cachedOr(st, domain.KeyDiscordUsername, "Unknown User"),
		}
		ov.Warnings = append(ov.Warnings, warnLiveDataUnavailable)
	}
	ov.AvatarURL = ov.Profile.AvatarURL()
	ov.Initial = ov.Profile.Initial()
	ov.Premium = ov.Profile.Premium()

	entitlements := domain.Entitlements{
		Trainer: st.Bool(domain.KeyDiscordIsTrainer),
		Staff:   st.Bool(domain.KeyDiscordIsStaff),
	}
	if ov.Live {
		ov.Roles = liveBadges(v.Roles)
	} else {
		ov.Roles = s.cachedBadges(st, entitlements)
		ov.Warnings = append(ov.Warnings, warnCachedRoles)
	}
	ov.Permissions = domain.Permissions(entitlements, s.discord.LoginPage)

	return ov, nil
}

// Refresh re-runs the overview and greets the user again.
func (s *accountService) Refresh(ctx context.Context, st *domain.Storage, now time.Time) (*domain.AccountOverview, error) {
	ov, err := s.Overview(ctx, st, now)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ov.Roles))
	for _, r := range ov.Roles {
		names = append(names, r.Name)
	}
	s.notify.Welcome(st, ov.Profile.Username, names, now)
	return ov, nil
}

// SetSaveLogin stores the preference and moves the token with its timestamp
// into the matching area.
func (s *accountService) SetSaveLogin(st *domain.Storage, save *bool, now time.Time) (bool, error) {
	next := !st.Bool(domain.KeyDiscordSaveLogin)
	if save != nil {
		next = *save
	}
	st.SetBool(domain.AreaPersistent, domain.KeyDiscordSaveLogin, next)

	from, to := domain.AreaPersistent, domain.AreaSession
	if next {
		from, to = domain.AreaSession, domain.AreaPersistent
	}
	moved := st.Move(from, to, domain.KeyDiscordToken, domain.KeyDiscordTimestamp)
	st.Clear(domain.KeyDiscordJustLoggedIn)

	if next {
		s.notify.Success(st, "Save Login Enabled", "Your login information will be saved for 7 days.", now)
	} else {
		s.notify.Success(st, "Save Login Disabled", "Your login information will only be saved for this session.", now)
	}

	outcome := "disabled"
	if next {
		outcome = "enabled"
	}
	s.audit.Record(domain.AccessEvent{
		Type:      domain.EventSaveLogin,
		Outcome:   outcome,
		StorageID: st.ID(),
		Timestamp: now,
	})
	s.log.Debug().Bool("save_login", next).Bool("moved", moved).Msg("save login updated")
	return next, nil
}

// Logout forgets the Discord login and returns the login page.
func (s *accountService) Logout(st *domain.Storage) string {
	st.Clear(domain.DiscordAccountKeys...)
	s.audit.Record(domain.AccessEvent{
		Type:      domain.EventDiscordLogout,
		Outcome:   "cleared",
		StorageID: st.ID(),
		Timestamp: time.Now(),
	})
	return domain.Root(s.discord.LoginPage)
}

func liveBadges(roles []domain.GuildRole) []domain.RoleBadge {
	if len(roles) == 0 {
		return []domain.RoleBadge{domain.MemberBadge()}
	}
	out := make([]domain.RoleBadge, 0, len(roles))
	for _, r := range roles {
		out = append(out, domain.NewRoleBadge(r.Name, r.Color))
	}
	return out
}

func (s *accountService) cachedBadges(st *domain.Storage, e domain.Entitlements) []domain.RoleBadge {
	names, err := st.Strings(domain.KeyDiscordRoles)
	if err != nil {
		s.log.Warn().Err(err).Msg("cached roles unreadable, treating as empty")
	}
	if len(names) > 0 {
		out := make([]domain.RoleBadge, 0, len(names))
		for _, n := range names {
			out = append(out, domain.NewRoleBadge(n, -1))
		}
		return out
	}

	out := []domain.RoleBadge{domain.MemberBadge()}
	if e.Trainer {
		out = append(out, domain.NewRoleBadge("Trainer", -1))
	}
	if e.Staff {
		out = append(out, domain.NewRoleBadge("Staff Member", -1))
	}
	return out
}

func cachedOr(st *domain.Storage, key domain.Key, fallback string) string {
	if v, _, ok := st.Lookup(key); ok && v != "" {
		return v
	}
	return fallback
}
