package service

import (
	"time"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// ScopeOptions configures DefaultScopes.
type ScopeOptions struct {
	PasscodeTimeout time.Duration
	Discord         domain.DiscordGrant
	// DiscordLogin sends role scopes to the Discord login page instead of
	// the passcode pages.
	DiscordLogin bool
}

// DefaultScopes is the portal's protection table, evaluated in order.
func DefaultScopes(opts ScopeOptions) []domain.Scope {
	passcode := func(flag, ts domain.Key) domain.Grant {
		return domain.PasscodeGrant{Flag: flag, Timestamp: ts, Timeout: opts.PasscodeTimeout}
	}
	discord := func(entitlement domain.Key) domain.Grant {
		g := opts.Discord
		g.Entitlement = entitlement
		return g
	}
	gatePage := func(passcodePage string) string {
		if opts.DiscordLogin {
			return domain.PageDiscordLogin
		}
		return passcodePage
	}

	return []domain.Scope{
		{
			Name:     domain.ScopeSite,
			GatePage: domain.PageComingSoon,
			Home:     domain.PageIndex,
			AllPages: true,
			Prefixes: []string{"documents/"},
			Exempt:   []string{domain.PageComingSoon, domain.PageDiscordCallback},
			Grants:   []domain.Grant{passcode(domain.KeySiteAccess, domain.KeySiteTimestamp)},
		},
		{
			Name:     domain.ScopeTrainer,
			GatePage: gatePage(domain.PageTrainerLogin),
			Home:     domain.PageTrainerDocument,
			Paths:    []string{domain.PageTrainerDocument, "documents/STD.pdf"},
			Grants: []domain.Grant{
				passcode(domain.KeyTrainerAuth, domain.KeyTrainerTimestamp),
				discord(domain.KeyDiscordIsTrainer),
			},
		},
		{
			Name:     domain.ScopeStaff,
			GatePage: gatePage(domain.PageStaffLogin),
			Home:     domain.PageStaffDocument,
			Paths:    []string{domain.PageStaffDocument, "documents/SWPD.pdf"},
			Grants: []domain.Grant{
				passcode(domain.KeyStaffAuth, domain.KeyStaffTimestamp),
				discord(domain.KeyDiscordIsStaff),
			},
		},
		{
			Name:     domain.ScopeAccount,
			GatePage: domain.PageDiscordLogin,
			Home:     domain.PageAccount,
			Paths:    []string{domain.PageAccount},
			Grants:   []domain.Grant{discord("")},
		},
	}
}

// DefaultGates builds the three passcode gates from their allow-lists.
func DefaultGates(site, trainer, staff []string) []Gate {
	return []Gate{
		{
			Scope: domain.ScopeSite, Page: domain.PageComingSoon, Home: domain.PageIndex,
			Flag: domain.KeySiteAccess, Timestamp: domain.KeySiteTimestamp,
			Passcodes: site,
		},
		{
			Scope: domain.ScopeTrainer, Page: domain.PageTrainerLogin, Home: domain.PageTrainerDocument,
			Flag: domain.KeyTrainerAuth, Timestamp: domain.KeyTrainerTimestamp,
			Passcodes: trainer,
		},
		{
			Scope: domain.ScopeStaff, Page: domain.PageStaffLogin, Home: domain.PageStaffDocument,
			Flag: domain.KeyStaffAuth, Timestamp: domain.KeyStaffTimestamp,
			Passcodes: staff,
		},
	}
}

// DefaultDocuments is the document catalogue of the viewer. Each PDF is only
// served to browsers holding the scope of the page that embeds it.
func DefaultDocuments() []domain.Document {
	return []domain.Document{
		{ID: "std", Title: "Staff Training Document", URL: "/documents/STD.pdf", Scope: domain.ScopeTrainer},
		{ID: "swpd", Title: "Staff Warning Policy Document", URL: "/documents/SWPD.pdf", Scope: domain.ScopeStaff},
	}
}
