package ports

import (
	"context"

	"github.com/fsrp/document-portal/internal/core/domain"
)

// DiscordAPI is the read-only slice of the Discord REST API the portal uses.
type DiscordAPI interface {
	// CurrentUser calls GET /users/@me.
	CurrentUser(ctx context.Context, token string) (*domain.Profile, error)
	// CurrentUserGuilds calls GET /users/@me/guilds.
	CurrentUserGuilds(ctx context.Context, token string) ([]domain.GuildSummary, error)
	// CurrentUserGuildMember calls GET /users/@me/guilds/{guild}/member.
	CurrentUserGuildMember(ctx context.Context, token, guildID string) (*domain.GuildMember, error)
	// GuildRoles calls GET /guilds/{guild}/roles.
	GuildRoles(ctx context.Context, cred domain.Credential, guildID string) ([]domain.GuildRole, error)
	// GuildMember calls GET /guilds/{guild}/members/{user}.
	GuildMember(ctx context.Context, cred domain.Credential, guildID, userID string) (*domain.GuildMember, error)
}
