package visibility

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
)

// ChannelPermissionClient is the slice of the Discord session the
// synchronizer needs. *discordgo.Session satisfies it.
type ChannelPermissionClient interface {
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
	ChannelPermissionDelete(channelID, targetID string, options ...discordgo.RequestOption) error
}

// DiscordSynchronizer maps coordinate channel refs onto Discord
// permission overwrites for the moving member.
type DiscordSynchronizer struct {
	client ChannelPermissionClient
}

// DiscordSynchronizerConfig holds configuration for the synchronizer
type DiscordSynchronizerConfig struct {
	Client ChannelPermissionClient // Required
}

// NewDiscordSynchronizer creates a Discord-backed synchronizer
func NewDiscordSynchronizer(cfg *DiscordSynchronizerConfig) *DiscordSynchronizer {
	if cfg.Client == nil {
		panic("discord client is required")
	}
	return &DiscordSynchronizer{client: cfg.Client}
}

// Sync grants view access on the new channel, then removes the member's
// overwrite on the old one. A grant failure aborts before the revoke so
// a partial failure can only leave the member with extra visibility,
// never with none.
func (s *DiscordSynchronizer) Sync(ctx context.Context, memberID, oldChannelRef, newChannelRef string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if newChannelRef != "" {
		err := s.client.ChannelPermissionSet(
			newChannelRef,
			memberID,
			discordgo.PermissionOverwriteTypeMember,
			discordgo.PermissionViewChannel,
			0,
		)
		if err != nil {
			return apperr.Wrapf(err, "failed to grant visibility on channel %s", newChannelRef)
		}
	}

	if oldChannelRef != "" && oldChannelRef != newChannelRef {
		if err := s.client.ChannelPermissionDelete(oldChannelRef, memberID); err != nil {
			// The grant already landed; losing the revoke is recoverable
			log.Printf("failed to revoke visibility on channel %s for member %s: %v", oldChannelRef, memberID, err)
		}
	}

	return nil
}
