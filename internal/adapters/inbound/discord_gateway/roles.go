package discord_gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"stationbot/internal/core/bracket"
	"stationbot/internal/telemetry"
)

// onCommand handles the role slash commands. Both defer first: the
// participant fetch plus per-member role calls can take a while.
func (g *Gateway) onCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		telemetry.Warnf("command ack: %v", err)
		return
	}

	followup := func(content string) {
		_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: content})
		if err != nil {
			telemetry.Warnf("command reply: %v", err)
		}
	}

	if i.GuildID == "" {
		followup("⚠️ This command only works inside a server.")
		return
	}
	if len(data.Options) == 0 {
		followup("⚠️ A role is required.")
		return
	}
	role := data.Options[0].RoleValue(s, i.GuildID)
	if role == nil {
		followup("⚠️ That role could not be resolved.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.remoteTimeout)
	participants, err := g.participants.ListParticipants(ctx, g.slug)
	cancel()
	if err != nil {
		telemetry.Warnf("/%s: participant fetch: %v", data.Name, err)
		followup("⚠️ Fetching tournament participants failed, try again shortly.")
		return
	}

	switch data.Name {
	case "assign-roles":
		followup(g.assignRoles(s, i.GuildID, role, participants))
	case "remove-roles":
		followup(g.removeRoles(s, i.GuildID, role, participants))
	default:
		followup("⚠️ Unknown command.")
	}
}

// assignRoles grants the role to every linked participant who is a guild
// member, reporting who got it and who could not.
func (g *Gateway) assignRoles(s *discordgo.Session, guildID string, role *discordgo.Role, participants []bracket.Participant) string {
	var granted []string
	var failed []string

	for _, p := range linked(participants) {
		if _, err := s.GuildMember(guildID, p.DiscordID); err != nil {
			failed = append(failed, fmt.Sprintf("- %s (not in server)", p.GamerTag))
			continue
		}
		if err := s.GuildMemberRoleAdd(guildID, p.DiscordID, role.ID); err != nil {
			failed = append(failed, fmt.Sprintf("- %s (%v)", p.GamerTag, err))
			continue
		}
		granted = append(granted, "- "+p.GamerTag)
	}

	msg := summary("granted", role.Name, granted)
	if len(failed) > 0 {
		msg += fmt.Sprintf("\n\n⚠️ Failed for %d participants:\n%s", len(failed), strings.Join(failed, "\n"))
	}
	return msg
}

// removeRoles strips the role from every linked participant it can;
// members already without the role or outside the guild are skipped.
func (g *Gateway) removeRoles(s *discordgo.Session, guildID string, role *discordgo.Role, participants []bracket.Participant) string {
	var removed []string

	for _, p := range linked(participants) {
		if err := s.GuildMemberRoleRemove(guildID, p.DiscordID, role.ID); err != nil {
			continue
		}
		removed = append(removed, "- "+p.GamerTag)
	}

	return summary("removed", role.Name, removed)
}

func linked(participants []bracket.Participant) []bracket.Participant {
	out := participants[:0:0]
	for _, p := range participants {
		if p.DiscordID != "" {
			out = append(out, p)
		}
	}
	return out
}

func summary(action, roleName string, tags []string) string {
	if len(tags) == 0 {
		return "⚠️ No matching members found."
	}
	return fmt.Sprintf("✅ Role `%s` %s for %d participants:\n\n%s",
		roleName, action, len(tags), strings.Join(tags, "\n"))
}
