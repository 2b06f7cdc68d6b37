package discord_gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"stationbot/internal/core/bracket"
	"stationbot/internal/events"
	"stationbot/internal/telemetry"
)

// ParticipantSource lists tournament participants for the role commands.
type ParticipantSource interface {
	ListParticipants(ctx context.Context, slug string) ([]bracket.Participant, error)
}

// Gateway owns the Discord session. It renders announcements for the
// reconciler (session.Presenter) and translates component presses and
// slash commands into bus events and role mutations.
type Gateway struct {
	sess          *discordgo.Session
	channelID     string
	slug          string
	bus           *events.Bus
	participants  ParticipantSource
	remoteTimeout time.Duration

	commands []*discordgo.ApplicationCommand
}

func New(token, channelID, slug string, bus *events.Bus, participants ParticipantSource, remoteTimeout time.Duration) (*Gateway, error) {
	sess, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}

	g := &Gateway{
		sess:          sess,
		channelID:     channelID,
		slug:          slug,
		bus:           bus,
		participants:  participants,
		remoteTimeout: remoteTimeout,
	}

	sess.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages
	sess.AddHandler(g.onInteraction)
	return g, nil
}

// Open connects the gateway and registers the slash commands.
func (g *Gateway) Open() error {
	if err := g.sess.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}

	specs := []*discordgo.ApplicationCommand{
		{
			Name:        "assign-roles",
			Description: "Grant a role to every linked tournament participant",
			Options:     []*discordgo.ApplicationCommandOption{roleOption("Role to grant")},
		},
		{
			Name:        "remove-roles",
			Description: "Remove a role from every linked tournament participant",
			Options:     []*discordgo.ApplicationCommandOption{roleOption("Role to remove")},
		},
	}
	for _, spec := range specs {
		cmd, err := g.sess.ApplicationCommandCreate(g.sess.State.User.ID, "", spec)
		if err != nil {
			return fmt.Errorf("register /%s: %w", spec.Name, err)
		}
		g.commands = append(g.commands, cmd)
	}

	telemetry.Infof("discord ready as %s, announcing to channel %s", g.sess.State.User.Username, g.channelID)
	return nil
}

// Close removes the registered commands and disconnects.
func (g *Gateway) Close() {
	for _, cmd := range g.commands {
		if err := g.sess.ApplicationCommandDelete(g.sess.State.User.ID, "", cmd.ID); err != nil {
			telemetry.Warnf("remove /%s: %v", cmd.Name, err)
		}
	}
	if err := g.sess.Close(); err != nil {
		telemetry.Warnf("discord close: %v", err)
	}
}

func roleOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "role",
		Description: description,
		Required:    true,
	}
}

func (g *Gateway) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		g.onComponent(s, i)
	case discordgo.InteractionApplicationCommand:
		g.onCommand(s, i)
	}
}
