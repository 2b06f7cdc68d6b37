package discord_gateway

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"stationbot/internal/events"
	"stationbot/internal/telemetry"
)

// onComponent turns a button press into a bus event tagged with its set
// id. The engine routes it to the matching session; presses for a set
// without a live session come back as an "already finalized" notice.
func (g *Gateway) onComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		telemetry.Warnf("interaction ack: %v", err)
	}

	respond := func(notice string) {
		_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: notice,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			telemetry.Warnf("interaction notice: %v", err)
		}
	}

	parts := strings.Split(customID, ":")
	switch {
	case parts[0] == "score" && len(parts) == 4:
		side, err1 := strconv.Atoi(parts[2])
		value, err2 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil {
			telemetry.Warnf("malformed component id %q", customID)
			return
		}
		g.bus.Publish(events.Event{
			Type:      events.EventScorePress,
			SetID:     parts[1],
			Timestamp: time.Now(),
			Payload:   events.ScorePress{Side: side, Value: value, Respond: respond},
		})
	case parts[0] == "submit" && len(parts) == 2:
		g.bus.Publish(events.Event{
			Type:      events.EventSubmitPress,
			SetID:     parts[1],
			Timestamp: time.Now(),
			Payload:   events.SubmitPress{Respond: respond},
		})
	default:
		telemetry.Warnf("unknown component id %q", customID)
	}
}
