package render

import (
	"fmt"

	"stationbot/internal/config"
	"stationbot/internal/core/bracket"
)

// StationLine words a station assignment. Station 1 is the main stream
// setup; stations up through streamMax are sub-stream setups.
func StationLine(labels config.StationLabels, streamMax, station int) string {
	switch {
	case station == 1:
		return fmt.Sprintf(labels.MainStream, station)
	case station <= streamMax:
		return fmt.Sprintf(labels.SubStream, station)
	default:
		return fmt.Sprintf(labels.Standard, station)
	}
}

// SideLabel picks the display text for one side of the versus line: a
// mention for a linked solo player, the entrant name for teams.
func SideLabel(e *bracket.Entrant) string {
	if e == nil {
		return "Unknown"
	}
	if len(e.Participants) == 1 {
		return Mention(e.Participants[0])
	}
	return e.Name
}

// Mention renders a participant as a chat mention when a verified platform
// id is linked, falling back to the gamer tag.
func Mention(p bracket.Participant) string {
	if p.DiscordID != "" {
		return fmt.Sprintf("<@!%s>", p.DiscordID)
	}
	if p.GamerTag != "" {
		return p.GamerTag
	}
	return "Unknown"
}

// MentionLine is the ping line posted above the announcement embed.
func MentionLine(e1, e2 *bracket.Entrant) string {
	return fmt.Sprintf("📢 %s %s", firstMention(e1), firstMention(e2))
}

func firstMention(e *bracket.Entrant) string {
	if e == nil || len(e.Participants) == 0 {
		return "Unknown"
	}
	return Mention(e.Participants[0])
}
