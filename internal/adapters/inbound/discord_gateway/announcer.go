package discord_gateway

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"stationbot/internal/core/bracket"
	"stationbot/internal/core/session"
)

const embedColor = 0x3498db

// Announce posts a fresh announcement: ping line, embed body, score grid.
func (g *Gateway) Announce(v session.View) (session.MessageRef, error) {
	msg, err := g.sess.ChannelMessageSendComplex(g.channelID, &discordgo.MessageSend{
		Content:    v.MentionLine,
		Embeds:     []*discordgo.MessageEmbed{{Description: v.Body, Color: embedColor}},
		Components: scoreComponents(v),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeUsers,
				discordgo.AllowedMentionTypeRoles,
				discordgo.AllowedMentionTypeEveryone,
			},
		},
	})
	if err != nil {
		return session.MessageRef{}, fmt.Errorf("%w: announce: %v", bracket.ErrTransport, err)
	}
	return session.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

// Update rewrites an existing announcement in place, never posting a
// second message for the same set.
func (g *Gateway) Update(v session.View) error {
	if v.Ref.IsZero() {
		return errors.New("update without a message ref")
	}

	embeds := []*discordgo.MessageEmbed{{Description: v.Body, Color: embedColor}}
	components := scoreComponents(v)
	_, err := g.sess.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    v.Ref.ChannelID,
		ID:         v.Ref.MessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("%w: update: %v", bracket.ErrTransport, err)
	}
	return nil
}

// scoreComponents builds the button grid: one row of 0..MaxScore per side
// with the selected value highlighted, and a submit row underneath.
func scoreComponents(v session.View) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, 3)

	for side := 1; side <= 2; side++ {
		row := discordgo.ActionsRow{}
		for value := 0; value <= v.MaxScore; value++ {
			style := discordgo.SecondaryButton
			if v.Scores[side-1] == value {
				style = discordgo.SuccessButton
			}
			row.Components = append(row.Components, discordgo.Button{
				Label:    strconv.Itoa(value),
				Style:    style,
				CustomID: fmt.Sprintf("score:%s:%d:%d", v.SetID, side, value),
				Disabled: !v.ControlsEnabled,
			})
		}
		rows = append(rows, row)
	}

	rows = append(rows, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "OK",
				Style:    discordgo.SuccessButton,
				CustomID: "submit:" + v.SetID,
				Disabled: !v.ControlsEnabled,
			},
		},
	})
	return rows
}
