package startgg_gql

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"stationbot/internal/core/bracket"
)

const queryParticipants = `
query GetEntrants($slug: String!) {
  tournament(slug: $slug) {
    events {
      entrants {
        nodes {
          name
          participants {
            gamerTag
            user {
              authorizations {
                type
                externalId
              }
            }
          }
        }
      }
    }
  }
}`

type participantNode struct {
	GamerTag string `json:"gamerTag"`
	User     *struct {
		Authorizations []struct {
			Type       string `json:"type"`
			ExternalID string `json:"externalId"`
		} `json:"authorizations"`
	} `json:"user"`
}

type entrantsData struct {
	Tournament *struct {
		Events []struct {
			Entrants struct {
				Nodes []struct {
					Name         string            `json:"name"`
					Participants []participantNode `json:"participants"`
				} `json:"nodes"`
			} `json:"entrants"`
		} `json:"events"`
	} `json:"tournament"`
}

// ListParticipants returns every tournament participant with a normalized
// gamer tag and, when the player linked their account, a verified Discord
// id. Concurrent callers share one in-flight fetch.
func (c *Client) ListParticipants(ctx context.Context, slug string) ([]bracket.Participant, error) {
	v, err, _ := c.sfGroup.Do("participants:"+slug, func() (any, error) {
		return c.fetchParticipants(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return v.([]bracket.Participant), nil
}

func (c *Client) fetchParticipants(ctx context.Context, slug string) ([]bracket.Participant, error) {
	var data entrantsData
	if err := c.do(ctx, "GetEntrants", queryParticipants, map[string]any{"slug": slug}, &data); err != nil {
		return nil, err
	}
	if data.Tournament == nil {
		return nil, fmt.Errorf("%w: tournament %q not found", bracket.ErrTransport, slug)
	}

	var all []bracket.Participant
	for _, ev := range data.Tournament.Events {
		for _, entrant := range ev.Entrants.Nodes {
			all = append(all, toParticipants(entrant.Participants)...)
		}
	}
	return all, nil
}

func toParticipants(nodes []participantNode) []bracket.Participant {
	out := make([]bracket.Participant, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, bracket.Participant{
			GamerTag:  norm.NFKC.String(node.GamerTag),
			DiscordID: discordID(node),
		})
	}
	return out
}

// discordID extracts the verified Discord account id from a participant's
// authorizations, empty when the player never linked one.
func discordID(node participantNode) string {
	if node.User == nil {
		return ""
	}
	for _, auth := range node.User.Authorizations {
		if auth.Type == "DISCORD" && isDigits(auth.ExternalID) {
			return auth.ExternalID
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
