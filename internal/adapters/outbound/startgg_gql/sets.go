package startgg_gql

import (
	"context"
	"errors"
	"fmt"

	"stationbot/internal/core/bracket"
)

const setsPerPage = 50

const querySets = `
query GetSets($slug: String!, $page: Int!, $perPage: Int!) {
  tournament(slug: $slug) {
    events {
      sets(page: $page, perPage: $perPage, sortType: STANDARD) {
        nodes {
          id
          fullRoundText
          state
          winnerId
          station { number }
          games {
            winnerId
          }
          slots {
            entrant {
              id
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
    }
  }
}`

type setNode struct {
	ID            flexID `json:"id"`
	FullRoundText string `json:"fullRoundText"`
	State         int    `json:"state"`
	WinnerID      flexID `json:"winnerId"`
	Station       *struct {
		Number *int `json:"number"`
	} `json:"station"`
	Games []struct {
		WinnerID flexID `json:"winnerId"`
	} `json:"games"`
	Slots []struct {
		Entrant *struct {
			ID           flexID            `json:"id"`
			Name         string            `json:"name"`
			Participants []participantNode `json:"participants"`
		} `json:"entrant"`
	} `json:"slots"`
}

type setsData struct {
	Tournament *struct {
		Events []struct {
			Sets struct {
				Nodes []setNode `json:"nodes"`
			} `json:"sets"`
		} `json:"events"`
	} `json:"tournament"`
}

// ListSets returns one page of sets across every event of the tournament.
func (c *Client) ListSets(ctx context.Context, slug string, page int) ([]bracket.Set, error) {
	var data setsData
	err := c.do(ctx, "GetSets", querySets, map[string]any{
		"slug":    slug,
		"page":    page,
		"perPage": setsPerPage,
	}, &data)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			return nil, fmt.Errorf("%w: %v", bracket.ErrTransport, err)
		}
		return nil, err
	}
	if data.Tournament == nil {
		return nil, fmt.Errorf("%w: tournament %q not found", bracket.ErrTransport, slug)
	}

	var sets []bracket.Set
	for _, ev := range data.Tournament.Events {
		for _, node := range ev.Sets.Nodes {
			sets = append(sets, toSet(node))
		}
	}
	return sets, nil
}

func toSet(node setNode) bracket.Set {
	set := bracket.Set{
		ID:            string(node.ID),
		FullRoundText: node.FullRoundText,
		State:         node.State,
		WinnerID:      string(node.WinnerID),
	}
	if node.Station != nil && node.Station.Number != nil {
		n := *node.Station.Number
		set.Station = &n
	}
	for _, g := range node.Games {
		set.Games = append(set.Games, bracket.GameResult{WinnerID: string(g.WinnerID)})
	}
	for _, slot := range node.Slots {
		var entrant *bracket.Entrant
		if slot.Entrant != nil {
			entrant = &bracket.Entrant{
				ID:           string(slot.Entrant.ID),
				Name:         slot.Entrant.Name,
				Participants: toParticipants(slot.Entrant.Participants),
			}
		}
		set.Slots = append(set.Slots, bracket.Slot{Entrant: entrant})
	}
	return set
}
