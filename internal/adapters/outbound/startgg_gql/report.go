package startgg_gql

import (
	"context"
	"errors"
	"fmt"

	"stationbot/internal/core/bracket"
)

const mutationReportSet = `
mutation Report(
  $setId: ID!
  $winnerId: ID!
  $gameData: [BracketSetGameDataInput!]!
) {
  reportBracketSet(
    setId: $setId
    winnerId: $winnerId
    gameData: $gameData
  ) {
    id
    state
  }
}`

// ReportSet submits an ordered game list as the set's result. An
// API-level rejection maps to bracket.ErrConflict: by far the most common
// cause is staff having finalized the set between the last poll and this
// submit.
func (c *Client) ReportSet(ctx context.Context, setID, winnerID string, games []bracket.GameResult) error {
	gameData := make([]map[string]any, len(games))
	for i, g := range games {
		gameData[i] = map[string]any{
			"winnerId":      g.WinnerID,
			"gameNum":       g.GameNum,
			"entrant1Score": g.Entrant1Score,
			"entrant2Score": g.Entrant2Score,
		}
	}

	err := c.do(ctx, "Report", mutationReportSet, map[string]any{
		"setId":    setID,
		"winnerId": winnerID,
		"gameData": gameData,
	}, nil)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			return fmt.Errorf("%w: %v", bracket.ErrConflict, err)
		}
		return err
	}
	return nil
}
