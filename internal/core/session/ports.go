package session

import (
	"context"

	"stationbot/internal/core/bracket"
)

// MessageRef is the opaque handle to a rendered announcement. It is owned
// by the session; the presenter never keeps its own record of which
// message belongs to which set.
type MessageRef struct {
	ChannelID string
	MessageID string
}

func (r MessageRef) IsZero() bool { return r.MessageID == "" }

// View is an immutable snapshot of a session, everything the presenter
// needs to render or re-render its announcement. Sessions hand out views
// instead of themselves so the presenter never touches live state.
type View struct {
	SetID           string
	Ref             MessageRef
	MentionLine     string
	Body            string
	Scores          [2]int
	MaxScore        int
	ControlsEnabled bool
}

// Presenter renders a session as a chat message with interactive controls.
type Presenter interface {
	// Announce posts a new announcement and returns its handle.
	Announce(v View) (MessageRef, error)
	// Update rewrites an existing announcement in place.
	Update(v View) error
}

// Reporter submits a finished result to the bracket service.
type Reporter interface {
	ReportSet(ctx context.Context, setID, winnerID string, games []bracket.GameResult) error
}
