package events

import "time"

// Event is the envelope that flows through the event bus. Every user
// interaction coming off the chat gateway is wrapped in one, tagged with
// the set it belongs to.
type Event struct {
	Type      EventType
	SetID     string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Component interactions from the announcement message.
	EventScorePress  EventType = "score_press"
	EventSubmitPress EventType = "submit_press"
)

// ScorePress is the payload for EventScorePress. Side is 1 or 2, Value is
// the games-won count the operator selected.
type ScorePress struct {
	Side  int
	Value int

	// Respond delivers a short notice visible only to the pressing user.
	Respond func(notice string)
}

// SubmitPress is the payload for EventSubmitPress.
type SubmitPress struct {
	Respond func(notice string)
}
