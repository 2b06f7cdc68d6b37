package render

import (
	"fmt"
	"strings"
)

// Banner texts prepended to a finished announcement.
const (
	BannerFinished = "✅ **This match is finished**"
	BannerStaff    = "✅ **This match is finished\n(processed by staff)**"
)

// Side is one half of the versus line.
type Side struct {
	Label   string // mention or display name, fixed at announce time
	Score   int
	Outcome string // "", "WIN" or "LOSE"; set only for staff finalizes without game data
}

func (s Side) line() string {
	if s.Outcome != "" {
		return fmt.Sprintf("%s (**%s**)", s.Label, s.Outcome)
	}
	return fmt.Sprintf("%s (%d)", s.Label, s.Score)
}

// Body is the announcement message body as an ordered set of named slots.
// Render always emits the slots in the same order, so updating a score or
// a station is a field assignment followed by a re-render — never a text
// search over the previous message.
type Body struct {
	Banner  string // empty until the session is finalized
	Round   string
	Station string
	Left    Side
	Right   Side
}

func (b Body) Render() string {
	var sb strings.Builder
	if b.Banner != "" {
		sb.WriteString(b.Banner)
		sb.WriteString("\n\n")
	}
	round := b.Round
	if round == "" {
		round = "Unknown Round"
	}
	fmt.Fprintf(&sb, "🏷️ %s\n\n", round)
	sb.WriteString(b.Station)
	sb.WriteString("\n\n")
	sb.WriteString(b.Left.line())
	sb.WriteString("\nvs\n")
	sb.WriteString(b.Right.line())
	return sb.String()
}
