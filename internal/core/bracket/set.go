package bracket

// Set state values as reported by the bracket service.
// Completed is terminal: no announcement or score entry may start for it,
// and any live session must be torn down when it is observed.
const (
	StateCreated   = 1
	StateActive    = 2
	StateCompleted = 3
)

// Participant is one player inside an entrant (teams have several).
type Participant struct {
	GamerTag  string
	DiscordID string // verified chat-platform user id, empty when unlinked
}

// Entrant occupies one side of a set.
type Entrant struct {
	ID           string
	Name         string
	Participants []Participant
}

// Slot is one of the two sides of a set. Entrant is nil until seeded.
type Slot struct {
	Entrant *Entrant
}

// GameResult is one recorded game inside a completed or reported set.
type GameResult struct {
	WinnerID      string
	GameNum       int
	Entrant1Score int
	Entrant2Score int
}

// Set is a read-only snapshot of one bracket match, as returned by a
// single poll. Station is nil while the match is unassigned.
type Set struct {
	ID            string
	FullRoundText string
	State         int
	Station       *int
	WinnerID      string
	Slots         []Slot
	Games         []GameResult
}

// Assigned reports whether the set has a station.
func (s Set) Assigned() bool { return s.Station != nil }

// Completed reports whether the bracket service has finalized the set.
func (s Set) Completed() bool { return s.State == StateCompleted }

// Ready reports whether both slots carry an entrant. Sets with an open
// slot are skipped for the tick and re-evaluated on the next poll.
func (s Set) Ready() bool {
	if len(s.Slots) < 2 {
		return false
	}
	return s.Slots[0].Entrant != nil && s.Slots[1].Entrant != nil
}

// ScorePair reconstructs per-side game counts from recorded games.
// ok is false when the set carries no per-game data, in which case only
// win/loss (via WinnerID) is known.
func (s Set) ScorePair() (s1, s2 int, ok bool) {
	if len(s.Games) == 0 || !s.Ready() {
		return 0, 0, false
	}
	for _, g := range s.Games {
		switch g.WinnerID {
		case s.Slots[0].Entrant.ID:
			s1++
		case s.Slots[1].Entrant.ID:
			s2++
		}
	}
	return s1, s2, true
}
