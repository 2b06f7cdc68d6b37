package session

import (
	"context"
	"sync"

	"stationbot/internal/core/bracket"
	"stationbot/internal/core/render"
	"stationbot/internal/telemetry"
)

// State is the score state machine position.
type State int

const (
	Open       State = iota // accepting score presses and submits
	Submitting              // a submit is in flight
	Closed                  // terminal: submitted or finalized by staff
)

// EntrantRef is the slice of entrant data captured when the session was
// announced. Later polls never rewrite it.
type EntrantRef struct {
	ID    string
	Label string // mention or team name used in the versus line
	Name  string
}

// Session is the live record of one announced, score-entry flow for one
// set. All transitions are serialized behind the session mutex; the
// OPEN-only guard on Submit and the CLOSED terminal make the race between
// an operator submit and a staff finalize resolve to a single winner.
type Session struct {
	mu       sync.Mutex
	setID    string
	entrants [2]EntrantRef
	scores   [2]int
	maxScore int
	state    State

	ref         MessageRef
	body        render.Body
	mentionLine string

	presenter Presenter
	reporter  Reporter
	registry  *Registry
}

// New captures an entrant snapshot from a ready set and prepares the
// initial 0-0 body. The set must have both slots seeded.
func New(set bracket.Set, stationLine string, maxScore int, presenter Presenter, reporter Reporter, registry *Registry) *Session {
	e1, e2 := set.Slots[0].Entrant, set.Slots[1].Entrant
	s := &Session{
		setID:    set.ID,
		maxScore: maxScore,
		entrants: [2]EntrantRef{
			{ID: e1.ID, Label: render.SideLabel(e1), Name: e1.Name},
			{ID: e2.ID, Label: render.SideLabel(e2), Name: e2.Name},
		},
		mentionLine: render.MentionLine(e1, e2),
		presenter:   presenter,
		reporter:    reporter,
		registry:    registry,
	}
	s.body = render.Body{
		Round:   set.FullRoundText,
		Station: stationLine,
		Left:    render.Side{Label: s.entrants[0].Label},
		Right:   render.Side{Label: s.entrants[1].Label},
	}
	return s
}

func (s *Session) SetID() string { return s.setID }

// State returns the current state machine position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Scores returns the current candidate score pair.
func (s *Session) Scores() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[0], s.scores[1]
}

// Ref returns the announcement handle, zero before Announce succeeds.
func (s *Session) Ref() MessageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref
}

// Announce posts the initial announcement and stores its handle.
func (s *Session) Announce() error {
	s.mu.Lock()
	v := s.viewLocked(true)
	s.mu.Unlock()

	ref, err := s.presenter.Announce(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ref = ref
	s.mu.Unlock()
	return nil
}

// Reassign rewrites the station line in place after the set moved to a
// different station. Candidate scores survive the move.
func (s *Session) Reassign(stationLine string) error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return ErrFinalized
	}
	s.body.Station = stationLine
	v := s.viewLocked(s.state == Open)
	s.mu.Unlock()

	return s.presenter.Update(v)
}

// RecordScore overwrites one side's candidate score and re-renders the
// message. Re-entering the current value is a plain render refresh.
func (s *Session) RecordScore(side, value int) error {
	if side != 1 && side != 2 {
		return ErrScoreRange
	}
	if value < 0 || value > s.maxScore {
		return ErrScoreRange
	}

	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return ErrFinalized
	case Submitting:
		s.mu.Unlock()
		return ErrBusy
	}

	s.scores[side-1] = value
	s.body.Left.Score = s.scores[0]
	s.body.Right.Score = s.scores[1]
	v := s.viewLocked(true)
	s.mu.Unlock()

	telemetry.Metrics.ScorePresses.Inc()
	if err := s.presenter.Update(v); err != nil {
		telemetry.Warnf("set %s: score render failed: %v", s.setID, err)
	}
	return nil
}

// Submit validates the candidate scores and reports the result. On a
// remote rejection or transport error the session returns to Open so the
// next poll tick (or a corrected entry) can resolve it.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return ErrFinalized
	case Submitting:
		s.mu.Unlock()
		return ErrBusy
	}

	s1, s2 := s.scores[0], s.scores[1]
	if s1 == s2 {
		s.mu.Unlock()
		return ErrTiedScore
	}
	if s1 == 0 && s2 == 0 {
		s.mu.Unlock()
		return ErrNoGames
	}

	winnerID := s.entrants[0].ID
	if s2 > s1 {
		winnerID = s.entrants[1].ID
	}
	games := BuildGameResults(s.entrants[0].ID, s.entrants[1].ID, s1, s2)

	s.state = Submitting
	s.mu.Unlock()

	err := s.reporter.ReportSet(ctx, s.setID, winnerID, games)

	s.mu.Lock()
	if err != nil {
		if s.state == Submitting {
			s.state = Open
		}
		s.mu.Unlock()
		telemetry.Metrics.ReportErrors.Inc()
		return err
	}
	if s.state == Closed {
		// A staff finalize landed while the report was in flight.
		s.mu.Unlock()
		return nil
	}
	s.state = Closed
	s.body.Banner = render.BannerFinished
	v := s.viewLocked(false)
	s.mu.Unlock()

	telemetry.Metrics.ReportsSubmitted.Inc()
	s.registry.Remove(s.setID)
	if err := s.presenter.Update(v); err != nil {
		telemetry.Warnf("set %s: finish render failed: %v", s.setID, err)
	}
	return nil
}

// FinalizeExternal closes the session after the bracket service reported
// the set completed out-of-band. Per-game results reconstruct the score
// pair; a bare winner id shows win/loss only.
func (s *Session) FinalizeExternal(set bracket.Set) error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return nil
	}

	if s1, s2, ok := set.ScorePair(); ok {
		s.scores[0], s.scores[1] = s1, s2
		s.body.Left.Score = s1
		s.body.Right.Score = s2
	} else {
		switch set.WinnerID {
		case s.entrants[0].ID:
			s.body.Left.Outcome = "WIN"
			s.body.Right.Outcome = "LOSE"
		case s.entrants[1].ID:
			s.body.Left.Outcome = "LOSE"
			s.body.Right.Outcome = "WIN"
		default:
			// No usable outcome yet; leave the session live for the next poll.
			s.mu.Unlock()
			return nil
		}
	}

	s.state = Closed
	s.body.Banner = render.BannerStaff
	v := s.viewLocked(false)
	s.mu.Unlock()

	telemetry.Metrics.ExternalFinalizes.Inc()
	s.registry.Remove(s.setID)
	return s.presenter.Update(v)
}

// viewLocked snapshots the session for the presenter. Callers hold s.mu.
func (s *Session) viewLocked(controlsEnabled bool) View {
	return View{
		SetID:           s.setID,
		Ref:             s.ref,
		MentionLine:     s.mentionLine,
		Body:            s.body.Render(),
		Scores:          s.scores,
		MaxScore:        s.maxScore,
		ControlsEnabled: controlsEnabled,
	}
}

// BuildGameResults synthesizes the ordered per-game payload the bracket
// service expects. True game order is unknown, so the winner's games come
// first, numbered 1..s1+s2.
func BuildGameResults(entrant1ID, entrant2ID string, s1, s2 int) []bracket.GameResult {
	games := make([]bracket.GameResult, 0, s1+s2)

	appendWins := func(winnerID string, count int, firstSide bool) {
		for i := 0; i < count; i++ {
			g := bracket.GameResult{WinnerID: winnerID}
			if firstSide {
				g.Entrant1Score = 1
			} else {
				g.Entrant2Score = 1
			}
			games = append(games, g)
		}
	}

	if s1 >= s2 {
		appendWins(entrant1ID, s1, true)
		appendWins(entrant2ID, s2, false)
	} else {
		appendWins(entrant2ID, s2, false)
		appendWins(entrant1ID, s1, true)
	}

	for i := range games {
		games[i].GameNum = i + 1
	}
	return games
}
