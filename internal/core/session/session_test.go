package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"stationbot/internal/core/bracket"
)

type fakePresenter struct {
	mu          sync.Mutex
	announced   []View
	updated     []View
	announceErr error
	updateErr   error
}

func (f *fakePresenter) Announce(v View) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.announceErr != nil {
		return MessageRef{}, f.announceErr
	}
	f.announced = append(f.announced, v)
	return MessageRef{ChannelID: "chan", MessageID: "msg-1"}, nil
}

func (f *fakePresenter) Update(v View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, v)
	return nil
}

func (f *fakePresenter) lastUpdate(t *testing.T) View {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updated) == 0 {
		t.Fatal("expected at least one update")
	}
	return f.updated[len(f.updated)-1]
}

type reportCall struct {
	setID    string
	winnerID string
	games    []bracket.GameResult
}

type fakeReporter struct {
	mu    sync.Mutex
	calls []reportCall
	err   error
	hook  func() // runs before returning, with no locks held
}

func (f *fakeReporter) ReportSet(_ context.Context, setID, winnerID string, games []bracket.GameResult) error {
	f.mu.Lock()
	f.calls = append(f.calls, reportCall{setID: setID, winnerID: winnerID, games: games})
	hook := f.hook
	err := f.err
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeReporter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testSet() bracket.Set {
	st := 4
	return bracket.Set{
		ID:            "S1",
		FullRoundText: "Winners Final",
		State:         bracket.StateActive,
		Station:       &st,
		Slots: []bracket.Slot{
			{Entrant: &bracket.Entrant{ID: "A", Name: "Alpha", Participants: []bracket.Participant{{GamerTag: "alpha", DiscordID: "100"}}}},
			{Entrant: &bracket.Entrant{ID: "B", Name: "Bravo", Participants: []bracket.Participant{{GamerTag: "bravo"}}}},
		},
	}
}

func newLiveSession(t *testing.T, presenter *fakePresenter, reporter *fakeReporter, registry *Registry) *Session {
	t.Helper()
	s := New(testSet(), "Station 4", 3, presenter, reporter, registry)
	if err := s.Announce(); err != nil {
		t.Fatalf("announce: %v", err)
	}
	registry.Put(s)
	return s
}

func TestRecordScoreRerenders(t *testing.T) {
	presenter := &fakePresenter{}
	registry := NewRegistry()
	s := newLiveSession(t, presenter, &fakeReporter{}, registry)

	if err := s.RecordScore(1, 2); err != nil {
		t.Fatalf("record score: %v", err)
	}
	if err := s.RecordScore(2, 1); err != nil {
		t.Fatalf("record score: %v", err)
	}

	v := presenter.lastUpdate(t)
	if !v.ControlsEnabled {
		t.Fatal("controls should stay enabled while open")
	}
	if v.Scores != [2]int{2, 1} {
		t.Fatalf("expected scores 2-1, got %v", v.Scores)
	}
	if !strings.Contains(v.Body, "(2)") || !strings.Contains(v.Body, "(1)") {
		t.Fatalf("body missing scores: %q", v.Body)
	}
}

func TestRecordScoreSameValueRefreshesOnly(t *testing.T) {
	presenter := &fakePresenter{}
	registry := NewRegistry()
	s := newLiveSession(t, presenter, &fakeReporter{}, registry)

	if err := s.RecordScore(1, 2); err != nil {
		t.Fatalf("record score: %v", err)
	}
	if err := s.RecordScore(1, 2); err != nil {
		t.Fatalf("re-entering the same value must be accepted: %v", err)
	}
	if s1, _ := s.Scores(); s1 != 2 {
		t.Fatalf("expected score 2, got %d", s1)
	}
}

func TestRecordScoreRejectsOutOfRange(t *testing.T) {
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, &fakeReporter{}, registry)

	if err := s.RecordScore(1, 4); !errors.Is(err, ErrScoreRange) {
		t.Fatalf("expected ErrScoreRange above max, got %v", err)
	}
	if err := s.RecordScore(3, 1); !errors.Is(err, ErrScoreRange) {
		t.Fatalf("expected ErrScoreRange for side 3, got %v", err)
	}
}

func TestSubmitTieRejectedAndStaysOpen(t *testing.T) {
	reporter := &fakeReporter{}
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, reporter, registry)

	s.RecordScore(1, 1)
	s.RecordScore(2, 1)

	if err := s.Submit(context.Background()); !errors.Is(err, ErrTiedScore) {
		t.Fatalf("expected ErrTiedScore, got %v", err)
	}
	if s.State() != Open {
		t.Fatalf("expected state Open after rejection, got %v", s.State())
	}
	if reporter.callCount() != 0 {
		t.Fatal("tie must never reach the reporter")
	}
	if _, ok := registry.Get("S1"); !ok {
		t.Fatal("session must stay registered after rejection")
	}
}

func TestSubmitZeroZeroRejected(t *testing.T) {
	reporter := &fakeReporter{}
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, reporter, registry)

	err := s.Submit(context.Background())
	if !errors.Is(err, ErrTiedScore) && !errors.Is(err, ErrNoGames) {
		t.Fatalf("expected a validation rejection for 0-0, got %v", err)
	}
	if s.State() != Open || reporter.callCount() != 0 {
		t.Fatal("0-0 submit must not change state or reach the reporter")
	}
}

func TestSubmitBuildsOrderedGameList(t *testing.T) {
	reporter := &fakeReporter{}
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, reporter, registry)

	s.RecordScore(1, 2)
	s.RecordScore(2, 1)

	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(reporter.calls) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reporter.calls))
	}
	call := reporter.calls[0]
	if call.setID != "S1" || call.winnerID != "A" {
		t.Fatalf("unexpected report target: %+v", call)
	}

	wantWinners := []string{"A", "A", "B"}
	if len(call.games) != len(wantWinners) {
		t.Fatalf("expected %d games, got %d", len(wantWinners), len(call.games))
	}
	for i, g := range call.games {
		if g.WinnerID != wantWinners[i] {
			t.Errorf("game %d: winner %q, want %q", i, g.WinnerID, wantWinners[i])
		}
		if g.GameNum != i+1 {
			t.Errorf("game %d: gameNum %d, want %d", i, g.GameNum, i+1)
		}
	}
}

func TestBuildGameResultsWinnerSecondSide(t *testing.T) {
	games := BuildGameResults("A", "B", 1, 3)

	wantWinners := []string{"B", "B", "B", "A"}
	for i, g := range games {
		if g.WinnerID != wantWinners[i] {
			t.Fatalf("game %d: winner %q, want %q", i, g.WinnerID, wantWinners[i])
		}
		if g.GameNum != i+1 {
			t.Fatalf("game %d: gameNum %d, want %d", i, g.GameNum, i+1)
		}
	}
	if games[0].Entrant2Score != 1 || games[0].Entrant1Score != 0 {
		t.Fatalf("expected entrant2 win markers, got %+v", games[0])
	}
	if games[3].Entrant1Score != 1 || games[3].Entrant2Score != 0 {
		t.Fatalf("expected entrant1 win markers, got %+v", games[3])
	}
}

func TestSubmitSuccessClosesAndRemoves(t *testing.T) {
	presenter := &fakePresenter{}
	registry := NewRegistry()
	s := newLiveSession(t, presenter, &fakeReporter{}, registry)

	s.RecordScore(1, 3)

	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if s.State() != Closed {
		t.Fatalf("expected Closed, got %v", s.State())
	}
	if _, ok := registry.Get("S1"); ok {
		t.Fatal("closed session must be removed from the registry")
	}

	v := presenter.lastUpdate(t)
	if v.ControlsEnabled {
		t.Fatal("controls must be disabled after submit")
	}
	if !strings.Contains(v.Body, "finished") {
		t.Fatalf("expected finished banner, got %q", v.Body)
	}
}

func TestSubmitRemoteFailureReopens(t *testing.T) {
	reporter := &fakeReporter{err: bracket.ErrConflict}
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, reporter, registry)

	s.RecordScore(1, 2)

	err := s.Submit(context.Background())
	if !errors.Is(err, bracket.ErrConflict) {
		t.Fatalf("expected conflict passthrough, got %v", err)
	}
	if s.State() != Open {
		t.Fatalf("expected Open after failed submit, got %v", s.State())
	}
	if _, ok := registry.Get("S1"); !ok {
		t.Fatal("session must stay registered after a failed submit")
	}
}

func TestClosedSessionIgnoresAllEvents(t *testing.T) {
	reporter := &fakeReporter{}
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, reporter, registry)

	s.RecordScore(1, 2)
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := s.RecordScore(2, 1); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized on score, got %v", err)
	}
	if err := s.Submit(context.Background()); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized on submit, got %v", err)
	}
	if reporter.callCount() != 1 {
		t.Fatalf("closed session re-reported: %d calls", reporter.callCount())
	}
}

func TestFinalizeExternalWithGameData(t *testing.T) {
	presenter := &fakePresenter{}
	registry := NewRegistry()
	s := newLiveSession(t, presenter, &fakeReporter{}, registry)

	set := testSet()
	set.State = bracket.StateCompleted
	set.WinnerID = "B"
	set.Games = []bracket.GameResult{
		{WinnerID: "B"}, {WinnerID: "A"}, {WinnerID: "B"}, {WinnerID: "B"},
	}

	if err := s.FinalizeExternal(set); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if s.State() != Closed {
		t.Fatalf("expected Closed, got %v", s.State())
	}
	if _, ok := registry.Get("S1"); ok {
		t.Fatal("finalized session must be removed")
	}

	v := presenter.lastUpdate(t)
	if v.ControlsEnabled {
		t.Fatal("controls must be disabled after staff finalize")
	}
	if v.Scores != [2]int{1, 3} {
		t.Fatalf("expected reconstructed 1-3, got %v", v.Scores)
	}
	if !strings.Contains(v.Body, "staff") {
		t.Fatalf("expected staff banner, got %q", v.Body)
	}
}

func TestFinalizeExternalWinnerOnly(t *testing.T) {
	presenter := &fakePresenter{}
	registry := NewRegistry()
	s := newLiveSession(t, presenter, &fakeReporter{}, registry)

	set := testSet()
	set.State = bracket.StateCompleted
	set.WinnerID = "B"

	if err := s.FinalizeExternal(set); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	v := presenter.lastUpdate(t)
	if !strings.Contains(v.Body, "WIN") || !strings.Contains(v.Body, "LOSE") {
		t.Fatalf("expected win/loss body, got %q", v.Body)
	}
}

func TestFinalizeExternalUnknownWinnerStaysLive(t *testing.T) {
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, &fakeReporter{}, registry)

	set := testSet()
	set.State = bracket.StateCompleted
	set.WinnerID = "someone-else"

	if err := s.FinalizeExternal(set); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if s.State() != Open {
		t.Fatal("session without a usable outcome must stay live")
	}
	if _, ok := registry.Get("S1"); !ok {
		t.Fatal("session must stay registered")
	}
}

func TestFinalizeExternalIdempotent(t *testing.T) {
	registry := NewRegistry()
	s := newLiveSession(t, &fakePresenter{}, &fakeReporter{}, registry)

	set := testSet()
	set.State = bracket.StateCompleted
	set.WinnerID = "A"

	if err := s.FinalizeExternal(set); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if err := s.FinalizeExternal(set); err != nil {
		t.Fatalf("second finalize must be a no-op, got %v", err)
	}
}

func TestStaffFinalizeDuringSubmitWinsOnce(t *testing.T) {
	presenter := &fakePresenter{}
	registry := NewRegistry()
	reporter := &fakeReporter{}
	s := newLiveSession(t, presenter, reporter, registry)

	completed := testSet()
	completed.State = bracket.StateCompleted
	completed.WinnerID = "A"
	reporter.hook = func() {
		if err := s.FinalizeExternal(completed); err != nil {
			t.Errorf("finalize during submit: %v", err)
		}
	}

	s.RecordScore(1, 2)
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if s.State() != Closed {
		t.Fatalf("expected Closed, got %v", s.State())
	}
	if _, ok := registry.Get("S1"); ok {
		t.Fatal("session must be removed exactly once")
	}

	// The finalize got there first, so the staff banner must stand.
	v := presenter.lastUpdate(t)
	if !strings.Contains(v.Body, "staff") {
		t.Fatalf("expected staff banner to win the race, got %q", v.Body)
	}
}

func TestReassignKeepsScores(t *testing.T) {
	presenter := &fakePresenter{}
	registry := NewRegistry()
	s := newLiveSession(t, presenter, &fakeReporter{}, registry)

	s.RecordScore(1, 2)
	if err := s.Reassign("Station 9"); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	v := presenter.lastUpdate(t)
	if !strings.Contains(v.Body, "Station 9") {
		t.Fatalf("expected new station line, got %q", v.Body)
	}
	if v.Scores != [2]int{2, 0} {
		t.Fatalf("scores must survive a station move, got %v", v.Scores)
	}
}

func TestRegistryOneLiveSessionPerSet(t *testing.T) {
	registry := NewRegistry()
	presenter := &fakePresenter{}

	a := New(testSet(), "Station 4", 3, presenter, &fakeReporter{}, registry)
	b := New(testSet(), "Station 5", 3, presenter, &fakeReporter{}, registry)

	registry.Put(a)
	registry.Put(b)

	if registry.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", registry.Len())
	}
	got, _ := registry.Get("S1")
	if got != b {
		t.Fatal("expected the replacement session to win")
	}

	registry.Remove("S1")
	registry.Remove("S1")
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", registry.Len())
	}
}
