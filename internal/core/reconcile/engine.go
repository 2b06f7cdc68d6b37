package reconcile

import (
	"context"
	"errors"
	"time"

	"stationbot/internal/config"
	"stationbot/internal/core/bracket"
	"stationbot/internal/core/render"
	"stationbot/internal/core/session"
	"stationbot/internal/events"
	"stationbot/internal/telemetry"
)

// MatchSource lists one page of sets for a tournament. Pages are scanned
// until one yields zero assigned sets.
type MatchSource interface {
	ListSets(ctx context.Context, slug string, page int) ([]bracket.Set, error)
}

// Options carries the scalar settings the engine needs.
type Options struct {
	Slug          string
	MaxScore      int
	StreamMax     int
	Labels        config.StationLabels
	PollInterval  time.Duration
	RemoteTimeout time.Duration
}

// Engine drives the poll loop: it diffs each scan against the station
// cache and session registry, announces new or re-assigned sets, and
// finalizes sessions whose sets were completed out-of-band. It also owns
// the routing of interaction events to their sessions.
type Engine struct {
	source    MatchSource
	presenter session.Presenter
	reporter  session.Reporter
	registry  *session.Registry
	cache     *bracket.StationCache
	opts      Options

	// primed flips after the first completed scan that observed at least
	// one assigned set. The priming scan records stations without
	// announcing, so a restart does not re-ping every match already in
	// progress.
	primed bool
}

func NewEngine(source MatchSource, presenter session.Presenter, reporter session.Reporter,
	registry *session.Registry, cache *bracket.StationCache, bus *events.Bus, opts Options) *Engine {

	e := &Engine{
		source:    source,
		presenter: presenter,
		reporter:  reporter,
		registry:  registry,
		cache:     cache,
		opts:      opts,
	}
	if bus != nil {
		bus.Subscribe(events.EventScorePress, e.onScorePress)
		bus.Subscribe(events.EventSubmitPress, e.onSubmitPress)
	}
	return e
}

// Run polls until the context is cancelled. A failed tick is abandoned,
// never retried early, and never fatal.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick performs one full paginated scan. Sets already processed before an
// error keep their cache/session updates; an announcement may repeat after
// a partial scan, which beats losing one.
func (e *Engine) Tick(ctx context.Context) {
	sawAssigned := false

	for page := 1; ; page++ {
		cctx, cancel := context.WithTimeout(ctx, e.opts.RemoteTimeout)
		sets, err := e.source.ListSets(cctx, e.opts.Slug, page)
		cancel()
		if err != nil {
			telemetry.Metrics.PollErrors.Inc()
			telemetry.Warnf("poll page %d: %v", page, err)
			return
		}

		assigned := sets[:0:0]
		for _, s := range sets {
			if s.Assigned() {
				assigned = append(assigned, s)
			}
		}
		if len(assigned) == 0 {
			if !e.primed && sawAssigned {
				e.primed = true
				telemetry.Infof("priming scan complete: %d stations cached", e.cache.Len())
			}
			telemetry.Metrics.PollsCompleted.Inc()
			return
		}
		sawAssigned = true

		for _, set := range assigned {
			e.observe(set)
		}
	}
}

// observe classifies one assigned set against the cache and registry.
func (e *Engine) observe(set bracket.Set) {
	station := *set.Station

	if !e.primed {
		e.cache.Record(set.ID, station)
		return
	}

	cached, known := e.cache.Lookup(set.ID)
	moved := !known || cached != station

	if moved {
		switch {
		case set.Completed():
			// Terminal sets get no announcement; settle the cache so the
			// station stops reading as a change.
			e.cache.Record(set.ID, station)
		case set.Ready():
			e.announce(set, station)
		default:
			// Open slot: skip for this tick, re-evaluate next poll.
			telemetry.Debugf("set %s: entrants not ready, skipping", set.ID)
		}
	}

	if set.Completed() {
		if sess, ok := e.registry.Get(set.ID); ok {
			if err := sess.FinalizeExternal(set); err != nil {
				telemetry.Warnf("set %s: external finalize: %v", set.ID, err)
			}
		}
	}
}

// announce creates or re-renders the session for a newly assigned or
// re-assigned set. The cache is only updated once the message is actually
// out, so a failed render is retried on the next tick.
func (e *Engine) announce(set bracket.Set, station int) {
	line := render.StationLine(e.opts.Labels, e.opts.StreamMax, station)

	if sess, ok := e.registry.Get(set.ID); ok {
		if err := sess.Reassign(line); err != nil {
			telemetry.Warnf("set %s: station rewrite: %v", set.ID, err)
			return
		}
		telemetry.Metrics.Reannouncements.Inc()
		telemetry.Infof("set %s moved to station %d", set.ID, station)
		e.cache.Record(set.ID, station)
		return
	}

	sess := session.New(set, line, e.opts.MaxScore, e.presenter, e.reporter, e.registry)
	if err := sess.Announce(); err != nil {
		telemetry.Warnf("set %s: announce: %v", set.ID, err)
		return
	}
	e.registry.Put(sess)
	telemetry.Metrics.Announcements.Inc()
	telemetry.Infof("announced set %s on station %d", set.ID, station)
	e.cache.Record(set.ID, station)
}

func (e *Engine) onScorePress(ev events.Event) error {
	press, ok := ev.Payload.(events.ScorePress)
	if !ok {
		return errors.New("score press: unexpected payload")
	}

	sess, live := e.registry.Get(ev.SetID)
	if !live {
		respond(press.Respond, "This match has already been finalized.")
		return nil
	}

	switch err := sess.RecordScore(press.Side, press.Value); {
	case err == nil:
	case errors.Is(err, session.ErrFinalized):
		respond(press.Respond, "This match has already been finalized.")
	case errors.Is(err, session.ErrBusy):
		respond(press.Respond, "A submission is already in flight.")
	case errors.Is(err, session.ErrScoreRange):
		respond(press.Respond, "That score is outside the allowed range.")
	}
	return nil
}

func (e *Engine) onSubmitPress(ev events.Event) error {
	press, ok := ev.Payload.(events.SubmitPress)
	if !ok {
		return errors.New("submit press: unexpected payload")
	}

	sess, live := e.registry.Get(ev.SetID)
	if !live {
		respond(press.Respond, "This match has already been finalized.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.RemoteTimeout)
	defer cancel()

	err := sess.Submit(ctx)
	switch {
	case err == nil:
		respond(press.Respond, "Score submitted.")
	case errors.Is(err, session.ErrTiedScore):
		respond(press.Respond, "The scores are tied.")
	case errors.Is(err, session.ErrNoGames):
		respond(press.Respond, "Enter at least one game before submitting.")
	case errors.Is(err, session.ErrBusy):
		respond(press.Respond, "A submission is already in flight.")
	case errors.Is(err, session.ErrFinalized):
		respond(press.Respond, "This match has already been finalized.")
	case errors.Is(err, bracket.ErrConflict):
		respond(press.Respond, "This match was already processed by staff.")
	default:
		respond(press.Respond, "Submitting the score failed. It will sync on the next poll.")
	}
	return nil
}

func respond(fn func(string), notice string) {
	if fn != nil {
		fn(notice)
	}
}
