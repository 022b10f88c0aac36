package autoplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/agro-hegemony/internal/engine"
)

// ErrStuck is returned when every candidate was refused at one version.
var ErrStuck = errors.New("no playable action")

// Player runs the observe, decide and act loop against one API.
type Player struct {
	Observer *Observer
	Actor    *Actor
	Journal  *Journal
	MaxSteps int

	catalog *Catalog
}

// NewPlayer creates a player for the API at baseURL.
func NewPlayer(baseURL string) *Player {
	return &Player{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL),
		Journal:  NewJournal(),
		MaxSteps: 5000,
	}
}

// Result summarises one played game.
type Result struct {
	GameID   string
	Steps    int
	Refused  int
	Turns    int
	Final    *engine.State
	Outcome  *engine.Outcome
	Finished bool
}

// Play creates a game and plays it until it completes or MaxSteps runs out.
func (p *Player) Play(ctx context.Context, ruleset, role string, seed int64) (*Result, error) {
	st, err := p.Actor.Create(ctx, ruleset, role, seed)
	if err != nil {
		return nil, err
	}
	slog.Info("autoplay game started", "game", st.GameID, "ruleset", ruleset, "role", role, "seed", seed)
	return p.Continue(ctx, st.GameID)
}

// Continue plays an existing game.
func (p *Player) Continue(ctx context.Context, gameID string) (*Result, error) {
	if p.catalog == nil {
		cat, err := p.Observer.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		p.catalog = cat
	}

	res := &Result{GameID: gameID}
	stale := 0
	for res.Steps < p.MaxSteps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		snap, err := p.Observer.Observe(ctx, gameID)
		if err != nil {
			return res, err
		}
		res.Final, res.Turns, res.Outcome = snap.State, snap.State.Time.Turn, snap.State.Outcome
		if snap.State.GameCompleted {
			res.Finished = true
			return res, nil
		}

		cand, ok := p.pick(snap)
		if !ok {
			return res, fmt.Errorf("%w: game %s version %d", ErrStuck, gameID, snap.State.Version)
		}
		out, err := p.Actor.Act(ctx, gameID, cand.Action, snap.State.Version)
		if IsStale(err) && stale < maxRetries {
			// Another client moved the game; observe again.
			stale++
			slog.Debug("autoplay stale", "game", gameID, "version", snap.State.Version)
			continue
		}
		if err != nil {
			return res, err
		}
		stale = 0
		res.Steps++
		if !out.Changed {
			res.Refused++
		}
		p.Journal.Record(StepRecord{
			Turn:      snap.State.Time.Turn,
			Version:   snap.State.Version,
			Action:    string(cand.Action.Kind),
			Changed:   out.Changed,
			Rationale: cand.Rationale,
		}, cand.Key())
		slog.Debug("autoplay step", "game", gameID, "action", cand.Action.Kind, "changed", out.Changed, "why", cand.Rationale)
	}
	return res, nil
}

func (p *Player) pick(snap *Snapshot) (Candidate, bool) {
	a := Assess(snap)
	for _, c := range Decide(snap, a, p.catalog) {
		if !p.Journal.Refused(snap.State.Version, c.Key()) {
			return c, true
		}
	}
	return Candidate{}, false
}
