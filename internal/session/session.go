// Package session owns live games. It serialises dispatch per game,
// persists every new state through a Store and fans updates out to
// subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/weather"
)

var (
	// ErrNotFound is returned for unknown game ids.
	ErrNotFound = errors.New("game not found")
	// ErrStale is returned when a conditional dispatch targets an old version.
	ErrStale = errors.New("stale state version")
)

// Store persists game snapshots. LoadGame returns a nil state and nil
// error when the game does not exist.
type Store interface {
	SaveGame(ctx context.Context, st *engine.State) error
	LoadGame(ctx context.Context, id string) (*engine.State, error)
}

// Update is delivered to subscribers after every state change.
type Update struct {
	Action engine.ActionKind
	State  *engine.State
}

// subscriberBuffer is the per-subscriber queue; slow readers drop updates.
const subscriberBuffer = 16

type game struct {
	mu     sync.Mutex
	state  *engine.State
	subs   map[int]chan Update
	nextID int
}

// Manager is safe for concurrent use.
type Manager struct {
	core  *engine.Core
	store Store

	mu    sync.Mutex
	games map[string]*game
}

// NewManager creates a manager. store may be nil to keep games in memory.
func NewManager(core *engine.Core, store Store) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{core: core, store: store, games: make(map[string]*game)}
}

// Core returns the reducer used by the manager.
func (m *Manager) Core() *engine.Core {
	return m.core
}

// Create starts and stores a new game.
func (m *Manager) Create(ctx context.Context, opts engine.GameOptions) (*engine.State, error) {
	st, err := m.core.NewGame(opts)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveGame(ctx, st); err != nil {
		return nil, fmt.Errorf("save new game: %w", err)
	}
	m.mu.Lock()
	m.games[st.GameID] = &game{state: st, subs: make(map[int]chan Update)}
	m.mu.Unlock()

	slog.Info("game created", "game", st.GameID, "ruleset", st.Ruleset, "role", st.Role, "seed", st.Seed)
	return st, nil
}

// load returns the live game for id, reading it from the store on first use.
func (m *Manager) load(ctx context.Context, id string) (*game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}

	st, err := m.store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := engine.Normalize(st, m.core.Catalog); err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	g := &game{state: st, subs: make(map[int]chan Update)}
	m.games[id] = g
	slog.Info("game loaded", "game", id, "version", st.Version, "turn", st.Time.Turn)
	return g, nil
}

// Restore installs st as the current state of its game, replacing any live
// state. Subscribers of a replaced game receive the restored state.
func (m *Manager) Restore(ctx context.Context, st *engine.State) error {
	if err := engine.Normalize(st, m.core.Catalog); err != nil {
		return fmt.Errorf("restore game %s: %w", st.GameID, err)
	}
	if err := m.store.SaveGame(ctx, st); err != nil {
		return fmt.Errorf("save restored game: %w", err)
	}

	m.mu.Lock()
	g, ok := m.games[st.GameID]
	if !ok {
		g = &game{subs: make(map[int]chan Update)}
		m.games[st.GameID] = g
	}
	m.mu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = st
	g.notify(Update{Action: engine.ActReset, State: st})
	slog.Info("game restored", "game", st.GameID, "version", st.Version, "turn", st.Time.Turn)
	return nil
}

// Get returns the current state of a game.
func (m *Manager) Get(ctx context.Context, id string) (*engine.State, error) {
	g, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, nil
}

// Result reports the outcome of a dispatch.
type Result struct {
	State   *engine.State
	Changed bool
}

// Dispatch applies act to the game. When expected is non-zero it must match
// the current version. A refused action is not an error: the result simply
// reports Changed=false.
func (m *Manager) Dispatch(ctx context.Context, id string, act engine.Action, expected uint64) (Result, error) {
	g, err := m.load(ctx, id)
	if err != nil {
		return Result{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cur := g.state
	if expected != 0 && expected != cur.Version {
		return Result{State: cur}, fmt.Errorf("%w: have %d, got %d", ErrStale, cur.Version, expected)
	}

	next := m.core.Dispatch(cur, act)
	if next == cur {
		slog.Debug("action refused", "game", id, "action", act.Kind, "version", cur.Version)
		return Result{State: cur}, nil
	}
	if err := m.store.SaveGame(ctx, next); err != nil {
		return Result{State: cur}, fmt.Errorf("save game %s: %w", id, err)
	}
	g.state = next

	slog.Info("action applied", "game", id, "action", act.Kind, "version", next.Version, "turn", next.Time.Turn)
	if act.Kind == engine.ActAdvanceTurn {
		slog.Info("turn advanced", "game", id, "year", next.Time.Year, "week", next.Time.Week,
			"season", next.Time.Season, "weather", weather.Describe(next.Time.Weather, next.Time.Season))
	}
	if next.GameCompleted && !cur.GameCompleted {
		slog.Info("game completed", "game", id, "outcome", next.Outcome.Kind,
			"victory", next.Outcome.VictoryKind, "reason", next.Outcome.Reason)
	}

	g.notify(Update{Action: act.Kind, State: next})
	return Result{State: next, Changed: true}, nil
}

// notify must be called with g.mu held.
func (g *game) notify(u Update) {
	for _, ch := range g.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Subscribe registers for updates of a game. The returned cancel function
// must be called to release the subscription; it closes the channel.
func (m *Manager) Subscribe(ctx context.Context, id string) (<-chan Update, func(), error) {
	g, err := m.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	sid := g.nextID
	g.nextID++
	ch := make(chan Update, subscriberBuffer)
	g.subs[sid] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subs, sid)
			g.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Games returns the ids of games currently held in memory.
func (m *Manager) Games() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.games))
	for id := range m.games {
		out = append(out, id)
	}
	return out
}
