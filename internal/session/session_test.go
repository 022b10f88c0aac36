package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/entropy"
)

func newManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	core := engine.New(catalog.MustDefault())
	core.Source = entropy.Constant(0.3)
	store := NewMemoryStore()
	return NewManager(core, store), store
}

func TestCreateAndDispatch(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	st, err := m.Create(ctx, engine.GameOptions{GameID: "g", Ruleset: engine.RulesetPlots, Role: "family_farmer"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := m.Dispatch(ctx, "g", engine.AdvanceTurn(), st.Version)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !res.Changed || res.State.Time.Turn != 1 {
		t.Fatalf("result = %+v", res)
	}
	if store.Saves() != 2 {
		t.Fatalf("saves = %d, want 2", store.Saves())
	}

	refused, err := m.Dispatch(ctx, "g", engine.HarvestCrop("plot-2-2"), 0)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if refused.Changed || refused.State != res.State {
		t.Fatal("refused action should report no change")
	}
	if store.Saves() != 2 {
		t.Fatal("refused action should not be persisted")
	}
}

func TestStaleVersion(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	st, _ := m.Create(ctx, engine.GameOptions{GameID: "g", Ruleset: engine.RulesetPlots, Role: "activist"})

	if _, err := m.Dispatch(ctx, "g", engine.AdvanceTurn(), st.Version+5); !errors.Is(err, ErrStale) {
		t.Fatalf("err = %v, want ErrStale", err)
	}
}

func TestUnknownGame(t *testing.T) {
	m, _ := newManager(t)
	if _, err := m.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReloadFromStore(t *testing.T) {
	ctx := context.Background()
	core := engine.New(catalog.MustDefault())
	store := NewMemoryStore()
	first := NewManager(core, store)
	st, err := first.Create(ctx, engine.GameOptions{GameID: "g", Ruleset: engine.RulesetTerritories, Role: "politician"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	second := NewManager(core, store)
	got, err := second.Get(ctx, "g")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != st.Version || got.Role != "politician" || len(got.Active) != len(st.Active) {
		t.Fatalf("reloaded = version %d role %s", got.Version, got.Role)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	if _, err := m.Create(ctx, engine.GameOptions{GameID: "g", Ruleset: engine.RulesetPlots, Role: "politician"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	updates, cancel, err := m.Subscribe(ctx, "g")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := m.Dispatch(ctx, "g", engine.AdvanceTurn(), 0); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	select {
	case u := <-updates:
		if u.Action != engine.ActAdvanceTurn || u.State.Time.Turn != 1 {
			t.Fatalf("update = %+v", u)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	cancel()
	cancel()
	if _, ok := <-updates; ok {
		t.Fatal("channel should be closed after cancel")
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	st, err := m.Create(ctx, engine.GameOptions{GameID: "g", Ruleset: engine.RulesetTerritories, Role: "agribusiness"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := m.Dispatch(ctx, "g", engine.AdvanceTurn(), 0)
	if err != nil || !res.Changed {
		t.Fatalf("dispatch: %v %+v", err, res)
	}

	updates, cancel, err := m.Subscribe(ctx, "g")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if err := m.Restore(ctx, st); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, err := m.Get(ctx, "g")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Time.Turn != 0 || got.Version != st.Version {
		t.Fatalf("restored turn %d version %d", got.Time.Turn, got.Version)
	}
	select {
	case u := <-updates:
		if u.State.Time.Turn != 0 {
			t.Fatalf("update turn = %d", u.State.Time.Turn)
		}
	case <-time.After(time.Second):
		t.Fatal("no update after restore")
	}
	if store.Saves() != 3 {
		t.Fatalf("saves = %d, want 3", store.Saves())
	}
}

func TestRestoreUnknownRole(t *testing.T) {
	m, _ := newManager(t)
	st := &engine.State{GameID: "x", Ruleset: engine.RulesetPlots, Role: "nobody"}
	if err := m.Restore(context.Background(), st); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
