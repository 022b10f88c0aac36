package engine

import (
	"reflect"
	"testing"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/entropy"
	"github.com/talgya/agro-hegemony/internal/world"
)

func newCore(t *testing.T) *Core {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return New(cat)
}

func newGame(t *testing.T, c *Core, rs Ruleset, role string) *State {
	t.Helper()
	st, err := c.NewGame(GameOptions{GameID: "test-game", Ruleset: rs, Role: role, Seed: 42})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return st
}

func TestNewGameTerritories(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "agribusiness")

	if st.Ledger[catalog.Economic] != 1000 || st.Ledger[catalog.Influence] != 800 {
		t.Fatalf("ledger = %v, want agribusiness presets", st.Ledger)
	}
	if st.Time.Year != 1960 || st.Time.Turn != 0 {
		t.Fatalf("time = %+v, want 1960 turn 0", st.Time)
	}
	if got := st.OwnedCells(); got != 1 {
		t.Fatalf("owned cells = %d, want 1", got)
	}
	if len(st.Active) != 1 || st.Active[0].TemplateID != "green_revolution" {
		t.Fatalf("active = %+v, want the 1960 backdrop event", st.Active)
	}
}

func TestNewGamePlotsAliasesPresets(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")

	if st.Ledger[catalog.Money] != 1000 || st.Ledger[catalog.Reputation] != 100 {
		t.Fatalf("ledger = %v", st.Ledger)
	}
	if _, ok := st.Ledger[catalog.Economic]; ok {
		t.Fatal("plots ledger should not track economic")
	}
	if got := st.OwnedCells(); got != 2 {
		t.Fatalf("owned cells = %d, want 2", got)
	}
	if len(st.Active) != 0 {
		t.Fatalf("plots should start without scripted events, got %d", len(st.Active))
	}
}

func TestNewGameRejectsUnknownRole(t *testing.T) {
	c := newCore(t)
	if _, err := c.NewGame(GameOptions{Ruleset: RulesetPlots, Role: "king"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestAcquireAdjacentCell(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "agribusiness")

	next := c.Dispatch(st, AcquireCell("t-1-0"))
	if next == st {
		t.Fatal("acquire was a no-op")
	}
	if got := next.Ledger[catalog.Economic]; got != 800 {
		t.Fatalf("economic = %d, want 800", got)
	}
	if got := next.Ledger[catalog.Influence]; got != 750 {
		t.Fatalf("influence = %d, want 750", got)
	}
	cell := next.Grid.Get("t-1-0")
	if cell.Owner != "agribusiness" || cell.Type != world.TypeAgribusiness {
		t.Fatalf("cell = %+v", cell)
	}
	if st.Grid.Get("t-1-0").Owned() {
		t.Fatal("input state was mutated")
	}
	if next.Version != st.Version+1 {
		t.Fatalf("version = %d, want %d", next.Version, st.Version+1)
	}
}

func TestAcquireUnaffordableIsNoop(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "agribusiness")
	st.Ledger[catalog.Economic] = 50

	if next := c.Dispatch(st, AcquireCell("t-1-0")); next != st {
		t.Fatal("expected the input state back")
	}
	if st.Grid.Get("t-1-0").Owned() {
		t.Fatal("cell should stay unowned")
	}
	if st.Ledger[catalog.Economic] != 50 {
		t.Fatalf("economic = %d, want 50", st.Ledger[catalog.Economic])
	}
}

func TestAcquireAdjacency(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "politician")
	if st.OwnedCells() != 0 {
		t.Fatalf("politician should start landless")
	}

	first := c.Dispatch(st, AcquireCell("t-3-1"))
	if first == st {
		t.Fatal("first acquisition should ignore adjacency")
	}
	if next := c.Dispatch(first, AcquireCell("t-0-2")); next != first {
		t.Fatal("non-adjacent acquisition should be a no-op")
	}
	if next := c.Dispatch(first, AcquireCell("t-3-2")); next == first {
		t.Fatal("adjacent acquisition should succeed")
	}
}

func TestAcquireNonOwnable(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "politician")
	for _, id := range []string{"t-2-2", "t-4-0", "t-0-4", "t-0-0", "t-9-9"} {
		if next := c.Dispatch(st, AcquireCell(id)); next != st {
			t.Errorf("acquire %s should be a no-op", id)
		}
	}
}

func TestAcquirePlotThresholds(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	st.Ledger[catalog.Influence] = 5

	if next := c.Dispatch(st, AcquireCell("plot-2-3")); next != st {
		t.Fatal("acquisition below the influence threshold should be a no-op")
	}

	st.Ledger[catalog.Influence] = 20
	next := c.Dispatch(st, AcquireCell("plot-2-3"))
	if next == st {
		t.Fatal("acquisition should succeed")
	}
	// 500 per owned plot, half the influence and 30% of the reputation gate.
	if got := next.Ledger[catalog.Money]; got != 0 {
		t.Fatalf("money = %d, want 0", got)
	}
	if got := next.Ledger[catalog.Influence]; got != 15 {
		t.Fatalf("influence = %d, want 15", got)
	}
	if got := next.Ledger[catalog.Reputation]; got != 99 {
		t.Fatalf("reputation = %d, want 99", got)
	}
	if cell := next.Grid.Get("plot-2-3"); cell.Type != world.TypePlayer {
		t.Fatalf("type = %s, want player", cell.Type)
	}
	if next := c.Dispatch(st, AcquireCell("plot-0-0")); next != st {
		t.Fatal("locked plot should not be acquirable")
	}
}

func TestResolveAppliesRoleMultiplier(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "agribusiness")
	ev := st.Active[0]

	next := c.Dispatch(st, ResolveEvent(ev.ID, "embrace"))
	if next == st {
		t.Fatal("resolve was a no-op")
	}
	if got := next.Ledger[catalog.Economic]; got != 1240 {
		t.Fatalf("economic = %d, want 1240", got)
	}
	if got := next.Ledger[catalog.Environmental]; got != 150 {
		t.Fatalf("environmental = %d, want 150", got)
	}
	if len(next.Active) != 0 || len(next.Completed) != 1 {
		t.Fatalf("active=%d completed=%d", len(next.Active), len(next.Completed))
	}
	done := next.Completed[0]
	if !done.Resolved || done.ResolvedOption != "embrace" {
		t.Fatalf("completed = %+v", done)
	}
}

func TestResolveUnknownIsNoop(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "activist")
	before := st.Clone()

	cases := []Action{
		ResolveEvent("missing", "embrace"),
		ResolveEvent(st.Active[0].ID, "missing"),
		{Kind: "teleport"},
	}
	for _, a := range cases {
		next := c.Dispatch(st, a)
		if next != st {
			t.Errorf("%+v: expected the input state back", a)
		}
		if !reflect.DeepEqual(next, before) {
			t.Errorf("%+v: state changed", a)
		}
	}
}

func TestResolveTwiceRetiresOnce(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "family_farmer")
	id := st.Active[0].ID

	once := c.Dispatch(st, ResolveEvent(id, "resist"))
	twice := c.Dispatch(once, ResolveEvent(id, "resist"))
	if twice != once {
		t.Fatal("second resolve should be a no-op")
	}
}

func TestResolvePromotesPending(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	for i := 0; i < 3; i++ {
		st.Pending = append(st.Pending, c.instantiate(st, catalog.EventTemplate{
			ID:      "manual",
			Title:   "Manual",
			Options: []catalog.Option{{ID: "ok"}},
		}))
	}
	promote(st, c.Catalog.Rulesets["plots"])
	if len(st.Active) != 2 || len(st.Pending) != 1 {
		t.Fatalf("active=%d pending=%d, want 2 and 1", len(st.Active), len(st.Pending))
	}

	next := c.Dispatch(st, ResolveEvent(st.Active[0].ID, "ok"))
	if len(next.Active) != 2 || len(next.Pending) != 0 {
		t.Fatalf("after resolve active=%d pending=%d, want 2 and 0", len(next.Active), len(next.Pending))
	}
}

func TestAdvanceBlockedByActiveEvents(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "politician")
	if len(st.Active) == 0 {
		t.Fatal("expected an active event at start")
	}
	if next := c.Dispatch(st, AdvanceTurn()); next != st {
		t.Fatal("advance should be refused while events are active")
	}
}

func TestAdvanceTerritoriesClock(t *testing.T) {
	c := newCore(t)
	c.Source = entropy.Constant(0.99)
	st := newGame(t, c, RulesetTerritories, "agribusiness")
	st.Active = nil

	next := c.Dispatch(st, AdvanceTurn())
	if next.Time.Year != 1963 || next.Time.Turn != 1 {
		t.Fatalf("time = %+v, want 1963 turn 1", next.Time)
	}
	// Home soy at level 50 pays 25 and costs 15 environmental.
	if got := next.Ledger[catalog.Economic]; got != 1025 {
		t.Fatalf("economic = %d, want 1025", got)
	}
	if got := next.Ledger[catalog.Environmental]; got != 285 {
		t.Fatalf("environmental = %d, want 285", got)
	}
	if len(next.History) != 1 || next.History[0].Year != 1963 {
		t.Fatalf("history = %+v", next.History)
	}
}

func TestAdvancePlotsWrapsYear(t *testing.T) {
	c := newCore(t)
	c.Source = entropy.Constant(0.3)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	st.Time.Week = 52

	next := c.Dispatch(st, AdvanceTurn())
	if next.Time.Week != 1 || next.Time.Year != st.Time.Year+1 {
		t.Fatalf("time = %+v, want week 1 of next year", next.Time)
	}
}

func TestCropReachesFullGrowth(t *testing.T) {
	c := newCore(t)
	c.Source = entropy.Constant(0.3) // sunny, no events
	st := newGame(t, c, RulesetPlots, "family_farmer")

	st = c.Dispatch(st, PlantCrop("plot-2-2", "soy"))
	crop := st.Grid.Get("plot-2-2").Crop
	if crop == nil {
		t.Fatal("soy was not planted")
	}
	if got := st.Ledger[catalog.Money]; got != 975 {
		t.Fatalf("money = %d, want 975", got)
	}

	turns := c.Catalog.Crops[0].GrowthTurns(7)
	if turns != 15 {
		t.Fatalf("growth turns = %d, want 15", turns)
	}
	last := 0.0
	for i := 1; i <= turns; i++ {
		st = c.Dispatch(st, AdvanceTurn())
		if len(st.Active) > 0 {
			t.Fatalf("turn %d: unexpected event %s", i, st.Active[0].TemplateID)
		}
		pc := st.Grid.Get("plot-2-2").Crop
		if pc.Growth < last {
			t.Fatalf("turn %d: growth fell from %v to %v", i, last, pc.Growth)
		}
		last = pc.Growth
		if i < turns && pc.Ready {
			t.Fatalf("turn %d: ready too early at %v", i, pc.Growth)
		}
	}
	pc := st.Grid.Get("plot-2-2").Crop
	if pc.Growth != 100 || !pc.Ready {
		t.Fatalf("crop = %+v, want growth 100 and ready", pc)
	}
}

func TestPlantOutOfSeasonIsNoop(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	if next := c.Dispatch(st, PlantCrop("plot-2-2", "coffee")); next != st {
		t.Fatal("coffee cannot be planted in spring")
	}
	if next := c.Dispatch(st, PlantCrop("plot-1-1", "soy")); next != st {
		t.Fatal("cannot plant on a landlord plot")
	}
}

func TestOffSeasonGrowthIsSlower(t *testing.T) {
	c := newCore(t)
	rs := c.Catalog.Rulesets["plots"]
	soy, _ := c.Catalog.Crop("soy")
	in := GrowthStep(soy, rs, "spring", "sunny")
	off := GrowthStep(soy, rs, "winter", "sunny")
	if off != in*OffSeasonFactor {
		t.Fatalf("off season = %v, want %v", off, in*OffSeasonFactor)
	}
}

func TestHarvestCrossesMoneyVictory(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	st.Ledger[catalog.Money] = 99000
	st.Grid.Get("plot-2-2").Crop = &world.PlantedCrop{CropID: "soy", Growth: 100, Ready: true}

	next := c.Dispatch(st, HarvestCrop("plot-2-2"))
	if next == st {
		t.Fatal("harvest was a no-op")
	}
	// 60 units at the stable local price of 129.22.
	if got := next.Ledger[catalog.Money]; got != 99000+7753 {
		t.Fatalf("money = %d, want %d", got, 99000+7753)
	}
	if !next.GameCompleted || !next.Outcome.Victory() || next.Outcome.VictoryKind != "money" {
		t.Fatalf("outcome = %+v completed=%v", next.Outcome, next.GameCompleted)
	}
	if next.Grid.Get("plot-2-2").Crop != nil {
		t.Fatal("crop should be cleared")
	}
	if next.Harvested["soy"] != 60 {
		t.Fatalf("harvested = %v", next.Harvested)
	}
}

func TestHarvestUnreadyIsNoop(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	st.Grid.Get("plot-2-2").Crop = &world.PlantedCrop{CropID: "soy", Growth: 40}
	if next := c.Dispatch(st, HarvestCrop("plot-2-2")); next != st {
		t.Fatal("unready harvest should be a no-op")
	}
}

func TestExportContracts(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	st.Harvested["soy"] = 100

	if next := c.Dispatch(st, CreateContract("soy", 50, "europe", 10000, 4)); next != st {
		t.Fatal("price above the regional price should be refused")
	}
	next := c.Dispatch(st, CreateContract("soy", 50, "europe", 50, 4))
	if len(next.Contracts) != 1 {
		t.Fatalf("contracts = %d, want 1", len(next.Contracts))
	}
	if got := next.Ledger[catalog.Reputation]; got != 105 {
		t.Fatalf("reputation = %d, want 105", got)
	}

	id := next.Contracts[0].ID
	done := c.Dispatch(next, FulfillContract(id, 50))
	if !done.Contracts[0].Fulfilled {
		t.Fatal("contract should be fulfilled")
	}
	if got := done.Ledger[catalog.Money]; got != 1000+2500 {
		t.Fatalf("money = %d, want 3500", got)
	}
	if got := done.Ledger[catalog.Influence]; got != 10 {
		t.Fatalf("influence = %d, want 10", got)
	}
	if done.Harvested["soy"] != 50 {
		t.Fatalf("stock = %d, want 50", done.Harvested["soy"])
	}
	if again := c.Dispatch(done, FulfillContract(id, 10)); again != done {
		t.Fatal("fulfilled contract should refuse deliveries")
	}
}

func TestFulfillNeedsStock(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	st = c.Dispatch(st, CreateContract("soy", 50, "local", 10, 4))
	if next := c.Dispatch(st, FulfillContract(st.Contracts[0].ID, 10)); next != st {
		t.Fatal("delivery without stock should be a no-op")
	}
}

func TestSetExportDestination(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetPlots, "family_farmer")
	next := c.Dispatch(st, SetExportDestination("asia"))
	if next.ExportDestination != "asia" {
		t.Fatalf("destination = %s", next.ExportDestination)
	}
	if again := c.Dispatch(next, SetExportDestination("mars")); again != next {
		t.Fatal("unknown region should be a no-op")
	}
}

func TestProductionActions(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "agribusiness")

	improved := c.Dispatch(st, ImproveProduction("t-0-0"))
	if got := improved.Grid.Get("t-0-0").ProductionLevel; got != 60 {
		t.Fatalf("level = %d, want 60", got)
	}
	if got := improved.Ledger[catalog.Economic]; got != 925 {
		t.Fatalf("economic = %d, want 925", got)
	}

	switched := c.Dispatch(improved, SetProduction("t-0-0", "organic"))
	cell := switched.Grid.Get("t-0-0")
	if cell.Production != "organic" || cell.ProductionLevel != 50 {
		t.Fatalf("cell = %+v", cell)
	}

	practiced := c.Dispatch(switched, SustainablePractice("t-0-0"))
	if got := practiced.Ledger[catalog.Environmental]; got != 320 {
		t.Fatalf("environmental = %d, want 320", got)
	}
	if got, want := practiced.Grid.Get("t-0-0").Health, cell.Health+15; got != min(want, 100) {
		t.Fatalf("health = %d, want %d", got, want)
	}

	if next := c.Dispatch(st, SetProduction("t-4-4", "soy")); next != st {
		t.Fatal("cannot set production on a rival's cell")
	}
}

func TestCampaign(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "politician")
	next := c.Dispatch(st, Campaign("political_campaign"))
	want := Ledger{
		catalog.Economic:      600,
		catalog.Influence:     1100,
		catalog.Social:        550,
		catalog.Environmental: 400,
	}
	if !reflect.DeepEqual(next.Ledger, want) {
		t.Fatalf("ledger = %v, want %v", next.Ledger, want)
	}
	if again := c.Dispatch(st, Campaign("coup")); again != st {
		t.Fatal("unknown campaign should be a no-op")
	}
}

func TestDefeatBeatsVictory(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "politician")
	st.Ledger[catalog.Influence] = 2000
	st.Ledger[catalog.Social] = 100

	out := Evaluate(st, c.Catalog)
	if out == nil || out.Kind != OutcomeDefeat || out.Victory() {
		t.Fatalf("outcome = %+v, want defeat", out)
	}

	st.Ledger[catalog.Social] = 1500
	out = Evaluate(st, c.Catalog)
	if out == nil || !out.Victory() || out.VictoryKind != "political_hegemony" {
		t.Fatalf("outcome = %+v, want political victory", out)
	}
}

func TestActivistVictoryNeedsLandReform(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "activist")
	st.Ledger[catalog.Social] = 1500
	st.Ledger[catalog.Environmental] = 1500
	if out := Evaluate(st, c.Catalog); out != nil {
		t.Fatalf("outcome = %+v, want none while farms equal agribusiness", out)
	}
	st.Grid.Get("t-1-1").Type = world.TypeFamilyFarm
	if out := Evaluate(st, c.Catalog); !out.Victory() {
		t.Fatalf("outcome = %+v, want victory", out)
	}
}

func TestTimelineEndsGame(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "agribusiness")
	st.Active = nil
	st.Time.Year = 2022

	next := c.Dispatch(st, AdvanceTurn())
	if !next.GameCompleted || next.Outcome.Reason != TimelineReason {
		t.Fatalf("outcome = %+v", next.Outcome)
	}
}

func TestCompletedGameOnlyResets(t *testing.T) {
	c := newCore(t)
	st := newGame(t, c, RulesetTerritories, "politician")
	st.GameCompleted = true
	st.Outcome = &Outcome{Kind: OutcomeDefeat, Reason: "test"}

	for _, a := range []Action{AdvanceTurn(), Campaign("political_campaign"), AcquireCell("t-1-1")} {
		if next := c.Dispatch(st, a); next != st {
			t.Errorf("%s should be refused after completion", a.Kind)
		}
	}

	fresh := c.Dispatch(st, Reset())
	if fresh.GameCompleted || fresh.Outcome != nil {
		t.Fatal("reset should clear the outcome")
	}
	if fresh.GameID != st.GameID || fresh.Version != st.Version+1 {
		t.Fatalf("reset = id %s version %d", fresh.GameID, fresh.Version)
	}
	if fresh.Ledger[catalog.Influence] != 1000 {
		t.Fatalf("ledger = %v, want presets", fresh.Ledger)
	}
}

func TestLedgerStaysClamped(t *testing.T) {
	for _, rs := range []Ruleset{RulesetTerritories, RulesetPlots} {
		c := newCore(t)
		c.Source = entropy.NewSeeded(7)
		for _, role := range c.Catalog.RoleOrder {
			st := newGame(t, c, rs, role)
			rules := c.Catalog.Rulesets[string(rs)]
			pick := entropy.NewSeeded(int64(len(role)))
			for step := 0; step < 300 && !st.GameCompleted; step++ {
				st = c.Dispatch(st, randomAction(st, c.Catalog, pick))
				for _, r := range rules.Resources {
					if v := st.Ledger[r]; v < rules.Min || v > rules.Max {
						t.Fatalf("%s/%s step %d: %s = %d out of bounds", rs, role, step, r, v)
					}
				}
			}
		}
	}
}

func randomAction(st *State, cat *catalog.Catalog, src entropy.Source) Action {
	cell := st.Grid.Cells[entropy.Intn(src, len(st.Grid.Cells))].ID
	crop := cat.Crops[entropy.Intn(src, len(cat.Crops))].ID
	switch entropy.Intn(src, 8) {
	case 0:
		if len(st.Active) > 0 {
			ev := st.Active[0]
			return ResolveEvent(ev.ID, ev.Options[entropy.Intn(src, len(ev.Options))].ID)
		}
		return AdvanceTurn()
	case 1:
		return AcquireCell(cell)
	case 2:
		return PlantCrop(cell, crop)
	case 3:
		return HarvestCrop(cell)
	case 4:
		return Campaign("social_movement")
	case 5:
		return ImproveProduction(cell)
	case 6:
		return SustainablePractice(cell)
	default:
		return AdvanceTurn()
	}
}

func TestNormalizeFillsLegacySnapshot(t *testing.T) {
	c := newCore(t)
	st := &State{GameID: "legacy", Role: "activist", Ledger: Ledger{catalog.Social: 5000}}

	if err := Normalize(st, c.Catalog); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if st.Ruleset != RulesetTerritories || st.Market == nil || st.Grid == nil {
		t.Fatalf("state not defaulted: %+v", st)
	}
	if st.Ledger[catalog.Social] != 2000 {
		t.Fatalf("social = %d, want clamped 2000", st.Ledger[catalog.Social])
	}
	if st.ExportDestination != "local" || st.Harvested == nil || st.Contracts == nil {
		t.Fatal("economy defaults missing")
	}
	if next := c.Dispatch(st, AdvanceTurn()); next == st {
		t.Fatal("normalized state should accept a turn")
	}

	bad := &State{Role: "king"}
	if err := Normalize(bad, c.Catalog); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestDeterministicReplay(t *testing.T) {
	c := newCore(t)
	play := func() *State {
		st := newGame(t, c, RulesetPlots, "activist")
		for i := 0; i < 20; i++ {
			if len(st.Active) > 0 {
				st = c.Dispatch(st, ResolveEvent(st.Active[0].ID, st.Active[0].Options[0].ID))
				continue
			}
			st = c.Dispatch(st, AdvanceTurn())
		}
		return st
	}
	a, b := play(), play()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed and actions should give the same state")
	}
}
