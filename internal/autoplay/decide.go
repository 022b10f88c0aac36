package autoplay

import (
	"fmt"
	"math"
	"sort"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/engine"
	"github.com/talgya/agro-hegemony/internal/world"
)

const (
	// reserve is kept in the income resource before any optional spend.
	reserve = 200
	// contractDiscount undercuts the quoted price so the contract is
	// accepted even when a volatile region jitters between quote and dispatch.
	contractDiscount = 0.8
	contractWeeks    = 12
	improveFloor     = 600
)

// Candidate is one action the player is willing to take, with the reason.
type Candidate struct {
	Action    engine.Action
	Rationale string
}

// Key identifies the action for refusal tracking.
func (c Candidate) Key() string {
	a := c.Action
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%d",
		a.Kind, a.EventID, a.OptionID, a.CellID, a.Production, a.Campaign, a.CropID, a.Region+a.ContractID, a.Amount)
}

// Decide ranks the actions worth trying, best first. It always ends with
// advance_turn unless the game is over, in which case it returns nothing.
func Decide(snap *Snapshot, a *Assessment, cat *Catalog) []Candidate {
	st := snap.State
	if st.GameCompleted {
		return nil
	}

	var out []Candidate
	add := func(act engine.Action, why string) {
		out = append(out, Candidate{Action: act, Rationale: why})
	}

	// Events block the clock, so they come first.
	for _, ev := range st.Active {
		if opt := bestOption(st, ev); opt != "" {
			add(engine.ResolveEvent(ev.ID, opt), "resolve "+ev.Title)
		}
	}

	for _, c := range a.Ready {
		best, ok := snap.Prices.Best[c.Crop.CropID]
		cur := snap.Prices.Quote(c.Crop.CropID, st.ExportDestination)
		if ok && best.Region != st.ExportDestination && best.Price > cur {
			add(engine.SetExportDestination(best.Region), fmt.Sprintf("sell %s in %s at %.2f", c.Crop.CropID, best.Region, best.Price))
		}
		add(engine.HarvestCrop(c.ID), "harvest "+c.Crop.CropID)
	}

	for _, k := range st.Contracts {
		if !k.Open() {
			continue
		}
		if stock := st.Harvested[k.CropID]; stock > 0 {
			add(engine.FulfillContract(k.ID, min(stock, k.Remaining())), "deliver "+k.CropID)
		}
	}
	for _, crop := range sortedKeys(st.Harvested) {
		stock := st.Harvested[crop]
		if stock <= 0 || hasOpenContract(st, crop) {
			continue
		}
		region := bestForeign(snap, cat, crop)
		if region == "" {
			continue
		}
		price := math.Floor(snap.Prices.Quote(crop, region)*contractDiscount*100) / 100
		if price > 0 {
			add(engine.CreateContract(crop, stock, region, price, contractWeeks), "contract "+crop+" to "+region)
		}
	}

	income := st.Ledger[a.Income]
	if a.Plots {
		if crop, ok := bestCrop(snap, cat); ok && len(a.Empty) > 0 && income >= crop.PlantingCost(0.2)+reserve {
			for _, c := range a.Empty {
				add(engine.PlantCrop(c.ID, crop.ID), "plant "+crop.ID)
			}
		}
	} else {
		if p, ok := bestProduction(cat, a.Weakest); ok && income >= p.Cost+reserve {
			for _, c := range a.Idle {
				add(engine.SetProduction(c.ID, p.ID), "produce "+p.ID)
			}
		}
		if income >= improveFloor {
			for _, c := range weakestProducers(a) {
				add(engine.ImproveProduction(c.ID), "improve "+c.ID)
			}
		}
		if a.Weakest == catalog.Environmental && income >= reserve+100 {
			for _, c := range a.Owned {
				add(engine.SustainablePractice(c.ID), "restore "+c.ID)
			}
		}
	}

	for _, cp := range cat.Campaigns {
		if cp.Allows(st.Role) && cp.Gain[a.Weakest] > 0 && affordable(st, a, cp.Cost) {
			add(engine.Campaign(cp.ID), "boost "+string(a.Weakest))
		}
	}

	if income >= reserve {
		for _, c := range a.Frontier {
			add(engine.AcquireCell(c.ID), "expand to "+c.ID)
		}
	}

	add(engine.AdvanceTurn(), "wait")
	return out
}

// bestOption scores options by their consequences, weighting scarce
// resources more heavily.
func bestOption(st *engine.State, ev engine.GameEvent) string {
	best, bestScore := "", math.Inf(-1)
	for _, opt := range ev.Options {
		score := float64(opt.CropGrowth)
		for _, c := range opt.Consequences {
			v, ok := ledgerValue(st, c.Resource)
			if !ok {
				continue
			}
			score += float64(c.Delta) * 100 / (math.Max(float64(v), 0) + 100)
		}
		if score > bestScore {
			best, bestScore = opt.ID, score
		}
	}
	return best
}

// ledgerValue reads res, following the plots aliases.
func ledgerValue(st *engine.State, res catalog.Resource) (int, bool) {
	if v, ok := st.Ledger[res]; ok {
		return v, true
	}
	switch res {
	case catalog.Economic:
		v, ok := st.Ledger[catalog.Money]
		return v, ok
	case catalog.Social:
		v, ok := st.Ledger[catalog.Reputation]
		return v, ok
	}
	return 0, false
}

func affordable(st *engine.State, a *Assessment, cost map[catalog.Resource]int) bool {
	for res, amt := range cost {
		v, ok := ledgerValue(st, res)
		if !ok {
			continue
		}
		if res == catalog.Economic || res == a.Income {
			amt += reserve
		}
		if v < amt {
			return false
		}
	}
	return true
}

// bestCrop picks the in-season crop with the best value per day of growth.
func bestCrop(snap *Snapshot, cat *Catalog) (catalog.Crop, bool) {
	var best catalog.Crop
	bestScore := 0.0
	for _, crop := range cat.Crops {
		if !crop.InSeason(snap.State.Time.Season) || crop.GrowthDays <= 0 {
			continue
		}
		price := crop.BasePrice
		if b, ok := snap.Prices.Best[crop.ID]; ok {
			price = b.Price
		}
		score := price * float64(crop.Yield) / float64(crop.GrowthDays)
		if score > bestScore {
			best, bestScore = crop, score
		}
	}
	return best, bestScore > 0
}

// bestProduction favours income, or environment when that is the weakest
// resource.
func bestProduction(cat *Catalog, weakest catalog.Resource) (catalog.Production, bool) {
	var best catalog.Production
	found := false
	for _, p := range cat.Productions {
		if !found || better(p, best, weakest) {
			best, found = p, true
		}
	}
	return best, found
}

func better(p, q catalog.Production, weakest catalog.Resource) bool {
	if weakest == catalog.Environmental {
		if p.Environment != q.Environment {
			return p.Environment > q.Environment
		}
	}
	return p.Income-p.Cost/4 > q.Income-q.Cost/4
}

func weakestProducers(a *Assessment) []*world.Cell {
	var out []*world.Cell
	for _, c := range a.Owned {
		if c.Production != "" && c.ProductionLevel < 100 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductionLevel < out[j].ProductionLevel })
	return out
}

// bestForeign is the highest priced non-local region for crop.
func bestForeign(snap *Snapshot, cat *Catalog, crop string) string {
	best, bestPrice := "", 0.0
	for _, r := range cat.Regions {
		if r.Scope == catalog.ScopeLocal {
			continue
		}
		if p := snap.Prices.Quote(crop, r.ID); p > bestPrice {
			best, bestPrice = r.ID, p
		}
	}
	return best
}

func hasOpenContract(st *engine.State, crop string) bool {
	for _, k := range st.Contracts {
		if k.CropID == crop && k.Open() {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
