// Crops, harvest and export trade.
package engine

import (
	"math"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/economy"
	"github.com/talgya/agro-hegemony/internal/entropy"
	"github.com/talgya/agro-hegemony/internal/world"
)

// Standing earned through export trade.
const (
	contractStanding = 5  // social, for a contract outside the local market
	foreignDelivery  = 10 // influence, for fulfilling a foreign contract
	nationalDelivery = 5  // influence, for fulfilling a national contract
)

func (c *Core) plant(st *State, rs *catalog.Ruleset, cellID, cropID string) bool {
	cell := ownedCell(st, cellID)
	if cell == nil || cell.Crop != nil {
		return false
	}
	crop, ok := c.Catalog.Crop(cropID)
	if !ok || !crop.InSeason(st.Time.Season) {
		return false
	}
	cost := map[catalog.Resource]int{rs.Income: crop.PlantingCost(rs.PlantCostShare)}
	if !canAfford(st, rs, cost) {
		return false
	}
	pay(st, rs, cost)
	cell.Crop = &world.PlantedCrop{
		CropID:      crop.ID,
		PlantedTurn: st.Time.Turn,
		PlantedWeek: st.Time.Week,
	}
	return true
}

// HarvestValue is the income a ready crop earns at the current export
// destination.
func (c *Core) HarvestValue(st *State, rs *catalog.Ruleset, crop catalog.Crop, src entropy.Source) (int, bool) {
	price, ok := st.Market.Price(crop, st.ExportDestination, st.Time.Turn, src)
	if !ok {
		return 0, false
	}
	return int(math.Round(float64(crop.Yield) * price * rs.HarvestScale)), true
}

func (c *Core) harvest(st *State, rs *catalog.Ruleset, cellID string, src entropy.Source) bool {
	cell := ownedCell(st, cellID)
	if cell == nil || cell.Crop == nil || !cell.Crop.Ready {
		return false
	}
	crop, ok := c.Catalog.Crop(cell.Crop.CropID)
	if !ok {
		return false
	}
	value, ok := c.HarvestValue(st, rs, crop, src)
	if !ok {
		return false
	}
	credit(st, rs, rs.Income, value)
	st.Harvested[crop.ID] += crop.Yield
	cell.Crop = nil
	return true
}

func (c *Core) setExportDestination(st *State, region string) bool {
	if st.Market.Region(region) == nil || st.ExportDestination == region {
		return false
	}
	st.ExportDestination = region
	return true
}

// createContract opens an export contract. The agreed unit price may not
// exceed what the region pays today.
func (c *Core) createContract(st *State, rs *catalog.Ruleset, act Action, src entropy.Source) bool {
	if act.Quantity <= 0 || act.PricePerUnit <= 0 || act.DurationWeeks <= 0 {
		return false
	}
	crop, ok := c.Catalog.Crop(act.CropID)
	if !ok {
		return false
	}
	region := st.Market.Region(act.Region)
	if region == nil {
		return false
	}
	if price, _ := st.Market.Price(crop, region.Region, st.Time.Turn, src); act.PricePerUnit > price {
		return false
	}
	st.Contracts = append(st.Contracts, economy.Contract{
		ID:           st.nextID("contract"),
		CropID:       crop.ID,
		Quantity:     act.Quantity,
		PricePerUnit: act.PricePerUnit,
		Region:       region.Region,
		Start:        st.Time.Turn,
		Duration:     economy.WeeksToTurns(act.DurationWeeks, rs.Clock.DaysPerTurn),
	})
	if !region.Local() {
		credit(st, rs, catalog.Social, contractStanding)
	}
	return true
}

// fulfillContract delivers harvested stock against an open contract.
func (c *Core) fulfillContract(st *State, rs *catalog.Ruleset, contractID string, amount int) bool {
	ct := st.Contract(contractID)
	if ct == nil || !ct.Open() || amount <= 0 {
		return false
	}
	if amount > ct.Remaining() {
		amount = ct.Remaining()
	}
	if st.Harvested[ct.CropID] < amount {
		return false
	}
	accepted, payment := ct.Deliver(amount)
	if accepted == 0 {
		return false
	}
	st.Harvested[ct.CropID] -= accepted
	credit(st, rs, rs.Income, int(math.Round(payment*rs.HarvestScale)))

	if ct.Fulfilled {
		switch r := st.Market.Region(ct.Region); {
		case r == nil:
		case r.Foreign():
			credit(st, rs, catalog.Influence, foreignDelivery)
		case r.Scope == catalog.ScopeNational:
			credit(st, rs, catalog.Influence, nationalDelivery)
		}
	}
	return true
}

// Quote is the price of one crop in one region.
type Quote struct {
	Crop   string  `json:"crop"`
	Region string  `json:"region"`
	Price  float64 `json:"price"`
}

// Quotes prices every crop in every region at the current turn. Volatile
// regions draw from the same source a dispatch at this version would use.
func (c *Core) Quotes(st *State) []Quote {
	src := c.source(st)
	out := make([]Quote, 0, len(c.Catalog.Crops)*len(st.Market.Regions))
	for _, crop := range c.Catalog.Crops {
		for _, r := range st.Market.Regions {
			p, _ := st.Market.Price(crop, r.Region, st.Time.Turn, src)
			out = append(out, Quote{Crop: crop.ID, Region: r.Region, Price: p})
		}
	}
	return out
}

// BestMarkets returns the highest-paying region of every crop. Draws follow
// the same order as Quotes, so both agree at a given version.
func (c *Core) BestMarkets(st *State) map[string]Quote {
	src := c.source(st)
	out := make(map[string]Quote, len(c.Catalog.Crops))
	for _, crop := range c.Catalog.Crops {
		region, price := st.Market.BestMarket(crop, st.Time.Turn, src)
		if region != "" {
			out[crop.ID] = Quote{Crop: crop.ID, Region: region, Price: price}
		}
	}
	return out
}
