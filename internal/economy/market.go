// Package economy provides the regional crop market: trends, demand, news
// and the price function, plus export contracts.
package economy

import (
	"maps"
	"math"
	"slices"

	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/entropy"
)

// Trend is a region's directional market bias.
type Trend string

const (
	Bull     Trend = "bull"
	Bear     Trend = "bear"
	Stable   Trend = "stable"
	Volatile Trend = "volatile"
)

// Volatile prices jitter uniformly inside this band.
const (
	VolatileLow  = 0.85
	VolatileHigh = 1.15
)

// Demand bounds.
const (
	MinDemand = 1
	MaxDemand = 10
)

// HistoryLength caps the price samples kept per crop.
const HistoryLength = 52

// RegionMarket is the live state of one market region.
type RegionMarket struct {
	Region      string             `json:"region"`
	Name        string             `json:"name"`
	Scope       string             `json:"scope"`
	Trend       Trend              `json:"trend"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
	Transport   float64            `json:"transport"`
	Demand      int                `json:"demand"`
}

// Local reports whether sales here pay no transport.
func (r *RegionMarket) Local() bool {
	return r.Scope == catalog.ScopeLocal
}

// Foreign reports whether the region is outside the country.
func (r *RegionMarket) Foreign() bool {
	return r.Scope == catalog.ScopeForeign
}

// Multiplier returns the region's modifier for a crop (1 when unset).
func (r *RegionMarket) Multiplier(cropID string) float64 {
	if m, ok := r.Multipliers[cropID]; ok && m > 0 {
		return m
	}
	return 1
}

// PricePoint is one averaged price sample.
type PricePoint struct {
	Turn  int     `json:"turn"`
	Price float64 `json:"price"`
}

// Market is the global market state carried in the game snapshot.
type Market struct {
	Regions []RegionMarket          `json:"regions"`
	News    []News                  `json:"news"`
	History map[string][]PricePoint `json:"history"`
}

// NewMarket seeds a market from the catalog region profiles.
func NewMarket(cat *catalog.Catalog) *Market {
	m := &Market{
		Regions: make([]RegionMarket, 0, len(cat.Regions)),
		News:    []News{},
		History: make(map[string][]PricePoint, len(cat.Crops)),
	}
	for _, r := range cat.Regions {
		mult := make(map[string]float64, len(r.Multipliers))
		for k, v := range r.Multipliers {
			mult[k] = v
		}
		m.Regions = append(m.Regions, RegionMarket{
			Region:      r.ID,
			Name:        r.Name,
			Scope:       r.Scope,
			Trend:       Trend(r.Trend),
			Multipliers: mult,
			Transport:   r.Transport,
			Demand:      clampDemand(r.Demand),
		})
	}
	for _, c := range cat.Crops {
		m.History[c.ID] = []PricePoint{{Turn: 0, Price: c.BasePrice}}
	}
	return m
}

// Clone returns a deep copy of the market.
func (m *Market) Clone() *Market {
	if m == nil {
		return nil
	}
	out := &Market{
		Regions: slices.Clone(m.Regions),
		News:    slices.Clone(m.News),
		History: maps.Clone(m.History),
	}
	for i := range out.Regions {
		out.Regions[i].Multipliers = maps.Clone(m.Regions[i].Multipliers)
	}
	for k, v := range out.History {
		out.History[k] = slices.Clone(v)
	}
	return out
}

// Region returns the live market for id, or nil.
func (m *Market) Region(id string) *RegionMarket {
	for i := range m.Regions {
		if m.Regions[i].Region == id {
			return &m.Regions[i]
		}
	}
	return nil
}

// TrendFactor converts a trend and demand level into a price multiplier.
func TrendFactor(t Trend, demand int, src entropy.Source) float64 {
	switch t {
	case Bull:
		return 1.10 + float64(demand)*0.01
	case Bear:
		return 0.90 - float64(MaxDemand-demand)*0.01
	case Volatile:
		return entropy.Between(src, VolatileLow, VolatileHigh)
	default:
		return 1.0
	}
}

// Price derives the sale price of crop in region at time now, rounded to
// cents. The second result is false for an unknown region.
func (m *Market) Price(crop catalog.Crop, region string, now int, src entropy.Source) (float64, bool) {
	r := m.Region(region)
	if r == nil {
		return 0, false
	}
	price := crop.BasePrice * r.Multiplier(crop.ID) * TrendFactor(r.Trend, r.Demand, src)
	price *= m.NewsFactor(crop.ID, region, now)
	if !r.Local() {
		price *= 1 - r.Transport
	}
	return round2(price), true
}

// NewsFactor multiplies the impact of every news item active at now whose
// scope matches crop and region.
func (m *Market) NewsFactor(cropID, region string, now int) float64 {
	f := 1.0
	for _, n := range m.News {
		if n.ActiveAt(now) && n.Matches(cropID, region) {
			f *= n.Impact
		}
	}
	return f
}

// BestMarket returns the region paying the most for crop at now.
func (m *Market) BestMarket(crop catalog.Crop, now int, src entropy.Source) (string, float64) {
	best, bestPrice := "", -1.0
	for _, r := range m.Regions {
		p, _ := m.Price(crop, r.Region, now, src)
		if p > bestPrice {
			best, bestPrice = r.Region, p
		}
	}
	return best, bestPrice
}

// AveragePrice is the mean price of crop across every region.
func (m *Market) AveragePrice(crop catalog.Crop, now int, src entropy.Source) float64 {
	if len(m.Regions) == 0 {
		return crop.BasePrice
	}
	sum := 0.0
	for _, r := range m.Regions {
		p, _ := m.Price(crop, r.Region, now, src)
		sum += p
	}
	return round2(sum / float64(len(m.Regions)))
}

func clampDemand(d int) int {
	if d < MinDemand {
		return MinDemand
	}
	if d > MaxDemand {
		return MaxDemand
	}
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
