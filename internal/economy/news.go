package economy

import (
	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/entropy"
	"github.com/talgya/agro-hegemony/internal/weather"
)

// News is a time-boxed multiplicative price modifier. Empty Crop or Region
// match everything.
type News struct {
	ID          string  `json:"id"`
	Headline    string  `json:"headline"`
	Description string  `json:"description,omitempty"`
	Crop        string  `json:"crop,omitempty"`
	Region      string  `json:"region,omitempty"`
	Impact      float64 `json:"impact"`
	Start       int     `json:"start"`
	Duration    int     `json:"duration"`
}

// WeeksToTurns converts a duration in weeks to whole turns of daysPerTurn
// days, rounding up. Any positive duration lasts at least one turn.
func WeeksToTurns(weeks, daysPerTurn int) int {
	if weeks <= 0 {
		return 0
	}
	if daysPerTurn <= 0 {
		daysPerTurn = 7
	}
	return max(1, (weeks*7+daysPerTurn-1)/daysPerTurn)
}

// ActiveAt reports whether the news applies at time now.
func (n News) ActiveAt(now int) bool {
	return now >= n.Start && now < n.Start+n.Duration
}

// Expired reports whether the news has run its course at now.
func (n News) Expired(now int) bool {
	return n.Start+n.Duration <= now
}

// Matches reports whether the news scope covers crop and region.
func (n News) Matches(cropID, region string) bool {
	return (n.Crop == "" || n.Crop == cropID) && (n.Region == "" || n.Region == region)
}

// UpdateReport summarises one market update.
type UpdateReport struct {
	Expired      int
	Added        []News
	TrendsRolled bool
}

// Update moves the market to turn now: expires stale news, re-rolls region
// trends at a season boundary, draws fresh news and records average prices.
// News lengths are scaled to turns of daysPerTurn days. newID supplies ids
// for drawn news.
func (m *Market) Update(cat *catalog.Catalog, now, daysPerTurn int, season weather.Season, boundary bool, src entropy.Source, newID func() string) UpdateReport {
	var rep UpdateReport

	kept := make([]News, 0, len(m.News))
	for _, n := range m.News {
		if n.Expired(now) {
			rep.Expired++
			continue
		}
		kept = append(kept, n)
	}
	m.News = kept

	if boundary {
		m.rollTrends(cat.Trends[season], src)
		rep.TrendsRolled = true
	}

	draws := cat.News.Draws
	if boundary && cat.News.SeasonDraws > draws {
		draws = cat.News.SeasonDraws
	}
	for i := 0; i < draws && len(cat.News.Templates) > 0; i++ {
		if !entropy.Roll(src, cat.News.Chance) {
			continue
		}
		t := cat.News.Templates[entropy.Intn(src, len(cat.News.Templates))]
		n := FromTemplate(t, now, daysPerTurn)
		n.ID = newID()
		m.News = append(m.News, n)
		rep.Added = append(rep.Added, n)
	}

	m.Record(cat, now, src)
	return rep
}

// FromTemplate instantiates a news template starting at turn now.
func FromTemplate(t catalog.NewsTemplate, now, daysPerTurn int) News {
	return News{
		Headline:    t.Headline,
		Description: t.Description,
		Crop:        t.Crop,
		Region:      t.Region,
		Impact:      t.Impact,
		Start:       now,
		Duration:    WeeksToTurns(t.Weeks, daysPerTurn),
	}
}

// rollTrends draws a new trend for every region and nudges demand toward it.
func (m *Market) rollTrends(table []catalog.TrendWeight, src entropy.Source) {
	if len(table) == 0 {
		return
	}
	weights := make([]float64, len(table))
	for i, w := range table {
		weights[i] = w.Weight
	}
	for i := range m.Regions {
		r := &m.Regions[i]
		r.Trend = Trend(table[entropy.Weighted(src, weights)].Trend)
		switch r.Trend {
		case Bull:
			r.Demand = clampDemand(r.Demand + 1)
		case Bear:
			r.Demand = clampDemand(r.Demand - 1)
		}
	}
}

// Record appends the current average price of every crop to the history.
func (m *Market) Record(cat *catalog.Catalog, now int, src entropy.Source) {
	if m.History == nil {
		m.History = make(map[string][]PricePoint, len(cat.Crops))
	}
	for _, c := range cat.Crops {
		h := append(m.History[c.ID], PricePoint{Turn: now, Price: m.AveragePrice(c, now, src)})
		if len(h) > HistoryLength {
			h = h[len(h)-HistoryLength:]
		}
		m.History[c.ID] = h
	}
}
