package engine

import (
	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/economy"
)

// resolve applies the chosen option of an active event and retires it.
// Unknown events, resolved events and foreign options leave st unchanged.
func (c *Core) resolve(st *State, rs *catalog.Ruleset, role *catalog.Role, eventID, optionID string) bool {
	idx := -1
	for i := range st.Active {
		if st.Active[i].ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 || st.Active[idx].Resolved {
		return false
	}
	ev := st.Active[idx]
	opt := ev.Option(optionID)
	if opt == nil {
		return false
	}

	for _, cq := range opt.Consequences {
		delta := roundHalfUp(float64(cq.Delta) * role.Multiplier(cq.Resource))
		credit(st, rs, cq.Resource, delta)
	}
	if opt.CropGrowth > 0 {
		for i := range st.Grid.Cells {
			cell := &st.Grid.Cells[i]
			if cell.Owner == st.Role && cell.Crop != nil {
				addGrowth(cell.Crop, float64(opt.CropGrowth))
			}
		}
	}
	for _, m := range opt.Market {
		st.Market.News = append(st.Market.News, economy.News{
			ID:       st.nextID("news"),
			Headline: ev.Title,
			Crop:     m.Crop,
			Region:   m.Region,
			Impact:   m.Impact,
			Start:    st.Time.Turn,
			Duration: economy.WeeksToTurns(m.Weeks, rs.Clock.DaysPerTurn),
		})
	}
	if ev.Category == CategoryAssembly {
		st.AssemblyScheduled = false
	}

	ev.Resolved = true
	ev.ResolvedOption = opt.ID
	ev.ResolvedTurn = st.Time.Turn
	st.Active = append(st.Active[:idx:idx], st.Active[idx+1:]...)
	st.Completed = append(st.Completed, ev)
	if len(st.Completed) > completedLimit {
		st.Completed = st.Completed[len(st.Completed)-completedLimit:]
	}
	promote(st, rs)
	return true
}
