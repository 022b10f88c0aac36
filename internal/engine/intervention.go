package engine

import "github.com/talgya/agro-hegemony/internal/catalog"

// campaign runs a fixed cost/payoff campaign when the role may use it.
func (c *Core) campaign(st *State, rs *catalog.Ruleset, id string) bool {
	cp, ok := c.Catalog.Campaigns[id]
	if !ok || !cp.Allows(st.Role) {
		return false
	}
	if !canAfford(st, rs, cp.Cost) {
		return false
	}
	pay(st, rs, cp.Cost)
	gain(st, rs, cp.Gain)
	return true
}
