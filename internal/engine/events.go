// Event generation and the active/pending queues.
package engine

import (
	"github.com/talgya/agro-hegemony/internal/catalog"
	"github.com/talgya/agro-hegemony/internal/entropy"
)

// Generate returns the events eligible at the state's current time.
// Scripted tracks fire once per template when their year falls in the
// window; weekly categories each roll independently and pick one template
// uniformly. The assembly is offered while none is already scheduled.
func (c *Core) Generate(st *State, rs *catalog.Ruleset, src entropy.Source) []GameEvent {
	out := c.scripted(st, rs)

	for _, id := range rs.Categories {
		cat, ok := c.Catalog.Events.Category(id)
		if !ok || len(cat.Templates) == 0 {
			continue
		}
		if !entropy.Roll(src, cat.ChanceIn(st.Time.Season)) {
			continue
		}
		t := cat.Templates[entropy.Intn(src, len(cat.Templates))]
		if t.Category == "" {
			t.Category = cat.ID
		}
		out = append(out, c.instantiate(st, t))
	}

	if rs.Assembly && !st.AssemblyScheduled && entropy.Roll(src, c.Catalog.Events.Assembly.Chance) {
		out = append(out, c.instantiate(st, c.assembly(st)))
		st.AssemblyScheduled = true
	}
	return out
}

// scripted collects the historical and role tracks due at the current year
// and marks them as fired.
func (c *Core) scripted(st *State, rs *catalog.Ruleset) []GameEvent {
	if !rs.Scripted {
		return nil
	}
	window := c.Catalog.Events.WindowYears
	if window <= 0 {
		window = 5
	}
	var out []GameEvent
	due := func(t catalog.EventTemplate) {
		if st.hasFired(t.ID) || t.Year > st.Time.Year || t.Year <= st.Time.Year-window {
			return
		}
		st.Fired = append(st.Fired, t.ID)
		out = append(out, c.instantiate(st, t))
	}
	for _, t := range c.Catalog.Events.Historical {
		due(t)
	}
	for _, t := range c.Catalog.Events.RoleScripted {
		if t.Role == st.Role {
			due(t)
		}
	}
	return out
}

// assembly builds the assembly template for the current season.
func (c *Core) assembly(st *State) catalog.EventTemplate {
	a := c.Catalog.Events.Assembly
	t := catalog.EventTemplate{
		ID:          CategoryAssembly,
		Category:    CategoryAssembly,
		Title:       a.Title,
		Description: a.Description,
		Options:     append([]catalog.Option(nil), a.Options...),
	}
	if s, ok := a.Seasonal[st.Time.Season]; ok {
		if s.Title != "" {
			t.Title = s.Title
		}
		if s.Description != "" {
			t.Description = s.Description
		}
		if s.Option.ID != "" {
			t.Options = append(t.Options, s.Option)
		}
	}
	return t
}

func (c *Core) instantiate(st *State, t catalog.EventTemplate) GameEvent {
	opts := make([]catalog.Option, len(t.Options))
	copy(opts, t.Options)
	return GameEvent{
		ID:          st.nextID("event"),
		TemplateID:  t.ID,
		Category:    t.Category,
		Title:       t.Title,
		Description: t.Description,
		Year:        st.Time.Year,
		Week:        st.Time.Week,
		Turn:        st.Time.Turn,
		Options:     opts,
	}
}

// enqueue fills the active queue up to the ruleset cap; the rest wait in
// the pending queue in arrival order.
func (c *Core) enqueue(st *State, rs *catalog.Ruleset, evs []GameEvent) {
	st.Pending = append(st.Pending, evs...)
	promote(st, rs)
}

func promote(st *State, rs *catalog.Ruleset) {
	limit := rs.ActiveCap
	if limit <= 0 {
		limit = 2
	}
	for len(st.Active) < limit && len(st.Pending) > 0 {
		st.Active = append(st.Active, st.Pending[0])
		st.Pending = st.Pending[1:]
	}
}
