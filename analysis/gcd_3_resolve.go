package analysis

// Resolver answers the combined speed scale of one actor at a timestamp.
type Resolver struct {
	state *ActorModifierState
	base  float64
}

// NewResolver wraps a finished modifier state. base is the job modifier; zero
// or negative means none applies.
func NewResolver(state *ActorModifierState, base float64) *Resolver {
	if base <= 0 {
		base = 1
	}
	return &Resolver{
		state: state,
		base:  base,
	}
}

// Resolve is the product of the job modifier and every modifier with a window
// where start < t <= end. A window does not affect the action that opened it.
func (r *Resolver) Resolve(t int64) float64 {
	scale := r.base
	if r.state == nil {
		return scale
	}

	for _, modifierID := range r.state.order {
		for i := range r.state.windows[modifierID] {
			w := &r.state.windows[modifierID][i]
			if w.contains(t, r.state.EncounterEnd) {
				scale *= w.Factor
				break
			}
		}
	}

	return scale
}
