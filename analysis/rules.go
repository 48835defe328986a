package analysis

import (
	"ffxiv_cadence/ffxiv"
)

const (
	// BaseGCD is the baseline cadence length in milliseconds.
	BaseGCD = 2500
	// CasterTax is the commit latency paid after a hard cast, in milliseconds.
	CasterTax = 100
)

// Rules is the static lookup of action and status properties.
// *ffxiv.SkillSets satisfies it; tests pass fixtures.
type Rules interface {
	Action(id int) (ffxiv.ActionData, bool)
	Status(id int) (ffxiv.StatusData, bool)
}

// DowntimeOracle reports how long the target was untargetable in [start, end].
type DowntimeOracle interface {
	Between(start, end int64) int64
}

type DowntimeFunc func(start, end int64) int64

func (f DowntimeFunc) Between(start, end int64) int64 { return f(start, end) }

func gcdAction(rules Rules, id int) (ffxiv.ActionData, bool) {
	action, ok := rules.Action(id)
	if !ok || !action.OnGCD {
		return action, false
	}
	return action, true
}
