package analysis

import (
	"ffxiv_cadence/ffxiv"

	"github.com/pkg/errors"
)

// DefaultDriftBuffer forgives drift caused by log jitter and weaving.
const DefaultDriftBuffer = 1500

type DriftCycle struct {
	ActionID int   `json:"action_id"`
	Start    int64 `json:"start"`
	End      int64 `json:"end"`
	IdealEnd int64 `json:"ideal_end"`
	Downtime int64 `json:"downtime"`
	Drift    int64 `json:"drift"`
	Drifted  bool  `json:"drifted"`

	Actions []ActionUse `json:"-"`
}

type DriftResult struct {
	Cycles  []*DriftCycle
	Drifted []*DriftCycle
}

type driftTracker struct {
	slots    []ffxiv.DriftSlot
	cooldown []int64
	current  []*DriftCycle
	slotOf   map[int]int

	rules  Rules
	oracle DowntimeOracle
	buffer int64

	result DriftResult
}

// AnalyzeDrift walks one actor's stream and closes a cycle each time a tracked
// action (or alias) is cast. Cycles still open at the end are not reported.
func AnalyzeDrift(slots []ffxiv.DriftSlot, events []RawEvent, rules Rules, oracle DowntimeOracle, start int64, buffer int64) (*DriftResult, error) {
	dt := driftTracker{
		slots:    slots,
		cooldown: make([]int64, len(slots)),
		current:  make([]*DriftCycle, len(slots)),
		slotOf:   make(map[int]int, len(slots)*2),
		rules:    rules,
		oracle:   oracle,
		buffer:   buffer,
	}

	for i, slot := range slots {
		cd := slot.Cooldown
		if cd <= 0 {
			action, ok := rules.Action(slot.ActionID)
			if !ok || action.Cooldown <= 0 {
				return nil, errors.Errorf("drift slot %d: no cooldown", slot.ActionID)
			}
			cd = action.Cooldown
		}
		dt.cooldown[i] = cd

		dt.slotOf[slot.ActionID] = i
		for _, alias := range slot.Aliases {
			dt.slotOf[alias] = i
		}

		dt.current[i] = &DriftCycle{ActionID: slot.ActionID, Start: start}
	}

	for _, event := range events {
		if event.Kind == Commit {
			dt.onCast(event)
		}
	}

	return &dt.result, nil
}

func (dt *driftTracker) onCast(event RawEvent) {
	action, onGCD := gcdAction(dt.rules, event.AbilityID)
	use := newInstant(event.AbilityID, action.CastTime, event.Timestamp)

	if idx, ok := dt.slotOf[event.AbilityID]; ok {
		cycle := dt.current[idx]
		cd := dt.cooldown[idx]

		cycle.End = event.Timestamp
		cycle.IdealEnd = cycle.Start + cd
		if dt.oracle != nil {
			cycle.Downtime = dt.oracle.Between(cycle.Start, cycle.End)
		}

		cycle.Drift = cycle.End - cycle.Start - cd - cycle.Downtime
		if cycle.Drift < 0 {
			cycle.Drift = 0
		}

		// 전환 페이즈 등 쿨타임 이상 다운타임이면 무시
		if cycle.Drift > dt.buffer && cycle.Downtime < cd {
			cycle.Drifted = true
			if onGCD {
				cycle.Actions = append(cycle.Actions, use)
			}
			dt.result.Drifted = append(dt.result.Drifted, cycle)
		}
		dt.result.Cycles = append(dt.result.Cycles, cycle)

		dt.current[idx] = &DriftCycle{
			ActionID: dt.slots[idx].ActionID,
			Start:    event.Timestamp,
		}
	}

	if !onGCD {
		return
	}
	for _, cycle := range dt.current {
		cycle.Actions = append(cycle.Actions, use)
	}
}
