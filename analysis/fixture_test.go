package analysis

import (
	"ffxiv_cadence/ffxiv"
)

const (
	actInstant  = 1
	actHardCast = 2
	actOGCD     = 3
	actShort    = 4
	actTracked  = 100
	actAlias    = 101
	actOther    = 102

	modHaste   = 50
	modSwift   = 51
	modNoSpeed = 52
)

type fixtureRules struct {
	actions  map[int]ffxiv.ActionData
	statuses map[int]ffxiv.StatusData
}

func (r *fixtureRules) Action(id int) (ffxiv.ActionData, bool) {
	v, ok := r.actions[id]
	return v, ok
}

func (r *fixtureRules) Status(id int) (ffxiv.StatusData, bool) {
	v, ok := r.statuses[id]
	return v, ok
}

func newFixtureRules() *fixtureRules {
	return &fixtureRules{
		actions: map[int]ffxiv.ActionData{
			actInstant:  {ID: actInstant, OnGCD: true, Cooldown: 2500},
			actHardCast: {ID: actHardCast, OnGCD: true, CastTime: 3000, Cooldown: 2500},
			actOGCD:     {ID: actOGCD, OnGCD: false, Cooldown: 60000},
			actShort:    {ID: actShort, OnGCD: true, CastTime: 1500, Cooldown: 2500},
			actTracked:  {ID: actTracked, OnGCD: true, Cooldown: 30000},
			actAlias:    {ID: actAlias, OnGCD: true, Cooldown: 30000},
			actOther:    {ID: actOther, OnGCD: true, Cooldown: 60000},
		},
		statuses: map[int]ffxiv.StatusData{
			modHaste:   {ID: modHaste, SpeedModifier: 0.8},
			modSwift:   {ID: modSwift, SpeedModifier: 0.9},
			modNoSpeed: {ID: modNoSpeed},
		},
	}
}

func begin(t int64, id int) RawEvent  { return RawEvent{Timestamp: t, Kind: BeginCast, ActorID: 1, AbilityID: id} }
func cast(t int64, id int) RawEvent   { return RawEvent{Timestamp: t, Kind: Commit, ActorID: 1, AbilityID: id} }
func apply(t int64, id int) RawEvent  { return RawEvent{Timestamp: t, Kind: ModifierApply, ActorID: 1, AbilityID: id} }
func remove(t int64, id int) RawEvent { return RawEvent{Timestamp: t, Kind: ModifierRemove, ActorID: 1, AbilityID: id} }
func end(t int64) RawEvent            { return RawEvent{Timestamp: t, Kind: EncounterEnd} }

func instants(id int, ts ...int64) []RawEvent {
	r := make([]RawEvent, 0, len(ts))
	for _, t := range ts {
		r = append(r, cast(t, id))
	}
	return r
}
