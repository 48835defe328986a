package analysis

import "math"

type EventKind int

const (
	BeginCast EventKind = iota + 1
	Commit
	ModifierApply
	ModifierRemove
	EncounterEnd
)

func (k EventKind) String() string {
	switch k {
	case BeginCast:
		return "begincast"
	case Commit:
		return "cast"
	case ModifierApply:
		return "applybuff"
	case ModifierRemove:
		return "removebuff"
	case EncounterEnd:
		return "encounterend"
	}
	return "unknown"
}

// RawEvent is one entry of the encounter feed. Timestamps are milliseconds and
// never decrease along a stream.
type RawEvent struct {
	Timestamp int64     `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	ActorID   int       `json:"actorID"`
	AbilityID int       `json:"abilityID"`
}

// 스트림 마지막 EncounterEnd, 없으면 열린 창은 끝나지 않음
func encounterEndOf(events []RawEvent) int64 {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == EncounterEnd {
			return events[i].Timestamp
		}
	}
	return math.MaxInt64
}

func filterActor(events []RawEvent, actorID int) []RawEvent {
	r := make([]RawEvent, 0, len(events))
	for _, event := range events {
		if event.ActorID == actorID || event.Kind == EncounterEnd {
			r = append(r, event)
		}
	}
	return r
}
