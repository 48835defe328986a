package analysis

import (
	"fmt"
)

// UnbalancedWindowError aborts modifier tracking for one actor.
type UnbalancedWindowError struct {
	ActorID    int
	ModifierID int
	Timestamp  int64
	Reason     string
}

func (e *UnbalancedWindowError) Error() string {
	return fmt.Sprintf(
		"unbalanced modifier window: actor %d, modifier %d at %d: %s",
		e.ActorID, e.ModifierID, e.Timestamp, e.Reason,
	)
}

const (
	reasonRemoveWithoutOpen = "remove without open window"
	reasonStackedApply      = "apply while window already open"
)

// ModifierWindow is open while End is unset; an open window extends to the
// encounter end when resolved.
type ModifierWindow struct {
	ActorID    int
	ModifierID int
	Factor     float64
	Start      int64
	End        int64
	Closed     bool
}

func (w *ModifierWindow) contains(t int64, encounterEnd int64) bool {
	end := encounterEnd
	if w.Closed {
		end = w.End
	}
	return w.Start < t && t <= end
}

// ActorModifierState owns every modifier window of one actor.
type ActorModifierState struct {
	ActorID      int
	EncounterEnd int64

	windows map[int][]ModifierWindow
	order   []int
}

func NewActorModifierState(actorID int) *ActorModifierState {
	return &ActorModifierState{
		ActorID: actorID,
		windows: make(map[int][]ModifierWindow),
	}
}

// Windows returns the windows of one modifier in start order.
func (s *ActorModifierState) Windows(modifierID int) []ModifierWindow {
	return s.windows[modifierID]
}

// Modifiers returns modifier ids in first-seen order.
func (s *ActorModifierState) Modifiers() []int {
	return s.order
}

// Observe feeds one event. Apply/remove events for statuses without a speed
// modifier are ignored.
func (s *ActorModifierState) Observe(event RawEvent, rules Rules) error {
	switch event.Kind {
	case EncounterEnd:
		s.EncounterEnd = event.Timestamp
		return nil
	case ModifierApply, ModifierRemove:
	default:
		return nil
	}

	if event.ActorID != s.ActorID {
		return nil
	}

	status, ok := rules.Status(event.AbilityID)
	if !ok || status.SpeedModifier <= 0 {
		return nil
	}

	list := s.windows[event.AbilityID]
	open := len(list) > 0 && !list[len(list)-1].Closed

	if event.Kind == ModifierApply {
		if open {
			return &UnbalancedWindowError{s.ActorID, event.AbilityID, event.Timestamp, reasonStackedApply}
		}
		if _, seen := s.windows[event.AbilityID]; !seen {
			s.order = append(s.order, event.AbilityID)
		}
		s.windows[event.AbilityID] = append(list, ModifierWindow{
			ActorID:    s.ActorID,
			ModifierID: event.AbilityID,
			Factor:     status.SpeedModifier,
			Start:      event.Timestamp,
		})
		return nil
	}

	if !open {
		return &UnbalancedWindowError{s.ActorID, event.AbilityID, event.Timestamp, reasonRemoveWithoutOpen}
	}
	last := &list[len(list)-1]
	last.End = event.Timestamp
	last.Closed = true

	return nil
}

// TrackModifiers runs a whole stream through a fresh state for one actor.
func TrackModifiers(actorID int, events []RawEvent, rules Rules) (*ActorModifierState, error) {
	s := NewActorModifierState(actorID)
	s.EncounterEnd = encounterEndOf(events)

	for _, event := range events {
		err := s.Observe(event, rules)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}
