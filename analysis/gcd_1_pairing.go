package analysis

type useState uint8

const (
	statePrepared useState = 1 << iota
	stateCommitted
)

// ActionUse is one logical use of an on-GCD action. At least one of the
// prepare and commit timestamps is always set.
type ActionUse struct {
	ActionID  int
	PrepareAt int64
	CommitAt  int64
	CastTime  int64

	state useState
}

func (u *ActionUse) Prepared() bool  { return u.state&statePrepared != 0 }
func (u *ActionUse) Committed() bool { return u.state&stateCommitted != 0 }

// IsInterrupted: begincast without a matching cast.
func (u *ActionUse) IsInterrupted() bool { return u.Prepared() && !u.Committed() }

// IsInstant: cast without begincast.
func (u *ActionUse) IsInstant() bool { return u.Committed() && !u.Prepared() }

// StartTime returns false for interrupted uses.
func (u *ActionUse) StartTime() (int64, bool) {
	switch {
	case u.IsInterrupted():
		return 0, false
	case u.Prepared():
		return u.PrepareAt, true
	default:
		return u.CommitAt, true
	}
}

func (u *ActionUse) IsTaxed() bool {
	return u.CastTime > 0 && u.CastTime >= BaseGCD && !u.IsInstant()
}

func (u *ActionUse) commit(t int64) {
	u.CommitAt = t
	u.state |= stateCommitted
}

func newPrepared(actionID int, castTime int64, t int64) ActionUse {
	return ActionUse{ActionID: actionID, PrepareAt: t, CastTime: castTime, state: statePrepared}
}

func newInstant(actionID int, castTime int64, t int64) ActionUse {
	return ActionUse{ActionID: actionID, CommitAt: t, CastTime: castTime, state: stateCommitted}
}

// PairCasts folds one actor's begincast/cast events into ActionUse records.
// Events for other kinds, unknown actions and off-GCD actions are dropped
// before pairing.
func PairCasts(events []RawEvent, rules Rules) []ActionUse {
	uses := make([]ActionUse, 0, len(events)/2+1)

	first := true
	for _, event := range events {
		if event.Kind != BeginCast && event.Kind != Commit {
			continue
		}

		action, ok := gcdAction(rules, event.AbilityID)
		if !ok {
			continue
		}

		// 풀링 전에 시전 중이던 스킬
		if first {
			first = false
			if event.Kind == Commit && action.CastTime > 0 {
				continue
			}
		}

		switch event.Kind {
		case BeginCast:
			uses = append(uses, newPrepared(event.AbilityID, action.CastTime, event.Timestamp))

		case Commit:
			if n := len(uses); n > 0 {
				last := &uses[n-1]
				if last.ActionID == event.AbilityID && !last.Committed() {
					last.commit(event.Timestamp)
					continue
				}
			}
			uses = append(uses, newInstant(event.AbilityID, action.CastTime, event.Timestamp))
		}
	}

	return uses
}
