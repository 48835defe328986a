package ffxiv

// DriftSlot is one cooldown slot tracked for drift. Aliases share the slot's
// cooldown, e.g. an upgraded replacement of the same action. Cooldown 0 means
// the action table value.
type DriftSlot struct {
	ActionID int   `json:"action_id"`
	Aliases  []int `json:"aliases,omitempty"`
	Cooldown int64 `json:"cooldown,omitempty"`
}

const (
	SkillIdDrill      = 16498
	SkillIdBioblaster = 16499
	SkillIdAirAnchor  = 16500
)

var driftSlots = map[string][]DriftSlot{
	"Machinist": {
		{ActionID: SkillIdAirAnchor},
		{ActionID: SkillIdDrill, Aliases: []int{SkillIdBioblaster}},
	},
}

// DriftSlots returns the tracked slots of a job, nil when none.
func DriftSlots(job string) []DriftSlot {
	return driftSlots[job]
}
