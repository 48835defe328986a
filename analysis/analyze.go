package analysis

import (
	"context"

	"ffxiv_cadence/ffxiv"
	"ffxiv_cadence/share/parallel"
)

type CadenceDeps struct {
	Rules Rules

	// BaseModifier is the job speed modifier, 1 when unset.
	BaseModifier float64

	Rounding Rounding
	Skip     SkipPolicy
}

// AnalyzeCadence builds the interval histogram of one actor.
func AnalyzeCadence(actorID int, events []RawEvent, deps CadenceDeps) (Histogram, error) {
	events = filterActor(events, actorID)

	state, err := TrackModifiers(actorID, events, deps.Rules)
	if err != nil {
		return nil, err
	}

	rounding := deps.Rounding
	if rounding == nil {
		rounding = NearestMultiple{Step: 10}
	}

	uses := PairCasts(events, deps.Rules)
	return BuildHistogram(uses, NewResolver(state, deps.BaseModifier), rounding, deps.Skip), nil
}

// ResolveModifier builds the modifier state of one actor and resolves t.
// Without an EncounterEnd event, open windows stay open for any later t.
func ResolveModifier(actorID int, events []RawEvent, rules Rules, base float64, t int64) (float64, error) {
	state, err := TrackModifiers(actorID, filterActor(events, actorID), rules)
	if err != nil {
		return 0, err
	}
	return NewResolver(state, base).Resolve(t), nil
}

////////////////////////////////////////////////////////////////////////////////////////////////////

type Actor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

type RunInput struct {
	Actors []Actor
	Events []RawEvent

	Rules       Rules
	JobModifier func(job string) float64
	DriftSlots  func(job string) []ffxiv.DriftSlot
	Downtime    DowntimeOracle

	EncounterStart int64
	DriftBuffer    int64

	DisplayRounding Rounding
	DisplaySkip     SkipPolicy
	ModeRounding    Rounding
	ModeSkip        SkipPolicy

	Workers int
}

type ActorResult struct {
	Actor Actor

	Uses          []ActionUse
	Intervals     []float64
	Histogram     Histogram
	ModeHistogram Histogram
	Drift         *DriftResult

	Resolver *Resolver

	Err error
}

// Run analyzes every actor on its own shard. A failing actor only sets its
// own Err. Results keep the order of in.Actors.
func Run(ctx context.Context, in *RunInput) []ActorResult {
	results := make([]ActorResult, len(in.Actors))

	shards := make(map[int][]RawEvent, len(in.Actors))
	for _, actor := range in.Actors {
		shards[actor.ID] = nil
	}
	for _, event := range in.Events {
		if event.Kind == EncounterEnd {
			for id := range shards {
				shards[id] = append(shards[id], event)
			}
			continue
		}
		if list, ok := shards[event.ActorID]; ok {
			shards[event.ActorID] = append(list, event)
		}
	}

	workers := in.Workers
	if workers <= 0 {
		workers = 1
	}

	pp := parallel.New(workers)
	pp.Reset(ctx)
	for i, actor := range in.Actors {
		i, actor := i, actor
		results[i].Actor = actor

		pp.Add(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			in.runShard(&results[i], shards[actor.ID])
			return nil
		})
	}
	pp.Wait()

	return results
}

func (in *RunInput) runShard(res *ActorResult, events []RawEvent) {
	state, err := TrackModifiers(res.Actor.ID, events, in.Rules)
	if err != nil {
		res.Err = err
		return
	}

	base := 1.0
	if in.JobModifier != nil {
		base = in.JobModifier(res.Actor.Job)
	}
	res.Resolver = NewResolver(state, base)

	display := in.DisplayRounding
	if display == nil {
		display = NearestMultiple{Step: 10}
	}
	mode := in.ModeRounding
	if mode == nil {
		mode = CeilDecimals{Places: 2}
	}

	res.Uses = PairCasts(events, in.Rules)
	res.Intervals = NormalizeIntervals(res.Uses, res.Resolver, in.DisplaySkip)
	res.Histogram = BuildHistogram(res.Uses, res.Resolver, display, in.DisplaySkip)
	res.ModeHistogram = BuildHistogram(res.Uses, res.Resolver, mode, in.ModeSkip)

	var slots []ffxiv.DriftSlot
	if in.DriftSlots != nil {
		slots = in.DriftSlots(res.Actor.Job)
	}
	if len(slots) == 0 {
		res.Drift = &DriftResult{}
		return
	}

	res.Drift, res.Err = AnalyzeDrift(slots, events, in.Rules, in.Downtime, in.EncounterStart, in.DriftBuffer)
}
