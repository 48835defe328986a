package fflogs

import (
	"context"
	"log"
	"sort"

	"ffxiv_cadence/analysis"
	"ffxiv_cadence/downtime"

	"golang.org/x/sync/errgroup"
)

// Encounter is everything the analysis needs from one fight.
type Encounter struct {
	Fight    *Fight
	Events   []analysis.RawEvent
	Downtime downtime.Windows
}

// FetchFight loads the fight, then the player events and the enemy
// targetability updates concurrently. The event list ends with one
// EncounterEnd at the fight duration.
func (c *Client) FetchFight(ctx context.Context, code string, fightID int, progress func(format string, args ...interface{})) (*Encounter, error) {
	if progress == nil {
		progress = func(string, ...interface{}) {}
	}

	progress("[1 / 3] 전투 정보 가져오는 중...")
	fight, err := c.Fight(ctx, code, fightID)
	if err != nil {
		return nil, err
	}
	log.Printf("Fight: %s#%d %s (%d actors)", code, fightID, fight.Name, len(fight.Actors))

	var (
		events  []analysis.RawEvent
		updates []downtime.Update
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Events(gctx, fight, PlayerEvents, func(page []eventEntry) error {
			for _, e := range page {
				if ev, ok := mapEvent(e, fight.StartTime); ok {
					events = append(events, ev)
				}
			}
			progress("[2 / 3] 이벤트 가져오는 중... %d", len(events))
			return nil
		})
	})
	g.Go(func() error {
		return c.Events(gctx, fight, EnemyTargetability, func(page []eventEntry) error {
			for _, e := range page {
				if u, ok := mapTargetability(e, fight.StartTime); ok {
					updates = append(updates, u)
				}
			}
			return nil
		})
	})
	err = g.Wait()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })

	end := fight.Duration()
	events = append(events, analysis.RawEvent{Timestamp: end, Kind: analysis.EncounterEnd})

	return &Encounter{
		Fight:    fight,
		Events:   events,
		Downtime: downtime.Build(updates, end),
	}, nil
}
