package fflogs

import (
	"context"
	"fmt"
	"hash/fnv"

	"ffxiv_cadence/analysis"
	"ffxiv_cadence/downtime"

	"github.com/pkg/errors"
)

const pageLimit = 10000

// Events walks every page of filter between the fight bounds.
func (c *Client) Events(ctx context.Context, fight *Fight, filter EventFilter, fn func(page []eventEntry) error) error {
	tmplData := struct {
		Code      string
		FightID   int
		StartTime int64
		EndTime   int64
		Filter    EventFilter
		Limit     int
	}{
		Code:      fight.Code,
		FightID:   fight.ID,
		StartTime: fight.StartTime,
		EndTime:   fight.EndTime,
		Filter:    filter,
		Limit:     pageLimit,
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		h := fnv.New128a()
		fmt.Fprintf(
			h,
			"%s_fid_%d_%s___st_%d_et_%d",
			fight.Code, fight.ID, filter.Name,
			tmplData.StartTime, tmplData.EndTime,
		)

		var page eventPage
		if c.pages == nil || !c.pages.Load(h, &page) {
			var resp respReportEvents
			err := c.CallGraphQL(ctx, tmplReportEvents, &tmplData, &resp)
			if err != nil {
				return err
			}
			if resp.ReportData.Report == nil {
				return errors.Wrapf(ErrFightNotFound, "report %s", fight.Code)
			}

			page = resp.ReportData.Report.Events
			if c.pages != nil {
				c.pages.Save(h, &page)
			}
		}

		err := fn(page.Data)
		if err != nil {
			return err
		}

		if page.NextPageTimestamp == nil || *page.NextPageTimestamp <= tmplData.StartTime {
			return nil
		}
		tmplData.StartTime = *page.NextPageTimestamp
	}
}

// mapEvent converts one FF Logs event into the core model. Timestamps are
// rebased to fightStart.
func mapEvent(e eventEntry, fightStart int64) (analysis.RawEvent, bool) {
	ev := analysis.RawEvent{
		Timestamp: e.Timestamp - fightStart,
		ActorID:   e.SourceID,
		AbilityID: e.AbilityGameID,
	}

	switch e.Type {
	case "begincast":
		ev.Kind = analysis.BeginCast
	case "cast":
		ev.Kind = analysis.Commit
	case "applybuff":
		ev.Kind = analysis.ModifierApply
		ev.ActorID = e.TargetID
	case "removebuff":
		ev.Kind = analysis.ModifierRemove
		ev.ActorID = e.TargetID
	default:
		return ev, false
	}
	return ev, true
}

func mapTargetability(e eventEntry, fightStart int64) (downtime.Update, bool) {
	if e.Type != "targetabilityupdate" || e.Targetable == nil {
		return downtime.Update{}, false
	}
	return downtime.Update{
		Timestamp:  e.Timestamp - fightStart,
		ActorID:    e.SourceID,
		Targetable: *e.Targetable != 0,
	}, true
}
