package fflogs

import (
	"context"
	"sort"

	"ffxiv_cadence/analysis"
	"ffxiv_cadence/ffxiv"

	"github.com/pkg/errors"
)

var ErrFightNotFound = errors.New("fight not found")

// Fight returns the bounds of one fight and the players who took part.
func (c *Client) Fight(ctx context.Context, code string, fightID int) (*Fight, error) {
	tmplData := struct {
		Code    string
		FightID int
	}{
		Code:    code,
		FightID: fightID,
	}

	var resp respReportFight
	err := c.CallGraphQL(ctx, tmplReportFight, &tmplData, &resp)
	if err != nil {
		return nil, err
	}

	report := resp.ReportData.Report
	if report == nil {
		return nil, errors.Wrapf(ErrFightNotFound, "report %s", code)
	}

	for _, fightData := range report.Fights {
		if fightData.ID != fightID {
			continue
		}

		f := &Fight{
			Code:        code,
			ID:          fightData.ID,
			EncounterID: fightData.EncounterID,
			Name:        fightData.Name,
			Kill:        fightData.Kill != nil && *fightData.Kill,
			StartTime:   fightData.StartTime,
			EndTime:     fightData.EndTime,
		}

		friendly := make(map[int]struct{}, len(fightData.FriendlyPlayers))
		for _, id := range fightData.FriendlyPlayers {
			friendly[id] = struct{}{}
		}

		for _, actor := range report.MasterData.Actors {
			if _, ok := friendly[actor.ID]; !ok {
				continue
			}
			job := ffxiv.NormalizeJob(actor.SubType)
			if job == "" {
				continue
			}
			f.Actors = append(f.Actors, analysis.Actor{
				ID:   actor.ID,
				Name: actor.Name,
				Job:  job,
			})
		}
		sort.Slice(f.Actors, func(i, j int) bool { return f.Actors[i].ID < f.Actors[j].ID })

		return f, nil
	}

	return nil, errors.Wrapf(ErrFightNotFound, "report %s fight %d", code, fightID)
}
