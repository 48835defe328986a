package report

import (
	"sort"
	"time"

	"ffxiv_cadence/analysis"
	"ffxiv_cadence/ffxiv"
)

type Header struct {
	Code     string `json:"code"`
	FightID  int    `json:"fight_id"`
	Name     string `json:"name"`
	Kill     bool   `json:"kill"`
	Duration int64  `json:"duration"`
	Downtime int64  `json:"downtime"`
}

type Statistic struct {
	Header

	UpdatedAt time.Time `json:"updated_at"`

	Actors []*StatisticActor `json:"actors"`
}

type StatisticActor struct {
	analysis.Actor

	Uses int `json:"uses"`

	Histogram []HistogramRow `json:"histogram"`

	Estimated float64 `json:"estimated"` // 초
	Average   float64 `json:"avg"`       // 밀리초
	Median    float64 `json:"med"`       // 밀리초

	Drift *StatisticDrift `json:"drift,omitempty"`

	Error string `json:"error,omitempty"`
}

type HistogramRow struct {
	Interval float64 `json:"interval"`
	Count    int     `json:"count"`
}

type StatisticDrift struct {
	Cycles  []DriftRow `json:"cycles"`
	Flagged int        `json:"flagged"`
	Total   int64      `json:"total"`
}

type DriftRow struct {
	ActionID   int    `json:"action_id"`
	ActionName string `json:"action_name"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	IdealEnd   int64  `json:"ideal_end"`
	Downtime   int64  `json:"downtime"`
	Drift      int64  `json:"drift"`
	Drifted    bool   `json:"drifted"`
}

// Build turns per-actor results into the report. Actors are ordered by job.
func Build(header Header, results []analysis.ActorResult, rules analysis.Rules) *Statistic {
	stat := &Statistic{
		Header:    header,
		UpdatedAt: time.Now(),
		Actors:    make([]*StatisticActor, 0, len(results)),
	}

	for i := range results {
		stat.Actors = append(stat.Actors, buildActor(&results[i], rules))
	}

	sort.SliceStable(
		stat.Actors,
		func(i, k int) bool {
			return ffxiv.JobOrder[stat.Actors[i].Job] < ffxiv.JobOrder[stat.Actors[k].Job]
		},
	)

	return stat
}

func buildActor(res *analysis.ActorResult, rules analysis.Rules) *StatisticActor {
	sa := &StatisticActor{
		Actor: res.Actor,
	}
	if res.Err != nil {
		sa.Error = res.Err.Error()
	}

	sa.Uses = len(res.Uses)
	sa.Histogram = Rows(res.Histogram)
	sa.Estimated = Mode(res.ModeHistogram)
	sa.Average, sa.Median = avgMed(res.Intervals)

	if res.Drift != nil && len(res.Drift.Cycles) > 0 {
		sa.Drift = buildDrift(res.Drift, rules)
	}

	return sa
}

func buildDrift(dr *analysis.DriftResult, rules analysis.Rules) *StatisticDrift {
	sd := &StatisticDrift{
		Cycles:  make([]DriftRow, 0, len(dr.Cycles)),
		Flagged: len(dr.Drifted),
	}

	for _, c := range dr.Cycles {
		row := DriftRow{
			ActionID: c.ActionID,
			Start:    c.Start,
			End:      c.End,
			IdealEnd: c.IdealEnd,
			Downtime: c.Downtime,
			Drift:    c.Drift,
			Drifted:  c.Drifted,
		}
		if rules != nil {
			if action, ok := rules.Action(c.ActionID); ok {
				row.ActionName = action.Name
			}
		}
		sd.Cycles = append(sd.Cycles, row)
		sd.Total += c.Drift
	}

	return sd
}

// Rows sorts the histogram by interval.
func Rows(h analysis.Histogram) []HistogramRow {
	rows := make([]HistogramRow, 0, len(h))
	for k, v := range h {
		rows = append(rows, HistogramRow{Interval: k, Count: v})
	}
	sort.Slice(rows, func(i, k int) bool { return rows[i].Interval < rows[k].Interval })
	return rows
}

// Mode returns the key with the highest count. Ties go to the smaller key.
func Mode(h analysis.Histogram) float64 {
	var (
		best  float64
		count int
	)
	for k, v := range h {
		if v > count || (v == count && k < best) {
			best, count = k, v
		}
	}
	return best
}

func avgMed(data []float64) (avg float64, med float64) {
	if len(data) == 0 {
		return 0, 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	avg = sum / float64(len(sorted))

	n := len(sorted)
	if n%2 == 0 {
		med = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		med = sorted[n/2]
	}

	return avg, med
}
