package analysispool

import (
	"context"
	"fmt"
	"hash"
	"log"
	"time"

	"ffxiv_cadence/analysis"
	"ffxiv_cadence/cache"
	"ffxiv_cadence/ffxiv"
	"ffxiv_cadence/fflogs"
	"ffxiv_cadence/report"
	"ffxiv_cadence/share"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

const ResultExpires = time.Hour

var ErrInvalidRequest = errors.New("invalid request")

type Fetcher interface {
	FetchFight(ctx context.Context, code string, fightID int, progress func(format string, args ...interface{})) (*fflogs.Encounter, error)
}

type Options struct {
	Workers int

	// DriftBuffer is used as given; 0 flags any drift.
	DriftBuffer   int64
	HistogramStep int64
	ModeDecimals  int

	// Results caches finished reports. nil disables the cache.
	Results *cache.Storage
}

type Service struct {
	fetcher Fetcher
	rules   *ffxiv.SkillSets
	opt     Options
}

func NewService(fetcher Fetcher, rules *ffxiv.SkillSets, opt Options) *Service {
	if rules == nil {
		rules = ffxiv.Default
	}
	return &Service{
		fetcher: fetcher,
		rules:   rules,
		opt:     opt,
	}
}

// Analyze runs the whole pipeline for one request, using the result cache
// when possible.
func (s *Service) Analyze(ctx context.Context, req *Request, progress func(string)) (*report.Statistic, error) {
	if !req.Validate() {
		return nil, ErrInvalidRequest
	}
	if progress == nil {
		progress = func(string) {}
	}

	h := s.resultHash(req)

	var stat *report.Statistic
	if s.opt.Results != nil && s.opt.Results.Load(h, &stat) && stat != nil {
		return stat, nil
	}

	enc, err := s.fetcher.FetchFight(ctx, req.Report, req.Fight, func(format string, args ...interface{}) {
		progress(fmt.Sprintf(format, args...))
	})
	if err != nil {
		if !share.IsContextClosedError(err) && !errors.Is(err, fflogs.ErrFightNotFound) {
			sentry.CaptureException(err)
			fmt.Printf("%+v\n", errors.WithStack(err))
		}
		return nil, err
	}

	progress("[3 / 3] 분석 중...")
	stat, err = s.analyze(ctx, req, enc)
	if err != nil {
		return nil, err
	}

	if s.opt.Results != nil {
		s.opt.Results.Save(h, stat)
	}
	return stat, nil
}

func (s *Service) analyze(ctx context.Context, req *Request, enc *fflogs.Encounter) (*report.Statistic, error) {
	actors := selectActors(enc.Fight.Actors, req.Actors)

	in := &analysis.RunInput{
		Actors:      actors,
		Events:      enc.Events,
		Rules:       s.rules,
		JobModifier: ffxiv.JobSpeedModifier,
		DriftSlots:  ffxiv.DriftSlots,
		Downtime:    enc.Downtime,
		DriftBuffer: s.opt.DriftBuffer,
		Workers:     s.opt.Workers,

		DisplayRounding: analysis.NearestMultiple{Step: float64(s.opt.HistogramStep)},
		DisplaySkip:     analysis.SkipTwo,
		ModeRounding:    analysis.CeilDecimals{Places: s.opt.ModeDecimals},
		ModeSkip:        analysis.SkipOne,
	}

	results := analysis.Run(ctx, in)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Err != nil {
			log.Printf("Actor %s(%d): %v", res.Actor.Name, res.Actor.ID, res.Err)
		}
	}

	header := report.Header{
		Code:     enc.Fight.Code,
		FightID:  enc.Fight.ID,
		Name:     enc.Fight.Name,
		Kill:     enc.Fight.Kill,
		Duration: enc.Fight.Duration(),
		Downtime: enc.Downtime.Total(),
	}
	return report.Build(header, results, s.rules), nil
}

// resultHash keys a finished report by request and by every option that
// changes its content.
func (s *Service) resultHash(req *Request) hash.Hash {
	h := req.Hash()
	fmt.Fprint(
		h,
		s.opt.DriftBuffer, "|||",
		s.opt.HistogramStep, "|||",
		s.opt.ModeDecimals, "|||",
	)
	return h
}

func selectActors(all []analysis.Actor, want []int) []analysis.Actor {
	if len(want) == 0 {
		return all
	}

	wantSet := make(map[int]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}

	r := make([]analysis.Actor, 0, len(want))
	for _, actor := range all {
		if _, ok := wantSet[actor.ID]; ok {
			r = append(r, actor)
		}
	}
	return r
}
