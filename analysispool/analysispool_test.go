package analysispool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ffxiv_cadence/analysis"
	"ffxiv_cadence/cache"
	"ffxiv_cadence/fflogs"
	"ffxiv_cadence/ffxiv"
	"ffxiv_cadence/report"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCode = "abcdEFGH12345678"

type fakeFetcher struct {
	calls  int32
	err    error
	events []analysis.RawEvent
}

func (f *fakeFetcher) FetchFight(ctx context.Context, code string, fightID int, progress func(format string, args ...interface{})) (*fflogs.Encounter, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	progress("fetching %s", code)

	casts := []struct {
		t  int64
		id int
	}{
		{0, 7411}, {2500, 7412}, {5000, 7413}, {7500, 16500}, {10000, 7411}, {12500, 7412},
	}

	enc := &fflogs.Encounter{
		Fight: &fflogs.Fight{
			Code:      code,
			ID:        fightID,
			Name:      "Boss",
			StartTime: 1000,
			EndTime:   61000,
			Actors: []analysis.Actor{
				{ID: 1, Name: "Mch", Job: "Machinist"},
				{ID: 2, Name: "War", Job: "Warrior"},
			},
		},
	}
	if f.events != nil {
		enc.Events = f.events
		return enc, nil
	}
	for _, c := range casts {
		enc.Events = append(enc.Events, analysis.RawEvent{Timestamp: c.t, Kind: analysis.Commit, ActorID: 1, AbilityID: c.id})
	}
	enc.Events = append(enc.Events, analysis.RawEvent{Timestamp: 60000, Kind: analysis.EncounterEnd})

	return enc, nil
}

func newTestService(t *testing.T, f Fetcher) *Service {
	return NewService(f, nil, Options{
		Workers:       2,
		HistogramStep: 10,
		ModeDecimals:  2,
		Results:       cache.NewStorage(t.TempDir(), ResultExpires),
	})
}

func TestRequestValidate(t *testing.T) {
	assert.True(t, (&Request{Report: testCode, Fight: 1}).Validate())
	assert.True(t, (&Request{Report: testCode, Fight: 1, Format: "text"}).Validate())

	assert.False(t, (&Request{Report: "a/b", Fight: 1}).Validate())
	assert.False(t, (&Request{Report: testCode}).Validate())
	assert.False(t, (&Request{Report: testCode, Fight: 1, Format: "html"}).Validate())
}

func TestRequestHashIgnoresActorOrder(t *testing.T) {
	a := (&Request{Report: testCode, Fight: 1, Actors: []int{2, 1}}).Hash().Sum(nil)
	b := (&Request{Report: testCode, Fight: 1, Actors: []int{1, 2}}).Hash().Sum(nil)
	c := (&Request{Report: testCode, Fight: 2, Actors: []int{1, 2}}).Hash().Sum(nil)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestServiceAnalyze(t *testing.T) {
	f := &fakeFetcher{}
	svc := newTestService(t, f)

	var progress []string
	stat, err := svc.Analyze(context.Background(), &Request{Report: testCode, Fight: 3, Actors: []int{1}}, func(s string) {
		progress = append(progress, s)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"fetching " + testCode, "[3 / 3] 분석 중..."}, progress)
	assert.EqualValues(t, 60000, stat.Duration)
	require.Len(t, stat.Actors, 1)

	mch := stat.Actors[0]
	assert.Equal(t, 6, mch.Uses)
	assert.Equal(t, []report.HistogramRow{{Interval: 2500, Count: 4}}, mch.Histogram)
	assert.Equal(t, 2.5, mch.Estimated)
	require.NotNil(t, mch.Drift)
	assert.Zero(t, mch.Drift.Flagged)

	// cached
	_, err = svc.Analyze(context.Background(), &Request{Report: testCode, Fight: 3, Actors: []int{1}}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls))
}

func TestServiceDriftBufferUsedAsGiven(t *testing.T) {
	f := &fakeFetcher{
		events: []analysis.RawEvent{
			{Timestamp: 0, Kind: analysis.Commit, ActorID: 1, AbilityID: ffxiv.SkillIdAirAnchor},
			{Timestamp: 41000, Kind: analysis.Commit, ActorID: 1, AbilityID: ffxiv.SkillIdAirAnchor},
			{Timestamp: 60000, Kind: analysis.EncounterEnd},
		},
	}
	req := &Request{Report: testCode, Fight: 3, Actors: []int{1}}

	cases := []struct {
		buffer  int64
		flagged int
	}{
		{0, 1},
		{999, 1},
		{1000, 0},
		{1500, 0},
	}
	for _, c := range cases {
		svc := NewService(f, nil, Options{Workers: 1, DriftBuffer: c.buffer, HistogramStep: 10, ModeDecimals: 2})

		stat, err := svc.Analyze(context.Background(), req, nil)
		require.NoError(t, err)
		require.Len(t, stat.Actors, 1)
		require.NotNil(t, stat.Actors[0].Drift)
		assert.Equal(t, c.flagged, stat.Actors[0].Drift.Flagged, "buffer %d", c.buffer)
		assert.EqualValues(t, 1000, stat.Actors[0].Drift.Total, "buffer %d", c.buffer)
	}
}

func TestServiceResultCacheKeyedByOptions(t *testing.T) {
	f := &fakeFetcher{}
	results := cache.NewStorage(t.TempDir(), ResultExpires)
	req := &Request{Report: testCode, Fight: 3}

	step10 := NewService(f, nil, Options{Workers: 1, HistogramStep: 10, ModeDecimals: 2, Results: results})
	step20 := NewService(f, nil, Options{Workers: 1, HistogramStep: 20, ModeDecimals: 2, Results: results})
	buffer := NewService(f, nil, Options{Workers: 1, DriftBuffer: 1500, HistogramStep: 10, ModeDecimals: 2, Results: results})

	_, err := step10.Analyze(context.Background(), req, nil)
	require.NoError(t, err)
	_, err = step20.Analyze(context.Background(), req, nil)
	require.NoError(t, err)
	_, err = buffer.Analyze(context.Background(), req, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&f.calls))

	_, err = step10.Analyze(context.Background(), req, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&f.calls))
}

func TestServiceAnalyzeErrors(t *testing.T) {
	f := &fakeFetcher{err: errors.Wrap(fflogs.ErrFightNotFound, "test")}
	svc := newTestService(t, f)

	_, err := svc.Analyze(context.Background(), &Request{Report: "x"}, nil)
	assert.Equal(t, ErrInvalidRequest, err)

	_, err = svc.Analyze(context.Background(), &Request{Report: testCode, Fight: 3}, nil)
	assert.True(t, errors.Is(err, fflogs.ErrFightNotFound))
}

func TestSelectActors(t *testing.T) {
	all := []analysis.Actor{{ID: 1}, {ID: 2}, {ID: 3}}
	assert.Equal(t, all, selectActors(all, nil))
	assert.Equal(t, []analysis.Actor{{ID: 1}, {ID: 3}}, selectActors(all, []int{3, 1, 9}))
}

////////////////////////////////////////////////////////////////////////////////////////////////////

type wsEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialPool(t *testing.T, p *Pool) *websocket.Conn {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		p.Do(r.Context(), ws)
	}))
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvents(t *testing.T, ws *websocket.Conn) []wsEvent {
	var events []wsEvent
	for {
		ws.SetReadDeadline(time.Now().Add(5 * time.Second))

		var ev wsEvent
		err := ws.ReadJSON(&ev)
		if err != nil {
			return events
		}
		events = append(events, ev)
		if ev.Event == "complete" || ev.Event == "error" {
			return events
		}
	}
}

func eventNames(events []wsEvent) []string {
	r := make([]string, 0, len(events))
	for _, ev := range events {
		r = append(r, ev.Event)
	}
	return r
}

func TestPoolDo(t *testing.T) {
	p := NewPool(newTestService(t, &fakeFetcher{}))
	ws := dialPool(t, p)

	var ready wsEvent
	require.NoError(t, ws.ReadJSON(&ready))
	assert.Equal(t, "ready", ready.Event)

	require.NoError(t, ws.WriteJSON(&Request{Report: testCode, Fight: 3}))

	events := readEvents(t, ws)
	assert.Equal(t, []string{"waiting", "start", "progress", "progress", "complete"}, eventNames(events))

	var data string
	require.NoError(t, jsoniter.Unmarshal(events[len(events)-1].Data, &data))

	var stat report.Statistic
	require.NoError(t, jsoniter.UnmarshalFromString(data, &stat))
	assert.Equal(t, testCode, stat.Code)
	assert.Len(t, stat.Actors, 2)
}

func TestPoolDoInvalid(t *testing.T) {
	p := NewPool(newTestService(t, &fakeFetcher{}))
	ws := dialPool(t, p)

	var ready wsEvent
	require.NoError(t, ws.ReadJSON(&ready))
	require.NoError(t, ws.WriteJSON(&Request{Report: "bad"}))

	events := readEvents(t, ws)
	assert.Equal(t, []string{"error"}, eventNames(events))
}

func TestPoolDoFetchError(t *testing.T) {
	p := NewPool(newTestService(t, &fakeFetcher{err: errors.New("upstream")}))
	ws := dialPool(t, p)

	var ready wsEvent
	require.NoError(t, ws.ReadJSON(&ready))
	require.NoError(t, ws.WriteJSON(&Request{Report: testCode, Fight: 3}))

	events := readEvents(t, ws)
	assert.Equal(t, []string{"waiting", "start", "error"}, eventNames(events))
}
