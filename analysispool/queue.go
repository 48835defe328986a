package analysispool

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"

	"ffxiv_cadence/report"
	"ffxiv_cadence/share"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Pool runs queued requests one at a time.
type Pool struct {
	svc *Service

	queueLock sync.Mutex
	queue     []*queueData
	queueWake chan struct{}
}

func NewPool(svc *Service) *Pool {
	p := &Pool{
		svc:       svc,
		queue:     make([]*queueData, 0, 16),
		queueWake: make(chan struct{}, 1),
	}
	go p.queueWorker()
	return p
}

type queueData struct {
	req Request

	ws        *websocket.Conn
	ctx       context.Context
	ctxCancel func()

	chanResult chan *report.Statistic

	msgLock sync.Mutex
}

var (
	eventRespBufferPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 16*1024))
		},
	}

	eventReady = []byte(`{"event":"ready"}`)
	eventStart = []byte(`{"event":"start"}`)
	eventError = []byte(`{"event":"error"}`)
)

func (p *Pool) enqueue(q *queueData) {
	p.queueLock.Lock()
	defer p.queueLock.Unlock()

	p.queue = append(p.queue, q)
	q.Reorder(len(p.queue))

	select {
	case p.queueWake <- struct{}{}:
	default:
	}
}

func (p *Pool) queueWorker() {
	var q *queueData

	for {
		q = nil

		p.queueLock.Lock()
		if len(p.queue) > 0 {
			q = p.queue[0]

			for i := 1; i < len(p.queue); i++ {
				go p.queue[i].Reorder(i)
				p.queue[i-1] = p.queue[i]
			}
			p.queue[len(p.queue)-1] = nil
			p.queue = p.queue[:len(p.queue)-1]
		}
		p.queueLock.Unlock()
		if q == nil {
			<-p.queueWake
			continue
		}

		if q.ctx.Err() != nil {
			q.chanResult <- nil
			continue
		}

		log.Printf("Start: %s fight %d", q.req.Report, q.req.Fight)
		q.Start()

		stat, err := p.svc.Analyze(q.ctx, &q.req, q.Progress)
		if err != nil {
			stat = nil
			if !share.IsContextClosedError(err) {
				log.Printf("Failed: %s fight %d: %v", q.req.Report, q.req.Fight, err)
			}
		}

		log.Printf("End: %s fight %d", q.req.Report, q.req.Fight)
		select {
		case <-q.ctx.Done():
		case q.chanResult <- stat:
		}
	}
}

func (q *queueData) MessageJson(resp interface{}) error {
	buf := eventRespBufferPool.Get().(*bytes.Buffer)
	defer eventRespBufferPool.Put(buf)

	buf.Reset()

	err := jsoniter.NewEncoder(buf).Encode(resp)
	if err != nil {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
		return err
	}

	return q.MessageBytes(buf.Bytes())
}

func (q *queueData) MessageBytes(data []byte) error {
	q.msgLock.Lock()
	defer q.msgLock.Unlock()

	return q.ws.WriteMessage(websocket.TextMessage, data)
}

func (q *queueData) fail(err error) {
	if err != nil && err != websocket.ErrCloseSent {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
	}
	q.ctxCancel()
}

func (q *queueData) Reorder(order int) {
	resp := struct {
		Event string `json:"event"`
		Data  int    `json:"data"`
	}{
		Event: "waiting",
		Data:  order,
	}

	if err := q.MessageJson(&resp); err != nil {
		q.fail(err)
	}
}

func (q *queueData) Start() {
	if err := q.MessageBytes(eventStart); err != nil {
		q.fail(err)
	}
}

func (q *queueData) Progress(s string) {
	resp := struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}{
		Event: "progress",
		Data:  s,
	}

	if err := q.MessageJson(&resp); err != nil {
		q.fail(err)
	}
}

func (q *queueData) Error() {
	if err := q.MessageBytes(eventError); err != nil {
		q.fail(err)
	}
}

func (q *queueData) Succ(stat *report.Statistic) {
	buf := eventRespBufferPool.Get().(*bytes.Buffer)
	defer eventRespBufferPool.Put(buf)

	buf.Reset()
	err := report.Render(buf, stat, q.req.Format)
	if err != nil {
		q.fail(err)
		return
	}

	resp := struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}{
		Event: "complete",
		Data:  share.B2s(buf.Bytes()),
	}

	if err := q.MessageJson(&resp); err != nil {
		q.fail(err)
	}
}
