package analysispool

import (
	"context"
	"fmt"
	"io"
	"time"

	"ffxiv_cadence/report"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var websockEmptyClosure = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")

// Do serves one websocket client: ready, request, queue position, progress
// and finally the rendered report or an error.
func (p *Pool) Do(ctx context.Context, ws *websocket.Conn) {
	ctx, ctxCancel := context.WithCancel(ctx)
	defer ctxCancel()

	defer ws.Close()

	err := ws.WriteMessage(websocket.TextMessage, eventReady)
	if err != nil {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
		return
	}

	q := &queueData{
		ws:         ws,
		ctx:        ctx,
		ctxCancel:  ctxCancel,
		chanResult: make(chan *report.Statistic, 1),
	}

	ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	err = ws.ReadJSON(&q.req)
	if err != nil {
		fmt.Printf("%+v\n", errors.WithStack(err))
		return
	}
	ws.SetReadDeadline(time.Time{})

	go func() {
		for {
			_, r, err := ws.NextReader()
			if err != nil {
				ctxCancel()
				return
			}

			_, err = io.Copy(io.Discard, r)
			if err != nil && err != io.EOF {
				ctxCancel()
				return
			}
		}
	}()

	if !q.req.Validate() {
		q.Error()
		return
	}

	////////////////////////////////////////////////////////////////////////////////////////////////////

	var stat *report.Statistic
	if p.svc.opt.Results != nil && p.svc.opt.Results.Load(p.svc.resultHash(&q.req), &stat) && stat != nil {
		q.Succ(stat)
	} else {
		go func() {
			ticker := time.NewTicker(5 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					q.msgLock.Lock()
					err := ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second))
					q.msgLock.Unlock()
					if err != nil {
						q.fail(err)
						return
					}

				case <-ctx.Done():
					return
				}
			}
		}()

		p.enqueue(q)

		select {
		case stat = <-q.chanResult:
		case <-ctx.Done():
			return
		}

		if stat == nil {
			q.Error()
		} else {
			q.Succ(stat)
		}
	}

	q.msgLock.Lock()
	err = ws.WriteMessage(websocket.CloseMessage, websockEmptyClosure)
	q.msgLock.Unlock()
	if err != nil && err != websocket.ErrCloseSent {
		fmt.Printf("%+v\n", errors.WithStack(err))
	}

	select {
	case <-time.After(time.Second):
	case <-ctx.Done():
	}
}
