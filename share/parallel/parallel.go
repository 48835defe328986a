package parallel

import (
	"context"
	"sync"
)

type Pool interface {
	Reset(ctx context.Context)
	Add(f func(ctx context.Context) error)
	Stop()
	Wait() error
}

type pool struct {
	ctx       context.Context
	ctxCancel func()

	wg sync.WaitGroup

	queue     []func(ctx context.Context) error
	queueLock sync.Mutex

	workers    int
	workersMax int

	errLock   sync.Mutex
	lastError error
}

// New returns a pool running at most workers functions at once. The first
// error returned by a function cancels the pool context.
func New(workers int) Pool {
	if workers < 1 {
		workers = 1
	}
	p := &pool{
		queue:      make([]func(ctx context.Context) error, 0, workers),
		workersMax: workers,
	}
	p.Reset(context.Background())

	return p
}

func (p *pool) Reset(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	p.ctx, p.ctxCancel = context.WithCancel(ctx)

	p.errLock.Lock()
	p.lastError = nil
	p.errLock.Unlock()
}

func (p *pool) Add(f func(ctx context.Context) error) {
	p.wg.Add(1)

	p.queueLock.Lock()
	p.queue = append(p.queue, f)
	if p.workers < p.workersMax {
		p.workers++
		go p.work()
	}
	p.queueLock.Unlock()
}

func (p *pool) Stop() {
	p.ctxCancel()
}

func (p *pool) Wait() error {
	p.wg.Wait()

	p.errLock.Lock()
	defer p.errLock.Unlock()
	return p.lastError
}

func (p *pool) work() {
	var f func(ctx context.Context) error
	for {
		p.queueLock.Lock()
		if len(p.queue) == 0 {
			p.workers--
			p.queueLock.Unlock()
			return
		}

		f = p.queue[0]
		if len(p.queue) > 1 {
			copy(p.queue, p.queue[1:])
		}
		p.queue[len(p.queue)-1] = nil
		p.queue = p.queue[:len(p.queue)-1]
		p.queueLock.Unlock()

		err := f(p.ctx)
		if err != nil {
			p.errLock.Lock()
			if p.lastError == nil {
				p.lastError = err
			}
			p.errLock.Unlock()
			p.ctxCancel()
		}
		p.wg.Done()
	}
}
