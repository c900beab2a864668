// SPDX-License-Identifier: GPL-3.0-or-later

package evented

import (
	"context"
	"sync"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// job is one request line submitted by the reactor to the worker pool
// (§4.6 "Worker pool"): ctx is the reactor's run context, tok addresses
// the connection the response belongs to, and line is the request
// bytes without its CRLF.
type job struct {
	ctx context.Context
	tok token
	line []byte
}

// workerPool runs a fixed number of goroutines, each pulling jobs off
// a shared channel and dispatching them through t, then delivering the
// rendered response back to the reactor via notifyCh as a
// notifyResponse notification. No cross-request ordering is guaranteed
// across different connections; per-connection ordering is preserved
// by the reactor only ever having one dispatched request per
// connection at a time (§5).
type workerPool struct {
	jobs     chan job
	notifyCh chan<- notification
	tracker  *tracker.Tracker
	wg       sync.WaitGroup
}

// newWorkerPool starts n worker goroutines dispatching onto t and
// replying on notifyCh. queueDepth bounds the number of jobs the
// reactor may submit before Submit blocks.
func newWorkerPool(n, queueDepth int, t *tracker.Tracker, notifyCh chan<- notification) *workerPool {
	p := &workerPool{
		jobs:     make(chan job, queueDepth),
		notifyCh: notifyCh,
		tracker:  t,
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.run()
	}
	return p
}

func (p *workerPool) run() {
	defer p.wg.Done()
	for j := range p.jobs {
		out := p.tracker.Dispatch(j.ctx, j.line)
		select {
		case p.notifyCh <- notification{kind: notifyResponse, tok: j.tok, resp: out}:
		case <-j.ctx.Done():
			// The run context was canceled (shutdown); the reactor is
			// tearing down and may no longer be draining notifyCh.
			// Drop the response rather than leak this goroutine.
		}
	}
}

// Submit enqueues j. It blocks if every worker is busy and the queue is
// full, which is a deployment sizing concern, not a reactor one (§5
// "Backpressure").
func (p *workerPool) Submit(j job) {
	p.jobs <- j
}

// Stop closes the job channel so every worker exits once its current
// job (if any) completes, and waits for the last one to finish.
func (p *workerPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
