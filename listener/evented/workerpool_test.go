// SPDX-License-Identifier: GPL-3.0-or-later

package evented

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

type noopOnlyBackend struct{}

func (noopOnlyBackend) CreateDomain(context.Context, *tracker.CreateDomainRequest) (*tracker.CreateDomainResponse, *tracker.Error) {
	return nil, tracker.Other("not_implemented", "")
}
func (noopOnlyBackend) CreateOpen(context.Context, *tracker.CreateOpenRequest) (*tracker.CreateOpenResponse, *tracker.Error) {
	return nil, tracker.Other("not_implemented", "")
}
func (noopOnlyBackend) CreateClose(context.Context, *tracker.CreateCloseRequest) (tracker.EmptyResponse, *tracker.Error) {
	return tracker.EmptyResponse{}, nil
}
func (noopOnlyBackend) GetPaths(context.Context, *tracker.GetPathsRequest) (*tracker.GetPathsResponse, *tracker.Error) {
	return nil, tracker.Other("not_implemented", "")
}
func (noopOnlyBackend) FileInfo(context.Context, *tracker.FileInfoRequest) (*tracker.FileInfoResponse, *tracker.Error) {
	return nil, tracker.Other("not_implemented", "")
}
func (noopOnlyBackend) Rename(context.Context, *tracker.RenameRequest) (tracker.EmptyResponse, *tracker.Error) {
	return tracker.EmptyResponse{}, nil
}
func (noopOnlyBackend) UpdateClass(context.Context, *tracker.UpdateClassRequest) (tracker.EmptyResponse, *tracker.Error) {
	return tracker.EmptyResponse{}, nil
}
func (noopOnlyBackend) Delete(context.Context, *tracker.DeleteRequest) (tracker.EmptyResponse, *tracker.Error) {
	return tracker.EmptyResponse{}, nil
}
func (noopOnlyBackend) ListKeys(context.Context, *tracker.ListKeysRequest) (*tracker.ListKeysResponse, *tracker.Error) {
	return &tracker.ListKeysResponse{}, nil
}
func (noopOnlyBackend) Noop(context.Context, *tracker.NoopRequest) (tracker.EmptyResponse, *tracker.Error) {
	return tracker.EmptyResponse{}, nil
}

func TestWorkerPoolSubmitDispatchesAndNotifies(t *testing.T) {
	tr := tracker.NewTracker(noopOnlyBackend{}, nil)
	notifyCh := make(chan notification, 1)
	p := newWorkerPool(2, 4, tr, notifyCh)
	defer p.Stop()

	p.Submit(job{ctx: context.Background(), tok: token(7), line: []byte("noop")})

	select {
	case n := <-notifyCh:
		assert.Equal(t, notifyResponse, n.kind)
		assert.Equal(t, token(7), n.tok)
		assert.Equal(t, "OK \r\n", string(n.resp))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for worker notification")
	}
}

func TestWorkerPoolStopDrainsInFlightJobs(t *testing.T) {
	tr := tracker.NewTracker(noopOnlyBackend{}, nil)
	notifyCh := make(chan notification, 4)
	p := newWorkerPool(3, 4, tr, notifyCh)

	for i := 0; i < 3; i++ {
		p.Submit(job{ctx: context.Background(), tok: token(i), line: []byte("noop")})
	}
	p.Stop()

	require.Len(t, notifyCh, 3)
}

func TestWorkerPoolDropsResponseOnCanceledContext(t *testing.T) {
	tr := tracker.NewTracker(noopOnlyBackend{}, nil)
	notifyCh := make(chan notification) // unbuffered and undrained
	p := newWorkerPool(1, 1, tr, notifyCh)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Submit(job{ctx: ctx, tok: token(1), line: []byte("noop")})

	// run() must return (via ctx.Done()) instead of blocking forever on
	// a send nobody will ever receive.
	done := make(chan struct{})
	go func() { p.Stop(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker pool did not stop; run() likely blocked on notifyCh send")
	}
}
