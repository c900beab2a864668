// SPDX-License-Identifier: GPL-3.0-or-later

package proxy

import (
	"bufio"
	"context"
	"log/slog"
	"math/rand"
	"net"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// callRequest is one in-flight call onto the connection task: Line is
// the encoded wire request (without CRLF), and Reply delivers exactly
// one [callReply].
type callRequest struct {
	line  []byte
	reply chan callReply
}

// callReply carries either a rendered OK body or a typed protocol
// error back to the caller that issued the [callRequest].
type callReply struct {
	body string
	ok   bool
	err  *tracker.Error
}

// Backend is a [tracker.TrackerBackend] that forwards every call to an
// upstream tracker chosen at random from Upstreams, reconnecting as
// needed. A single goroutine owns the upstream connection; Backend
// methods communicate with it over an unbuffered channel.
type Backend struct {
	upstreams []string
	logger    tracker.SLogger
	dialer    net.Dialer

	reqCh  chan callRequest
	stopCh chan struct{}
	done   chan struct{}
}

var _ tracker.TrackerBackend = (*Backend)(nil)

// New starts the connection task and returns a ready-to-use *Backend.
// upstreams must be non-empty. logger may be nil.
func New(upstreams []string, logger tracker.SLogger) *Backend {
	if logger == nil {
		logger = tracker.DefaultSLogger()
	}
	b := &Backend{
		upstreams: upstreams,
		logger:    logger,
		reqCh:     make(chan callRequest),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go b.connectionTask()
	return b
}

// Stop signals the connection task to close its upstream connection
// and exit, then waits for it to do so. Calling Backend methods after
// Stop returns is not supported.
func (b *Backend) Stop() {
	close(b.stopCh)
	<-b.done
}

// connectionTask owns the upstream socket for the lifetime of the
// Backend, reconnecting to a freshly chosen upstream whenever the
// connection drops.
func (b *Backend) connectionTask() {
	defer close(b.done)

	var conn net.Conn
	var r *bufio.Reader

	closeConn := func() {
		if conn != nil {
			conn.Close()
			conn, r = nil, nil
		}
	}
	defer closeConn()

	for {
		select {
		case <-b.stopCh:
			return
		case req := <-b.reqCh:
			if conn == nil {
				var err error
				conn, err = b.dialer.DialContext(context.Background(), "tcp", b.pickUpstream())
				if err != nil {
					req.reply <- callReply{err: tracker.Other("no_connection", err.Error())}
					continue
				}
				r = bufio.NewReader(conn)
			}

			if _, err := conn.Write(append(append([]byte{}, req.line...), '\r', '\n')); err != nil {
				b.logger.Info("upstream write failed", slog.String("err", err.Error()))
				closeConn()
				req.reply <- callReply{err: tracker.Other("no_connection", err.Error())}
				continue
			}

			line, err := tracker.ReadLine(r)
			if err != nil {
				b.logger.Info("upstream read failed", slog.String("err", err.Error()))
				closeConn()
				req.reply <- callReply{err: tracker.Other("no_connection", err.Error())}
				continue
			}

			ok, body := tracker.ParseReplyLine(line)
			req.reply <- callReply{ok: ok, body: body}
		}
	}
}

func (b *Backend) pickUpstream() string {
	return b.upstreams[rand.Intn(len(b.upstreams))]
}

// call encodes req, round-trips it through the connection task, and
// decodes the typed response for op.
func (b *Backend) call(ctx context.Context, op tracker.Op, req tracker.Request) (tracker.Response, *tracker.Error) {
	reply := make(chan callReply, 1)
	select {
	case b.reqCh <- callRequest{line: tracker.RenderRequest(req), reply: reply}:
	case <-ctx.Done():
		return nil, tracker.Other("canceled", ctx.Err().Error())
	}

	select {
	case r := <-reply:
		if r.err != nil {
			return nil, r.err
		}
		if !r.ok {
			return nil, tracker.DecodeErrorBody(r.body)
		}
		return tracker.DecodeResponse(op, r.body)
	case <-ctx.Done():
		return nil, tracker.Other("canceled", ctx.Err().Error())
	}
}

func (b *Backend) CreateDomain(ctx context.Context, req *tracker.CreateDomainRequest) (*tracker.CreateDomainResponse, *tracker.Error) {
	resp, err := b.call(ctx, tracker.OpCreateDomain, req)
	if err != nil {
		return nil, err
	}
	return resp.(*tracker.CreateDomainResponse), nil
}

func (b *Backend) CreateOpen(ctx context.Context, req *tracker.CreateOpenRequest) (*tracker.CreateOpenResponse, *tracker.Error) {
	resp, err := b.call(ctx, tracker.OpCreateOpen, req)
	if err != nil {
		return nil, err
	}
	return resp.(*tracker.CreateOpenResponse), nil
}

func (b *Backend) CreateClose(ctx context.Context, req *tracker.CreateCloseRequest) (tracker.EmptyResponse, *tracker.Error) {
	_, err := b.call(ctx, tracker.OpCreateClose, req)
	return tracker.EmptyResponse{}, err
}

func (b *Backend) GetPaths(ctx context.Context, req *tracker.GetPathsRequest) (*tracker.GetPathsResponse, *tracker.Error) {
	resp, err := b.call(ctx, tracker.OpGetPaths, req)
	if err != nil {
		return nil, err
	}
	return resp.(*tracker.GetPathsResponse), nil
}

func (b *Backend) FileInfo(ctx context.Context, req *tracker.FileInfoRequest) (*tracker.FileInfoResponse, *tracker.Error) {
	resp, err := b.call(ctx, tracker.OpFileInfo, req)
	if err != nil {
		return nil, err
	}
	return resp.(*tracker.FileInfoResponse), nil
}

func (b *Backend) Rename(ctx context.Context, req *tracker.RenameRequest) (tracker.EmptyResponse, *tracker.Error) {
	_, err := b.call(ctx, tracker.OpRename, req)
	return tracker.EmptyResponse{}, err
}

func (b *Backend) UpdateClass(ctx context.Context, req *tracker.UpdateClassRequest) (tracker.EmptyResponse, *tracker.Error) {
	_, err := b.call(ctx, tracker.OpUpdateClass, req)
	return tracker.EmptyResponse{}, err
}

func (b *Backend) Delete(ctx context.Context, req *tracker.DeleteRequest) (tracker.EmptyResponse, *tracker.Error) {
	_, err := b.call(ctx, tracker.OpDelete, req)
	return tracker.EmptyResponse{}, err
}

func (b *Backend) ListKeys(ctx context.Context, req *tracker.ListKeysRequest) (*tracker.ListKeysResponse, *tracker.Error) {
	resp, err := b.call(ctx, tracker.OpListKeys, req)
	if err != nil {
		return nil, err
	}
	return resp.(*tracker.ListKeysResponse), nil
}

func (b *Backend) Noop(ctx context.Context, req *tracker.NoopRequest) (tracker.EmptyResponse, *tracker.Error) {
	_, err := b.call(ctx, tracker.OpNoop, req)
	return tracker.EmptyResponse{}, err
}
