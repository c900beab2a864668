//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package evented

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// Listener is the single-reactor, worker-pool tracker listener (§4.6).
// One goroutine (the reactor, started by [Listener.Run]) owns the
// listening socket and a bounded [slab] of accepted connections,
// driving all of them through an edge-triggered, one-shot [poller] so
// it never blocks on connection I/O; a fixed [workerPool] runs backend
// calls on its behalf so it never blocks on those either.
//
// Once passed to [New], ln must not be used directly by the caller:
// Listener takes over its underlying file descriptor and closes it on
// shutdown.
type Listener struct {
	ln       net.Listener
	listenFd int
	poller   poller
	slab     *slab
	pool     *workerPool
	notifyCh chan notification
	tracker  *tracker.Tracker
	logger   tracker.SLogger
}

// New returns a *Listener accepting connections on ln, dispatching
// request lines onto t. cfg supplies MaxConnections (the slab
// capacity) and WorkerThreads (the backend worker pool size); cfg may
// be nil, in which case [tracker.NewConfig]'s defaults apply. logger
// may be nil, in which case [tracker.DefaultSLogger] is used.
//
// New fails with [ErrPlatformUnsupported] on any unix platform without
// an epoll backend (everything but Linux), and with an error if ln's
// file descriptor cannot be extracted (ln must wrap a *net.TCPListener
// or another type implementing [syscall.Conn] over a stream socket).
func New(ln net.Listener, t *tracker.Tracker, cfg *tracker.Config, logger tracker.SLogger) (*Listener, error) {
	if cfg == nil {
		cfg = tracker.NewConfig()
	}
	if logger == nil {
		logger = tracker.DefaultSLogger()
	}

	p, err := newPollerPlatform()
	if err != nil {
		return nil, err
	}

	fd, err := listenerFd(ln)
	if err != nil {
		p.Close()
		return nil, err
	}

	l := &Listener{
		ln:       ln,
		listenFd: fd,
		poller:   p,
		slab:     newSlab(cfg.MaxConnections),
		notifyCh: make(chan notification, cfg.MaxConnections),
		tracker:  t,
		logger:   logger,
	}
	l.pool = newWorkerPool(cfg.WorkerThreads, cfg.MaxConnections, t, l.notifyCh)
	return l, nil
}

// listenerFd extracts the raw, already-nonblocking file descriptor
// backing ln, duplicating it so that closing ln later (or Listener's
// own shutdown) does not race the duplicate's lifetime.
func listenerFd(ln net.Listener) (int, error) {
	sc, ok := ln.(syscall.Conn)
	if !ok {
		return 0, fmt.Errorf("evented: listener does not expose a raw file descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	var controlErr error
	err = raw.Control(func(ufd uintptr) {
		fd, controlErr = unix.Dup(int(ufd))
	})
	if err != nil {
		return 0, err
	}
	if controlErr != nil {
		return 0, controlErr
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return 0, err
	}
	return fd, nil
}

// Run starts the reactor loop: it registers the listening socket,
// accepts and services connections, and runs until ctx is canceled or
// an unrecoverable poller error occurs. Run always closes the
// listening socket and stops the worker pool before returning.
func (l *Listener) Run(ctx context.Context) error {
	defer l.pool.Stop()
	defer l.ln.Close()
	defer unix.Close(l.listenFd)
	defer l.poller.Close()

	if err := l.poller.Register(l.listenFd, listenerToken, eventRead); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		select {
		case l.notifyCh <- notification{kind: notifyShutdown}:
		default:
			// A shutdown notification is already queued; Wake alone
			// is enough to make the reactor observe it.
		}
		l.poller.Wake()
	}()

	var events []readyEvent
	shuttingDown := false
	for !shuttingDown {
		var err error
		events, err = l.poller.Wait(events[:0])
		if err != nil {
			return err
		}

		l.drainNotifications(&shuttingDown)

		for _, ev := range events {
			if ev.tok == listenerToken {
				l.acceptLoop()
				continue
			}
			l.handleEvent(ctx, ev)
		}
	}

	l.shutdownAll()
	return ctx.Err()
}

// drainNotifications processes every notification currently queued,
// setting *shuttingDown if a [notifyShutdown] was among them.
func (l *Listener) drainNotifications(shuttingDown *bool) {
	for {
		select {
		case n := <-l.notifyCh:
			l.handleNotification(n)
			if n.kind == notifyShutdown {
				*shuttingDown = true
			}
		default:
			return
		}
	}
}

func (l *Listener) handleNotification(n notification) {
	switch n.kind {
	case notifyShutdown:
		// handled by the caller via the shuttingDown flag.
	case notifyCloseConnection:
		if c := l.slab.get(n.tok); c != nil {
			l.closeConn(c)
		}
	case notifyResponse:
		c := l.slab.get(n.tok)
		if c == nil {
			l.logger.Info("dropping response for closed connection", slog.Int("token", int(n.tok)))
			return
		}
		c.outBuf = append(c.outBuf, n.resp...)
		c.state = stateWriting
		if err := l.poller.Rearm(c.fd, c.token, eventWrite); err != nil {
			l.closeConn(c)
		}
	}
}

// acceptLoop accepts every pending connection on the listening socket,
// stopping at EAGAIN (§4.6 "edge-triggered": a single readable event
// can represent more than one pending connection).
func (l *Listener) acceptLoop() {
	for {
		fd, sa, err := unix.Accept(l.listenFd)
		if err == unix.EAGAIN {
			return
		}
		if err != nil {
			l.logger.Info("accept failed", slog.String("err", err.Error()))
			return
		}
		unix.SetNonblock(fd, true)

		c := newConn(fd, 0, sockaddrString(sa))
		if _, err := l.slab.insert(c); err != nil {
			// §4.6 "Slab exhaustion": close immediately, keep serving.
			l.logger.Info("too many connections, rejecting", slog.String("remoteAddr", c.remoteAddr))
			unix.Close(fd)
			continue
		}
		l.logger.Info("accepted connection", slog.String("remoteAddr", c.remoteAddr))
		if err := l.poller.Register(fd, c.token, eventRead); err != nil {
			l.closeConn(c)
		}
	}
}

func (l *Listener) handleEvent(ctx context.Context, ev readyEvent) {
	c := l.slab.get(ev.tok)
	if c == nil {
		return
	}
	if ev.events&(eventHup|eventErr) != 0 {
		l.closeConn(c)
		return
	}
	if ev.events&eventRead != 0 {
		l.handleReadable(ctx, c)
		if l.slab.get(ev.tok) == nil {
			return // handleReadable may have closed c on EOF/error.
		}
	}
	if ev.events&eventWrite != 0 {
		l.handleWritable(ctx, c)
	}
}

// handleReadable drains every available byte off c.fd, then — if no
// request is currently dispatched and a full CRLF-terminated line is
// buffered — submits it to the worker pool (§4.6 "Read handling").
func (l *Listener) handleReadable(ctx context.Context, c *conn) {
	var buf [4096]byte
	for {
		n, err := unix.Read(c.fd, buf[:])
		if err == unix.EAGAIN {
			break
		}
		if err != nil {
			l.closeConn(c)
			return
		}
		if n == 0 {
			l.closeConn(c)
			return
		}
		c.inBuf = append(c.inBuf, buf[:n]...)
	}

	l.tryDispatch(ctx, c)

	if err := l.poller.Rearm(c.fd, c.token, eventRead); err != nil {
		l.closeConn(c)
	}
}

// tryDispatch submits the next buffered request line on c to the
// worker pool, if one is fully buffered and none is already in flight.
func (l *Listener) tryDispatch(ctx context.Context, c *conn) {
	if c.dispatched {
		return
	}
	line, ok := c.extractLine()
	if !ok {
		return
	}
	c.dispatched = true
	c.state = stateDispatched
	l.pool.Submit(job{ctx: ctx, tok: c.token, line: line[:len(line)-2]})
}

// handleWritable drains as much of c.outBuf as the socket accepts
// (§4.6 "Write handling"). Once fully drained, it clears the in-flight
// flag, re-registers c as readable, and immediately dispatches any
// request already buffered in c.inBuf rather than waiting for another
// readable event.
func (l *Listener) handleWritable(ctx context.Context, c *conn) {
	for len(c.outBuf) > 0 {
		n, err := unix.Write(c.fd, c.outBuf)
		if err == unix.EAGAIN {
			if rerr := l.poller.Rearm(c.fd, c.token, eventWrite); rerr != nil {
				l.closeConn(c)
			}
			return
		}
		if err != nil {
			l.closeConn(c)
			return
		}
		c.outBuf = c.outBuf[n:]
	}

	c.outBuf = nil
	c.dispatched = false
	c.state = stateIdle
	if err := l.poller.Rearm(c.fd, c.token, eventRead); err != nil {
		l.closeConn(c)
		return
	}
	if indexCRLF(c.inBuf) >= 0 {
		l.tryDispatch(ctx, c)
	}
}

func (l *Listener) closeConn(c *conn) {
	l.poller.Deregister(c.fd)
	unix.Close(c.fd)
	l.slab.remove(c.token)
	l.logger.Info("connection closed", slog.String("remoteAddr", c.remoteAddr))
}

// shutdownAll tears down every live connection cleanly (§4.6
// "Shutdown": iterate the slab, shut down each connection, then
// terminate").
func (l *Listener) shutdownAll() {
	for _, c := range l.slab.all() {
		unix.Shutdown(c.fd, unix.SHUT_RDWR)
		l.closeConn(c)
	}
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("[%x]:%d", a.Addr, a.Port)
	default:
		return "unknown"
	}
}
