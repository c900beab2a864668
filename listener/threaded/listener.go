// SPDX-License-Identifier: GPL-3.0-or-later

package threaded

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/bassosimone/safeconn"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// Listener accepts TCP connections and spawns one goroutine per
// connection, each running its own blocking read/dispatch/write loop.
// It has no connection limit; compare package listener/evented, which
// bounds concurrency with a fixed connection slab and worker pool.
type Listener struct {
	ln      net.Listener
	tracker *tracker.Tracker
	logger  tracker.SLogger
}

// New wraps ln, dispatching every accepted connection's request lines
// onto t. logger may be nil, in which case [tracker.DefaultSLogger] is
// used.
func New(ln net.Listener, t *tracker.Tracker, logger tracker.SLogger) *Listener {
	if logger == nil {
		logger = tracker.DefaultSLogger()
	}
	return &Listener{ln: ln, tracker: t, logger: logger}
}

// Run accepts connections until ctx is canceled or Accept fails. It
// always closes the underlying listener before returning.
func (l *Listener) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.ln.Close()
			return err
		}
		go l.handleConn(ctx, conn)
	}
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn) {
	remote := safeconn.RemoteAddr(conn)
	l.logger.Info("new connection",
		slog.String("remoteAddr", remote),
		slog.String("localAddr", safeconn.LocalAddr(conn)),
		slog.String("protocol", safeconn.Network(conn)),
	)
	defer func() {
		conn.Close()
		l.logger.Info("connection closed", slog.String("remoteAddr", remote))
	}()

	r := bufio.NewReader(conn)
	for {
		line, err := tracker.ReadLFLine(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.logger.Info("read error",
					slog.String("remoteAddr", remote),
					slog.String("err", err.Error()),
				)
			}
			return
		}

		out := l.tracker.Dispatch(ctx, line)
		if _, err := conn.Write(out); err != nil {
			l.logger.Info("write error",
				slog.String("remoteAddr", remote),
				slog.String("err", err.Error()),
			)
			return
		}
	}
}
