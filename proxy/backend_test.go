// SPDX-License-Identifier: GPL-3.0-or-later

package proxy

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// startFakeUpstream runs a minimal one-shot tracker that answers every
// create_domain request with an OK and every other request with a
// fixed unknown_key error, closing after the first connection ends.
func startFakeUpstream(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		for {
			line, err := tracker.ReadLine(r)
			if err != nil {
				return
			}
			req, decodeErr := tracker.DecodeRequest(line)
			if decodeErr != nil {
				conn.Write(tracker.RenderLine(nil, decodeErr))
				continue
			}
			switch r2 := req.(type) {
			case *tracker.CreateDomainRequest:
				conn.Write(tracker.RenderLine(&tracker.CreateDomainResponse{Domain: r2.Domain}, nil))
			default:
				conn.Write(tracker.RenderLine(nil, tracker.UnknownKey("nope")))
			}
		}
	}()

	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func TestProxyBackendCreateDomain(t *testing.T) {
	addr := startFakeUpstream(t)
	b := New([]string{addr}, nil)
	defer b.Stop()

	resp, err := b.CreateDomain(context.Background(), &tracker.CreateDomainRequest{Domain: "d1"})
	require.Nil(t, err)
	assert.Equal(t, "d1", resp.Domain)
}

func TestProxyBackendPropagatesUpstreamError(t *testing.T) {
	addr := startFakeUpstream(t)
	b := New([]string{addr}, nil)
	defer b.Stop()

	_, err := b.GetPaths(context.Background(), &tracker.GetPathsRequest{Domain: "d1", Key: "k1"})
	require.NotNil(t, err)
	assert.Equal(t, "unknown_key", err.ErrorKind())
}

func TestProxyBackendNoUpstreamAvailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close() // nothing listening anymore

	b := New([]string{addr}, nil)
	defer b.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, cerr := b.CreateDomain(ctx, &tracker.CreateDomainRequest{Domain: "d1"})
	require.NotNil(t, cerr)
}
