// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying a single dispatched request.
//
// The dispatcher attaches a span ID to every log record of one request
// ("dispatching request" and then "request completed" or "request
// failed", or a lone "request decode failed") so that concurrent requests on the worker
// pool (package listener/evented) can be correlated in logs despite
// interleaving.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
