// SPDX-License-Identifier: GPL-3.0-or-later

package evented

import "errors"

// token identifies a slot in the connection [slab]. It doubles as the
// user-data value attached to every fd registered with the poller, so
// a ready event maps straight back to its connection with no separate
// lookup table. listenerToken is reserved for the listening socket,
// which never occupies a slab slot.
type token int32

const listenerToken token = -1

// event is a bitmask of I/O readiness conditions (§4.6 "registered I/O
// interest (readable/writable/hup/error)").
type event uint32

const (
	eventRead event = 1 << iota
	eventWrite
	eventHup
	eventErr
)

// readyEvent is one fired readiness notification: tok identifies the
// registered fd (via its [token]), and events is the bitmask of
// conditions observed.
type readyEvent struct {
	tok    token
	events event
}

// poller abstracts the OS-specific edge-triggered, one-shot readiness
// mechanism §4.6 requires. poller_linux.go provides the only real
// implementation (Linux epoll); poller_notlinux.go reports
// [ErrPlatformUnsupported] everywhere else.
//
// Every method is called only from the reactor goroutine; poller
// implementations need not be safe for concurrent use.
type poller interface {
	// Register arms fd under tok for interest, one-shot. fd must not
	// already be registered.
	Register(fd int, tok token, interest event) error

	// Rearm re-arms a registered fd for a (possibly different)
	// interest set, one-shot, per §4.6's "re-registers ... one-shot".
	Rearm(fd int, tok token, interest event) error

	// Deregister removes fd from the poller. Safe to call even if fd
	// was never registered.
	Deregister(fd int) error

	// Wait blocks until at least one event is ready (or the poller's
	// own wake-up fd fires), appending ready events to dst and
	// returning the extended slice.
	Wait(dst []readyEvent) ([]readyEvent, error)

	// Wake unblocks a concurrent Wait call; used to deliver
	// notifications produced off the reactor goroutine (§9 "bridge
	// non-blocking I/O thread with blocking backend calls").
	Wake() error

	// Close releases the poller's kernel resources.
	Close() error
}

// ErrPlatformUnsupported is returned by [New] on platforms without a
// poller implementation (anything other than Linux).
var ErrPlatformUnsupported = errors.New("evented: reactor requires a Linux epoll backend")
