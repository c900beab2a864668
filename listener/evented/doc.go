// SPDX-License-Identifier: GPL-3.0-or-later

// Package evented implements the single-reactor, worker-pool tracker
// listener (§4.6): one goroutine owns a listening socket and a bounded
// slab of accepted connections, driving them through an edge-triggered,
// one-shot readiness poller so the reactor never blocks on I/O; a fixed
// pool of worker goroutines runs backend calls on the reactor's behalf
// so the reactor never blocks on those either.
//
// The reactor is only available on platforms with an epoll backend
// (poller_linux.go, "linux" build tag). On other unix platforms [New]
// returns [ErrPlatformUnsupported]; on non-unix platforms [Listener]
// and [New] are not built at all (listener_unix.go, "unix" build tag).
package evented
