// SPDX-License-Identifier: GPL-3.0-or-later

// Package proxy implements a [tracker.TrackerBackend] that forwards
// every request to one of a configured set of upstream trackers over a
// single persistent connection, owned by a dedicated goroutine.
//
// This mirrors the original backend's connection_thread design, with
// one simplification: the original cached a per-caller-thread sender
// in a thread_local so each OS thread only looked it up once. Go
// channels are safe to share across goroutines without that caching,
// so every [Backend] method call just sends on the shared channel.
package proxy
