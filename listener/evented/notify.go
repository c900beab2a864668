// SPDX-License-Identifier: GPL-3.0-or-later

package evented

// notifyKind tags a [notification]'s payload (§9 "a single notification
// channel carrying a tagged union {Shutdown | CloseConnection(token) |
// Response(token, result)}").
type notifyKind int

const (
	notifyResponse notifyKind = iota
	notifyCloseConnection
	notifyShutdown
)

// notification is the sole message type flowing from worker goroutines
// (and the shutdown watcher) back to the reactor goroutine. tok and
// resp are only meaningful for notifyResponse; tok alone is meaningful
// for notifyCloseConnection; neither is used for notifyShutdown.
type notification struct {
	kind notifyKind
	tok  token
	resp []byte
}
