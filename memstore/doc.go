// SPDX-License-Identifier: GPL-3.0-or-later

// Package memstore provides an in-memory reference implementation of
// both [tracker.TrackerBackend] and [tracker.StorageBackend], intended
// for tests and for running a tracker without a real storage tier.
package memstore
