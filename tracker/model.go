// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import "time"

// FileInfo is the metadata (and, in the reference backend, payload) of
// a stored blob.
type FileInfo struct {
	// Fid is a numeric identifier stable across reads of the same key
	// within a backend's lifetime. See §9 open question 2: the
	// reference backend's allocator is not a production-grade one.
	Fid uint64

	Domain string
	Key    string

	// Size is the blob's length in bytes, if known.
	Size *uint64

	// Mtime is the last-modified time, UTC, second resolution.
	Mtime *time.Time

	// Content holds the payload in the in-memory reference backend.
	// Real backends leave this nil; content lives elsewhere.
	Content []byte

	// Class is the storage class name, default "default".
	Class string

	// Devcount is the number of devices the blob is replicated onto.
	Devcount int

	// ReplicationPolicy is an opaque policy string, echoed verbatim.
	ReplicationPolicy string
}
