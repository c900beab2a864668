// SPDX-License-Identifier: GPL-3.0-or-later

package memstore

import "time"

// fileRecord is the stored state of a single key: allocated by
// create_open, optionally filled in by a later content store.
type fileRecord struct {
	fid     uint64
	key     string
	size    *uint64
	mtime   *time.Time
	content []byte
}

// domain holds every key created within one tracker domain in an
// unordered map; keys are sorted at read time where order matters
// (e.g. list_keys).
type domain struct {
	name  string
	files map[string]*fileRecord
}

func newDomain(name string) *domain {
	return &domain{name: name, files: make(map[string]*fileRecord)}
}
