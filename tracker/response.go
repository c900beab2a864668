// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"sort"
	"strconv"
)

// Response is a per-request-variant typed record that renders to an
// ordered sequence of "key=value" pairs (§4.1). Implementations must
// preserve field order on every call to Args: tests assert the
// position of key_count relative to key_N (§4.1).
type Response interface {
	// Args returns the ordered key/value pairs to render after "OK ".
	Args() []kv
}

// kv is an ordered key/value pair. A plain slice of these (rather than
// a map) is what lets responses guarantee field order on the wire.
type kv struct {
	Key   string
	Value string
}

// EmptyResponse is returned by operations whose success carries no
// fields (create_close, rename, updateclass, delete, noop).
type EmptyResponse struct{}

func (EmptyResponse) Args() []kv { return nil }

// CreateDomainResponse is the create_domain success response.
type CreateDomainResponse struct {
	Domain string
}

func (r *CreateDomainResponse) Args() []kv {
	return []kv{{"domain", r.Domain}}
}

// CreateOpenResponse is the create_open success response. Paths maps
// devid -> path; devids are rendered in ascending order. Its device
// count field is rendered "dev_count" (with underscore), unlike
// file_info's "devcount" — the two operations do not share a field
// name on the wire.
type CreateOpenResponse struct {
	Fid      uint64
	Devcount int
	Paths    map[uint64]string
}

func (r *CreateOpenResponse) Args() []kv {
	devids := make([]uint64, 0, len(r.Paths))
	for id := range r.Paths {
		devids = append(devids, id)
	}
	sort.Slice(devids, func(i, j int) bool { return devids[i] < devids[j] })

	out := make([]kv, 0, 2+2*len(devids))
	out = append(out,
		kv{"fid", strconv.FormatUint(r.Fid, 10)},
		kv{"dev_count", strconv.Itoa(r.Devcount)},
	)
	for _, id := range devids {
		n := strconv.FormatUint(id, 10)
		out = append(out,
			kv{"devid_" + n, n},
			kv{"path_" + n, r.Paths[id]},
		)
	}
	return out
}

// GetPathsResponse is the get_paths success response. Paths is ordered
// and deterministic given (base URL, domain, key) per §3.
type GetPathsResponse struct {
	Paths []string
}

func (r *GetPathsResponse) Args() []kv {
	out := make([]kv, 0, 1+len(r.Paths))
	out = append(out, kv{"paths", strconv.Itoa(len(r.Paths))})
	for i, p := range r.Paths {
		out = append(out, kv{"path" + strconv.Itoa(i+1), p})
	}
	return out
}

// FileInfoResponse is the file_info success response.
type FileInfoResponse struct {
	Domain   string
	Key      string
	Length   uint64
	Fid      uint64
	Devcount int
	Class    string
}

func (r *FileInfoResponse) Args() []kv {
	return []kv{
		{"domain", r.Domain},
		{"key", r.Key},
		{"length", strconv.FormatUint(r.Length, 10)},
		{"fid", strconv.FormatUint(r.Fid, 10)},
		{"devcount", strconv.Itoa(r.Devcount)},
		{"class", r.Class},
	}
}

// ListKeysResponse is the list_keys success response. Keys is already
// limited and ordered by the backend.
type ListKeysResponse struct {
	Keys []string
}

func (r *ListKeysResponse) Args() []kv {
	out := make([]kv, 0, 1+len(r.Keys)+1)
	out = append(out, kv{"key_count", strconv.Itoa(len(r.Keys))})
	for i, k := range r.Keys {
		out = append(out, kv{"key_" + strconv.Itoa(i+1), k})
	}
	if len(r.Keys) > 0 {
		out = append(out, kv{"next_after", r.Keys[len(r.Keys)-1]})
	}
	return out
}
