// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import "strconv"

// RenderRequest encodes req back onto the wire (without a trailing
// CRLF), the mirror image of [DecodeRequest]. It exists for callers
// that forward a decoded request to another tracker, such as the
// proxy backend.
func RenderRequest(req Request) []byte {
	op := string(req.Op())
	var pairs []kv

	switch r := req.(type) {
	case *CreateDomainRequest:
		pairs = []kv{{"domain", r.Domain}}
	case *CreateOpenRequest:
		pairs = []kv{{"domain", r.Domain}, {"key", r.Key}}
		if r.MultiDest {
			pairs = append(pairs, kv{"multi_dest", "1"})
		}
		if r.Size != nil {
			pairs = append(pairs, kv{"size", strconv.FormatUint(*r.Size, 10)})
		}
	case *CreateCloseRequest:
		pairs = []kv{
			{"domain", r.Domain},
			{"key", r.Key},
			{"fid", strconv.FormatUint(r.Fid, 10)},
			{"devid", strconv.FormatUint(r.Devid, 10)},
			{"path", r.Path},
		}
		if r.Checksum != nil {
			pairs = append(pairs, kv{"checksum", *r.Checksum})
		}
	case *GetPathsRequest:
		pairs = []kv{{"domain", r.Domain}, {"key", r.Key}}
		if r.NoVerify {
			pairs = append(pairs, kv{"noverify", "1"})
		}
		if r.PathCount != nil {
			pairs = append(pairs, kv{"pathcount", strconv.FormatUint(*r.PathCount, 10)})
		}
	case *FileInfoRequest:
		pairs = []kv{{"domain", r.Domain}, {"key", r.Key}}
	case *RenameRequest:
		pairs = []kv{{"domain", r.Domain}, {"from_key", r.FromKey}, {"to_key", r.ToKey}}
	case *UpdateClassRequest:
		pairs = []kv{{"domain", r.Domain}, {"key", r.Key}, {"class", r.Class}}
	case *DeleteRequest:
		pairs = []kv{{"domain", r.Domain}, {"key", r.Key}}
	case *ListKeysRequest:
		pairs = []kv{{"domain", r.Domain}}
		if r.Prefix != nil {
			pairs = append(pairs, kv{"prefix", *r.Prefix})
		}
		if r.After != nil {
			pairs = append(pairs, kv{"after", *r.After})
		}
		if r.Limit != nil {
			pairs = append(pairs, kv{"limit", strconv.FormatUint(*r.Limit, 10)})
		}
	case *NoopRequest:
		// no fields
	}

	if len(pairs) == 0 {
		return []byte(op)
	}
	return []byte(op + " " + renderArgs(pairs))
}
