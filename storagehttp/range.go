// SPDX-License-Identifier: GPL-3.0-or-later

package storagehttp

import (
	"strconv"
	"strings"
)

// byteRange is a single decoded "bytes=" range-spec, one of the three
// forms accepted by [parseRange]: FromTo, AllFrom, or Last.
type byteRange struct {
	kind rangeKind
	from uint64 // valid for kindFromTo, kindAllFrom
	to   uint64 // valid for kindFromTo
	last uint64 // valid for kindLast
}

type rangeKind int

const (
	kindFromTo rangeKind = iota
	kindAllFrom
	kindLast
)

// parseRange parses a "Range" header value, returning ok=false for an
// absent header, a non-bytes unit, or more than one range (matching
// the original's "if there isn't exactly one range, leave the response
// unmodified").
func parseRange(header string) (byteRange, bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, false
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return byteRange{}, false
	}

	if strings.HasPrefix(spec, "-") {
		n, err := strconv.ParseUint(spec[1:], 10, 64)
		if err != nil {
			return byteRange{}, false
		}
		return byteRange{kind: kindLast, last: n}, true
	}

	from, rest, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, false
	}
	fromN, err := strconv.ParseUint(from, 10, 64)
	if err != nil {
		return byteRange{}, false
	}
	if rest == "" {
		return byteRange{kind: kindAllFrom, from: fromN}, true
	}
	toN, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || toN < fromN {
		return byteRange{}, false
	}
	return byteRange{kind: kindFromTo, from: fromN, to: toN}, true
}

// apply slices content per r, returning the sliced body plus the
// inclusive (from, to) bounds to render into a Content-Range header.
// totalLength is always content's original length, before slicing.
func (r byteRange) apply(content []byte) (body []byte, from, to uint64, totalLength uint64) {
	totalLength = uint64(len(content))

	switch r.kind {
	case kindFromTo:
		reqLen := r.to - r.from + 1
		end := r.from + reqLen
		if end > totalLength {
			end = totalLength
		}
		if r.from > totalLength {
			return nil, r.from, r.from, totalLength
		}
		body = content[r.from:end]
		return body, r.from, r.from + uint64(len(body)) - 1, totalLength

	case kindAllFrom:
		if r.from > totalLength {
			return nil, r.from, r.from, totalLength
		}
		body = content[r.from:]
		return body, r.from, r.from + uint64(len(body)) - 1, totalLength

	case kindLast:
		if r.last > totalLength {
			return content, 0, totalLength - 1, totalLength
		}
		from := totalLength - r.last
		body = content[from:]
		return body, from, from + uint64(len(body)) - 1, totalLength

	default:
		return content, 0, totalLength - 1, totalLength
	}
}
