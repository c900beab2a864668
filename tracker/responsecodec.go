// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseReplyLine splits a complete wire reply (without CRLF) into its
// OK/ERR marker and body, the mirror image of [RenderLine]. It is used
// by callers that read raw bytes back from another tracker, such as
// the proxy backend.
func ParseReplyLine(line []byte) (ok bool, body string) {
	s := string(line)
	if rest, found := strings.CutPrefix(s, "OK "); found {
		return true, rest
	}
	if rest, found := strings.CutPrefix(s, "OK"); found {
		return true, rest
	}
	if rest, found := strings.CutPrefix(s, "ERR "); found {
		return false, rest
	}
	rest, _ := strings.CutPrefix(s, "ERR")
	return false, rest
}

// DecodeErrorBody parses an ERR line's body ("tok description") into
// an [*Error].
func DecodeErrorBody(body string) *Error {
	tok, desc, _ := strings.Cut(body, " ")
	unescaped, err := url.QueryUnescape(desc)
	if err != nil {
		unescaped = desc
	}
	return parseError(tok, unescaped)
}

// DecodeResponse parses an OK line's body into the typed [Response]
// for op, the mirror image of [Response.Args] for the corresponding
// request variant.
func DecodeResponse(op Op, body string) (Response, *Error) {
	a := parseArgs(body)

	switch op {
	case OpCreateDomain:
		domain, _ := a.requiredString("domain", nil)
		return &CreateDomainResponse{Domain: domain}, nil

	case OpCreateOpen:
		fid, err := a.requiredInt("fid", Other("bad_reply", "upstream create_open reply missing fid"))
		if err != nil {
			return nil, err
		}
		devcountVal, err := a.requiredInt("dev_count", Other("bad_reply", "upstream create_open reply missing dev_count"))
		if err != nil {
			return nil, err
		}
		paths := map[uint64]string{}
		for key := range a.values {
			id, ok := strings.CutPrefix(key, "devid_")
			if !ok {
				continue
			}
			n, err := strconv.ParseUint(id, 10, 64)
			if err != nil {
				continue
			}
			if p, ok := a.values["path_"+id]; ok {
				paths[n] = p
			}
		}
		return &CreateOpenResponse{Fid: fid, Devcount: int(devcountVal), Paths: paths}, nil

	case OpCreateClose, OpRename, OpUpdateClass, OpDelete, OpNoop:
		return EmptyResponse{}, nil

	case OpGetPaths:
		count, _ := a.requiredInt("paths", nil)
		paths := make([]string, 0, count)
		for i := uint64(1); i <= count; i++ {
			if p, ok := a.values["path"+strconv.FormatUint(i, 10)]; ok {
				paths = append(paths, p)
			}
		}
		return &GetPathsResponse{Paths: paths}, nil

	case OpFileInfo:
		domain, _ := a.requiredString("domain", nil)
		key, _ := a.requiredString("key", nil)
		length, _ := a.requiredInt("length", nil)
		fid, _ := a.requiredInt("fid", nil)
		devcountVal, _ := a.requiredInt("devcount", nil)
		class, _ := a.requiredString("class", nil)
		return &FileInfoResponse{
			Domain:   domain,
			Key:      key,
			Length:   length,
			Fid:      fid,
			Devcount: int(devcountVal),
			Class:    class,
		}, nil

	case OpListKeys:
		count, _ := a.requiredInt("key_count", nil)
		keys := make([]string, 0, count)
		for i := uint64(1); i <= count; i++ {
			if k, ok := a.values["key_"+strconv.FormatUint(i, 10)]; ok {
				keys = append(keys, k)
			}
		}
		return &ListKeysResponse{Keys: keys}, nil

	default:
		return EmptyResponse{}, nil
	}
}
