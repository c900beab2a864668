// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"net/url"
	"strings"
)

// DecodeRequest parses a single request line (without its trailing
// CRLF) into a typed [Request]. Parsing never panics: any byte string
// yields either a Request or a specific [*Error] (§8 "parse totality").
//
// Empty input decodes to [ErrUnknownCommand] with an empty Command,
// matching the §8 boundary case for a bare CRLF request line.
func DecodeRequest(line []byte) (Request, *Error) {
	s := string(line)
	if s == "" {
		return nil, UnknownCommand("")
	}

	op, rest, _ := strings.Cut(s, " ")
	a := parseArgs(rest)

	switch Op(op) {
	case OpCreateDomain:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		return &CreateDomainRequest{Domain: domain}, nil

	case OpCreateOpen:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		key, err := a.requiredString("key", NoKey())
		if err != nil {
			return nil, err
		}
		return &CreateOpenRequest{
			Domain:    domain,
			Key:       key,
			MultiDest: a.boolValue("multi_dest", false),
			Size:      a.optionalInt("size"),
		}, nil

	case OpCreateClose:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		key, err := a.requiredString("key", NoKey())
		if err != nil {
			return nil, err
		}
		fid, err := a.requiredInt("fid", NoFid())
		if err != nil {
			return nil, err
		}
		devid, err := a.requiredInt("devid", NoDevid())
		if err != nil {
			return nil, err
		}
		path, err := a.requiredURL("path", NoPath())
		if err != nil {
			return nil, err
		}
		return &CreateCloseRequest{
			Domain:   domain,
			Key:      key,
			Fid:      fid,
			Devid:    devid,
			Path:     path,
			Checksum: a.optionalString("checksum"),
		}, nil

	case OpGetPaths:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		key, err := a.requiredString("key", NoKey())
		if err != nil {
			return nil, err
		}
		return &GetPathsRequest{
			Domain:    domain,
			Key:       key,
			NoVerify:  a.boolValue("noverify", false),
			PathCount: a.optionalInt("pathcount"),
		}, nil

	case OpFileInfo:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		key, err := a.requiredString("key", NoKey())
		if err != nil {
			return nil, err
		}
		return &FileInfoRequest{Domain: domain, Key: key}, nil

	case OpRename:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		fromKey, err := a.requiredString("from_key", NoKey())
		if err != nil {
			return nil, err
		}
		toKey, err := a.requiredString("to_key", NoKey())
		if err != nil {
			return nil, err
		}
		return &RenameRequest{Domain: domain, FromKey: fromKey, ToKey: toKey}, nil

	case OpUpdateClass:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		key, err := a.requiredString("key", NoKey())
		if err != nil {
			return nil, err
		}
		class, err := a.requiredString("class", NoClass())
		if err != nil {
			return nil, err
		}
		return &UpdateClassRequest{Domain: domain, Key: key, Class: class}, nil

	case OpDelete:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		key, err := a.requiredString("key", NoKey())
		if err != nil {
			return nil, err
		}
		return &DeleteRequest{Domain: domain, Key: key}, nil

	case OpListKeys:
		domain, err := a.requiredString("domain", NoDomain())
		if err != nil {
			return nil, err
		}
		return &ListKeysRequest{
			Domain: domain,
			Prefix: a.optionalString("prefix"),
			After:  a.optionalString("after"),
			Limit:  a.optionalInt("limit"),
		}, nil

	case OpNoop:
		return &NoopRequest{}, nil

	default:
		return nil, UnknownCommand(op)
	}
}

// RenderLine renders either resp or err (exactly one must be non-nil)
// as a complete wire line, CRLF included.
func RenderLine(resp Response, err *Error) []byte {
	if err != nil {
		return append([]byte(err.render()), '\r', '\n')
	}
	return append([]byte("OK "+renderArgs(resp.Args())), '\r', '\n')
}

// renderArgs joins an ordered key/value list into "&"-joined
// "k=v" pairs, percent-encoding each component (§4.1: spaces become
// "+", "/" becomes "%2F").
func renderArgs(pairs []kv) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}
