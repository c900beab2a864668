// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"net/url"
	"strconv"
	"strings"
)

// args holds decoded request arguments with first-wins duplicate
// resolution (§4.1: "duplicates resolved by first-wins; any subsequent
// value for the same key is ignored"), and the typed extraction rules
// every request variant's decoder is built from.
type args struct {
	values map[string]string
}

// parseArgs parses a "&"-joined sequence of form-urlencoded "k=v"
// pairs. A missing/empty string is valid and parses to no arguments.
func parseArgs(raw string) args {
	values := make(map[string]string)
	if raw == "" {
		return args{values: values}
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		if _, seen := values[key]; seen {
			continue // first-wins
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		values[key] = val
	}
	return args{values: values}
}

// requiredString extracts a non-blank string value, returning err if
// the key is missing or its (trimmed) value is blank.
func (a args) requiredString(key string, err *Error) (string, *Error) {
	v, ok := a.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", err
	}
	return v, nil
}

// requiredInt extracts a non-negative 64-bit integer value, returning
// err if the key is missing or not decimal.
func (a args) requiredInt(key string, err *Error) (uint64, *Error) {
	v, ok := a.values[key]
	if !ok || v == "" {
		return 0, err
	}
	n, parseErr := strconv.ParseUint(v, 10, 64)
	if parseErr != nil {
		return 0, err
	}
	return n, nil
}

// requiredURL extracts an http-scheme URL, returning err if the key is
// missing, unparsable, or not http.
func (a args) requiredURL(key string, err *Error) (string, *Error) {
	v, ok := a.values[key]
	if !ok || v == "" {
		return "", err
	}
	u, parseErr := url.Parse(v)
	if parseErr != nil || u.Scheme != "http" {
		return "", err
	}
	return v, nil
}

// optionalString extracts a string value if present; absent yields nil.
// A present-but-blank value passes through as an empty string.
func (a args) optionalString(key string) *string {
	v, ok := a.values[key]
	if !ok {
		return nil
	}
	return &v
}

// optionalInt extracts a non-negative integer value if present and
// decimal; absent or malformed yields nil.
func (a args) optionalInt(key string) *uint64 {
	v, ok := a.values[key]
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// boolValue extracts a boolean: present and (case-insensitively) one
// of "true"/"t"/"1" is true; present otherwise is false; absent is def.
func (a args) boolValue(key string, def bool) bool {
	v, ok := a.values[key]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "t", "1":
		return true
	default:
		return false
	}
}
