// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"fmt"
	"net/url"
)

// Kind is a closed enumeration of protocol-visible error kinds.
//
// Every [Error] carries a Kind; some kinds carry additional context
// (the domain or key name) that is rendered into the description so
// clients can recover it.
type Kind int

const (
	// ErrNoDomain means the request was missing a required domain field.
	ErrNoDomain Kind = iota
	// ErrUnregDomain means the named domain does not exist.
	ErrUnregDomain
	// ErrDomainExists means create_domain named an existing domain.
	ErrDomainExists
	// ErrNoKey means the request was missing a required key field.
	ErrNoKey
	// ErrUnknownKey means the named key does not exist in its domain.
	ErrUnknownKey
	// ErrKeyExists means a rename's destination key already exists.
	ErrKeyExists
	// ErrNoClass means a required class field was missing.
	ErrNoClass
	// ErrNoDevid means a required devid field was missing.
	ErrNoDevid
	// ErrNoFid means a required fid field was missing.
	ErrNoFid
	// ErrNoPath means a required path field was missing or not http.
	ErrNoPath
	// ErrUnknownCommand means the operation token was not recognized.
	ErrUnknownCommand
	// ErrOther is the catch-all kind; Token carries the on-wire token.
	ErrOther
)

// Error is the tracker's closed error type. Every backend operation
// returns either a typed response or an *Error; the dispatcher never
// recovers from one, it renders it onto the wire per §7.
type Error struct {
	Kind Kind

	// Token is the on-wire token for ErrOther, e.g. "poisoned_mutex" or
	// an operation-specific token passed through verbatim from a proxied
	// upstream. Ignored for all other Kinds, which have a fixed token.
	Token string

	// Domain, Key, Command carry the context some kinds render into
	// their description. At most one is set, matching Kind.
	Domain  string
	Key     string
	Command string

	// Description, if non-empty, overrides the default human-readable
	// message (used when round-tripping an error received from an
	// upstream tracker, where only tok+description are known).
	Description string
}

var _ error = (*Error)(nil)

// NoDomain returns an [*Error] of kind [ErrNoDomain].
func NoDomain() *Error { return &Error{Kind: ErrNoDomain} }

// UnregDomain returns an [*Error] of kind [ErrUnregDomain] for domain.
func UnregDomain(domain string) *Error { return &Error{Kind: ErrUnregDomain, Domain: domain} }

// DomainExists returns an [*Error] of kind [ErrDomainExists] for domain.
func DomainExists(domain string) *Error { return &Error{Kind: ErrDomainExists, Domain: domain} }

// NoKey returns an [*Error] of kind [ErrNoKey].
func NoKey() *Error { return &Error{Kind: ErrNoKey} }

// UnknownKey returns an [*Error] of kind [ErrUnknownKey] for key.
func UnknownKey(key string) *Error { return &Error{Kind: ErrUnknownKey, Key: key} }

// KeyExists returns an [*Error] of kind [ErrKeyExists] for key.
func KeyExists(key string) *Error { return &Error{Kind: ErrKeyExists, Key: key} }

// NoClass returns an [*Error] of kind [ErrNoClass].
func NoClass() *Error { return &Error{Kind: ErrNoClass} }

// NoDevid returns an [*Error] of kind [ErrNoDevid].
func NoDevid() *Error { return &Error{Kind: ErrNoDevid} }

// NoFid returns an [*Error] of kind [ErrNoFid].
func NoFid() *Error { return &Error{Kind: ErrNoFid} }

// NoPath returns an [*Error] of kind [ErrNoPath].
func NoPath() *Error { return &Error{Kind: ErrNoPath} }

// UnknownCommand returns an [*Error] of kind [ErrUnknownCommand]. op may
// be empty, matching the "empty input" boundary case in §8.
func UnknownCommand(op string) *Error { return &Error{Kind: ErrUnknownCommand, Command: op} }

// Other returns an [*Error] of kind [ErrOther] with the given on-wire
// token and optional description.
func Other(token, description string) *Error {
	return &Error{Kind: ErrOther, Token: token, Description: description}
}

// ErrorKind returns the stable on-wire token for e, per §7's closed
// token set.
func (e *Error) ErrorKind() string {
	switch e.Kind {
	case ErrNoDomain:
		return "no_domain"
	case ErrUnregDomain:
		return "unreg_domain"
	case ErrDomainExists:
		return "domain_exists"
	case ErrNoKey:
		return "no_key"
	case ErrUnknownKey:
		return "unknown_key"
	case ErrKeyExists:
		return "key_exists"
	case ErrNoClass:
		return "no_class"
	case ErrNoDevid:
		return "no_devid"
	case ErrNoFid:
		return "no_fid"
	case ErrNoPath:
		return "no_path"
	case ErrUnknownCommand:
		return "unknown_command"
	case ErrOther:
		if e.Token != "" {
			return e.Token
		}
		return "other_error"
	default:
		return "other_error"
	}
}

// description returns the human-readable message rendered after the
// token on an ERR line.
func (e *Error) description() string {
	if e.Description != "" {
		return e.Description
	}
	switch e.Kind {
	case ErrNoDomain:
		return "No domain provided"
	case ErrUnregDomain:
		return fmt.Sprintf("Domain name %q invalid / not found", e.Domain)
	case ErrDomainExists:
		return fmt.Sprintf("That domain already exists: %q", e.Domain)
	case ErrNoKey:
		return "No key provided"
	case ErrUnknownKey:
		return fmt.Sprintf("Unknown key: %q", e.Key)
	case ErrKeyExists:
		return fmt.Sprintf("Target key name %q already exists, can't overwrite.", e.Key)
	case ErrNoClass:
		return "No class provided"
	case ErrNoDevid:
		return "No device ID provided"
	case ErrNoFid:
		return "No file ID provided"
	case ErrNoPath:
		return "No path provided"
	case ErrUnknownCommand:
		if e.Command == "" {
			return "Unknown command"
		}
		return fmt.Sprintf("Unknown command: %q", e.Command)
	case ErrOther:
		return ""
	default:
		return ""
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if d := e.description(); d != "" {
		return fmt.Sprintf("%s: %s", e.ErrorKind(), d)
	}
	return e.ErrorKind()
}

// render produces the "ERR tok description" line body (without the
// trailing CRLF), percent-encoding the description per §4.1.
func (e *Error) render() string {
	tok := e.ErrorKind()
	desc := e.description()
	if desc == "" {
		return "ERR " + tok + " "
	}
	return "ERR " + tok + " " + url.QueryEscape(desc)
}

// parseError reconstructs an *Error from a decoded "tok description"
// pair, used by the proxy backend to round-trip an upstream's error
// line back into a typed [*Error]. Unknown tokens become [ErrOther]
// with the token preserved verbatim, per §4.2.
func parseError(tok, description string) *Error {
	switch tok {
	case "no_domain":
		return NoDomain()
	case "unreg_domain":
		return &Error{Kind: ErrUnregDomain, Description: description}
	case "domain_exists":
		return &Error{Kind: ErrDomainExists, Description: description}
	case "no_key":
		return NoKey()
	case "unknown_key":
		return &Error{Kind: ErrUnknownKey, Description: description}
	case "key_exists":
		return &Error{Kind: ErrKeyExists, Description: description}
	case "no_class":
		return NoClass()
	case "no_devid":
		return NoDevid()
	case "no_fid":
		return NoFid()
	case "no_path":
		return NoPath()
	case "unknown_command":
		return &Error{Kind: ErrUnknownCommand, Description: description}
	default:
		return Other(tok, description)
	}
}
