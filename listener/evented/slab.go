// SPDX-License-Identifier: GPL-3.0-or-later

package evented

import "errors"

// errTooManyConnections is returned by [slab.insert] when the slab is
// full (§4.6 "Slab exhaustion").
var errTooManyConnections = errors.New("evented: too many connections")

// slab is the fixed-capacity, index-addressed connection table (§4.6
// "Slab"; GLOSSARY "Slab"). Every slot is owned by the reactor
// goroutine; there is no locking.
type slab struct {
	conns []*conn
	free  []token
}

// newSlab returns an empty slab with room for capacity connections.
func newSlab(capacity int) *slab {
	s := &slab{conns: make([]*conn, capacity), free: make([]token, 0, capacity)}
	for i := capacity - 1; i >= 0; i-- {
		s.free = append(s.free, token(i))
	}
	return s
}

// insert claims a free slot for c, assigns it c.token, and returns it.
func (s *slab) insert(c *conn) (token, error) {
	if len(s.free) == 0 {
		return 0, errTooManyConnections
	}
	tok := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.conns[tok] = c
	c.token = tok
	return tok, nil
}

// get returns the connection at tok, or nil if the slot is empty or
// tok is out of range.
func (s *slab) get(tok token) *conn {
	if tok < 0 || int(tok) >= len(s.conns) {
		return nil
	}
	return s.conns[tok]
}

// remove frees tok's slot for reuse.
func (s *slab) remove(tok token) {
	if s.get(tok) == nil {
		return
	}
	s.conns[tok] = nil
	s.free = append(s.free, tok)
}

// all returns every live connection, in no particular order, for
// shutdown iteration (§4.6 "Shutdown").
func (s *slab) all() []*conn {
	out := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
