// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorRoundTrip(t *testing.T) {
	cases := []*Error{
		NoDomain(),
		UnregDomain("d1"),
		DomainExists("d1"),
		NoKey(),
		UnknownKey("k1"),
		KeyExists("k1"),
		NoClass(),
		NoDevid(),
		NoFid(),
		NoPath(),
		UnknownCommand("frobnicate"),
		Other("some_custom_token", "custom description"),
	}
	for _, orig := range cases {
		t.Run(orig.ErrorKind(), func(t *testing.T) {
			parsed := parseError(orig.ErrorKind(), orig.description())
			assert.Equal(t, orig.ErrorKind(), parsed.ErrorKind())
		})
	}
}

func TestErrorImplementsError(t *testing.T) {
	var err error = UnknownKey("missing")
	assert.Contains(t, err.Error(), "unknown_key")
	assert.Contains(t, err.Error(), "missing")
}

func TestOtherErrorPreservesUnknownToken(t *testing.T) {
	e := parseError("some_future_token", "something new")
	assert.Equal(t, "some_future_token", e.ErrorKind())
}
