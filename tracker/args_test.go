// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsFirstWins(t *testing.T) {
	a := parseArgs("k=one&k=two")
	v, err := a.requiredString("k", NoKey())
	require.Nil(t, err)
	assert.Equal(t, "one", v)
}

func TestParseArgsEmptyInput(t *testing.T) {
	a := parseArgs("")
	assert.Nil(t, a.optionalString("anything"))
}

func TestParseArgsSkipsMalformedPair(t *testing.T) {
	a := parseArgs("&k=v&")
	v, err := a.requiredString("k", NoKey())
	require.Nil(t, err)
	assert.Equal(t, "v", v)
}

func TestRequiredIntRejectsNonDecimal(t *testing.T) {
	a := parseArgs("fid=not_a_number")
	_, err := a.requiredInt("fid", NoFid())
	require.NotNil(t, err)
	assert.Equal(t, "no_fid", err.ErrorKind())
}

func TestRequiredURLRejectsNonHTTP(t *testing.T) {
	a := parseArgs("path=ftp%3A%2F%2Fexample.com%2Ffile")
	_, err := a.requiredURL("path", NoPath())
	require.NotNil(t, err)
	assert.Equal(t, "no_path", err.ErrorKind())
}

func TestRequiredURLAcceptsHTTP(t *testing.T) {
	a := parseArgs("path=http%3A%2F%2Fexample.com%2Ffile")
	v, err := a.requiredURL("path", NoPath())
	require.Nil(t, err)
	assert.Equal(t, "http://example.com/file", v)
}

func TestOptionalIntAbsentIsNil(t *testing.T) {
	a := parseArgs("other=1")
	assert.Nil(t, a.optionalInt("missing"))
}

func TestBoolValueCaseInsensitive(t *testing.T) {
	a := parseArgs("flag=TRUE")
	assert.True(t, a.boolValue("flag", false))
}

func TestBoolValueAbsentUsesDefault(t *testing.T) {
	a := parseArgs("")
	assert.True(t, a.boolValue("flag", true))
	assert.False(t, a.boolValue("flag", false))
}

func TestBoolValueUnrecognizedIsFalse(t *testing.T) {
	a := parseArgs("flag=yes")
	assert.False(t, a.boolValue("flag", true))
}
