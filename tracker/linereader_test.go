// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("noop\r\n"))
		line, err := ReadLine(r)
		require.NoError(t, err)
		assert.Equal(t, "noop", string(line))
	})

	t.Run("multiple lines", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("noop\r\ncreate_domain domain=d1\r\n"))
		line1, err := ReadLine(r)
		require.NoError(t, err)
		assert.Equal(t, "noop", string(line1))

		line2, err := ReadLine(r)
		require.NoError(t, err)
		assert.Equal(t, "create_domain domain=d1", string(line2))
	})

	t.Run("lone CR does not terminate", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("foo\rbar\r\n"))
		line, err := ReadLine(r)
		require.NoError(t, err)
		assert.Equal(t, "foo\rbar", string(line))
	})

	t.Run("eof without delimiter", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("incomplete"))
		_, err := ReadLine(r)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("eof with no bytes at all", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader(""))
		line, err := ReadLine(r)
		assert.ErrorIs(t, err, io.EOF)
		assert.Nil(t, line)
	})

	t.Run("empty line", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("\r\n"))
		line, err := ReadLine(r)
		require.NoError(t, err)
		assert.Equal(t, "", string(line))
	})
}

func TestReadLFLine(t *testing.T) {
	t.Run("CRLF terminated", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("noop\r\n"))
		line, err := ReadLFLine(r)
		require.NoError(t, err)
		assert.Equal(t, "noop", string(line))
	})

	t.Run("bare LF terminated, no CR", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("noop\ncreate_domain domain=d1\n"))
		line1, err := ReadLFLine(r)
		require.NoError(t, err)
		assert.Equal(t, "noop", string(line1))

		line2, err := ReadLFLine(r)
		require.NoError(t, err)
		assert.Equal(t, "create_domain domain=d1", string(line2))
	})

	t.Run("eof without delimiter", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("incomplete"))
		_, err := ReadLFLine(r)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("eof with no bytes at all", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader(""))
		line, err := ReadLFLine(r)
		assert.ErrorIs(t, err, io.EOF)
		assert.Nil(t, line)
	})

	t.Run("empty line", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("\r\n"))
		line, err := ReadLFLine(r)
		require.NoError(t, err)
		assert.Equal(t, "", string(line))
	})
}
