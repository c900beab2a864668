// SPDX-License-Identifier: GPL-3.0-or-later

package evented

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLineNoneBuffered(t *testing.T) {
	c := newConn(1, 0, "peer")
	c.inBuf = []byte("noop")
	_, ok := c.extractLine()
	assert.False(t, ok)
}

func TestExtractLineSingle(t *testing.T) {
	c := newConn(1, 0, "peer")
	c.inBuf = []byte("noop\r\n")
	line, ok := c.extractLine()
	assert.True(t, ok)
	assert.Equal(t, "noop\r\n", string(line))
	assert.Empty(t, c.inBuf)
}

func TestExtractLineSplitAcrossReads(t *testing.T) {
	c := newConn(1, 0, "peer")
	c.inBuf = []byte("no")
	_, ok := c.extractLine()
	assert.False(t, ok)

	c.inBuf = append(c.inBuf, []byte("op\r\n")...)
	line, ok := c.extractLine()
	assert.True(t, ok)
	assert.Equal(t, "noop\r\n", string(line))
}

func TestExtractLinePipelined(t *testing.T) {
	c := newConn(1, 0, "peer")
	c.inBuf = []byte("noop\r\nnoop\r\n")

	line1, ok := c.extractLine()
	assert.True(t, ok)
	assert.Equal(t, "noop\r\n", string(line1))
	assert.Equal(t, "noop\r\n", string(c.inBuf))

	line2, ok := c.extractLine()
	assert.True(t, ok)
	assert.Equal(t, "noop\r\n", string(line2))
	assert.Empty(t, c.inBuf)
}

func TestIndexCRLF(t *testing.T) {
	assert.Equal(t, -1, indexCRLF(nil))
	assert.Equal(t, -1, indexCRLF([]byte("\r")))
	assert.Equal(t, -1, indexCRLF([]byte("no delim")))
	assert.Equal(t, 2, indexCRLF([]byte("ab\r\ncd")))
}
