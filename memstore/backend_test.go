// SPDX-License-Identifier: GPL-3.0-or-later

package memstore

import (
	"bytes"
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	u, err := url.Parse("http://store.example/base")
	require.NoError(t, err)
	return New(u)
}

func TestCreateDomain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	resp, err := s.CreateDomain(ctx, &tracker.CreateDomainRequest{Domain: "d1"})
	require.Nil(t, err)
	assert.Equal(t, "d1", resp.Domain)

	_, err = s.CreateDomain(ctx, &tracker.CreateDomainRequest{Domain: "d1"})
	require.NotNil(t, err)
	assert.Equal(t, "domain_exists", err.ErrorKind())
}

func TestCreateOpenFidAssignment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	resp1, err := s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "k1"})
	require.Nil(t, err)
	assert.Equal(t, uint64(1), resp1.Fid)
	assert.Equal(t, "http://store.example/base/d/d1/k/k1", resp1.Paths[1])

	resp2, err := s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d2", Key: "k2"})
	require.Nil(t, err)
	assert.Equal(t, uint64(2), resp2.Fid)
}

func TestCreateOpenReusesExistingKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "k1"})
	require.Nil(t, err)

	second, err := s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "k1"})
	require.Nil(t, err)
	assert.Equal(t, first.Fid, second.Fid)
}

func TestGetPathsUnknownKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, cerr := s.CreateDomain(ctx, &tracker.CreateDomainRequest{Domain: "d1"})
	require.Nil(t, cerr)

	_, err := s.GetPaths(ctx, &tracker.GetPathsRequest{Domain: "d1", Key: "missing"})
	require.NotNil(t, err)
	assert.Equal(t, "unknown_key", err.ErrorKind())
}

func TestRenameKeyExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _ = s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "a"})
	_, _ = s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "b"})

	_, err := s.Rename(ctx, &tracker.RenameRequest{Domain: "d1", FromKey: "a", ToKey: "b"})
	require.NotNil(t, err)
	assert.Equal(t, "key_exists", err.ErrorKind())
}

func TestRenameSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _ = s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "a"})

	_, err := s.Rename(ctx, &tracker.RenameRequest{Domain: "d1", FromKey: "a", ToKey: "b"})
	require.Nil(t, err)

	_, err = s.GetPaths(ctx, &tracker.GetPathsRequest{Domain: "d1", Key: "a"})
	assert.Equal(t, "unknown_key", err.ErrorKind())

	_, err = s.GetPaths(ctx, &tracker.GetPathsRequest{Domain: "d1", Key: "b"})
	assert.Nil(t, err)
}

func TestListKeysPrefixAfterLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, k := range []string{"a/1", "a/2", "a/3", "b/1"} {
		_, _ = s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: k})
	}

	resp, err := s.ListKeys(ctx, &tracker.ListKeysRequest{Domain: "d1"})
	require.Nil(t, err)
	assert.Equal(t, []string{"a/1", "a/2", "a/3", "b/1"}, resp.Keys)

	prefix := "a/"
	resp, err = s.ListKeys(ctx, &tracker.ListKeysRequest{Domain: "d1", Prefix: &prefix})
	require.Nil(t, err)
	assert.Equal(t, []string{"a/1", "a/2", "a/3"}, resp.Keys)

	after := "a/1"
	resp, err = s.ListKeys(ctx, &tracker.ListKeysRequest{Domain: "d1", After: &after})
	require.Nil(t, err)
	assert.Equal(t, []string{"a/2", "a/3", "b/1"}, resp.Keys)

	limit := uint64(1)
	resp, err = s.ListKeys(ctx, &tracker.ListKeysRequest{Domain: "d1", Limit: &limit})
	require.Nil(t, err)
	assert.Equal(t, []string{"a/1"}, resp.Keys)
}

func TestStoreAndGetContent(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	_, err := s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "k1"})
	require.Nil(t, err)

	sterr := s.StoreBytesContent("d1", "k1", []byte("hello world"))
	require.Nil(t, sterr)

	meta, mderr := s.FileMetadata("d1", "k1")
	require.Nil(t, mderr)
	assert.Equal(t, uint64(11), meta.Size)
	assert.Equal(t, fixed, meta.Mtime)

	var buf bytes.Buffer
	require.Nil(t, s.GetContent("d1", "k1", &buf))
	assert.Equal(t, "hello world", buf.String())
}

func TestFileMetadataNoContentYet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateOpen(ctx, &tracker.CreateOpenRequest{Domain: "d1", Key: "k1"})
	require.Nil(t, err)

	_, mderr := s.FileMetadata("d1", "k1")
	require.NotNil(t, mderr)
}

func TestURLForKeyFiltersEmptySegments(t *testing.T) {
	s := newTestStore(t)
	got := s.URLForKey("d1", "/a//b/")
	assert.Equal(t, "http://store.example/base/d/d1/k/a/b", got)
}
