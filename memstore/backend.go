// SPDX-License-Identifier: GPL-3.0-or-later

package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// Store is an in-memory, concurrency-safe implementation of both
// [tracker.TrackerBackend] and [tracker.StorageBackend]. It is grounded
// on the original MemBackend/SyncMemBackend split: Store plays both
// roles at once, since Go's RWMutex makes the split unnecessary.
type Store struct {
	mu       sync.RWMutex
	poisoned *tracker.Error
	domains  map[string]*domain
	baseURL  *url.URL
	timeNow  func() time.Time
}

var (
	_ tracker.TrackerBackend = (*Store)(nil)
	_ tracker.StorageBackend = (*Store)(nil)
)

// New returns an empty *Store serving content URLs rooted at baseURL.
func New(baseURL *url.URL) *Store {
	return &Store{
		domains: make(map[string]*domain),
		baseURL: baseURL,
		timeNow: time.Now,
	}
}

// WithClock overrides the store's time source (for deterministic
// tests); it must be called before any write operation.
func (s *Store) WithClock(timeNow func() time.Time) *Store {
	s.timeNow = timeNow
	return s
}

// withRead runs fn holding a read lock, converting any panic into a
// poisoned-store error and recording it so that every later call,
// read or write, fails the same way until the process restarts. This
// stands in for the panicking-mutex behavior of a Rust RwLock, which
// has no direct Go equivalent.
func withRead[T any](s *Store, fn func() (T, *tracker.Error)) (res T, err *tracker.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if s.poisoned != nil {
		return zero, s.poisoned
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = tracker.Other("poisoned_mutex", fmt.Sprintf("backend panicked: %v", r))
			res, err = zero, s.poisoned
		}
	}()
	return fn()
}

func withWrite[T any](s *Store, fn func() (T, *tracker.Error)) (res T, err *tracker.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.poisoned != nil {
		return zero, s.poisoned
	}
	defer func() {
		if r := recover(); r != nil {
			s.poisoned = tracker.Other("poisoned_mutex", fmt.Sprintf("backend panicked: %v", r))
			res, err = zero, s.poisoned
		}
	}()
	return fn()
}

func (s *Store) domainOrEmpty(name string) *domain {
	if d, ok := s.domains[name]; ok {
		return d
	}
	return newDomain(name)
}

// CreateDomain implements [tracker.TrackerBackend].
func (s *Store) CreateDomain(ctx context.Context, req *tracker.CreateDomainRequest) (*tracker.CreateDomainResponse, *tracker.Error) {
	return withWrite(s, func() (*tracker.CreateDomainResponse, *tracker.Error) {
		if _, ok := s.domains[req.Domain]; ok {
			return nil, tracker.DomainExists(req.Domain)
		}
		s.domains[req.Domain] = newDomain(req.Domain)
		return &tracker.CreateDomainResponse{Domain: req.Domain}, nil
	})
}

// CreateOpen implements [tracker.TrackerBackend]. fid is assigned as
// len(domains)+1, matching the original backend's quirk: fids are not
// globally unique per file, only per create_open call count at the
// moment the domain set has a given size. Preserved intentionally.
func (s *Store) CreateOpen(ctx context.Context, req *tracker.CreateOpenRequest) (*tracker.CreateOpenResponse, *tracker.Error) {
	return withWrite(s, func() (*tracker.CreateOpenResponse, *tracker.Error) {
		fid := uint64(len(s.domains) + 1)
		d, ok := s.domains[req.Domain]
		if !ok {
			d = newDomain(req.Domain)
			s.domains[req.Domain] = d
		}
		if existing, ok := d.files[req.Key]; ok {
			fid = existing.fid
		} else {
			d.files[req.Key] = &fileRecord{fid: fid, key: req.Key}
		}
		return &tracker.CreateOpenResponse{
			Fid:      fid,
			Devcount: 1,
			Paths:    map[uint64]string{1: s.urlForKeyLocked(req.Domain, req.Key)},
		}, nil
	})
}

// CreateClose implements [tracker.TrackerBackend]. There is nothing to
// verify: the content may already have been stored to the returned URL
// by the caller, and this reference backend trusts that.
func (s *Store) CreateClose(ctx context.Context, req *tracker.CreateCloseRequest) (tracker.EmptyResponse, *tracker.Error) {
	return withRead(s, func() (tracker.EmptyResponse, *tracker.Error) {
		return tracker.EmptyResponse{}, nil
	})
}

// GetPaths implements [tracker.TrackerBackend].
func (s *Store) GetPaths(ctx context.Context, req *tracker.GetPathsRequest) (*tracker.GetPathsResponse, *tracker.Error) {
	return withRead(s, func() (*tracker.GetPathsResponse, *tracker.Error) {
		d := s.domainOrEmpty(req.Domain)
		if _, ok := d.files[req.Key]; !ok {
			return nil, tracker.UnknownKey(req.Key)
		}
		return &tracker.GetPathsResponse{Paths: []string{s.urlForKeyLocked(req.Domain, req.Key)}}, nil
	})
}

// FileInfo implements [tracker.TrackerBackend].
func (s *Store) FileInfo(ctx context.Context, req *tracker.FileInfoRequest) (*tracker.FileInfoResponse, *tracker.Error) {
	return withRead(s, func() (*tracker.FileInfoResponse, *tracker.Error) {
		d := s.domainOrEmpty(req.Domain)
		f, ok := d.files[req.Key]
		if !ok {
			return nil, tracker.UnknownKey(req.Key)
		}
		var length uint64
		if f.size != nil {
			length = *f.size
		}
		return &tracker.FileInfoResponse{
			Fid:      f.fid,
			Devcount: 1,
			Length:   length,
			Domain:   req.Domain,
			Class:    "default",
			Key:      f.key,
		}, nil
	})
}

// Rename implements [tracker.TrackerBackend].
func (s *Store) Rename(ctx context.Context, req *tracker.RenameRequest) (tracker.EmptyResponse, *tracker.Error) {
	return withWrite(s, func() (tracker.EmptyResponse, *tracker.Error) {
		d, ok := s.domains[req.Domain]
		if !ok {
			d = newDomain(req.Domain)
			s.domains[req.Domain] = d
		}
		f, ok := d.files[req.FromKey]
		if !ok {
			return tracker.EmptyResponse{}, tracker.UnknownKey(req.FromKey)
		}
		if _, ok := d.files[req.ToKey]; ok {
			return tracker.EmptyResponse{}, tracker.KeyExists(req.ToKey)
		}
		delete(d.files, req.FromKey)
		f.key = req.ToKey
		d.files[req.ToKey] = f
		return tracker.EmptyResponse{}, nil
	})
}

// UpdateClass implements [tracker.TrackerBackend]. The reference
// backend does not model storage classes at all: this is an
// unconditional no-op acknowledgment, regardless of whether domain or
// key exist, matching the wire contract's empty error column for
// updateclass.
func (s *Store) UpdateClass(ctx context.Context, req *tracker.UpdateClassRequest) (tracker.EmptyResponse, *tracker.Error) {
	return tracker.EmptyResponse{}, nil
}

// Delete implements [tracker.TrackerBackend].
func (s *Store) Delete(ctx context.Context, req *tracker.DeleteRequest) (tracker.EmptyResponse, *tracker.Error) {
	return withWrite(s, func() (tracker.EmptyResponse, *tracker.Error) {
		d, ok := s.domains[req.Domain]
		if !ok {
			return tracker.EmptyResponse{}, tracker.UnknownKey(req.Key)
		}
		if _, ok := d.files[req.Key]; !ok {
			return tracker.EmptyResponse{}, tracker.UnknownKey(req.Key)
		}
		delete(d.files, req.Key)
		return tracker.EmptyResponse{}, nil
	})
}

// ListKeys implements [tracker.TrackerBackend]. Keys are returned in
// ascending order, filtered by prefix and by the after cursor, capped
// at limit (default 1000), matching the original skip_while/take chain.
func (s *Store) ListKeys(ctx context.Context, req *tracker.ListKeysRequest) (*tracker.ListKeysResponse, *tracker.Error) {
	return withRead(s, func() (*tracker.ListKeysResponse, *tracker.Error) {
		d := s.domainOrEmpty(req.Domain)

		after := ""
		if req.After != nil {
			after = *req.After
		}
		prefix := ""
		if req.Prefix != nil {
			prefix = *req.Prefix
		}
		limit := uint64(1000)
		if req.Limit != nil {
			limit = *req.Limit
		}

		all := make([]string, 0, len(d.files))
		for k := range d.files {
			all = append(all, k)
		}
		sort.Strings(all)

		out := make([]string, 0, len(all))
		for _, k := range all {
			if k <= after || !strings.HasPrefix(k, prefix) {
				continue
			}
			if uint64(len(out)) >= limit {
				break
			}
			out = append(out, k)
		}
		return &tracker.ListKeysResponse{Keys: out}, nil
	})
}

// Noop implements [tracker.TrackerBackend].
func (s *Store) Noop(ctx context.Context, req *tracker.NoopRequest) (tracker.EmptyResponse, *tracker.Error) {
	return tracker.EmptyResponse{}, nil
}

// URLForKey implements [tracker.StorageBackend].
func (s *Store) URLForKey(domain, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.urlForKeyLocked(domain, key)
}

// urlForKeyLocked joins the store's base URL with "d/<domain>/k/<key
// segments>", filtering empty path segments (including a leading "/"
// split and any "//" inside key). Grounded on url_for_key in the
// original backend.
func (s *Store) urlForKeyLocked(domain, key string) string {
	u := *s.baseURL
	segments := strings.Split(u.Path, "/")
	segments = append(segments, "d", domain, "k")
	segments = append(segments, strings.Split(key, "/")...)

	nonEmpty := segments[:0]
	for _, seg := range segments {
		if seg != "" {
			nonEmpty = append(nonEmpty, seg)
		}
	}
	u.Path = "/" + strings.Join(nonEmpty, "/")
	return u.String()
}

// FileMetadata implements [tracker.StorageBackend].
func (s *Store) FileMetadata(domain, key string) (tracker.StorageMetadata, *tracker.Error) {
	return withRead(s, func() (tracker.StorageMetadata, *tracker.Error) {
		d := s.domainOrEmpty(domain)
		f, ok := d.files[key]
		if !ok {
			return tracker.StorageMetadata{}, tracker.UnknownKey(key)
		}
		if f.size == nil || f.mtime == nil {
			return tracker.StorageMetadata{}, tracker.Other("no_content", fmt.Sprintf("no content stored for %q", key))
		}
		return tracker.StorageMetadata{Size: *f.size, Mtime: *f.mtime}, nil
	})
}

// StoreReaderContent implements [tracker.StorageBackend].
func (s *Store) StoreReaderContent(domain, key string, r io.Reader) *tracker.Error {
	content, err := io.ReadAll(r)
	if err != nil {
		return tracker.Other("io_error", err.Error())
	}
	return s.StoreBytesContent(domain, key, content)
}

// StoreBytesContent implements [tracker.StorageBackend].
func (s *Store) StoreBytesContent(domain, key string, content []byte) *tracker.Error {
	_, err := withWrite(s, func() (struct{}, *tracker.Error) {
		d, ok := s.domains[domain]
		if !ok {
			d = newDomain(domain)
			s.domains[domain] = d
		}
		f, ok := d.files[key]
		if !ok {
			return struct{}{}, tracker.UnknownKey(key)
		}
		size := uint64(len(content))
		now := s.timeNow()
		f.size = &size
		f.mtime = &now
		f.content = append([]byte(nil), content...)
		return struct{}{}, nil
	})
	return err
}

// GetContent implements [tracker.StorageBackend].
func (s *Store) GetContent(domain, key string, w io.Writer) *tracker.Error {
	return withReadErr(s, func() *tracker.Error {
		d := s.domainOrEmpty(domain)
		f, ok := d.files[key]
		if !ok {
			return tracker.UnknownKey(key)
		}
		if f.content == nil {
			return tracker.Other("no_content", fmt.Sprintf("no content stored for %q", key))
		}
		if _, err := io.Copy(w, bytes.NewReader(f.content)); err != nil {
			return tracker.Other("io_error", err.Error())
		}
		return nil
	})
}

func withReadErr(s *Store, fn func() *tracker.Error) *tracker.Error {
	_, err := withRead(s, func() (struct{}, *tracker.Error) {
		return struct{}{}, fn()
	})
	return err
}
