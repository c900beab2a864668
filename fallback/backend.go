// SPDX-License-Identifier: GPL-3.0-or-later

package fallback

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// Backend wraps inner with an alternate-origin lookup: whenever inner
// reports [tracker.ErrUnknownKey] or [tracker.ErrUnregDomain] for
// get_paths or file_info, Backend probes baseURL for the key and, on a
// 200 OK, synthesizes a response from the HTTP result instead of
// propagating the error; on any other status or a transport failure,
// inner's original error is returned. Every other call passes straight
// through to inner.
type Backend struct {
	inner   tracker.TrackerBackend
	baseURL *url.URL
	client  *http.Client
}

var _ tracker.TrackerBackend = (*Backend)(nil)

// New returns a *Backend probing baseURL for alternate content. client
// may be nil, in which case [http.DefaultClient] is used.
func New(inner tracker.TrackerBackend, baseURL *url.URL, client *http.Client) *Backend {
	if client == nil {
		client = http.DefaultClient
	}
	return &Backend{inner: inner, baseURL: baseURL, client: client}
}

// urlForKey mirrors the original KeyUrlFinder: join the base path with
// the key's slash-separated segments, append a literal "a.jpg", and
// drop empty segments.
func (b *Backend) urlForKey(key string) *url.URL {
	u := *b.baseURL
	segments := strings.Split(u.Path, "/")
	segments = append(segments, strings.Split(key, "/")...)
	segments = append(segments, "a.jpg")

	nonEmpty := segments[:0]
	for _, seg := range segments {
		if seg != "" {
			nonEmpty = append(nonEmpty, seg)
		}
	}
	u.Path = "/" + strings.Join(nonEmpty, "/")
	return &u
}

// probe issues a GET for key and returns its Content-Length, or a
// fallback-specific *Error on any failure or non-200 status.
func (b *Backend) probe(ctx context.Context, key string) (*url.URL, int64, *tracker.Error) {
	target := b.urlForKey(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, 0, tracker.Other("alternate_file_error", err.Error())
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, 0, tracker.Other("alternate_file_error", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, tracker.Other("alternate_file_error", "status code = "+strconv.Itoa(resp.StatusCode))
	}
	return target, resp.ContentLength, nil
}

func isFallbackEligible(err *tracker.Error) bool {
	return err.Kind == tracker.ErrUnknownKey || err.Kind == tracker.ErrUnregDomain
}

func (b *Backend) CreateDomain(ctx context.Context, req *tracker.CreateDomainRequest) (*tracker.CreateDomainResponse, *tracker.Error) {
	return b.inner.CreateDomain(ctx, req)
}

func (b *Backend) CreateOpen(ctx context.Context, req *tracker.CreateOpenRequest) (*tracker.CreateOpenResponse, *tracker.Error) {
	return b.inner.CreateOpen(ctx, req)
}

func (b *Backend) CreateClose(ctx context.Context, req *tracker.CreateCloseRequest) (tracker.EmptyResponse, *tracker.Error) {
	return b.inner.CreateClose(ctx, req)
}

// GetPaths falls back to the alternate origin when inner reports the
// key or domain unknown; the original error wins if the alternate
// probe also fails.
func (b *Backend) GetPaths(ctx context.Context, req *tracker.GetPathsRequest) (*tracker.GetPathsResponse, *tracker.Error) {
	resp, origErr := b.inner.GetPaths(ctx, req)
	if origErr == nil || !isFallbackEligible(origErr) {
		return resp, origErr
	}

	target, _, probeErr := b.probe(ctx, req.Key)
	if probeErr != nil {
		return nil, origErr
	}
	return &tracker.GetPathsResponse{Paths: []string{target.String()}}, nil
}

// FileInfo falls back the same way as [Backend.GetPaths].
func (b *Backend) FileInfo(ctx context.Context, req *tracker.FileInfoRequest) (*tracker.FileInfoResponse, *tracker.Error) {
	resp, origErr := b.inner.FileInfo(ctx, req)
	if origErr == nil || !isFallbackEligible(origErr) {
		return resp, origErr
	}

	_, length, probeErr := b.probe(ctx, req.Key)
	if probeErr != nil {
		return nil, origErr
	}
	if length < 0 {
		length = 0
	}
	return &tracker.FileInfoResponse{
		Fid:      0,
		Devcount: 1,
		Length:   uint64(length),
		Domain:   req.Domain,
		Class:    "external",
		Key:      req.Key,
	}, nil
}

func (b *Backend) Rename(ctx context.Context, req *tracker.RenameRequest) (tracker.EmptyResponse, *tracker.Error) {
	return b.inner.Rename(ctx, req)
}

func (b *Backend) UpdateClass(ctx context.Context, req *tracker.UpdateClassRequest) (tracker.EmptyResponse, *tracker.Error) {
	return b.inner.UpdateClass(ctx, req)
}

func (b *Backend) Delete(ctx context.Context, req *tracker.DeleteRequest) (tracker.EmptyResponse, *tracker.Error) {
	return b.inner.Delete(ctx, req)
}

func (b *Backend) ListKeys(ctx context.Context, req *tracker.ListKeysRequest) (*tracker.ListKeysResponse, *tracker.Error) {
	return b.inner.ListKeys(ctx, req)
}

func (b *Backend) Noop(ctx context.Context, req *tracker.NoopRequest) (tracker.EmptyResponse, *tracker.Error) {
	return b.inner.Noop(ctx, req)
}
