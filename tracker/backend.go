// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"context"
	"io"
	"time"
)

// TrackerBackend is the polymorphic interface over the closed request
// operation set: one method per wire operation (§6.1), returning the
// typed response or an [*Error]. Implementations must be safe to
// invoke concurrently (§4.3).
type TrackerBackend interface {
	CreateDomain(ctx context.Context, req *CreateDomainRequest) (*CreateDomainResponse, *Error)
	CreateOpen(ctx context.Context, req *CreateOpenRequest) (*CreateOpenResponse, *Error)
	CreateClose(ctx context.Context, req *CreateCloseRequest) (EmptyResponse, *Error)
	GetPaths(ctx context.Context, req *GetPathsRequest) (*GetPathsResponse, *Error)
	FileInfo(ctx context.Context, req *FileInfoRequest) (*FileInfoResponse, *Error)
	Rename(ctx context.Context, req *RenameRequest) (EmptyResponse, *Error)
	UpdateClass(ctx context.Context, req *UpdateClassRequest) (EmptyResponse, *Error)
	Delete(ctx context.Context, req *DeleteRequest) (EmptyResponse, *Error)
	ListKeys(ctx context.Context, req *ListKeysRequest) (*ListKeysResponse, *Error)
	Noop(ctx context.Context, req *NoopRequest) (EmptyResponse, *Error)
}

// StorageMetadata describes a stored blob's size and modification time,
// as returned by [StorageBackend.FileMetadata].
type StorageMetadata struct {
	Size  uint64
	Mtime time.Time
}

// StorageBackend is the contract the HTTP storage handler (package
// storagehttp) requires. The tracker dispatcher does not depend on
// this interface; it exists for backends that also serve blob bytes
// (the in-memory reference backend, package memstore, implements
// both).
type StorageBackend interface {
	// URLForKey returns the deterministic URL at which key in domain
	// may be fetched or uploaded, given the backend's configured base
	// URL (§3 Path invariant).
	URLForKey(domain, key string) string

	// FileMetadata returns size/mtime for a previously-stored key, or
	// [ErrUnknownKey]/a [*Error] wrapping "no content" if the key was
	// opened but never written.
	FileMetadata(domain, key string) (StorageMetadata, *Error)

	// StoreReaderContent streams content from r into the blob named by
	// (domain, key).
	StoreReaderContent(domain, key string, r io.Reader) *Error

	// StoreBytesContent stores content verbatim as the blob named by
	// (domain, key).
	StoreBytesContent(domain, key string, content []byte) *Error

	// GetContent streams the blob named by (domain, key) into w.
	GetContent(domain, key string, w io.Writer) *Error
}

// AroundMiddleware wraps a [TrackerBackend] into a [TrackerBackend]
// with the same contract, permitting stacking of cross-cutting
// concerns (§4.3). Once wrapped, the inner backend is not externally
// visible: callers only ever see the outermost [TrackerBackend].
type AroundMiddleware func(inner TrackerBackend) TrackerBackend

// BackendStack owns the innermost backend and the chain composed over
// it; it implements [TrackerBackend] by forwarding every call to the
// composed chain. Stack composition is one-way, matching §4.3: the
// inner backend can never be recovered from a *BackendStack.
type BackendStack struct {
	TrackerBackend
}

// NewBackendStack composes middlewares over inner in order: mw[0] is
// outermost, so a request flows mw[0] -> mw[1] -> ... -> inner.
func NewBackendStack(inner TrackerBackend, mw ...AroundMiddleware) *BackendStack {
	return &BackendStack{TrackerBackend: ComposeMiddleware(mw...)(inner)}
}
