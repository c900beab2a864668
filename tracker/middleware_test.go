// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderBackend is a stub TrackerBackend whose Noop method appends a
// marker to a shared trace, letting tests observe middleware ordering.
type orderBackend struct {
	trace *[]string
	name  string
}

func (b *orderBackend) CreateDomain(ctx context.Context, r *CreateDomainRequest) (*CreateDomainResponse, *Error) {
	return nil, nil
}
func (b *orderBackend) CreateOpen(ctx context.Context, r *CreateOpenRequest) (*CreateOpenResponse, *Error) {
	return nil, nil
}
func (b *orderBackend) CreateClose(ctx context.Context, r *CreateCloseRequest) (EmptyResponse, *Error) {
	return EmptyResponse{}, nil
}
func (b *orderBackend) GetPaths(ctx context.Context, r *GetPathsRequest) (*GetPathsResponse, *Error) {
	return nil, nil
}
func (b *orderBackend) FileInfo(ctx context.Context, r *FileInfoRequest) (*FileInfoResponse, *Error) {
	return nil, nil
}
func (b *orderBackend) Rename(ctx context.Context, r *RenameRequest) (EmptyResponse, *Error) {
	return EmptyResponse{}, nil
}
func (b *orderBackend) UpdateClass(ctx context.Context, r *UpdateClassRequest) (EmptyResponse, *Error) {
	return EmptyResponse{}, nil
}
func (b *orderBackend) Delete(ctx context.Context, r *DeleteRequest) (EmptyResponse, *Error) {
	return EmptyResponse{}, nil
}
func (b *orderBackend) ListKeys(ctx context.Context, r *ListKeysRequest) (*ListKeysResponse, *Error) {
	return nil, nil
}
func (b *orderBackend) Noop(ctx context.Context, r *NoopRequest) (EmptyResponse, *Error) {
	*b.trace = append(*b.trace, b.name)
	return EmptyResponse{}, nil
}

func wrapNamed(trace *[]string, name string) AroundMiddleware {
	return func(inner TrackerBackend) TrackerBackend {
		return &tracingWrapper{inner: inner, trace: trace, name: name}
	}
}

type tracingWrapper struct {
	inner TrackerBackend
	trace *[]string
	name  string
}

func (w *tracingWrapper) CreateDomain(ctx context.Context, r *CreateDomainRequest) (*CreateDomainResponse, *Error) {
	return w.inner.CreateDomain(ctx, r)
}
func (w *tracingWrapper) CreateOpen(ctx context.Context, r *CreateOpenRequest) (*CreateOpenResponse, *Error) {
	return w.inner.CreateOpen(ctx, r)
}
func (w *tracingWrapper) CreateClose(ctx context.Context, r *CreateCloseRequest) (EmptyResponse, *Error) {
	return w.inner.CreateClose(ctx, r)
}
func (w *tracingWrapper) GetPaths(ctx context.Context, r *GetPathsRequest) (*GetPathsResponse, *Error) {
	return w.inner.GetPaths(ctx, r)
}
func (w *tracingWrapper) FileInfo(ctx context.Context, r *FileInfoRequest) (*FileInfoResponse, *Error) {
	return w.inner.FileInfo(ctx, r)
}
func (w *tracingWrapper) Rename(ctx context.Context, r *RenameRequest) (EmptyResponse, *Error) {
	return w.inner.Rename(ctx, r)
}
func (w *tracingWrapper) UpdateClass(ctx context.Context, r *UpdateClassRequest) (EmptyResponse, *Error) {
	return w.inner.UpdateClass(ctx, r)
}
func (w *tracingWrapper) Delete(ctx context.Context, r *DeleteRequest) (EmptyResponse, *Error) {
	return w.inner.Delete(ctx, r)
}
func (w *tracingWrapper) ListKeys(ctx context.Context, r *ListKeysRequest) (*ListKeysResponse, *Error) {
	return w.inner.ListKeys(ctx, r)
}
func (w *tracingWrapper) Noop(ctx context.Context, r *NoopRequest) (EmptyResponse, *Error) {
	*w.trace = append(*w.trace, "before:"+w.name)
	resp, err := w.inner.Noop(ctx, r)
	*w.trace = append(*w.trace, "after:"+w.name)
	return resp, err
}

func TestComposeMiddlewareAppliesOutsideIn(t *testing.T) {
	var trace []string
	inner := &orderBackend{trace: &trace, name: "inner"}
	composed := ComposeMiddleware(wrapNamed(&trace, "a"), wrapNamed(&trace, "b"))
	stack := NewBackendStack(inner, composed)

	_, err := stack.Noop(context.Background(), &NoopRequest{})
	require.Nil(t, err)

	assert.Equal(t, []string{"before:a", "before:b", "inner", "after:b", "after:a"}, trace)
}

func TestComposeMiddlewareEmptyIsIdentity(t *testing.T) {
	var trace []string
	inner := &orderBackend{trace: &trace, name: "inner"}
	identity := ComposeMiddleware()
	stack := NewBackendStack(inner, identity)

	_, err := stack.Noop(context.Background(), &NoopRequest{})
	require.Nil(t, err)
	assert.Equal(t, []string{"inner"}, trace)
}
