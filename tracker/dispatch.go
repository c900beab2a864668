// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"context"
	"log/slog"
)

// Tracker is the thin dispatch layer (§4.4): given a raw request line,
// decode it, invoke the matching backend operation, and render the
// typed response or error. Tracker never augments semantics; it only
// adds structured logging around the backend call.
type Tracker struct {
	Backend TrackerBackend
	Logger  SLogger
}

// NewTracker returns a *Tracker dispatching onto backend. logger may be
// nil, in which case [DefaultSLogger] is used.
func NewTracker(backend TrackerBackend, logger SLogger) *Tracker {
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &Tracker{Backend: backend, Logger: logger}
}

// Dispatch decodes line (a request, without its trailing CRLF),
// invokes the backend, and returns the complete rendered response line
// (CRLF included), ready to write to the connection.
func (t *Tracker) Dispatch(ctx context.Context, line []byte) []byte {
	span := NewSpanID()

	req, decodeErr := DecodeRequest(line)
	if decodeErr != nil {
		t.Logger.Info("request decode failed",
			slog.String("span", span),
			slog.String("err", decodeErr.ErrorKind()),
		)
		return RenderLine(nil, decodeErr)
	}

	t.Logger.Info("dispatching request",
		slog.String("span", span),
		slog.String("op", string(req.Op())),
	)

	resp, err := t.invoke(ctx, req)

	if err != nil {
		t.Logger.Info("request failed",
			slog.String("span", span),
			slog.String("op", string(req.Op())),
			slog.String("err", err.ErrorKind()),
		)
		return RenderLine(nil, err)
	}

	t.Logger.Info("request completed",
		slog.String("span", span),
		slog.String("op", string(req.Op())),
	)
	return RenderLine(resp, nil)
}

// invoke type-switches req onto the matching [TrackerBackend] method.
func (t *Tracker) invoke(ctx context.Context, req Request) (Response, *Error) {
	switch r := req.(type) {
	case *CreateDomainRequest:
		return t.Backend.CreateDomain(ctx, r)
	case *CreateOpenRequest:
		return t.Backend.CreateOpen(ctx, r)
	case *CreateCloseRequest:
		return t.Backend.CreateClose(ctx, r)
	case *GetPathsRequest:
		return t.Backend.GetPaths(ctx, r)
	case *FileInfoRequest:
		return t.Backend.FileInfo(ctx, r)
	case *RenameRequest:
		return t.Backend.Rename(ctx, r)
	case *UpdateClassRequest:
		return t.Backend.UpdateClass(ctx, r)
	case *DeleteRequest:
		return t.Backend.Delete(ctx, r)
	case *ListKeysRequest:
		return t.Backend.ListKeys(ctx, r)
	case *NoopRequest:
		return t.Backend.Noop(ctx, r)
	default:
		return nil, Other("other_error", "unrecognized request type")
	}
}
