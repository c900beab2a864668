// SPDX-License-Identifier: GPL-3.0-or-later

// Package tracker implements the request-processing engine of a
// MogileFS-style tracker: a line-oriented TCP protocol for creating,
// locating, renaming, enumerating, and deleting blobs ("keys") inside
// named namespaces ("domains").
//
// # Core abstraction
//
// The package is built around the [TrackerBackend] interface: one
// method per wire operation, implemented by whatever actually owns
// domain/key metadata (a SQL database, an upstream tracker reached
// through the proxy package, or the in-memory reference backend in
// package memstore). [AroundMiddleware] wraps a [TrackerBackend] into
// another [TrackerBackend] with the same contract, so cross-cutting
// behavior (the alternate-origin fallback in package fallback, request
// logging, …) composes without the dispatcher knowing about it.
//
// # Wire codec
//
// [DecodeRequest] and [RenderLine] (built on each [Response]'s Args)
// implement the text/urlencoded request/response line format described
// in the package's design document. [Tracker.Dispatch] ties codec and
// backend together: decode, invoke, render.
//
// # Listeners
//
// This package does not itself accept connections. Package
// listener/threaded and listener/evented provide two interchangeable
// I/O strategies over the same [Tracker.Dispatch] entry point.
package tracker
