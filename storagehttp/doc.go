// SPDX-License-Identifier: GPL-3.0-or-later

// Package storagehttp serves and accepts blob content over HTTP for a
// [tracker.StorageBackend], including single-range GET support
// (§6.3), grounded on the original Iron-based RangeMiddleware.
package storagehttp
