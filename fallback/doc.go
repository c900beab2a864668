// SPDX-License-Identifier: GPL-3.0-or-later

// Package fallback wraps a [tracker.TrackerBackend] with an
// alternate-origin HTTP lookup, used to serve get_paths/file_info for
// keys the primary backend has never heard of. Grounded on the
// original's AlternateFileFinder/ProxyWithAlternateBackend pair.
package fallback
