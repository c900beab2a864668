// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import "time"

// Config holds the external configuration accepted by the tracker
// core (§6.4): the CLI/environment layer that produces one of these is
// out of scope.
//
// All fields have sensible defaults set by [NewConfig]; set only the
// fields a given deployment needs to override.
type Config struct {
	// ListenAddr is the address the listener binds, e.g. ":7001".
	ListenAddr string

	// MaxConnections bounds the evented listener's connection slab
	// (§4.6 "Slab exhaustion"). Ignored by the threaded listener, which
	// has no fixed cap.
	MaxConnections int

	// WorkerThreads sizes the evented listener's backend worker pool
	// (§4.6 "Worker pool").
	WorkerThreads int

	// UpstreamTrackers are the addresses the proxy backend connects to
	// (§4.8). One is chosen at random each time the proxy dials,
	// including redials after a dropped connection.
	UpstreamTrackers []string

	// AlternateOriginBaseURL, if non-empty, enables the alternate-origin
	// fallback (§4.9) for get_paths/file_info misses.
	AlternateOriginBaseURL string

	// ErrClassifier classifies transport errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time (configurable for testing).
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig returns a *Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ListenAddr:     ":7001",
		MaxConnections: 1024,
		WorkerThreads:  8,
		ErrClassifier:  DefaultErrClassifier,
		TimeNow:        time.Now,
	}
}
