// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import "github.com/bassosimone/errclass"

// ErrClassifier classifies transport errors into categorical strings
// for structured logging, distinct from the wire-visible [Error]
// taxonomy: a classified error never reaches the client, it only
// annotates a log record (e.g. "read failed: class=ECONNRESET").
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier classifies errors using [errclass.New], mapping
// syscall-level errnos (ECONNRESET, ETIMEDOUT, EINTR, …) to stable
// short strings suitable for log fields and metrics labels.
var DefaultErrClassifier = ErrClassifierFunc(errclass.New)
