// SPDX-License-Identifier: GPL-3.0-or-later

package storagehttp

import (
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// WithH2C wraps handler so it also accepts HTTP/2 cleartext
// connections (h2c), for storage clients that want to pipeline range
// requests over a single connection without TLS.
func WithH2C(handler http.Handler) http.Handler {
	h2s := &http2.Server{}
	return h2c.NewHandler(handler, h2s)
}
