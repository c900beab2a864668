// SPDX-License-Identifier: GPL-3.0-or-later

package storagehttp

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mogilefsd-go/mogilefsd/tracker"
)

// Handler serves blob content for a [tracker.StorageBackend] over
// plain HTTP, at paths of the form "/d/<domain>/k/<key...>" (the same
// layout [tracker.StorageBackend.URLForKey] produces).
type Handler struct {
	Backend tracker.StorageBackend
	Logger  tracker.SLogger
}

// NewHandler returns a *Handler serving backend. logger may be nil.
func NewHandler(backend tracker.StorageBackend, logger tracker.SLogger) *Handler {
	if logger == nil {
		logger = tracker.DefaultSLogger()
	}
	return &Handler{Backend: backend, Logger: logger}
}

// parsePath extracts (domain, key) from a "/d/<domain>/k/<key...>"
// path, matching the layout URLForKey produces.
func parsePath(path string) (domain, key string, ok bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 4 || segments[0] != "d" || segments[2] != "k" {
		return "", "", false
	}
	return segments[1], strings.Join(segments[3:], "/"), true
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	domain, key, ok := parsePath(req.URL.Path)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch req.Method {
	case http.MethodGet:
		h.serveGet(w, req, domain, key)
	case http.MethodHead:
		h.serveHead(w, domain, key)
	case http.MethodPut:
		h.servePut(w, req, domain, key)
	default:
		w.Header().Set("Allow", "GET, HEAD, PUT")
		http.Error(w, "method not allowed", http.StatusBadRequest)
	}
}

func (h *Handler) serveGet(w http.ResponseWriter, req *http.Request, domain, key string) {
	var buf bytes.Buffer
	if err := h.Backend.GetContent(domain, key, &buf); err != nil {
		h.writeBackendError(w, err)
		return
	}
	content := buf.Bytes()

	if header := req.Header.Get("Range"); header != "" {
		if r, ok := parseRange(header); ok {
			body, from, to, total := r.apply(content)
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", from, to, total))
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(body)
			return
		}
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (h *Handler) serveHead(w http.ResponseWriter, domain, key string) {
	meta, err := h.Backend.FileMetadata(domain, key)
	if err != nil {
		h.writeBackendError(w, err)
		return
	}
	w.Header().Set("Content-Length", strconv.FormatUint(meta.Size, 10))
	w.Header().Set("Last-Modified", meta.Mtime.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) servePut(w http.ResponseWriter, req *http.Request, domain, key string) {
	defer req.Body.Close()
	if err := h.Backend.StoreReaderContent(domain, key, req.Body); err != nil {
		h.writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeBackendError(w http.ResponseWriter, err *tracker.Error) {
	h.Logger.Info("storage request failed", slog.String("err", err.ErrorKind()))
	status := http.StatusInternalServerError
	if err.Kind == tracker.ErrUnknownKey || err.Kind == tracker.ErrUnregDomain {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}
