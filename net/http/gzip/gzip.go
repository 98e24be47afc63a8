// Package gzip provides an HTTP handler that compresses response
// bodies for clients that accept gzip encoding.
package gzip

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var pool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

type Handler struct {
	Next http.Handler
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Vary", "Accept-Encoding")
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		h.Next.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Encoding", "gzip")
	gz := pool.Get().(*gzip.Writer)
	gz.Reset(w)
	h.Next.ServeHTTP(&responseWriter{gz, w}, r)
	gz.Close()
	pool.Put(gz)
}

type responseWriter struct {
	w                   io.Writer // w wraps only method Write
	http.ResponseWriter           // embedded for the other methods
}

func (w *responseWriter) Write(p []byte) (int, error) { return w.w.Write(p) }
