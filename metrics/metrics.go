// Package metrics provides metrics-related utilities.
// Defined metrics:
//
//	requests (counter)
//	respcode.200 (counter)
//	respcode.404 (counter)
//	respcode.NNN (etc)
//	<function>.latency (histogram, via RecordElapsed)
package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/codahale/metrics"
)

// Handler counts requests and response codes.
// See the package doc for metric names.
type Handler struct {
	Next http.Handler
}

func (h Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	metrics.Counter("requests").Add()
	h.Next.ServeHTTP(&codeCountResponse{w, false}, req)
}

type codeCountResponse struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *codeCountResponse) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	metrics.Counter("respcode." + strconv.Itoa(code)).Add()
	w.ResponseWriter.WriteHeader(code)
}

func (w *codeCountResponse) Write(p []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.ResponseWriter.Write(p)
}

const (
	maxLatency = int64(10 * time.Second)
	sigfigs    = 2
)

var (
	histMu sync.Mutex
	hists  = map[string]*metrics.Histogram{}
)

// RecordElapsed records the time elapsed since t0
// in a latency histogram named for the calling function.
func RecordElapsed(t0 time.Time) {
	elapsed := int64(time.Since(t0))
	if elapsed > maxLatency {
		elapsed = maxLatency
	}

	name := "?"
	if pc, _, _, ok := runtime.Caller(1); ok {
		if f := runtime.FuncForPC(pc); f != nil {
			name = f.Name()
		}
	}

	histMu.Lock()
	hist, ok := hists[name]
	if !ok {
		hist = metrics.NewHistogram(name+".latency", 0, maxLatency, sigfigs)
		hists[name] = hist
	}
	histMu.Unlock()

	hist.RecordValue(elapsed)
}
