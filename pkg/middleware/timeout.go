package middleware

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/logger"
)

// Timeout bounds each request with a context deadline. The handler writes
// into a private header map that reaches the client only with its first
// WriteHeader or Write. If the handler has not started a response when the
// deadline passes, the client gets a 504 and later writes are discarded.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			done := make(chan struct{})
			tw := &timeoutWriter{w: w, header: make(http.Header)}
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()
			select {
			case <-done:
			case <-ctx.Done():
				tw.mu.Lock()
				if tw.wroteHeader {
					// The response is already underway; let the handler finish it.
					tw.mu.Unlock()
					<-done
					return
				}
				tw.timedOut = true
				tw.mu.Unlock()
				logger.FromContext(ctx).Warn("request timed out",
					"method", r.Method, "path", r.URL.Path, "timeout", timeout)
				writeError(w, apperrors.ErrTimeout)
			}
		})
	}
}

// timeoutWriter owns header; only the handler goroutine touches it. The
// underlying writer is touched under mu, and never once timedOut is set.
type timeoutWriter struct {
	w           http.ResponseWriter
	header      http.Header
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	maps.Copy(tw.w.Header(), tw.header.Clone())
	tw.w.WriteHeader(code)
}
