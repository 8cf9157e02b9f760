package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prsentry/prsentry/internal/adapter/observability"
	"github.com/prsentry/prsentry/internal/ratelimit"
)

const maxLoggedBodyBytes = 64 * 1024

// RateLimit enforces the per-client request ceiling. Limiter headers are
// written on admissions and rejections alike so well-behaved clients can
// pace themselves. A nil limiter disables metering entirely.
func RateLimit(limiter *ratelimit.Limiter, logger *observability.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if key == "" {
				if logger != nil {
					logger.Warn("client identity unresolvable, request not metered", map[string]any{
						"path":        r.URL.Path,
						"remote_addr": r.RemoteAddr,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			decision := limiter.Allow(key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset, 10))

			if !decision.Allowed {
				if metrics != nil {
					metrics.RateLimited.Inc()
				}
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"message": "Rate limit exceeded. Please try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs the full request and response cycle. It only activates
// when debug is set; production traffic passes through untouched.
func RequestLogger(logger *observability.Logger, debug bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !debug || logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			fields := map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
				"ip":     clientIP(r),
			}
			headers := make(map[string]any, len(r.Header))
			for name := range r.Header {
				headers[name] = r.Header.Get(name)
			}
			fields["headers"] = headers

			if stateChanging(r.Method) {
				if body, ok := snapshotBody(r); ok {
					fields["body"] = body
				}
			}
			logger.Debug("request received", fields)

			start := time.Now()
			rec := &timingWriter{ResponseWriter: w, start: start}
			next.ServeHTTP(rec, r)

			logger.Debug("request completed", map[string]any{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.Status(),
				"elapsed_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// CountRequests records one observation per request on the route-level
// counter. It runs outermost so rejected and errored requests are counted
// with their final status.
func CountRequests(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.Status())).Inc()
		})
	}
}

// statusWriter records the committed status code and nothing else, for
// middleware that must observe the response without altering it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	if sw.status == 0 {
		sw.status = status
	}
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Status() int {
	if sw.status == 0 {
		return http.StatusOK
	}
	return sw.status
}

// timingWriter stamps the elapsed time onto the response just before the
// first byte is committed, and remembers the status for the access log. It
// is only installed by the debug request logger so production responses
// never carry the timing header.
type timingWriter struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
}

func (tw *timingWriter) WriteHeader(status int) {
	if tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.status = status
	tw.Header().Set("X-Elapsed-Ms", fmt.Sprintf("%.2f", float64(time.Since(tw.start).Microseconds())/1000))
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timingWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

func (tw *timingWriter) Status() int {
	if !tw.wroteHeader {
		return http.StatusOK
	}
	return tw.status
}

// clientIP resolves the caller's address, preferring proxy-set headers over
// the raw socket peer.
func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func stateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// snapshotBody reads the request body for logging and restores it for the
// handler. Decode failures fall back to the raw text; oversized bodies are
// skipped rather than truncated mid-structure.
func snapshotBody(r *http.Request) (any, bool) {
	if r.Body == nil {
		return nil, false
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	// Hand whatever was read back to the handler even on a failed read, so
	// the tap never consumes the body.
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 || len(raw) > maxLoggedBodyBytes {
		return nil, false
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw), true
	}
	return decoded, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
