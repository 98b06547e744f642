package api

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Middleware returns the API middleware chain: request logging, panic
// recovery, response headers, content type validation and metrics.
func Middleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := instrument(next)
		h = validateContentType(h)
		h = recoverer(h)
		h = apiHeaders(h)
		h = hlog.AccessHandler(accessLog)(h)
		h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
		h = hlog.RemoteAddrHandler("remote_addr")(h)
		return hlog.NewHandler(logger)(h)
	}
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	var event *zerolog.Event
	switch {
	case status >= 500:
		event = hlog.FromRequest(r).Error()
	case status >= 400:
		event = hlog.FromRequest(r).Warn()
	default:
		event = hlog.FromRequest(r).Info()
	}
	event.
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status_code", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request served")
}

// headerWriter adds Cache-Control to successful GET responses once the
// status is known.
type headerWriter struct {
	http.ResponseWriter
	method      string
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	if w.method == http.MethodGet && status >= 200 && status < 300 {
		h.Set("Cache-Control", "public, max-age=60")
	} else {
		h.Del("Cache-Control")
	}
	h.Set("Content-Type", "application/json")
	w.ResponseWriter.WriteHeader(status)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *headerWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func apiHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")

		next.ServeHTTP(&headerWriter{ResponseWriter: w, method: r.Method}, r)
	})
}

// recoverer turns handler panics into a 500 envelope.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			PanicsTotal.Inc()
			hlog.FromRequest(r).Error().
				Str("panic", fmt.Sprint(rec)).
				Msg("Handler panicked")
			writeErrorMessage(w, r, http.StatusInternalServerError,
				fmt.Sprintf("%s: %v", internalErrorMessage, rec))
		}()

		next.ServeHTTP(w, r)
	})
}

// validateContentType rejects non-GET requests without a JSON body.
func validateContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			contentType := r.Header.Get("Content-Type")
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != "application/json" {
				hlog.FromRequest(r).Warn().Str("content_type", contentType).Msg("Invalid content type")
				writeErrorMessage(w, r, http.StatusBadRequest, "Invalid content type: "+contentType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// instrument records request metrics labelled by the matched route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
