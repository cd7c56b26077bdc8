package httphandler

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

const submitSuffix = "/form/submit"

// AllowMedia accepts JSON bodies everywhere and multipart bodies on the
// form submit routes only.
func AllowMedia(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch {
		case err != nil:
		case mt == "application/json":
			next.ServeHTTP(w, r)
			return
		case mt == multipartMediaType && strings.HasSuffix(r.URL.Path, submitSuffix):
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
	}
	return http.HandlerFunc(hf)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LogRequests writes one log record per request.
func LogRequests(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug(
			"request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	}
	return http.HandlerFunc(hf)
}
