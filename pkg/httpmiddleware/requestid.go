package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID between services.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds accepted inbound IDs so a hostile client cannot
// inflate every log line.
const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestIDFromContext returns the request's correlation ID, or "" outside a
// RequestID-wrapped handler.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID tags every request with a correlation ID. A well-formed inbound
// header is trusted and passed through; a missing or malformed one is
// replaced with a fresh UUID. The ID ends up on the response header and in
// the request context for the logging middleware.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if !wellFormedRequestID(id) {
				id = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// wellFormedRequestID accepts non-empty printable-ASCII IDs up to
// maxRequestIDLen bytes. Control bytes are rejected to keep IDs safe to echo
// into headers and logs.
func wellFormedRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
