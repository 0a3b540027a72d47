package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// RequestID tags the request with a correlation id, reusing a sane inbound one,
// and echoes it back. When the caller sends an Idempotency-Key the key is logged
// too, so a replayed checkout can be tied to the order it first produced.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := inboundRequestID(r)
			w.Header().Set(requestIDHeader, id)
			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logg.WithRequestID(r.Context(), id)
			if key := strings.TrimSpace(r.Header.Get(idempotencyHeader)); key != "" && len(key) <= maxRequestIDLen {
				ctx = logg.WithField(ctx, "idempotency_key", key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func inboundRequestID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if id == "" || len(id) > maxRequestIDLen || strings.ContainsAny(id, "\r\n") {
		return uuid.NewString()
	}
	return id
}
