package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"tally/pkg/requestcontext"
)

// RequestIDHeader is echoed back so clients can quote the correlation ID.
const RequestIDHeader = "X-Request-Id"

// RequestID generates one correlation ID per inbound request and threads it
// through the context. Every audit record written while handling the request
// carries this value.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
