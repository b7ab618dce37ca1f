package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/requestcontext"
)

// RequestIDHeader is the inbound/outbound correlation header.
const RequestIDHeader = "X-Request-Id"

// RequestID propagates the caller's correlation ID or generates one, and
// echoes it on the response so clients can quote it in support requests.
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
