// Package requestid tags every request with a correlation ID and the forwarded operator identity.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"casetriage/pkg/requestcontext"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderActor     = "X-Operator-ID"
)

// Middleware reuses an inbound X-Request-ID or mints one, echoes it on the
// response, and copies the X-Operator-ID header into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)

		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		if actor := strings.TrimSpace(r.Header.Get(HeaderActor)); actor != "" {
			ctx = requestcontext.WithActor(ctx, actor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
