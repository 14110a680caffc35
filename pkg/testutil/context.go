package testutil

import (
	"net/http"

	"casetriage/pkg/requestcontext"
)

// WithActor adds an operator identity to the request context.
// This simulates what the upstream gateway forwards for authenticated requests.
func WithActor(req *http.Request, actor string) *http.Request {
	if actor == "" {
		return req
	}
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
