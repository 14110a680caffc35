// Package httpserver builds the http.Server the triage API listens on.
package httpserver

import (
	"net/http"
	"time"
)

const readHeaderTimeout = 5 * time.Second

// Option adjusts the server before it is returned.
type Option func(*http.Server)

// WithTimeouts sets read, write and idle timeouts. Zero values keep the
// net/http behaviour of no limit.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *http.Server) {
		s.ReadTimeout = read
		s.WriteTimeout = write
		s.IdleTimeout = idle
	}
}

// New returns a server for handler on addr. Header reads are always bounded.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
