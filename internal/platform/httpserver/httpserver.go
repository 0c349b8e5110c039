package httpserver

import (
	"net/http"
	"time"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	// writeSlack leaves room to flush the timeout response after a handler's
	// own deadline fires.
	writeSlack = 5 * time.Second
)

type Option func(*http.Server)

// WithHandlerTimeout sizes WriteTimeout so that per-request handler deadlines
// fire before the connection is cut.
func WithHandlerTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d + writeSlack
		}
	}
}

// New builds the HTTP server for the onboarding API.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      30*time.Second + writeSlack,
		IdleTimeout:       defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
