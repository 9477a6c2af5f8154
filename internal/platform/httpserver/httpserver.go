package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project.
// WriteTimeout leaves headroom over a full fan-out bounded by the delivery timeout.
func New(addr string, handler http.Handler, deliveryTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      deliveryTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
