package app

import (
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router with all application routes.
// Every path other than the health check reaches the relay, whatever the
// method; the relay itself rejects non-POST requests.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)
	mux.HandleFunc("/", repo.Proxy.Relay)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	if opts != nil && opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	h = middleware.RequestID(h)

	// CORS is outermost so preflights never reach the relay
	h = middleware.CORS(h)

	return h
}
