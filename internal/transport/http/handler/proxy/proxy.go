// Package proxy implements the chat completion relay endpoint.
package proxy

import (
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/tokenizer"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// maxRequestBodySize caps the inbound body read into memory.
const maxRequestBodySize = 10 << 20

// Handlers holds the dependencies for the relay handler.
type Handlers struct {
	Provider  provider.Provider
	Tokenizer tokenizer.Tokenizer // optional
	Defaults  types.Defaults
	Logger    *slog.Logger
}

// New creates a new instance of proxy handlers. tok may be nil.
func New(prov provider.Provider, tok tokenizer.Tokenizer, defaults types.Defaults, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Provider:  prov,
		Tokenizer: tok,
		Defaults:  defaults,
		Logger:    logger,
	}
}

// Relay is the single relay entry point: it answers preflights, rejects
// everything but POST, and relays POSTs upstream.
func (h *Handlers) Relay(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		middleware.Preflight(w)
	case http.MethodPost:
		h.ChatCompletions(w, r)
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		types.WriteError(w, http.StatusMethodNotAllowed, types.MsgMethodNotAllowed)
	}
}

// fail answers 500 with the error message for failures before anything
// was sent upstream.
func (h *Handlers) fail(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("proxy error", "error", err)
	types.WriteError(w, http.StatusInternalServerError, err.Error())
}
