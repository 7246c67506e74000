package handler

import (
	"log/slog"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/tokenizer"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/infra"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/proxy"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Proxy *proxy.Handlers
	Infra *infra.Handlers
}

// NewRepo creates a new instance of the composed handler repository.
// tok may be nil, in which case no prompt token estimates are logged.
func NewRepo(prov provider.Provider, tok tokenizer.Tokenizer, defaults types.Defaults, logger *slog.Logger) *Repo {
	return &Repo{
		Proxy: proxy.New(prov, tok, defaults, logger),
		Infra: infra.New(time.Now()),
	}
}
