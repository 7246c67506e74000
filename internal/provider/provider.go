// Package provider defines the upstream chat completion provider contract.
package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// ErrNoRequest is returned when ProxyRequest is called without a body to send.
var ErrNoRequest = errors.New("no upstream request")

// Provider defines the interface an upstream LLM provider must implement.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// BaseURL returns the provider's chat completions endpoint
	BaseURL() string

	// PrepareRequest adds provider-specific headers to an upstream request
	PrepareRequest(ctx context.Context, req *http.Request) error

	// ProxyRequest sends opts.Request upstream and relays the response to w,
	// buffered or streamed depending on opts.Request.Stream.
	// Streamed responses MUST be written as they arrive (no buffering).
	// Returns ProxyResult with request metadata for logging.
	ProxyRequest(ctx context.Context, w http.ResponseWriter, opts *types.ProxyOptions) (*types.ProxyResult, error)
}
