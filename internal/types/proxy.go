package types

import (
	"log/slog"
	"time"
)

// ProxyOptions contains options for relaying one request upstream.
type ProxyOptions struct {
	// RequestID for tracing
	RequestID string

	// Request is the body sent to the provider
	Request *UpstreamRequest

	// Logger carries request-scoped attributes; nil falls back to the
	// provider's logger.
	Logger *slog.Logger
}

// ProxyResult describes how a relayed request went, for logging.
type ProxyResult struct {
	// Model requested upstream
	Model string

	// StatusCode is the status returned to the caller
	StatusCode int

	// UpstreamStatus is the provider's HTTP status, 0 if none was received
	UpstreamStatus int

	IsStreaming bool

	// BytesRelayed counts response bytes written to the caller
	BytesRelayed int64

	Duration time.Duration

	// Error info (if any)
	Error        error
	ErrorMessage string
}
