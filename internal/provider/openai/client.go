// Package openai implements the OpenAI chat completions provider.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/types"
	"github.com/mandalnilabja/chatrelay/internal/version"
)

const (
	// DefaultBaseURL is the OpenAI chat completions endpoint.
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv = "OPENAI_API_KEY"
)

// Provider implements the provider.Provider interface for OpenAI.
// The API key is resolved on every request, never cached.
type Provider struct {
	baseURL string
	apiKey  func() string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the chat completions endpoint.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithAPIKey sets the function used to look up the API key per request.
func WithAPIKey(fn func() string) Option {
	return func(p *Provider) {
		if fn != nil {
			p.apiKey = fn
		}
	}
}

// WithHTTPClient replaces the HTTP client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithLogger sets the logger used when a request carries none.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates an OpenAI provider. By default the API key is read from
// OPENAI_API_KEY at request time.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL: DefaultBaseURL,
		apiKey:  func() string { return os.Getenv(APIKeyEnv) },
		// No client timeout: long generations are bounded by the inbound
		// request context. DisableCompression keeps chunks flowing as sent.
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:              http.ProxyFromEnvironment,
				DisableCompression: true,
			},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ provider.Provider = (*Provider)(nil)

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// BaseURL returns the chat completions endpoint
func (p *Provider) BaseURL() string {
	return p.baseURL
}

// PrepareRequest adds the relay's identifying headers.
func (p *Provider) PrepareRequest(ctx context.Context, req *http.Request) error {
	req.Header.Set("User-Agent", "chatrelay/"+version.Version)
	return nil
}

// ProxyRequest sends the upstream request and relays the response.
// Failures before a response arrives become a 500 with the error message.
func (p *Provider) ProxyRequest(ctx context.Context, w http.ResponseWriter, opts *types.ProxyOptions) (*types.ProxyResult, error) {
	startTime := time.Now()
	logger := p.logger
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}

	result := &types.ProxyResult{}
	defer func() { result.Duration = time.Since(startTime) }()

	if opts == nil || opts.Request == nil {
		return writeFailure(w, logger, result, provider.ErrNoRequest)
	}
	result.Model = opts.Request.ModelName()
	result.IsStreaming = opts.Request.Stream

	upstreamReq, err := p.newUpstreamRequest(ctx, opts.Request)
	if err != nil {
		return writeFailure(w, logger, result, err)
	}

	resp, err := p.client.Do(upstreamReq)
	if err != nil {
		return writeFailure(w, logger, result, err)
	}
	defer resp.Body.Close()

	result.UpstreamStatus = resp.StatusCode

	if opts.Request.Stream {
		return handleStreamingResponse(w, resp, logger, result)
	}
	return handleJSONResponse(w, resp, logger, result)
}

// newUpstreamRequest builds the POST to the provider with JSON body and
// bearer credential.
func (p *Provider) newUpstreamRequest(ctx context.Context, body *types.UpstreamRequest) (*http.Request, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey())

	if err := p.PrepareRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("prepare upstream request: %w", err)
	}
	return req, nil
}
