package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// tokenCountTimeout is the longest the handler waits for the prompt token
// estimate once the relay has finished.
const tokenCountTimeout = 100 * time.Millisecond

// ChatCompletions relays one chat completion request to the provider.
// The prompt token estimate runs alongside the upstream call and is only
// used for the log line.
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := h.Logger.With("request_id", requestID)

	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	r.Body.Close()
	if err != nil {
		h.fail(w, logger, fmt.Errorf("read request body: %w", err))
		return
	}

	req, err := types.ParseRelayRequest(bodyBytes)
	if err != nil {
		h.fail(w, logger, err)
		return
	}

	upstream := req.Upstream(h.Defaults)
	tokensChan := h.countPromptTokens(req.Messages, upstream.ModelName())

	result, _ := h.Provider.ProxyRequest(r.Context(), w, &types.ProxyOptions{
		RequestID: requestID,
		Request:   upstream,
		Logger:    logger,
	})

	var promptTokens *int
	select {
	case tokens, ok := <-tokensChan:
		if ok {
			promptTokens = &tokens
		}
	case <-time.After(tokenCountTimeout):
	}

	logResult(logger, result, promptTokens)
}

// countPromptTokens estimates prompt tokens in the background. The channel
// is closed without a value when no estimate is possible.
func (h *Handlers) countPromptTokens(messages json.RawMessage, model string) <-chan int {
	tokensChan := make(chan int, 1)
	go func() {
		defer close(tokensChan)
		if h.Tokenizer == nil {
			return
		}
		parsed, err := types.ParseMessages(messages)
		if err != nil || len(parsed) == 0 {
			return
		}
		if tokens, err := h.Tokenizer.CountMessages(parsed, model); err == nil {
			tokensChan <- tokens
		}
	}()
	return tokensChan
}

func logResult(logger *slog.Logger, result *types.ProxyResult, promptTokens *int) {
	if result == nil {
		return
	}
	attrs := []any{
		"model", result.Model,
		"stream", result.IsStreaming,
		"status", result.StatusCode,
		"upstream_status", result.UpstreamStatus,
		"bytes", result.BytesRelayed,
		"duration_ms", result.Duration.Milliseconds(),
	}
	if promptTokens != nil {
		attrs = append(attrs, "prompt_tokens_estimate", *promptTokens)
	}
	if result.ErrorMessage != "" {
		attrs = append(attrs, "error", result.ErrorMessage)
	}
	logger.Info("chat completion relayed", attrs...)
}
