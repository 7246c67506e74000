package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// streamBufferSize bounds a single upstream read while streaming.
const streamBufferSize = 32 * 1024

// handleJSONResponse relays a buffered completion. The upstream status is
// not inspected: whatever JSON the provider returned goes back with 200.
func handleJSONResponse(w http.ResponseWriter, resp *http.Response, logger *slog.Logger, result *types.ProxyResult) (*types.ProxyResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return writeFailure(w, logger, result, fmt.Errorf("read upstream response: %w", err))
	}

	var doc bytes.Buffer
	if err := json.Compact(&doc, body); err != nil {
		return writeFailure(w, logger, result, fmt.Errorf("invalid upstream JSON: %w", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		result.ErrorMessage = extractErrorMessage(body)
		logger.Warn("upstream error relayed with status 200",
			"upstream_status", resp.StatusCode,
			"message", result.ErrorMessage,
		)
	}

	result.StatusCode = http.StatusOK
	if err := types.WriteRawJSON(w, http.StatusOK, doc.Bytes()); err != nil {
		result.Error = err
		return result, err
	}
	result.BytesRelayed = int64(doc.Len())
	return result, nil
}

// handleStreamingResponse relays an event stream chunk by chunk. Upstream
// SSE framing is passed through untouched.
func handleStreamingResponse(w http.ResponseWriter, resp *http.Response, logger *slog.Logger, result *types.ProxyResult) (*types.ProxyResult, error) {
	types.SetSSEHeaders(w.Header())

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return handleStreamError(w, resp, logger, result)
	}

	flusher, _ := w.(http.Flusher)
	w.WriteHeader(http.StatusOK)
	result.StatusCode = http.StatusOK
	flush(flusher)

	decoder := NewStreamDecoder()
	buf := make([]byte, streamBufferSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			text, err := decoder.Decode(buf[:n])
			if err == nil {
				err = relayChunk(w, flusher, text, result)
			}
			if err != nil {
				// Most likely the caller went away; nothing more can be sent.
				logger.Warn("stream write failed", "error", err)
				result.Error = err
				result.ErrorMessage = err.Error()
				return result, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			tail, err := decoder.Flush()
			if err == nil {
				err = relayChunk(w, flusher, tail, result)
			}
			if err != nil {
				logger.Warn("stream write failed", "error", err)
				result.Error = err
				result.ErrorMessage = err.Error()
				return result, err
			}
			return result, nil
		}
		if readErr != nil {
			logger.Error("stream error", "error", readErr)
			result.Error = readErr
			result.ErrorMessage = readErr.Error()
			return result, readErr
		}
	}
}

// handleStreamError reports a failed upstream status as one SSE error
// event carrying the raw upstream body text.
func handleStreamError(w http.ResponseWriter, resp *http.Response, logger *slog.Logger, result *types.ProxyResult) (*types.ProxyResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return writeFailure(w, logger, result, fmt.Errorf("read upstream error: %w", err))
	}

	errorText := string(body)
	logger.Error("upstream error", "upstream_status", resp.StatusCode, "body", errorText)

	event, err := types.ErrorEvent(errorText)
	if err != nil {
		return writeFailure(w, logger, result, err)
	}

	result.StatusCode = http.StatusOK
	result.ErrorMessage = errorText
	w.WriteHeader(http.StatusOK)
	if err := relayChunk(w, asFlusher(w), event, result); err != nil {
		result.Error = err
		return result, err
	}
	return result, nil
}

// writeFailure answers 500 with the error message. Only valid before any
// part of the response has been written.
func writeFailure(w http.ResponseWriter, logger *slog.Logger, result *types.ProxyResult, err error) (*types.ProxyResult, error) {
	logger.Error("proxy error", "error", err)
	result.StatusCode = http.StatusInternalServerError
	result.Error = err
	result.ErrorMessage = err.Error()
	types.WriteError(w, http.StatusInternalServerError, err.Error())
	return result, err
}

func relayChunk(w io.Writer, flusher http.Flusher, chunk []byte, result *types.ProxyResult) error {
	if len(chunk) == 0 {
		return nil
	}
	n, err := w.Write(chunk)
	result.BytesRelayed += int64(n)
	if err != nil {
		return err
	}
	flush(flusher)
	return nil
}

func asFlusher(w http.ResponseWriter) http.Flusher {
	f, _ := w.(http.Flusher)
	return f
}

func flush(f http.Flusher) {
	if f != nil {
		f.Flush()
	}
}

// extractErrorMessage pulls error.message out of an OpenAI error payload.
func extractErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Message
}
