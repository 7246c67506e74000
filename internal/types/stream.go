package types

import "net/http"

// SSE formatting helpers

// SSEPrefix is the Server-Sent Events data prefix.
const SSEPrefix = "data: "

// FormatSSE formats a payload as a single Server-Sent Events data line.
func FormatSSE(data []byte) []byte {
	result := make([]byte, 0, len(SSEPrefix)+len(data)+2)
	result = append(result, SSEPrefix...)
	result = append(result, data...)
	result = append(result, '\n', '\n')
	return result
}

// ErrorEvent formats {"error": message} as an SSE data line.
func ErrorEvent(message string) ([]byte, error) {
	data, err := MarshalJSON(ErrorBody{Error: message})
	if err != nil {
		return nil, err
	}
	return FormatSSE(data), nil
}

// SetSSEHeaders sets the response headers for a relayed event stream.
func SetSSEHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
}
