package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Fallback values applied when the inbound field is absent or falsy.
const (
	DefaultModel               = "gpt-5-mini"
	DefaultTemperature         = 1.0
	DefaultMaxCompletionTokens = 16000
)

// Defaults holds the values substituted into an upstream request.
type Defaults struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
}

// StandardDefaults returns the built-in request defaults.
func StandardDefaults() Defaults {
	return Defaults{
		Model:               DefaultModel,
		Temperature:         DefaultTemperature,
		MaxCompletionTokens: DefaultMaxCompletionTokens,
	}
}

// RelayRequest is the inbound chat completion body.
// Fields are kept raw so whatever the caller sends is forwarded untouched;
// only the five relayed fields are read, everything else is dropped.
type RelayRequest struct {
	Model               json.RawMessage `json:"model"`
	Messages            json.RawMessage `json:"messages"`
	Temperature         json.RawMessage `json:"temperature"`
	MaxCompletionTokens json.RawMessage `json:"max_completion_tokens"`
	Stream              json.RawMessage `json:"stream"`
}

// ParseRelayRequest decodes an inbound body. An empty body is treated as an
// empty object.
func ParseRelayRequest(body []byte) (*RelayRequest, error) {
	req := &RelayRequest{}
	if len(trimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

// IsStreaming reports whether the caller asked for a streamed response.
func (r *RelayRequest) IsStreaming() bool {
	return Truthy(r.Stream)
}

// Upstream builds the provider request, filling falsy fields from d.
func (r *RelayRequest) Upstream(d Defaults) *UpstreamRequest {
	up := &UpstreamRequest{
		Model:               r.Model,
		Messages:            r.Messages,
		Temperature:         r.Temperature,
		MaxCompletionTokens: r.MaxCompletionTokens,
		Stream:              r.IsStreaming(),
	}
	if !Truthy(up.Model) {
		up.Model, _ = json.Marshal(d.Model)
	}
	if !Truthy(up.Temperature) {
		up.Temperature = json.RawMessage(strconv.FormatFloat(d.Temperature, 'f', -1, 64))
	}
	if !Truthy(up.MaxCompletionTokens) {
		up.MaxCompletionTokens = json.RawMessage(strconv.Itoa(d.MaxCompletionTokens))
	}
	return up
}

// UpstreamRequest is the body POSTed to the provider. Key order matches the
// wire format; an absent messages field stays absent.
type UpstreamRequest struct {
	Model               json.RawMessage `json:"model"`
	Messages            json.RawMessage `json:"messages,omitempty"`
	Temperature         json.RawMessage `json:"temperature"`
	MaxCompletionTokens json.RawMessage `json:"max_completion_tokens"`
	Stream              bool            `json:"stream"`
}

// ModelName returns the model as a string for logging and token counting.
// Non-string models are returned in their raw JSON form.
func (u *UpstreamRequest) ModelName() string {
	var name string
	if err := json.Unmarshal(u.Model, &name); err == nil {
		return name
	}
	return string(u.Model)
}

// Truthy applies JavaScript truthiness to a raw JSON value: absent, null,
// false, 0 and "" are falsy, everything else is truthy.
func Truthy(raw json.RawMessage) bool {
	raw = trimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		return len(raw) > 2
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		// Out-of-range numbers are still non-zero.
		return true
	}
	return f != 0
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && isSpace(b[0]) {
		b = b[1:]
	}
	for len(b) > 0 && isSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
