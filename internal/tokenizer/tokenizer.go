// Package tokenizer estimates prompt token counts for relayed requests.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkoukk/tiktoken-go"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Tokenizer counts tokens for chat completion requests.
type Tokenizer interface {
	// CountTokens counts tokens in a text string for a given model.
	CountTokens(text string, model string) (int, error)

	// CountMessages counts prompt tokens for a slice of messages.
	CountMessages(messages []types.Message, model string) (int, error)
}

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base" // GPT-4, GPT-3.5-turbo
	EncodingO200kBase  = "o200k_base"  // GPT-4o, GPT-5, o-series
)

// modelEncoding pairs a prefix with its encoding.
type modelEncoding struct {
	prefix   string
	encoding string
}

// modelEncodings lists model prefixes and their encodings.
// Ordered so that longer prefixes win over their shorter relatives.
var modelEncodings = []modelEncoding{
	{"text-embedding", EncodingCL100kBase},
	{"gpt-4o", EncodingO200kBase}, // Must come before "gpt-4"
	{"gpt-4.1", EncodingO200kBase},
	{"gpt-5", EncodingO200kBase},
	{"gpt-3.5", EncodingCL100kBase},
	{"gpt-4", EncodingCL100kBase},
	{"chatgpt", EncodingO200kBase},
	{"o1", EncodingO200kBase},
	{"o3", EncodingO200kBase},
	{"o4", EncodingO200kBase},
}

// TiktokenTokenizer implements Tokenizer using tiktoken-go.
// Loaded encodings are kept in a small ristretto cache.
type TiktokenTokenizer struct {
	encodings *ristretto.Cache[string, *tiktoken.Tiktoken]
}

// New creates a new TiktokenTokenizer.
func New() (*TiktokenTokenizer, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *tiktoken.Tiktoken]{
		NumCounters: 100,
		MaxCost:     8,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create encoding cache: %w", err)
	}
	return &TiktokenTokenizer{encodings: cache}, nil
}

// Close releases the encoding cache.
func (t *TiktokenTokenizer) Close() {
	t.encodings.Close()
}

// getEncoding returns the tiktoken encoding for a model, loading it on a
// cache miss.
func (t *TiktokenTokenizer) getEncoding(model string) (*tiktoken.Tiktoken, error) {
	encodingName := resolveEncoding(model)

	if enc, ok := t.encodings.Get(encodingName); ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encodingName, err)
	}
	t.encodings.Set(encodingName, enc, 1)
	return enc, nil
}

// resolveEncoding determines the encoding name for a model.
func resolveEncoding(model string) string {
	modelLower := strings.ToLower(model)

	for _, me := range modelEncodings {
		if strings.HasPrefix(modelLower, me.prefix) {
			return me.encoding
		}
	}

	// Unknown models get cl100k_base
	return EncodingCL100kBase
}

// CountTokens counts tokens in a text string for a given model.
func (t *TiktokenTokenizer) CountTokens(text string, model string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := t.getEncoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
