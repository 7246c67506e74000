package tokenizer

import (
	"testing"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

func newTestTokenizer(t *testing.T) *TiktokenTokenizer {
	t.Helper()
	tok, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(tok.Close)
	return tok
}

func textMessage(role, content string) types.Message {
	return types.Message{Role: role, Content: types.Content{Text: content}}
}

func TestNew(t *testing.T) {
	tok := newTestTokenizer(t)
	if tok.encodings == nil {
		t.Fatal("encodings cache is nil")
	}
}

func TestCountTokens(t *testing.T) {
	tok := newTestTokenizer(t)

	tests := []struct {
		name     string
		text     string
		model    string
		minCount int // Token counts may vary slightly
		maxCount int
	}{
		{"simple text gpt-4", "Hello, world!", "gpt-4", 3, 5},
		{"simple text gpt-3.5", "Hello, world!", "gpt-3.5-turbo", 3, 5},
		{"simple text gpt-5-mini", "Hello, world!", "gpt-5-mini", 3, 5},
		{"unknown model defaults to cl100k", "Hello, world!", "claude-3-opus", 3, 5},
		{"empty text", "", "gpt-4", 0, 0},
		{"longer text", "The quick brown fox jumps over the lazy dog.", "gpt-4", 8, 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			count, err := tok.CountTokens(tc.text, tc.model)
			if err != nil {
				t.Fatalf("CountTokens() error: %v", err)
			}
			if count < tc.minCount || count > tc.maxCount {
				t.Errorf("CountTokens() = %d, want between %d and %d",
					count, tc.minCount, tc.maxCount)
			}
		})
	}
}

func TestResolveEncoding(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{"gpt-4", EncodingCL100kBase},
		{"gpt-4-turbo", EncodingCL100kBase},
		{"gpt-3.5-turbo", EncodingCL100kBase},
		{"gpt-4o", EncodingO200kBase},
		{"gpt-4o-mini", EncodingO200kBase},
		{"gpt-4.1-nano", EncodingO200kBase},
		{"gpt-5-mini", EncodingO200kBase},
		{"GPT-5", EncodingO200kBase},
		{"o1-preview", EncodingO200kBase},
		{"o4-mini", EncodingO200kBase},
		{"chatgpt-4o-latest", EncodingO200kBase},
		{"claude-3-opus", EncodingCL100kBase},
		{"unknown-model", EncodingCL100kBase},
		{"", EncodingCL100kBase},
	}

	for _, tc := range tests {
		t.Run(tc.model, func(t *testing.T) {
			if got := resolveEncoding(tc.model); got != tc.expected {
				t.Errorf("resolveEncoding(%q) = %q, want %q", tc.model, got, tc.expected)
			}
		})
	}
}

func TestCountMessages(t *testing.T) {
	tok := newTestTokenizer(t)

	tests := []struct {
		name     string
		messages []types.Message
		model    string
		minCount int
		maxCount int
	}{
		{
			name:     "single user message",
			messages: []types.Message{textMessage(types.RoleUser, "Hello!")},
			model:    "gpt-5-mini",
			minCount: 5,
			maxCount: 10,
		},
		{
			name: "system and user messages",
			messages: []types.Message{
				textMessage(types.RoleSystem, "You are a helpful assistant."),
				textMessage(types.RoleUser, "Hello!"),
			},
			model:    "gpt-4",
			minCount: 12,
			maxCount: 20,
		},
		{
			name: "multimodal parts",
			messages: []types.Message{{
				Role: types.RoleUser,
				Content: types.Content{Parts: []types.ContentPart{
					{Type: types.ContentTypeText, Text: "What is this?"},
					{Type: types.ContentTypeImageURL, ImageURL: &types.ImageURL{URL: "http://example.com/a.png", Detail: "low"}},
				}},
			}},
			model:    "gpt-4o",
			minCount: 255 + 5,
			maxCount: 255 + 15,
		},
		{
			name:     "no messages",
			messages: nil,
			model:    "gpt-4",
			minCount: 0,
			maxCount: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			count, err := tok.CountMessages(tc.messages, tc.model)
			if err != nil {
				t.Fatalf("CountMessages() error: %v", err)
			}
			if count < tc.minCount || count > tc.maxCount {
				t.Errorf("CountMessages() = %d, want between %d and %d",
					count, tc.minCount, tc.maxCount)
			}
		})
	}
}

func TestImageTokens(t *testing.T) {
	tests := []struct {
		name     string
		image    *types.ImageURL
		expected int
	}{
		{"nil image", nil, 0},
		{"low detail", &types.ImageURL{Detail: "low"}, imageBaseTokens + imageLowDetailTiles*imageTileTokens},
		{"high detail", &types.ImageURL{Detail: "high"}, imageBaseTokens + imageHighDetailMax*imageTileTokens},
		{"no detail specified", &types.ImageURL{}, imageBaseTokens + imageHighDetailMax*imageTileTokens},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := imageTokens(tc.image); got != tc.expected {
				t.Errorf("imageTokens() = %d, want %d", got, tc.expected)
			}
		})
	}
}

func TestEncodingCaching(t *testing.T) {
	tok := newTestTokenizer(t)

	if _, err := tok.CountTokens("hello", "gpt-4"); err != nil {
		t.Fatalf("first CountTokens() error: %v", err)
	}
	tok.encodings.Wait()

	first, ok := tok.encodings.Get(EncodingCL100kBase)
	if !ok {
		t.Fatal("expected cl100k_base to be cached")
	}

	if _, err := tok.CountTokens("world", "gpt-3.5-turbo"); err != nil {
		t.Fatalf("second CountTokens() error: %v", err)
	}
	second, _ := tok.encodings.Get(EncodingCL100kBase)
	if first != second {
		t.Error("expected cached encoding to be reused")
	}
}
