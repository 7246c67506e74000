package tokenizer

import (
	"strings"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Message token overhead varies by model family.
// These values are based on OpenAI's documentation.
const (
	// Per-message overhead tokens
	messageOverheadGPT4  = 3 // <|start|>role<|end|>
	messageOverheadGPT35 = 4

	// Reply priming tokens (assistant response start)
	replyPrimingTokens = 3

	// Name field overhead (if present)
	nameOverhead = 1

	// Image token constants (OpenAI rules)
	imageBaseTokens     = 85  // Base cost for any image
	imageTileTokens     = 170 // Cost per 512x512 tile
	imageLowDetailTiles = 1
	imageHighDetailMax  = 4 // Without dimensions, assume four tiles
)

// CountMessages counts prompt tokens for a slice of messages.
func (t *TiktokenTokenizer) CountMessages(messages []types.Message, model string) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	total := 0
	overhead := messageOverhead(model)

	for _, msg := range messages {
		tokens, err := t.countMessage(msg, model)
		if err != nil {
			return 0, err
		}
		total += tokens + overhead
	}

	return total + replyPrimingTokens, nil
}

// countMessage counts tokens for a single message.
func (t *TiktokenTokenizer) countMessage(msg types.Message, model string) (int, error) {
	total, err := t.CountTokens(msg.Role, model)
	if err != nil {
		return 0, err
	}

	contentTokens, err := t.countContent(msg.Content, model)
	if err != nil {
		return 0, err
	}
	total += contentTokens

	if msg.Name != "" {
		nameTokens, err := t.CountTokens(msg.Name, model)
		if err != nil {
			return 0, err
		}
		total += nameTokens + nameOverhead
	}

	return total, nil
}

// countContent counts tokens for message content (text or multimodal).
func (t *TiktokenTokenizer) countContent(content types.Content, model string) (int, error) {
	if content.Text != "" {
		return t.CountTokens(content.Text, model)
	}

	total := 0
	for _, part := range content.Parts {
		switch part.Type {
		case types.ContentTypeText:
			tokens, err := t.CountTokens(part.Text, model)
			if err != nil {
				return 0, err
			}
			total += tokens
		case types.ContentTypeImageURL:
			total += imageTokens(part.ImageURL)
		}
	}
	return total, nil
}

// imageTokens estimates the cost of an image part.
func imageTokens(img *types.ImageURL) int {
	if img == nil {
		return 0
	}
	if strings.EqualFold(img.Detail, "low") {
		return imageBaseTokens + imageLowDetailTiles*imageTileTokens
	}
	return imageBaseTokens + imageHighDetailMax*imageTileTokens
}

// messageOverhead returns the per-message token overhead for a model.
func messageOverhead(model string) int {
	if strings.HasPrefix(strings.ToLower(model), "gpt-3.5") {
		return messageOverheadGPT35
	}
	return messageOverheadGPT4
}
