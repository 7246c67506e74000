package openai

import (
	"fmt"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// encodeBody serialises the upstream request without HTML escaping so
// message text reaches the provider byte-for-byte.
func encodeBody(body *types.UpstreamRequest) ([]byte, error) {
	payload, err := types.MarshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("encode upstream request: %w", err)
	}
	return payload, nil
}
