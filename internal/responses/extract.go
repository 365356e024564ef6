package responses

import (
	"strings"

	"github.com/kidonrage/ai-labs/internal/providers"
)

// ExtractAnswer walks the output list for the first assistant message and,
// within it, the first plain-text content entry. The endpoint may emit any
// number of messages and content entries; first match wins. A string that is
// empty after trimming counts as no answer.
func ExtractAnswer(resp *Response) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, item := range resp.Output {
		if item.Type != itemTypeMessage || item.Role != roleAssistant {
			continue
		}
		for _, content := range item.Content {
			if content.Type != contentTypeOutput {
				continue
			}
			text := strings.TrimSpace(content.Text)
			if text == "" {
				return "", false
			}
			return text, true
		}
	}
	return "", false
}

// ExtractUsage validates the usage sub-object into a token triple. All three
// fields must be present; a partial report yields absent, not zeros.
func ExtractUsage(resp *Response) (*providers.Usage, bool) {
	if resp == nil || resp.Usage == nil {
		return nil, false
	}
	u := resp.Usage
	if u.InputTokens == nil || u.OutputTokens == nil || u.TotalTokens == nil {
		return nil, false
	}
	return &providers.Usage{
		InputTokens:  int(*u.InputTokens),
		OutputTokens: int(*u.OutputTokens),
		TotalTokens:  int(*u.TotalTokens),
	}, true
}

// ExtractDuration derives the call duration from the endpoint's epoch-second
// timestamps when both ends were reported.
func ExtractDuration(resp *Response) (float64, bool) {
	if resp == nil || resp.CreatedAt == nil || resp.CompletedAt == nil {
		return 0, false
	}
	return float64(*resp.CompletedAt - *resp.CreatedAt), true
}
