package providers

import (
	"context"
)

// Client is the single round-trip contract the conversation core speaks.
// Implementations must not retry internally; a failed call is a failed turn.
type Client interface {
	// Complete submits one prompt and blocks for the full reply.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// CompletionRequest is one linearized prompt for one model call.
type CompletionRequest struct {
	Model       string  `json:"model"`
	Input       string  `json:"input"`
	Temperature float64 `json:"temperature"`
}

// Usage is the validated token triple. All three fields come from the
// endpoint together; a partially reported triple is treated as absent.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Completion is a normalized successful reply. Usage and DurationSeconds are
// nil when the endpoint did not report them; zero is a legitimate reported
// value and must stay distinguishable from "not reported".
type Completion struct {
	Text            string   `json:"text"`
	Model           string   `json:"model"`
	Usage           *Usage   `json:"usage,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}
