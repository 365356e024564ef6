package responses

// Response is the raw decoded reply of the hosted responses endpoint. Every
// field is optional on the wire; pointers keep "absent" distinguishable from
// a reported zero.
type Response struct {
	CreatedAt   *int64       `json:"created_at,omitempty"`
	CompletedAt *int64       `json:"completed_at,omitempty"`
	Model       string       `json:"model,omitempty"`
	Usage       *RawUsage    `json:"usage,omitempty"`
	Output      []OutputItem `json:"output,omitempty"`
}

// RawUsage mirrors the usage sub-object as reported, field by field.
type RawUsage struct {
	InputTokens  *int64 `json:"input_tokens,omitempty"`
	OutputTokens *int64 `json:"output_tokens,omitempty"`
	TotalTokens  *int64 `json:"total_tokens,omitempty"`
}

// OutputItem is one entry of the heterogeneous output list. Items the
// extractor does not recognize by type are skipped, not rejected.
type OutputItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	Content []ContentItem `json:"content,omitempty"`
}

// ContentItem is one entry of a message item's content list.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

const (
	itemTypeMessage   = "message"
	roleAssistant     = "assistant"
	contentTypeOutput = "output_text"
)
