package conversation

import (
	"time"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. The usage, cost, and duration
// fields are attached identically to both turns of a request/response pair:
// the user turn is backfilled when the reply arrives, so aggregation can read
// usage off user turns alone without double counting. Apart from that one
// backfill, turns are never mutated.
type Turn struct {
	Role            Role      `json:"role"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	InputTokens     *int      `json:"input_tokens,omitempty"`
	OutputTokens    *int      `json:"output_tokens,omitempty"`
	TotalTokens     *int      `json:"total_tokens,omitempty"`
	Model           string    `json:"model,omitempty"`
	Cost            *float64  `json:"cost,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
}

// HasUsage reports whether the full token triple is attached. Turns restored
// from older snapshots may carry none of it.
func (t *Turn) HasUsage() bool {
	return t.InputTokens != nil && t.OutputTokens != nil && t.TotalTokens != nil
}

// Summary is a compaction of the contiguous turn index range
// [FromIndex, ToIndex] (inclusive) into a bounded text block. Stored
// summaries partition a prefix of the turn sequence: no gaps, no overlaps.
type Summary struct {
	FromIndex int       `json:"from_index"`
	ToIndex   int       `json:"to_index"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SummarizationTotals tracks spend on summarization calls separately from the
// conversation totals; summarization is never charged to a visible turn.
type SummarizationTotals struct {
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost"`
}

// ContextPolicy configures context assembly and summarization.
type ContextPolicy struct {
	// TailSize is how many of the most recent turns are always sent
	// verbatim and never summarized.
	TailSize int `json:"tail_size"`
	// ChunkSize is the minimum number of uncovered, non-tail turns required
	// to trigger one summarization pass, and the size of each summarized range.
	ChunkSize int `json:"chunk_size"`
	// MaxSummaryChars bounds the stored length of a summary.
	MaxSummaryChars int `json:"max_summary_chars"`
	// Model and Temperature select the auxiliary model for summarization
	// calls.
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// DefaultPolicy returns the policy used until the caller overrides it.
func DefaultPolicy() ContextPolicy {
	return ContextPolicy{
		TailSize:        12,
		ChunkSize:       10,
		MaxSummaryChars: 2000,
		Model:           "gpt-4o-mini",
		Temperature:     0.3,
	}
}

// Config is the connection configuration for the main chat model. The API
// key lives in memory only; it is excluded from every exported snapshot.
type Config struct {
	Endpoint    string  `json:"endpoint"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	APIKey      string  `json:"-"`
}

// ConfigPatch is a merge-patch over Config; nil fields keep current values.
type ConfigPatch struct {
	Endpoint    *string  `json:"endpoint,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	APIKey      *string  `json:"api_key,omitempty"`
}

// PolicyPatch is a merge-patch over ContextPolicy; nil fields keep current
// values.
type PolicyPatch struct {
	TailSize        *int     `json:"tail_size,omitempty"`
	ChunkSize       *int     `json:"chunk_size,omitempty"`
	MaxSummaryChars *int     `json:"max_summary_chars,omitempty"`
	Model           *string  `json:"model,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}
