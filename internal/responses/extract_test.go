package responses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestExtractAnswer_FirstMatch(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{
			{Type: "reasoning"},
			{
				Type: "message",
				Role: "assistant",
				Content: []ContentItem{
					{Type: "refusal", Text: "nope"},
					{Type: "output_text", Text: "  first answer  "},
					{Type: "output_text", Text: "second answer"},
				},
			},
			{
				Type:    "message",
				Role:    "assistant",
				Content: []ContentItem{{Type: "output_text", Text: "third answer"}},
			},
		},
	}

	answer, ok := ExtractAnswer(resp)
	require.True(t, ok)
	assert.Equal(t, "first answer", answer)
}

func TestExtractAnswer_Absent(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
	}{
		{
			name: "nil response",
			resp: nil,
		},
		{
			name: "no output items",
			resp: &Response{},
		},
		{
			name: "no assistant message",
			resp: &Response{Output: []OutputItem{
				{Type: "message", Role: "tool", Content: []ContentItem{{Type: "output_text", Text: "hi"}}},
			}},
		},
		{
			name: "no text content",
			resp: &Response{Output: []OutputItem{
				{Type: "message", Role: "assistant", Content: []ContentItem{{Type: "refusal", Text: "no"}}},
			}},
		},
		{
			name: "whitespace-only text",
			resp: &Response{Output: []OutputItem{
				{Type: "message", Role: "assistant", Content: []ContentItem{{Type: "output_text", Text: "   \n\t"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractAnswer(tt.resp)
			assert.False(t, ok)
		})
	}
}

func TestExtractUsage_RequiresFullTriple(t *testing.T) {
	full := &Response{Usage: &RawUsage{
		InputTokens:  int64Ptr(10),
		OutputTokens: int64Ptr(5),
		TotalTokens:  int64Ptr(15),
	}}
	usage, ok := ExtractUsage(full)
	require.True(t, ok)
	assert.Equal(t, 10, usage.InputTokens)
	assert.Equal(t, 5, usage.OutputTokens)
	assert.Equal(t, 15, usage.TotalTokens)

	partial := &Response{Usage: &RawUsage{
		InputTokens: int64Ptr(10),
		TotalTokens: int64Ptr(15),
	}}
	_, ok = ExtractUsage(partial)
	assert.False(t, ok)

	_, ok = ExtractUsage(&Response{})
	assert.False(t, ok)
}

func TestExtractUsage_ZeroIsReported(t *testing.T) {
	resp := &Response{Usage: &RawUsage{
		InputTokens:  int64Ptr(0),
		OutputTokens: int64Ptr(0),
		TotalTokens:  int64Ptr(0),
	}}
	usage, ok := ExtractUsage(resp)
	require.True(t, ok)
	assert.Zero(t, usage.TotalTokens)
}

func TestExtractDuration(t *testing.T) {
	resp := &Response{CreatedAt: int64Ptr(1700000000), CompletedAt: int64Ptr(1700000007)}
	duration, ok := ExtractDuration(resp)
	require.True(t, ok)
	assert.Equal(t, 7.0, duration)

	_, ok = ExtractDuration(&Response{CreatedAt: int64Ptr(1700000000)})
	assert.False(t, ok)
}
