package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidonrage/ai-labs/internal/pricing"
	"github.com/kidonrage/ai-labs/internal/providers"
)

// fakeClient scripts completions and records every request it sees.
type fakeClient struct {
	mu       sync.Mutex
	requests []providers.CompletionRequest
	reply    func(req providers.CompletionRequest) (*providers.Completion, error)

	inFlight    int
	maxInFlight int
}

func (f *fakeClient) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.Completion, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	reply := f.reply
	f.mu.Unlock()

	resp, err := reply(req)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return resp, err
}

func (f *fakeClient) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func usageReply(text string, in, out int) func(providers.CompletionRequest) (*providers.Completion, error) {
	return func(req providers.CompletionRequest) (*providers.Completion, error) {
		return &providers.Completion{
			Text:  text,
			Model: req.Model,
			Usage: &providers.Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
		}, nil
	}
}

func newTestConversation(client providers.Client) *Conversation {
	return New(
		Config{Endpoint: "https://api.example.com", Model: "gpt-3.5-turbo", Temperature: 0.7, APIKey: "sk-test"},
		DefaultPolicy(),
		"You are a helpful assistant.",
		client,
		nil,
	)
}

func TestSend_FullTurn(t *testing.T) {
	client := &fakeClient{reply: usageReply("Hello there!", 10, 5)}
	conv := newTestConversation(client)

	var notifications []Snapshot
	conv.OnChange(func(s Snapshot) { notifications = append(notifications, s) })

	result, err := conv.Send(context.Background(), "  Hi  ")
	require.NoError(t, err)

	assert.Equal(t, "Hello there!", result.Answer)
	assert.Equal(t, "gpt-3.5-turbo", result.Model)
	require.NotNil(t, result.Usage)
	assert.Equal(t, 15, result.Usage.TotalTokens)
	require.NotNil(t, result.Cost)
	wantCost, _ := pricing.Cost("gpt-3.5-turbo", 10, 5)
	assert.InDelta(t, wantCost, *result.Cost, 1e-12)

	turns := conv.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "Hi", turns[0].Text)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "Hello there!", turns[1].Text)

	// Both turns of the pair carry identical usage and the full request cost.
	for _, turn := range turns {
		require.True(t, turn.HasUsage())
		assert.Equal(t, 10, *turn.InputTokens)
		assert.Equal(t, 5, *turn.OutputTokens)
		assert.Equal(t, 15, *turn.TotalTokens)
		require.NotNil(t, turn.Cost)
		assert.InDelta(t, wantCost, *turn.Cost, 1e-12)
	}

	// Optimistic user append and assistant append each notify once.
	require.Len(t, notifications, 2)
	assert.Len(t, notifications[0].Turns, 1)
	assert.Len(t, notifications[1].Turns, 2)

	totals := conv.Totals()
	assert.Equal(t, 15, totals.History.TotalTokens)
	assert.Equal(t, 15, totals.GrandTotalTokens)
}

func TestSend_PromptLayout(t *testing.T) {
	client := &fakeClient{reply: usageReply("sure", 1, 1)}
	conv := newTestConversation(client)

	_, err := conv.Send(context.Background(), "first question")
	require.NoError(t, err)
	_, err = conv.Send(context.Background(), "second question")
	require.NoError(t, err)

	require.Equal(t, 2, client.requestCount())
	prompt := client.requests[1].Input
	assert.True(t, strings.HasPrefix(prompt, "SYSTEM: You are a helpful assistant.\n"))
	assert.Contains(t, prompt, "RECENT CONVERSATION:\nUSER: first question\nASSISTANT: sure\n")
	assert.True(t, strings.HasSuffix(prompt, "USER: second question\nASSISTANT:"))
}

func TestSend_ValidationErrors(t *testing.T) {
	client := &fakeClient{reply: usageReply("x", 1, 1)}

	conv := newTestConversation(client)
	_, err := conv.Send(context.Background(), "   \n ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	noKey := New(Config{Model: "gpt-4o"}, DefaultPolicy(), "p", client, nil)
	_, err = noKey.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	// Neither rejection reached the network or touched state.
	assert.Zero(t, client.requestCount())
	assert.Empty(t, conv.Turns())
}

func TestSend_TransportFailureKeepsOptimisticUserTurn(t *testing.T) {
	client := &fakeClient{reply: func(providers.CompletionRequest) (*providers.Completion, error) {
		return nil, errors.New("status 500: upstream exploded")
	}}
	conv := newTestConversation(client)

	notified := 0
	conv.OnChange(func(Snapshot) { notified++ })

	_, err := conv.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream exploded")

	turns := conv.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.False(t, turns[0].HasUsage())
	assert.Equal(t, 1, notified)
}

func TestReset_KeepsConfigAndPolicy(t *testing.T) {
	client := &fakeClient{reply: usageReply("ok", 2, 2)}
	conv := newTestConversation(client)

	_, err := conv.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.NotEmpty(t, conv.Turns())

	conv.Reset()

	assert.Empty(t, conv.Turns())
	assert.Empty(t, conv.Summaries())
	assert.Equal(t, CombinedTotals{}, conv.Totals())
	assert.Equal(t, "gpt-3.5-turbo", conv.Config().Model)
	assert.Equal(t, DefaultPolicy(), conv.Policy())
}

func TestSetConfigAndPolicy_MergePatch(t *testing.T) {
	conv := newTestConversation(&fakeClient{})

	notified := 0
	conv.OnChange(func(Snapshot) { notified++ })

	model := "gpt-4o"
	conv.SetConfig(ConfigPatch{Model: &model})
	cfg := conv.Config()
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "https://api.example.com", cfg.Endpoint)
	assert.Equal(t, "sk-test", cfg.APIKey)

	tail := 20
	conv.SetContextPolicy(PolicyPatch{TailSize: &tail})
	policy := conv.Policy()
	assert.Equal(t, 20, policy.TailSize)
	assert.Equal(t, DefaultPolicy().ChunkSize, policy.ChunkSize)

	assert.Equal(t, 2, notified)
}
