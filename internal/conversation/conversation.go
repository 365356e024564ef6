package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kidonrage/ai-labs/internal/pricing"
	"github.com/kidonrage/ai-labs/internal/providers"
)

var (
	// ErrEmptyInput rejects a send with no text before any network call.
	ErrEmptyInput = errors.New("message text is empty")
	// ErrMissingAPIKey rejects a send when no credential is configured.
	ErrMissingAPIKey = errors.New("API key is not configured")
)

// Conversation is the aggregate root: the ordered turn history, summary
// coverage, summarization totals, policy, and connection config. A single
// cooperative control flow mutates it; the one truly concurrent path,
// summarization, is serialized separately (see EnsureCoverage).
type Conversation struct {
	mu          sync.Mutex
	summarizeMu sync.Mutex

	turns               []Turn
	summaries           []Summary
	summarizationTotals SummarizationTotals
	policy              ContextPolicy
	config              Config
	preamble            string

	client   providers.Client
	logger   *logrus.Logger
	onChange func(Snapshot)
	now      func() time.Time
}

// SendResult is the outcome of one full turn.
type SendResult struct {
	Answer          string           `json:"answer"`
	Model           string           `json:"model"`
	Usage           *providers.Usage `json:"usage,omitempty"`
	DurationSeconds *float64         `json:"duration_seconds,omitempty"`
	Cost            *float64         `json:"cost,omitempty"`
}

// New creates a conversation with the given connection config, policy, and
// system preamble. The same client serves main chat and summarization calls.
func New(config Config, policy ContextPolicy, preamble string, client providers.Client, logger *logrus.Logger) *Conversation {
	return &Conversation{
		policy:   policy,
		config:   config,
		preamble: preamble,
		client:   client,
		logger:   logger,
		// UTC keeps timestamps stable across an export/import round trip.
		now: func() time.Time { return time.Now().UTC() },
	}
}

// OnChange registers the state-changed observer. It is invoked exactly once
// per logical mutation, after in-memory state is consistent, carrying the
// exported snapshot. A send cycle notifies twice: once for the optimistic
// user turn, once for the paired assistant turn.
func (c *Conversation) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Conversation) notify(snapshot Snapshot) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// Send performs one full turn: coverage upkeep, context assembly, the
// network call, turn append with usage backfill, and totals update. On a
// transport failure the optimistically appended user turn stays in history
// without usage; the caller may resubmit, nothing is retried here.
func (c *Conversation) Send(ctx context.Context, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	if c.config.APIKey == "" {
		c.mu.Unlock()
		return nil, ErrMissingAPIKey
	}
	c.mu.Unlock()

	// Coverage must be current before the turn history grows, and a
	// summarization failure must surface before any turn is appended.
	if err := c.EnsureCoverage(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	prompt := buildPrompt(c.preamble, c.summaries, tailOf(c.turns, c.policy.TailSize), text)
	model := c.config.Model
	temperature := c.config.Temperature
	userIndex := len(c.turns)
	c.turns = append(c.turns, Turn{Role: RoleUser, Text: text, Timestamp: c.now()})
	snapshot := c.exportLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	completion, err := c.client.Complete(ctx, providers.CompletionRequest{
		Model:       model,
		Input:       prompt,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("send failed: %w", err)
	}

	var cost *float64
	if completion.Usage != nil {
		if amount, ok := pricing.Cost(completion.Model, completion.Usage.InputTokens, completion.Usage.OutputTokens); ok {
			cost = &amount
		}
	}

	result := &SendResult{
		Answer:          completion.Text,
		Model:           completion.Model,
		Usage:           completion.Usage,
		DurationSeconds: completion.DurationSeconds,
		Cost:            cost,
	}

	c.mu.Lock()
	if userIndex >= len(c.turns) || c.turns[userIndex].Role != RoleUser || c.turns[userIndex].Text != text {
		// The conversation was reset or replaced while the call was in
		// flight; the late result is returned but not recorded.
		c.mu.Unlock()
		return result, nil
	}
	assistant := Turn{
		Role:            RoleAssistant,
		Text:            completion.Text,
		Timestamp:       c.now(),
		Model:           completion.Model,
		Cost:            cost,
		DurationSeconds: completion.DurationSeconds,
	}
	if completion.Usage != nil {
		assistant.InputTokens = intPtr(completion.Usage.InputTokens)
		assistant.OutputTokens = intPtr(completion.Usage.OutputTokens)
		assistant.TotalTokens = intPtr(completion.Usage.TotalTokens)

		// Backfill the request anchor with the identical numbers.
		user := &c.turns[userIndex]
		user.InputTokens = intPtr(completion.Usage.InputTokens)
		user.OutputTokens = intPtr(completion.Usage.OutputTokens)
		user.TotalTokens = intPtr(completion.Usage.TotalTokens)
	}
	user := &c.turns[userIndex]
	user.Model = completion.Model
	user.Cost = cost
	user.DurationSeconds = completion.DurationSeconds
	c.turns = append(c.turns, assistant)
	snapshot = c.exportLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	return result, nil
}

// Reset clears turns, summaries, and summarization totals. Config, policy,
// and preamble survive.
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.turns = nil
	c.summaries = nil
	c.summarizationTotals = SummarizationTotals{}
	snapshot := c.exportLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// SetConfig merge-patches the connection config.
func (c *Conversation) SetConfig(patch ConfigPatch) {
	c.mu.Lock()
	if patch.Endpoint != nil {
		c.config.Endpoint = *patch.Endpoint
	}
	if patch.Model != nil {
		c.config.Model = *patch.Model
	}
	if patch.Temperature != nil {
		c.config.Temperature = *patch.Temperature
	}
	if patch.APIKey != nil {
		c.config.APIKey = *patch.APIKey
	}
	snapshot := c.exportLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// SetContextPolicy merge-patches the context policy.
func (c *Conversation) SetContextPolicy(patch PolicyPatch) {
	c.mu.Lock()
	if patch.TailSize != nil {
		c.policy.TailSize = *patch.TailSize
	}
	if patch.ChunkSize != nil {
		c.policy.ChunkSize = *patch.ChunkSize
	}
	if patch.MaxSummaryChars != nil {
		c.policy.MaxSummaryChars = *patch.MaxSummaryChars
	}
	if patch.Model != nil {
		c.policy.Model = *patch.Model
	}
	if patch.Temperature != nil {
		c.policy.Temperature = *patch.Temperature
	}
	snapshot := c.exportLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// SetClient swaps the provider client, typically after a config change.
func (c *Conversation) SetClient(client providers.Client) {
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
}

// Config returns the current connection config, including the runtime-only
// API key.
func (c *Conversation) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Policy returns the current context policy.
func (c *Conversation) Policy() ContextPolicy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// Turns returns a copy of the turn history.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	turns := make([]Turn, len(c.turns))
	copy(turns, c.turns)
	return turns
}

// Summaries returns a copy of the stored summaries.
func (c *Conversation) Summaries() []Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	summaries := make([]Summary, len(c.summaries))
	copy(summaries, c.summaries)
	return summaries
}

// Totals recomputes the combined totals for display.
func (c *Conversation) Totals() CombinedTotals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return MergeTotals(ComputeHistoryTotals(c.turns), c.summarizationTotals)
}

func intPtr(v int) *int { return &v }
