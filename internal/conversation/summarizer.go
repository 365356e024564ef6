package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kidonrage/ai-labs/internal/pricing"
	"github.com/kidonrage/ai-labs/internal/providers"
)

const summaryInstruction = `Summarize the conversation excerpt below as a bulleted list of 6-12 items.
Preserve the user's goals, established facts, decisions made, and constraints.
Do not add anything that is not present in the excerpt.
Output only the summary, nothing else.`

// EnsureCoverage brings summary coverage up to date, producing one summary
// per eligible chunk in strict index order. All coverage work for the
// conversation is serialized through summarizeMu: a concurrent trigger waits
// for the in-flight pass instead of racing ahead, so at most one
// summarization call is ever in flight. A failed auxiliary call aborts the
// pass with coverage untouched.
func (c *Conversation) EnsureCoverage(ctx context.Context) error {
	c.summarizeMu.Lock()
	defer c.summarizeMu.Unlock()

	for {
		c.mu.Lock()
		covered := coveredUntil(c.summaries)
		from, to, ok := eligibleRange(len(c.turns), covered, c.policy)
		if !ok {
			c.mu.Unlock()
			return nil
		}
		chunk := make([]Turn, to-from+1)
		copy(chunk, c.turns[from:to+1])
		policy := c.policy
		c.mu.Unlock()

		text, usage, cost, err := c.summarizeChunk(ctx, chunk, from, to, policy)
		if err != nil {
			return fmt.Errorf("failed to summarize turns %d-%d: %w", from, to, err)
		}

		c.mu.Lock()
		if coveredUntil(c.summaries) != from {
			// The conversation was reset or re-imported while the call was
			// in flight; the result no longer matches any range.
			c.mu.Unlock()
			continue
		}
		c.summaries = append(c.summaries, Summary{
			FromIndex: from,
			ToIndex:   to,
			Text:      text,
			CreatedAt: c.now(),
		})
		c.summarizationTotals.Requests++
		if usage != nil {
			c.summarizationTotals.InputTokens += usage.InputTokens
			c.summarizationTotals.OutputTokens += usage.OutputTokens
			c.summarizationTotals.TotalTokens += usage.TotalTokens
		}
		if cost != nil {
			c.summarizationTotals.Cost += *cost
		}
		snapshot := c.exportLocked()
		c.mu.Unlock()

		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"from":  from,
				"to":    to,
				"chars": len(text),
			}).Info("Summarized conversation chunk")
		}
		c.notify(snapshot)
	}
}

// summarizeChunk performs one auxiliary model call for a chunk. Its usage and
// cost are charged to the summarization totals only; the call never surfaces
// as a chat turn.
func (c *Conversation) summarizeChunk(ctx context.Context, chunk []Turn, from, to int, policy ContextPolicy) (string, *providers.Usage, *float64, error) {
	completion, err := c.client.Complete(ctx, providers.CompletionRequest{
		Model:       policy.Model,
		Input:       buildSummaryPrompt(chunk, from, to),
		Temperature: policy.Temperature,
	})
	if err != nil {
		return "", nil, nil, err
	}

	text := compactSummary(completion.Text, policy.MaxSummaryChars)
	if text == "" {
		return "", nil, nil, fmt.Errorf("summarizer returned no usable text")
	}

	var cost *float64
	if completion.Usage != nil {
		if amount, ok := pricing.Cost(completion.Model, completion.Usage.InputTokens, completion.Usage.OutputTokens); ok {
			cost = &amount
		}
	}
	return text, completion.Usage, cost, nil
}

// buildSummaryPrompt renders the chunk as capitalized "Role: text" lines
// under the fixed instruction, with the index range as context.
func buildSummaryPrompt(chunk []Turn, from, to int) string {
	var b strings.Builder
	b.WriteString(summaryInstruction)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Conversation excerpt (messages %d-%d):\n", from, to))
	for _, turn := range chunk {
		if turn.Text == "" {
			continue
		}
		role := "User"
		if turn.Role == RoleAssistant {
			role = "Assistant"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// compactSummary bounds a summary to maxChars. An overlong summary keeps its
// head (~75% of the budget) and tail (~20%) joined by an ellipsis marker,
// then is hard-truncated to the budget. Lossy, but stored summaries stay
// bounded.
func compactSummary(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	headLen := maxChars * 75 / 100
	tailLen := maxChars * 20 / 100
	if tailLen > len(runes) {
		tailLen = len(runes)
	}
	compacted := string(runes[:headLen]) + "\n…\n" + string(runes[len(runes)-tailLen:])

	compactedRunes := []rune(compacted)
	if len(compactedRunes) > maxChars {
		compactedRunes = compactedRunes[:maxChars]
	}
	return string(compactedRunes)
}
