package conversation

import (
	"encoding/json"
)

// SchemaVersion tags exported snapshots. Import accepts older shapes: absent
// fields keep their defaults instead of failing.
const SchemaVersion = 3

// Snapshot is the persisted form of a conversation. The API key is excluded
// from Config by its json tag, so a snapshot never carries the credential no
// matter where it is written.
type Snapshot struct {
	SchemaVersion       int                 `json:"schema_version"`
	Config              Config              `json:"config"`
	Preamble            string              `json:"preamble"`
	Policy              ContextPolicy       `json:"policy"`
	Summaries           []Summary           `json:"summaries"`
	SummarizationTotals SummarizationTotals `json:"summarization_totals"`
	Turns               []Turn              `json:"turns"`
}

func (c *Conversation) exportLocked() Snapshot {
	turns := make([]Turn, len(c.turns))
	copy(turns, c.turns)
	summaries := make([]Summary, len(c.summaries))
	copy(summaries, c.summaries)

	return Snapshot{
		SchemaVersion:       SchemaVersion,
		Config:              c.config,
		Preamble:            c.preamble,
		Policy:              c.policy,
		Summaries:           summaries,
		SummarizationTotals: c.summarizationTotals,
		Turns:               turns,
	}
}

// Export returns the current snapshot.
func (c *Conversation) Export() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exportLocked()
}

// Import merges a persisted snapshot back in. It is deliberately tolerant:
// a blob that does not decode as a snapshot object means nothing to import,
// absent fields keep the current values, and the turn list is filtered to
// well-formed entries before adoption. Re-importing an exported snapshot is
// idempotent. One state-changed notification fires when a snapshot was
// adopted.
func (c *Conversation) Import(data []byte) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("Ignoring unrecognized conversation snapshot")
		}
		return
	}
	c.ImportSnapshot(snapshot)
}

// ImportSnapshot applies an already-decoded snapshot with the same tolerant
// merge semantics as Import.
func (c *Conversation) ImportSnapshot(snapshot Snapshot) {
	c.mu.Lock()
	if snapshot.Config.Endpoint != "" {
		c.config.Endpoint = snapshot.Config.Endpoint
	}
	if snapshot.Config.Model != "" {
		c.config.Model = snapshot.Config.Model
	}
	if snapshot.Config.Temperature != 0 {
		c.config.Temperature = snapshot.Config.Temperature
	}
	if snapshot.Preamble != "" {
		c.preamble = snapshot.Preamble
	}
	if snapshot.Policy.TailSize > 0 {
		c.policy.TailSize = snapshot.Policy.TailSize
	}
	if snapshot.Policy.ChunkSize > 0 {
		c.policy.ChunkSize = snapshot.Policy.ChunkSize
	}
	if snapshot.Policy.MaxSummaryChars > 0 {
		c.policy.MaxSummaryChars = snapshot.Policy.MaxSummaryChars
	}
	if snapshot.Policy.Model != "" {
		c.policy.Model = snapshot.Policy.Model
	}
	if snapshot.Policy.Temperature != 0 {
		c.policy.Temperature = snapshot.Policy.Temperature
	}
	if snapshot.Summaries != nil {
		c.summaries = filterSummaries(snapshot.Summaries)
	}
	if snapshot.Turns != nil {
		c.turns = filterTurns(snapshot.Turns)
	}
	c.summarizationTotals = snapshot.SummarizationTotals
	result := c.exportLocked()
	c.mu.Unlock()
	c.notify(result)
}

// filterTurns keeps only well-formed entries: a recognized role, and
// non-empty text for user turns. Optional per-turn fields may be absent
// (older schema versions never recorded them).
func filterTurns(turns []Turn) []Turn {
	filtered := make([]Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			continue
		}
		if turn.Role == RoleUser && turn.Text == "" {
			continue
		}
		filtered = append(filtered, turn)
	}
	return filtered
}

// filterSummaries keeps only the contiguous non-overlapping prefix coverage
// the invariants require, dropping anything after the first gap or overlap.
func filterSummaries(summaries []Summary) []Summary {
	filtered := make([]Summary, 0, len(summaries))
	next := 0
	for _, s := range summaries {
		if s.FromIndex != next || s.ToIndex < s.FromIndex || s.Text == "" {
			break
		}
		filtered = append(filtered, s)
		next = s.ToIndex + 1
	}
	return filtered
}
