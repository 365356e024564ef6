package conversation

// HistoryTotals aggregates usage and cost across regular chat turns.
type HistoryTotals struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost"`
}

// CombinedTotals keeps chat and summarization spend separately displayable
// while also carrying the grand totals across both.
type CombinedTotals struct {
	History          HistoryTotals       `json:"history"`
	Summarization    SummarizationTotals `json:"summarization"`
	GrandTotalTokens int                 `json:"grand_total_tokens"`
	GrandTotalCost   float64             `json:"grand_total_cost"`
}

// ComputeHistoryTotals folds the turn list into running counters. Only
// user-role turns are read: each request/response pair carries identical
// usage on both turns, so the user turn is the single request anchor. Anchors
// without usage (restored from older snapshots, or still awaiting a reply)
// are skipped.
func ComputeHistoryTotals(turns []Turn) HistoryTotals {
	var totals HistoryTotals
	for i := range turns {
		turn := &turns[i]
		if turn.Role != RoleUser || !turn.HasUsage() {
			continue
		}
		totals.InputTokens += *turn.InputTokens
		totals.OutputTokens += *turn.OutputTokens
		totals.TotalTokens += *turn.TotalTokens
		if turn.Cost != nil {
			totals.Cost += *turn.Cost
		}
	}
	return totals
}

// MergeTotals combines history totals with summarization totals into the
// displayed view.
func MergeTotals(history HistoryTotals, summarization SummarizationTotals) CombinedTotals {
	return CombinedTotals{
		History:          history,
		Summarization:    summarization,
		GrandTotalTokens: history.TotalTokens + summarization.TotalTokens,
		GrandTotalCost:   history.Cost + summarization.Cost,
	}
}
