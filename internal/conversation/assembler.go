package conversation

import (
	"fmt"
	"strings"
)

const (
	summariesLabel = "SUMMARY OF EARLIER CONVERSATION:"
	recentLabel    = "RECENT CONVERSATION:"
)

// coveredUntil is one past the highest summarized turn index, or 0 when
// nothing has been summarized yet.
func coveredUntil(summaries []Summary) int {
	covered := 0
	for _, s := range summaries {
		if s.ToIndex+1 > covered {
			covered = s.ToIndex + 1
		}
	}
	return covered
}

// eligibleRange decides whether one new summarization chunk is due. Turns at
// or after totalTurns-tailSize are protected by the tail and never
// summarized; a chunk is produced only once a full chunkSize of uncovered
// turns sits below that boundary. If chunkSize can never fit under the
// boundary, summarization simply never runs.
func eligibleRange(totalTurns, covered int, policy ContextPolicy) (from, to int, ok bool) {
	if policy.ChunkSize <= 0 {
		return 0, 0, false
	}
	boundary := totalTurns - policy.TailSize
	if boundary < 0 {
		boundary = 0
	}
	if covered+policy.ChunkSize > boundary {
		return 0, 0, false
	}
	return covered, covered + policy.ChunkSize - 1, true
}

// tailOf returns the last tailSize turns, or the whole history when it is
// shorter than the tail.
func tailOf(turns []Turn, tailSize int) []Turn {
	if tailSize <= 0 {
		return nil
	}
	if len(turns) <= tailSize {
		return turns
	}
	return turns[len(turns)-tailSize:]
}

// buildPrompt linearizes the conversation into the literal request payload:
// preamble, then stored summaries in coverage order, then the verbatim tail,
// then the new input and an empty assistant label marking where generation
// continues. Prompt size stays bounded by the tail and summary counts no
// matter how long the conversation grows.
func buildPrompt(preamble string, summaries []Summary, tail []Turn, userText string) string {
	var lines []string

	lines = append(lines, "SYSTEM: "+preamble)

	if len(summaries) > 0 {
		lines = append(lines, summariesLabel)
		for _, s := range summaries {
			lines = append(lines, "- "+s.Text)
		}
	}

	if len(tail) > 0 {
		lines = append(lines, recentLabel)
		for _, turn := range tail {
			lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(turn.Role)), turn.Text))
		}
	}

	lines = append(lines, "USER: "+userText)
	lines = append(lines, "ASSISTANT:")

	return strings.Join(lines, "\n")
}
