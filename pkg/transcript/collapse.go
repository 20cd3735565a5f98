package transcript

import (
	"strings"

	"github.com/ccp-p/session-transcriber/pkg/models"
)

// Collapse merges runs of consecutive segments that share a speaker and have
// case-insensitively identical text. The merged segment keeps the start of
// the first segment in the run and takes the end of whichever segment arrived
// last; since engine output is chronological per file this extends the run.
// A single linear pass, no lookahead. Collapsing an already collapsed
// sequence is a no-op.
func Collapse(segments []models.Segment) []models.Segment {
	if len(segments) == 0 {
		return []models.Segment{}
	}

	out := make([]models.Segment, 0, len(segments))
	group := segments[0]

	for _, next := range segments[1:] {
		if next.Speaker == group.Speaker && strings.EqualFold(next.Text, group.Text) {
			group.End = next.End
			continue
		}
		out = append(out, group)
		group = next
	}

	return append(out, group)
}
