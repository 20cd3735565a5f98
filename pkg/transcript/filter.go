package transcript

import (
	"strings"

	"github.com/ccp-p/session-transcriber/pkg/models"
)

// trailingPunctuation lists the single punctuation characters that may follow
// an ignored phrase without changing its meaning.
const trailingPunctuation = ".,!?;:"

// PhraseFilter drops segments whose text matches one of the configured ignore
// phrases, case-insensitively, with at most one trailing punctuation
// character. There is no substring matching: "um" drops "Um." but keeps
// "umbrella" and "well, um".
type PhraseFilter struct {
	phrases map[string]struct{}
	dropped int
}

// NewPhraseFilter builds a filter from the ignore-phrase list.
func NewPhraseFilter(phrases []string) *PhraseFilter {
	set := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return &PhraseFilter{phrases: set}
}

// Keep reports whether the segment survives the filter, counting drops.
func (f *PhraseFilter) Keep(seg models.Segment) bool {
	if f.matches(seg.Text) {
		f.dropped++
		return false
	}
	return true
}

// Apply filters a segment sequence, preserving order.
func (f *PhraseFilter) Apply(segments []models.Segment) []models.Segment {
	kept := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		if f.Keep(seg) {
			kept = append(kept, seg)
		}
	}
	return kept
}

// Dropped returns how many segments the filter has removed so far.
func (f *PhraseFilter) Dropped() int {
	return f.dropped
}

func (f *PhraseFilter) matches(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}

	if _, ok := f.phrases[t]; ok {
		return true
	}

	// One optional trailing punctuation character.
	last := t[len(t)-1]
	if strings.IndexByte(trailingPunctuation, last) >= 0 {
		if _, ok := f.phrases[t[:len(t)-1]]; ok {
			return true
		}
	}

	return false
}
