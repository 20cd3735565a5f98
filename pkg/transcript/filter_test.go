package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccp-p/session-transcriber/pkg/models"
)

func seg(text string) models.Segment {
	return models.Segment{Speaker: "alice", Start: "0", End: "100", Text: text}
}

func TestPhraseFilterExactness(t *testing.T) {
	f := NewPhraseFilter([]string{"um"})

	dropped := []string{"um", "Um", "UM", "um.", "um?", "um!", " um, "}
	for _, text := range dropped {
		assert.False(t, f.Keep(seg(text)), "expected %q to be dropped", text)
	}

	kept := []string{"umbrella", "well, um", "um um", "um..", ""}
	for _, text := range kept {
		assert.True(t, f.Keep(seg(text)), "expected %q to be kept", text)
	}
}

func TestPhraseFilterCountsDrops(t *testing.T) {
	f := NewPhraseFilter([]string{"um", "thank you"})

	in := []models.Segment{
		seg("hello"),
		seg("Um."),
		seg("Thank you!"),
		seg("goodbye"),
	}

	out := f.Apply(in)
	assert.Len(t, out, 2)
	assert.Equal(t, 2, f.Dropped())
	assert.Equal(t, "hello", out[0].Text)
	assert.Equal(t, "goodbye", out[1].Text)
}

func TestPhraseFilterEmptyPhraseList(t *testing.T) {
	f := NewPhraseFilter(nil)
	assert.True(t, f.Keep(seg("um")))
	assert.Equal(t, 0, f.Dropped())
}
