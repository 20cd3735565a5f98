package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccp-p/session-transcriber/pkg/models"
)

func TestCollapseMergesConsecutiveDuplicates(t *testing.T) {
	in := []models.Segment{
		{Speaker: "alice", Start: "0", End: "100", Text: "hello"},
		{Speaker: "alice", Start: "100", End: "200", Text: "Hello"},
		{Speaker: "alice", Start: "200", End: "300", Text: "hello"},
		{Speaker: "alice", Start: "300", End: "400", Text: "bye"},
	}

	out := Collapse(in)
	assert.Len(t, out, 2)

	// Merged run keeps the first start, takes the last end and the first text.
	assert.Equal(t, "0", out[0].Start)
	assert.Equal(t, "300", out[0].End)
	assert.Equal(t, "hello", out[0].Text)

	assert.Equal(t, "bye", out[1].Text)
}

func TestCollapseDifferentSpeakersNotMerged(t *testing.T) {
	in := []models.Segment{
		{Speaker: "alice", Start: "0", End: "100", Text: "hello"},
		{Speaker: "bob", Start: "100", End: "200", Text: "hello"},
	}

	out := Collapse(in)
	assert.Len(t, out, 2)
}

func TestCollapseNonConsecutiveNotMerged(t *testing.T) {
	in := []models.Segment{
		{Speaker: "alice", Start: "0", End: "100", Text: "hello"},
		{Speaker: "alice", Start: "100", End: "200", Text: "other"},
		{Speaker: "alice", Start: "200", End: "300", Text: "hello"},
	}

	out := Collapse(in)
	assert.Len(t, out, 3)
}

func TestCollapseIdempotent(t *testing.T) {
	in := []models.Segment{
		{Speaker: "alice", Start: "0", End: "100", Text: "a"},
		{Speaker: "alice", Start: "100", End: "300", Text: "a"},
		{Speaker: "bob", Start: "300", End: "400", Text: "a"},
		{Speaker: "alice", Start: "400", End: "500", Text: "b"},
	}

	once := Collapse(in)
	twice := Collapse(once)
	assert.Equal(t, once, twice)
}

func TestCollapseEmptyInput(t *testing.T) {
	assert.Empty(t, Collapse(nil))
	assert.Empty(t, Collapse([]models.Segment{}))
}

func TestCollapseDoesNotMutateInput(t *testing.T) {
	in := []models.Segment{
		{Speaker: "alice", Start: "0", End: "100", Text: "a"},
		{Speaker: "alice", Start: "100", End: "200", Text: "a"},
	}

	_ = Collapse(in)
	assert.Equal(t, "100", in[0].End, "input segments must stay immutable")
}
