package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSegments(t *testing.T) {
	raw := strings.Join([]string{
		"start\tend\ttext",
		"0\t1000\t hello there ",
		"",
		"   ",
		"1000\t2000",
		"2000\t3000\tsecond\textra\tfields",
		"3000\t4000\tthird",
	}, "\n")

	segments, err := ParseSegments(strings.NewReader(raw), "alice")
	assert.NoError(t, err)
	assert.Len(t, segments, 3)

	// Text is trimmed, start/end copied verbatim, speaker attached.
	assert.Equal(t, "alice", segments[0].Speaker)
	assert.Equal(t, "0", segments[0].Start)
	assert.Equal(t, "1000", segments[0].End)
	assert.Equal(t, "hello there", segments[0].Text)

	// Fields beyond the third are ignored.
	assert.Equal(t, "second", segments[1].Text)

	assert.Equal(t, "third", segments[2].Text)
}

func TestParseSegmentsNoNumericValidation(t *testing.T) {
	raw := "abc\tdef\tnot validated here"

	segments, err := ParseSegments(strings.NewReader(raw), "bob")
	assert.NoError(t, err)
	assert.Len(t, segments, 1)
	assert.Equal(t, "abc", segments[0].Start)
	assert.Equal(t, "def", segments[0].End)
}

func TestParseSegmentsEmptyInput(t *testing.T) {
	segments, err := ParseSegments(strings.NewReader(""), "alice")
	assert.NoError(t, err)
	assert.Empty(t, segments)
}

func TestParseSegmentsPreservesOrder(t *testing.T) {
	// Engine output is chronological per file; parsing must not reorder it.
	raw := "500\t600\tlater\n0\t100\tearlier"

	segments, err := ParseSegments(strings.NewReader(raw), "alice")
	assert.NoError(t, err)
	assert.Len(t, segments, 2)
	assert.Equal(t, "later", segments[0].Text)
	assert.Equal(t, "earlier", segments[1].Text)
}
