package whisper

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestEngine() *Engine {
	return NewEngine("medium", "en", 2.4, time.Minute)
}

func TestOutputPath(t *testing.T) {
	e := newTestEngine()

	got := e.OutputPath(filepath.Join("in", "12-alice_7.mp3"), "out")
	assert.Equal(t, filepath.Join("out", "12-alice_7.tsv"), got)

	got = e.OutputPath("noextension", "out")
	assert.Equal(t, filepath.Join("out", "noextension.tsv"), got)
}

func TestAvailableMissingBinary(t *testing.T) {
	e := newTestEngine()
	e.Binary = "definitely-not-a-real-binary-name"
	assert.False(t, e.Available())
}

func TestTranscribeMissingBinary(t *testing.T) {
	e := newTestEngine()
	e.Binary = "definitely-not-a-real-binary-name"

	_, err := e.Transcribe(context.Background(), "audio.mp3", t.TempDir())
	assert.Error(t, err)
}

func TestTranscribeMissingOutput(t *testing.T) {
	// An engine that exits zero but writes nothing must still fail.
	e := newTestEngine()
	e.Binary = "true"

	_, err := e.Transcribe(context.Background(), "audio.mp3", t.TempDir())
	assert.ErrorIs(t, err, ErrMissingOutput)
}

func TestTranscribeNonzeroExit(t *testing.T) {
	e := newTestEngine()
	e.Binary = "false"

	_, err := e.Transcribe(context.Background(), "audio.mp3", t.TempDir())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingOutput)
}
