package processor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccp-p/session-transcriber/pkg/models"
	"github.com/ccp-p/session-transcriber/pkg/transcript"
)

const rawContent = "start\tend\ttext\n" +
	"0\t1000\thello\n" +
	"1000\t2000\thello\n" +
	"2000\t3000\tum.\n" +
	"3000\t4000\tgoodbye\n"

func writeRaw(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write raw output: %v", err)
	}
	return path
}

func TestProcessProducesNormalizedTranscript(t *testing.T) {
	outputDir := t.TempDir()
	p := NewFileProcessor(outputDir, []string{"um"})

	rawPath := writeRaw(t, outputDir, "12-alice_7.tsv", rawContent)

	result, err := p.Process(rawPath)
	assert.NoError(t, err)
	assert.Equal(t, "alice", result.Speaker)
	assert.Equal(t, 2, result.SegmentCount, "duplicates collapsed, filler dropped")
	assert.Equal(t, 1, result.DroppedCount)
	assert.True(t, result.Archived)

	data, err := os.ReadFile(result.TranscriptPath)
	assert.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		transcript.Header,
		"alice\t0\t2000\thello",
		"alice\t3000\t4000\tgoodbye",
	}, "\n")+"\n", string(data))
}

func TestProcessArchivesFirstCopyOnly(t *testing.T) {
	outputDir := t.TempDir()
	p := NewFileProcessor(outputDir, nil)

	rawPath := writeRaw(t, outputDir, "12-alice_7.tsv", rawContent)

	result, err := p.Process(rawPath)
	assert.NoError(t, err)
	assert.True(t, result.Archived)

	archivePath := filepath.Join(p.ArchiveDir, "12-alice_7.tsv")
	original, err := os.ReadFile(archivePath)
	assert.NoError(t, err)
	assert.Equal(t, rawContent, string(original))

	// A rerun with changed raw content must not overwrite the archive.
	writeRaw(t, outputDir, "12-alice_7.tsv", "0\t1\tchanged\n")
	result, err = p.Process(rawPath)
	assert.NoError(t, err)
	assert.False(t, result.Archived)

	preserved, err := os.ReadFile(archivePath)
	assert.NoError(t, err)
	assert.Equal(t, rawContent, string(preserved))
}

func TestProcessFromArchiveDoesNotSelfCopy(t *testing.T) {
	outputDir := t.TempDir()
	p := NewFileProcessor(outputDir, nil)

	assert.NoError(t, os.MkdirAll(p.ArchiveDir, 0755))
	archived := writeRaw(t, p.ArchiveDir, "3-bob_1.tsv", "0\t100\thi\n")

	result, err := p.Process(archived)
	assert.NoError(t, err)
	assert.False(t, result.Archived)
	assert.Equal(t, "bob", result.Speaker)
}

func TestProcessRoundTrip(t *testing.T) {
	outputDir := t.TempDir()
	p := NewFileProcessor(outputDir, nil)

	rawPath := writeRaw(t, outputDir, "12-alice_7.tsv",
		"0\t1000\tfirst\n1500\t2500\tsecond\n")

	result, err := p.Process(rawPath)
	assert.NoError(t, err)

	// Parsing the normalized transcript, re-serializing and re-parsing must
	// give field-identical segments.
	parse := func(path string) []models.Segment {
		var segments []models.Segment
		data, err := os.ReadFile(path)
		assert.NoError(t, err)
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if line == transcript.Header {
				continue
			}
			fields := strings.SplitN(line, "\t", 4)
			assert.Len(t, fields, 4)
			segments = append(segments, models.Segment{
				Speaker: fields[0], Start: fields[1], End: fields[2], Text: fields[3],
			})
		}
		return segments
	}

	first := parse(result.TranscriptPath)

	rewritten := filepath.Join(outputDir, "rewritten.tsv")
	assert.NoError(t, writeTranscript(rewritten, first))
	second := parse(rewritten)

	assert.Equal(t, first, second)
}

func TestProcessMissingRawFile(t *testing.T) {
	p := NewFileProcessor(t.TempDir(), nil)

	_, err := p.Process(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}

func TestRemovePriorTranscript(t *testing.T) {
	outputDir := t.TempDir()
	p := NewFileProcessor(outputDir, nil)

	rawPath := writeRaw(t, outputDir, "12-alice_7.tsv", rawContent)

	result, err := p.Process(rawPath)
	assert.NoError(t, err)
	assert.FileExists(t, result.TranscriptPath)

	assert.NoError(t, p.RemovePriorTranscript(rawPath))
	assert.NoFileExists(t, result.TranscriptPath)

	// Removing again is a no-op.
	assert.NoError(t, p.RemovePriorTranscript(rawPath))
}
