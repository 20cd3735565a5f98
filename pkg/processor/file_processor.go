// Package processor turns one raw engine output file into a normalized
// per-file transcript: speaker resolution, parsing, phrase filtering,
// duplicate collapsing and TSV serialization.
package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/session-transcriber/pkg/models"
	"github.com/ccp-p/session-transcriber/pkg/transcript"
	"github.com/ccp-p/session-transcriber/pkg/utils"
)

// Result describes one normalized transcript.
type Result struct {
	RawPath        string // raw engine output that was processed
	TranscriptPath string // normalized per-file transcript written
	Speaker        string // speaker label attached to every segment
	SegmentCount   int    // segments after filtering and collapsing
	DroppedCount   int    // segments removed by the phrase filter
	Archived       bool   // whether a new archive copy was made
}

// FileProcessor produces normalized transcripts from raw engine output.
type FileProcessor struct {
	ArchiveDir    string // unmodified raw outputs, first copy wins
	TranscriptDir string // normalized per-file transcripts

	ignorePhrases []string
}

// NewFileProcessor creates a processor writing under the given output folder.
func NewFileProcessor(outputDir string, ignorePhrases []string) *FileProcessor {
	return &FileProcessor{
		ArchiveDir:    filepath.Join(outputDir, "originals"),
		TranscriptDir: filepath.Join(outputDir, "transcripts"),
		ignorePhrases: ignorePhrases,
	}
}

// Process runs the full per-file pipeline on one raw engine output file.
// Failures are returned, never thrown past this boundary; the caller records
// them and moves on to the next file.
func (p *FileProcessor) Process(rawPath string) (*Result, error) {
	base := filepath.Base(rawPath)
	speaker := transcript.SpeakerFromFileName(base)

	result := &Result{
		RawPath: rawPath,
		Speaker: speaker,
	}

	// Preserve the unmodified engine output before touching it. An existing
	// archive copy is never overwritten, so reruns keep the first original.
	if err := utils.EnsureDirExists(p.ArchiveDir); err != nil {
		return nil, fmt.Errorf("failed to create archive folder: %w", err)
	}
	archivePath := filepath.Join(p.ArchiveDir, base)
	if rawPath != archivePath {
		copied, err := utils.CopyFileIfMissing(rawPath, archivePath)
		if err != nil {
			return nil, fmt.Errorf("failed to archive raw output: %w", err)
		}
		result.Archived = copied
	}

	segments, err := transcript.ParseFile(rawPath, speaker)
	if err != nil {
		return nil, fmt.Errorf("failed to parse raw output: %w", err)
	}

	filter := transcript.NewPhraseFilter(p.ignorePhrases)
	segments = filter.Apply(segments)
	result.DroppedCount = filter.Dropped()

	segments = transcript.Collapse(segments)
	result.SegmentCount = len(segments)

	if err := utils.EnsureDirExists(p.TranscriptDir); err != nil {
		return nil, fmt.Errorf("failed to create transcript folder: %w", err)
	}

	transcriptPath := filepath.Join(p.TranscriptDir, base)
	if err := writeTranscript(transcriptPath, segments); err != nil {
		return nil, err
	}
	result.TranscriptPath = transcriptPath

	logrus.WithFields(logrus.Fields{
		"file":     base,
		"speaker":  speaker,
		"segments": result.SegmentCount,
		"dropped":  result.DroppedCount,
	}).Debug("normalized transcript written")

	return result, nil
}

// RemovePriorTranscript deletes a previously produced normalized transcript
// for the given raw output, if any. Used by post-process reruns so output is
// rebuilt rather than accumulated.
func (p *FileProcessor) RemovePriorTranscript(rawPath string) error {
	path := filepath.Join(p.TranscriptDir, filepath.Base(rawPath))
	if !utils.CheckFileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// writeTranscript serializes collapsed segments as TSV with the canonical
// header, one row per segment, no trailing blank line.
func writeTranscript(path string, segments []models.Segment) error {
	lines := make([]string, 0, len(segments)+1)
	lines = append(lines, transcript.Header)

	for _, seg := range segments {
		lines = append(lines, strings.Join([]string{seg.Speaker, seg.Start, seg.End, seg.Text}, "\t"))
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
