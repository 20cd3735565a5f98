// Package whisper invokes the external speech-to-text engine. The engine is
// a black box: it takes an audio file and either leaves a TSV segment file in
// the output directory or fails.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ccp-p/session-transcriber/pkg/utils"
)

// DefaultBinary is the engine executable looked up on PATH.
const DefaultBinary = "whisper"

// ErrMissingOutput reports an engine run that exited zero but produced no
// segment file.
var ErrMissingOutput = errors.New("engine produced no output file")

// Engine holds the fixed argument profile used for every invocation.
type Engine struct {
	Binary                    string
	Model                     string
	Language                  string
	CompressionRatioThreshold float64
	Timeout                   time.Duration // per-file; expiry fails the file, not the batch
}

// NewEngine creates an engine with the given decoding profile.
func NewEngine(model, language string, compressionRatioThreshold float64, timeout time.Duration) *Engine {
	return &Engine{
		Binary:                    DefaultBinary,
		Model:                     model,
		Language:                  language,
		CompressionRatioThreshold: compressionRatioThreshold,
		Timeout:                   timeout,
	}
}

// Available reports whether the engine executable can be found on PATH.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.Binary)
	return err == nil
}

// OutputPath returns where the engine leaves the segment file for an input.
func (e *Engine) OutputPath(audioPath, outputDir string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+".tsv")
}

// Transcribe runs the engine on one audio file, blocking until it exits, and
// returns the path of the produced segment file. Success requires both a
// zero exit status and the segment file actually existing.
func (e *Engine) Transcribe(ctx context.Context, audioPath, outputDir string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := []string{
		"--model", e.Model,
		"--language", e.Language,
		"--condition_on_previous_text", "False",
		"--compression_ratio_threshold", strconv.FormatFloat(e.CompressionRatioThreshold, 'f', -1, 64),
		"--output_format", "tsv",
		"--output_dir", outputDir,
		audioPath,
	}

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	if _, err := cmd.Output(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("engine timed out after %s", e.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(string(exitErr.Stderr))
			if detail != "" {
				return "", fmt.Errorf("engine failed: %s", lastLine(detail))
			}
			return "", fmt.Errorf("engine failed: %w", err)
		}
		return "", fmt.Errorf("failed to run engine: %w", err)
	}

	outputPath := e.OutputPath(audioPath, outputDir)
	if !utils.CheckFileExists(outputPath) {
		return "", fmt.Errorf("%w: expected %s", ErrMissingOutput, outputPath)
	}

	return outputPath, nil
}

// lastLine trims engine stderr down to its final line, which is where Python
// tracebacks carry the actual error.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
