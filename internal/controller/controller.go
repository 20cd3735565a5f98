// Package controller orchestrates the batch: it walks the input recordings
// in a fixed order, invokes the engine, runs per-file post-processing,
// appends run state records and finally aggregates the transcripts.
package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/session-transcriber/internal/watcher"
	"github.com/ccp-p/session-transcriber/pkg/aggregate"
	"github.com/ccp-p/session-transcriber/pkg/models"
	"github.com/ccp-p/session-transcriber/pkg/processor"
	"github.com/ccp-p/session-transcriber/pkg/scanner"
	"github.com/ccp-p/session-transcriber/pkg/state"
	"github.com/ccp-p/session-transcriber/pkg/transcript"
	"github.com/ccp-p/session-transcriber/pkg/utils"
	"github.com/ccp-p/session-transcriber/pkg/whisper"
)

// Fixed file names inside the output folder.
const (
	StateStoreName = "processing_records.tsv"
	LogStoreName   = "processing_log.tsv"
	MergedName     = "merged_transcript.tsv"
	LogFileName    = "transcriber.log"
)

// reservedNames are output-folder .tsv files that are never raw engine
// output.
var reservedNames = []string{StateStoreName, LogStoreName, MergedName}

// Controller coordinates all components of a run.
type Controller struct {
	Config    *models.Config
	OutputDir string
	RunID     string

	Engine        *whisper.Engine
	Tracker       *state.Tracker
	FileProcessor *processor.FileProcessor
	Aggregator    *aggregate.Aggregator
	Scanner       *scanner.AudioScanner

	ctx        context.Context
	cancelFunc context.CancelFunc

	// Per-run counters; durable totals live in the state store.
	Stats struct {
		StartTime       time.Time
		TotalFiles      int
		SkippedFiles    int
		SuccessfulFiles int
		FailedFiles     int
	}

	cleanup []func()
	mu      sync.Mutex
}

// NewController validates the configuration, sets up logging and builds all
// components. Startup failures here are fatal to the run; nothing has been
// processed yet.
func NewController(config *models.Config) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	outputDir := config.ResolveOutputFolder()
	if err := utils.EnsureDirExists(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}

	logFile := config.LogFile
	if logFile == "" {
		logFile = filepath.Join(outputDir, LogFileName)
	}
	if err := utils.InitLogger(config.LogLevel, logFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := utils.AttachLogStore(filepath.Join(outputDir, LogStoreName)); err != nil {
		return nil, fmt.Errorf("failed to open log store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		Config:        config,
		OutputDir:     outputDir,
		RunID:         uuid.NewString(),
		Engine:        whisper.NewEngine(config.WhisperModel, config.Language, config.CompressionRatioThreshold, time.Duration(config.EngineTimeoutMin)*time.Minute),
		Tracker:       state.NewTracker(filepath.Join(outputDir, StateStoreName)),
		FileProcessor: processor.NewFileProcessor(outputDir, config.IgnorePhrases),
		Aggregator:    aggregate.NewAggregator(outputDir),
		Scanner:       scanner.NewAudioScanner(),
		ctx:           ctx,
		cancelFunc:    cancel,
	}

	// The force flag also overrides state store column mismatches instead of
	// aborting the batch.
	c.Tracker.ForceSchema = config.Force

	c.setupSignalHandlers()

	utils.WithFields(logrus.Fields{
		"run_id": c.RunID,
		"input":  config.InputFolder,
		"output": outputDir,
	}).Info("run starting")

	return c, nil
}

// CheckDependencies verifies the external engine is available. Called before
// any file is touched; a missing engine aborts the whole run.
func (c *Controller) CheckDependencies() error {
	if c.Config.PostProcessOnly {
		return nil // no engine invocation in post-process mode
	}
	if !c.Engine.Available() {
		return fmt.Errorf("%s not found on PATH", c.Engine.Binary)
	}
	return nil
}

// Run executes the batch, then aggregation, then the summary. Per-file
// failures never abort the run.
func (c *Controller) Run() error {
	c.Stats.StartTime = time.Now()

	var err error
	if c.Config.PostProcessOnly {
		err = c.runPostProcessOnly()
	} else {
		err = c.runBatch()
	}
	if err != nil {
		return err
	}

	// Aggregation failures are fatal to aggregation only; the per-file work
	// above already succeeded and is recorded.
	if err := c.Aggregator.Run(); err != nil {
		color.Red("aggregation failed: %v", err)
		utils.Error("aggregation failed: %v", err)
	}

	if c.Config.CleanupTemp {
		c.cleanupTransientOutputs()
	}

	c.PrintSummary()
	return nil
}

// runBatch processes every recording in the input folder, one at a time, in
// lexicographic name order.
func (c *Controller) runBatch() error {
	files, err := c.Scanner.ScanDirectory(c.Config.InputFolder)
	if err != nil {
		return fmt.Errorf("failed to scan input folder: %w", err)
	}

	if len(files) == 0 {
		utils.Warn("no audio files found in %s, nothing to do", c.Config.InputFolder)
		return nil
	}

	for i, file := range files {
		select {
		case <-c.ctx.Done():
			utils.Warn("run interrupted, %d of %d files not processed", len(files)-i, len(files))
			return nil
		default:
		}

		c.processRecording(file, i+1, len(files))
	}

	return nil
}

// processRecording drives one file through the per-file state machine:
// pending, then skipped, or running to succeeded or failed.
func (c *Controller) processRecording(file scanner.AudioFile, index, total int) {
	c.Stats.TotalFiles++

	processed, err := c.Tracker.IsProcessed(file.Name)
	if err != nil {
		utils.Warn("failed to read state store, treating %s as unprocessed: %v", file.Name, err)
	}
	if processed && !c.Config.Force {
		color.Yellow("[%d/%d] skipping %s (already processed)", index, total, file.Name)
		c.Stats.SkippedFiles++
		return
	}

	fmt.Printf("\n[%d/%d] processing %s (%s)\n", index, total, file.Name, utils.FormatFileSize(file.Size))
	startTime := time.Now()

	rec := models.ProcessingRecord{
		FileName:   file.Name,
		FileSize:   file.Size,
		PlayerName: transcript.SpeakerFromFileName(file.Name),
	}

	rawPath, err := c.Engine.Transcribe(c.ctx, file.Path, c.OutputDir)
	if err == nil {
		var result *processor.Result
		result, err = c.FileProcessor.Process(rawPath)
		if err == nil {
			rec.PlayerName = result.Speaker
			color.Green("[%d/%d] done: %s (%d segments, %d dropped)",
				index, total, file.Name, result.SegmentCount, result.DroppedCount)
		}
	}

	rec.ProcessingTime = time.Since(startTime).Seconds()
	rec.Timestamp = utils.Timestamp()

	if err != nil {
		rec.Status = models.StatusError
		rec.ErrorMessage = err.Error()
		c.Stats.FailedFiles++
		color.Red("[%d/%d] failed: %s - %v", index, total, file.Name, err)
		utils.Error("processing %s failed: %v", file.Name, err)
	} else {
		rec.Status = models.StatusSuccess
		c.Stats.SuccessfulFiles++
		utils.Info("processed %s in %s", file.Name, utils.FormatMinSec(rec.ProcessingTime))
	}

	c.appendRecord(rec)
}

// runPostProcessOnly skips the engine and reruns post-processing over raw
// outputs already on disk, archived originals included. Prior normalized
// transcripts are removed first so reruns rebuild rather than accumulate.
func (c *Controller) runPostProcessOnly() error {
	raws, err := scanner.FindRawOutputs(c.OutputDir, c.FileProcessor.ArchiveDir, reservedNames)
	if err != nil {
		return fmt.Errorf("failed to locate raw outputs: %w", err)
	}

	if len(raws) == 0 {
		utils.Warn("no raw engine outputs found in %s, nothing to post-process", c.OutputDir)
		return nil
	}

	for i, rawPath := range raws {
		select {
		case <-c.ctx.Done():
			utils.Warn("run interrupted, %d of %d files not processed", len(raws)-i, len(raws))
			return nil
		default:
		}

		c.Stats.TotalFiles++
		name := filepath.Base(rawPath)
		fmt.Printf("\n[%d/%d] post-processing %s\n", i+1, len(raws), name)

		startTime := time.Now()
		rec := models.ProcessingRecord{
			FileName:   name,
			PlayerName: transcript.SpeakerFromFileName(name),
		}
		if info, statErr := os.Stat(rawPath); statErr == nil {
			rec.FileSize = info.Size()
		}

		err := c.FileProcessor.RemovePriorTranscript(rawPath)
		var result *processor.Result
		if err == nil {
			result, err = c.FileProcessor.Process(rawPath)
		}

		rec.ProcessingTime = time.Since(startTime).Seconds()
		rec.Timestamp = utils.Timestamp()

		if err != nil {
			rec.Status = models.StatusError
			rec.ErrorMessage = err.Error()
			c.Stats.FailedFiles++
			color.Red("[%d/%d] failed: %s - %v", i+1, len(raws), name, err)
			utils.Error("post-processing %s failed: %v", name, err)
		} else {
			rec.Status = models.StatusSuccess
			rec.PlayerName = result.Speaker
			c.Stats.SuccessfulFiles++
			color.Green("[%d/%d] done: %s (%d segments)", i+1, len(raws), name, result.SegmentCount)
		}

		c.appendRecord(rec)
	}

	return nil
}

// appendRecord writes one state record, surfacing schema mismatches with a
// hint instead of aborting the batch.
func (c *Controller) appendRecord(rec models.ProcessingRecord) {
	if err := c.Tracker.Record(rec); err != nil {
		var mismatch *state.SchemaMismatchError
		if errors.As(err, &mismatch) {
			utils.Error("state record for %s not written: %v (rerun with -force to override)", rec.FileName, err)
			return
		}
		utils.Error("failed to append state record for %s: %v", rec.FileName, err)
	}
}

// StartWatchMode keeps the process alive and feeds new recordings through
// the same per-file pipeline as they appear in the input folder. Processing
// stays strictly sequential.
func (c *Controller) StartWatchMode() error {
	var watchMu sync.Mutex
	counter := 0

	stop, err := watcher.StartRecordingMonitoring(
		c.Config.InputFolder,
		c.Scanner.AudioExtensions,
		func(path string) {
			watchMu.Lock()
			defer watchMu.Unlock()

			info, statErr := os.Stat(path)
			if statErr != nil {
				utils.Warn("new recording vanished before processing: %s", path)
				return
			}

			counter++
			c.processRecording(scanner.AudioFile{
				Path:    path,
				Name:    filepath.Base(path),
				Ext:     strings.ToLower(filepath.Ext(path)),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}, counter, counter)

			if err := c.Aggregator.Run(); err != nil {
				utils.Error("aggregation failed: %v", err)
			}
		},
	)
	if err != nil {
		return err
	}
	c.addCleanup(stop)

	utils.Info("watch mode active, press Ctrl+C to stop")
	<-c.ctx.Done()
	return nil
}

// cleanupTransientOutputs removes raw engine outputs from the output folder
// root after a run. The archived originals keep the pristine copies.
func (c *Controller) cleanupTransientOutputs() {
	entries, err := os.ReadDir(c.OutputDir)
	if err != nil {
		utils.Warn("cleanup failed: %v", err)
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tsv") {
			continue
		}
		if isReserved(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.OutputDir, entry.Name())); err != nil {
			utils.Warn("failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		utils.Info("removed %d transient raw output files", removed)
	}
}

func isReserved(name string) bool {
	for _, reserved := range reservedNames {
		if name == reserved {
			return true
		}
	}
	return false
}

// PrintSummary reports this run's counters and the durable store totals.
func (c *Controller) PrintSummary() {
	elapsed := time.Since(c.Stats.StartTime)

	fmt.Println()
	color.Cyan("run summary")
	color.Cyan("-----------")
	fmt.Printf("this run:   %d files (%d ok, %d failed, %d skipped) in %s\n",
		c.Stats.TotalFiles, c.Stats.SuccessfulFiles, c.Stats.FailedFiles,
		c.Stats.SkippedFiles, utils.FormatTimeDuration(elapsed.Seconds()))

	stats, err := c.Tracker.Stats()
	if err != nil {
		utils.Warn("failed to read state store stats: %v", err)
		return
	}

	fmt.Printf("all runs:   %d records (%d ok, %d failed)\n",
		stats.TotalFiles, stats.SuccessCount, stats.ErrorCount)
	fmt.Printf("total time: %s (avg %s per file)\n",
		utils.FormatMinSec(stats.TotalDurationSeconds),
		utils.FormatMinSec(stats.AverageDurationSeconds))
	fmt.Printf("total size: %s\n", utils.FormatFileSize(stats.TotalSizeBytes))
}

// addCleanup registers a cleanup function, run in reverse order on shutdown.
func (c *Controller) addCleanup(cleanup func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup = append(c.cleanup, cleanup)
}

// Cleanup runs all registered cleanup functions.
func (c *Controller) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cleanup) - 1; i >= 0; i-- {
		c.cleanup[i]()
	}
}

// setupSignalHandlers cancels the run context on SIGINT/SIGTERM. The current
// file finishes or fails; the state store lets the next run resume.
func (c *Controller) setupSignalHandlers() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-ch
		utils.Info("interrupt received, stopping after the current file...")
		c.cancelFunc()
	}()
}
