package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config holds the full configuration surface of the transcriber.
type Config struct {
	InputFolder  string `json:"input_folder"`  // folder containing the session recordings
	OutputFolder string `json:"output_folder"` // result folder; empty = sibling "transcriptions" next to input

	WhisperModel              string  `json:"whisper_model"`               // model name passed to the engine
	Language                  string  `json:"language"`                    // spoken language hint
	CompressionRatioThreshold float64 `json:"compression_ratio_threshold"` // engine anomaly threshold
	EngineTimeoutMin          int     `json:"engine_timeout_min"`          // per-file engine timeout, minutes

	Force           bool `json:"force"`             // reprocess files already recorded as Success
	PostProcessOnly bool `json:"post_process_only"` // skip the engine, re-run post-processing on raw outputs
	CleanupTemp     bool `json:"cleanup_temp"`      // remove transient raw outputs after a successful run
	WatchMode       bool `json:"watch_mode"`        // keep running and pick up new recordings

	IgnorePhrases []string `json:"ignore_phrases"` // case-insensitive phrases dropped from transcripts

	LogLevel string `json:"log_level"` // log level (DEBUG, INFO, WARN, ERROR)
	LogFile  string `json:"log_file"`  // rotated log file; empty = <output>/transcriber.log
}

// ConfigValidationError reports an invalid configuration field.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s - %s", e.Field, e.Message)
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		InputFolder:               "",
		OutputFolder:              "",
		WhisperModel:              "medium",
		Language:                  "en",
		CompressionRatioThreshold: 2.4,
		EngineTimeoutMin:          30,
		Force:                     false,
		PostProcessOnly:           false,
		CleanupTemp:               false,
		WatchMode:                 false,
		IgnorePhrases:             DefaultIgnorePhrases(),
		LogLevel:                  "INFO",
		LogFile:                   "",
	}
}

// DefaultIgnorePhrases returns the default set of filler phrases dropped from
// transcripts. The set targets common speech-model hallucinations on silence.
func DefaultIgnorePhrases() []string {
	return []string{
		"you",
		"thank you",
		"thanks for watching",
		"um",
		"uh",
		"hmm",
	}
}

// ResolveOutputFolder returns the effective output folder: the configured one,
// or a "transcriptions" directory next to the input folder.
func (c *Config) ResolveOutputFolder() string {
	if c.OutputFolder != "" {
		return c.OutputFolder
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.InputFolder)), "transcriptions")
}

// Validate checks the configuration for consistency. The input folder must
// already exist; the output folder is created on demand by the controller.
func (c *Config) Validate() error {
	if c.InputFolder == "" {
		return &ConfigValidationError{"InputFolder", "required"}
	}

	info, err := os.Stat(c.InputFolder)
	if os.IsNotExist(err) {
		return &ConfigValidationError{"InputFolder", fmt.Sprintf("folder does not exist: %s", c.InputFolder)}
	}
	if err == nil && !info.IsDir() {
		return &ConfigValidationError{"InputFolder", fmt.Sprintf("not a directory: %s", c.InputFolder)}
	}

	if c.WhisperModel == "" {
		return &ConfigValidationError{"WhisperModel", "required"}
	}

	if c.CompressionRatioThreshold < 1.0 || c.CompressionRatioThreshold > 10.0 {
		return &ConfigValidationError{"CompressionRatioThreshold", "must be between 1.0 and 10.0"}
	}

	if c.EngineTimeoutMin < 1 || c.EngineTimeoutMin > 600 {
		return &ConfigValidationError{"EngineTimeoutMin", "must be between 1 and 600 minutes"}
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file, keeping defaults for
// fields the file does not set.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("failed to read config file: %v", err)
		return err
	}

	if err := json.Unmarshal(data, c); err != nil {
		logrus.Errorf("failed to parse config file: %v", err)
		return err
	}

	return nil
}

// SaveToFile writes the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
