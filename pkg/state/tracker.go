// Package state implements the durable run state store: an append-only TSV
// log of per-file processing outcomes that makes interrupted batches
// resumable.
package state

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ccp-p/session-transcriber/pkg/models"
	"github.com/ccp-p/session-transcriber/pkg/utils"
)

// Header is the fixed column schema of the state store.
const Header = "FileName\tFileSize\tProcessingTime\tStatus\tTimestamp\tPlayerName\tErrorMessage"

// SchemaMismatchError reports a state store whose column header does not
// match the schema this version writes.
type SchemaMismatchError struct {
	Path     string
	Found    string
	Expected string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("state store %s has incompatible columns: found %q, expected %q",
		e.Path, e.Found, e.Expected)
}

// Stats aggregates all records in the store.
type Stats struct {
	TotalFiles             int
	SuccessCount           int
	ErrorCount             int
	TotalDurationSeconds   float64
	AverageDurationSeconds float64
	TotalSizeBytes         int64
}

// Tracker manages the append-only state store. Records are never mutated or
// deleted; a file counts as processed once any Success record exists for it.
// Duplicate records for the same file accumulate across force reruns.
type Tracker struct {
	Path string

	// ForceSchema appends records even when the existing store header does
	// not match the current schema, instead of failing the write.
	ForceSchema bool
}

// NewTracker creates a tracker backed by the given store path. The store file
// itself is created lazily on the first write.
func NewTracker(path string) *Tracker {
	return &Tracker{Path: path}
}

// IsProcessed reports whether the store holds at least one Success record for
// the file name. A missing store means nothing was processed yet.
func (t *Tracker) IsProcessed(fileName string) (bool, error) {
	records, err := t.readAll()
	if err != nil {
		return false, err
	}

	for _, rec := range records {
		if rec.FileName == fileName && rec.Status == models.StatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

// Record appends one processing record to the store, creating the store with
// its header on first use. An existing store with a different column header
// fails with SchemaMismatchError unless ForceSchema is set, in which case the
// row is appended in the current column order anyway.
func (t *Tracker) Record(rec models.ProcessingRecord) error {
	exists := utils.CheckFileExists(t.Path)

	if exists {
		header, err := t.readHeader()
		if err != nil {
			return err
		}
		if header != Header && !t.ForceSchema {
			return &SchemaMismatchError{Path: t.Path, Found: header, Expected: Header}
		}
	}

	f, err := os.OpenFile(t.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer f.Close()

	if !exists {
		if _, err := f.WriteString(Header + "\n"); err != nil {
			return fmt.Errorf("failed to write state store header: %w", err)
		}
	}

	row := strings.Join([]string{
		utils.SanitizeField(rec.FileName),
		strconv.FormatInt(rec.FileSize, 10),
		strconv.FormatFloat(rec.ProcessingTime, 'f', 2, 64),
		rec.Status,
		rec.Timestamp,
		utils.SanitizeField(rec.PlayerName),
		utils.SanitizeField(rec.ErrorMessage),
	}, "\t")

	if _, err := f.WriteString(row + "\n"); err != nil {
		return fmt.Errorf("failed to append state record: %w", err)
	}

	return f.Sync()
}

// Stats scans all records and aggregates totals.
func (t *Tracker) Stats() (*Stats, error) {
	records, err := t.readAll()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, rec := range records {
		stats.TotalFiles++
		if rec.Status == models.StatusSuccess {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}
		stats.TotalDurationSeconds += rec.ProcessingTime
		stats.TotalSizeBytes += rec.FileSize
	}

	if stats.TotalFiles > 0 {
		stats.AverageDurationSeconds = stats.TotalDurationSeconds / float64(stats.TotalFiles)
	}

	return stats, nil
}

// readHeader returns the first line of the store.
func (t *Tracker) readHeader() (string, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open state store: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", scanner.Err()
}

// readAll parses every data row of the store. Rows that do not fit the
// schema are skipped; the store is advisory state, not a transcript.
func (t *Tracker) readAll() ([]models.ProcessingRecord, error) {
	if !utils.CheckFileExists(t.Path) {
		return nil, nil
	}

	f, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	defer f.Close()

	var records []models.ProcessingRecord

	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue // header
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}

		size, _ := strconv.ParseInt(fields[1], 10, 64)
		duration, _ := strconv.ParseFloat(fields[2], 64)

		records = append(records, models.ProcessingRecord{
			FileName:       fields[0],
			FileSize:       size,
			ProcessingTime: duration,
			Status:         fields[3],
			Timestamp:      fields[4],
			PlayerName:     fields[5],
			ErrorMessage:   fields[6],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
