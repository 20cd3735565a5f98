// Package aggregate merges normalized per-file transcripts into one
// time-ordered combined transcript plus per-speaker transcripts. Aggregation
// is a pure view over the transcript files: recomputing it from the same
// inputs reproduces identical output.
package aggregate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/session-transcriber/pkg/transcript"
	"github.com/ccp-p/session-transcriber/pkg/utils"
)

// Row is one transcript row plus its parsed start time used for ordering.
// The original field text is kept verbatim so serialization is lossless.
type Row struct {
	Speaker string
	Start   int
	Fields  [4]string // speaker, start, end, text as read
}

// Aggregator builds the merged and per-speaker transcripts.
type Aggregator struct {
	TranscriptDir string // normalized per-file transcripts (input)
	MergedPath    string // combined transcript (output)
	SpeakerDir    string // per-speaker transcripts (output)
}

// NewAggregator creates an aggregator over the given output folder.
func NewAggregator(outputDir string) *Aggregator {
	return &Aggregator{
		TranscriptDir: filepath.Join(outputDir, "transcripts"),
		MergedPath:    filepath.Join(outputDir, "merged_transcript.tsv"),
		SpeakerDir:    filepath.Join(outputDir, "speakers"),
	}
}

// Run reads every normalized transcript, sorts all rows by numeric start
// (stable, so ties keep their input order) and writes the merged transcript
// and one transcript per distinct speaker. A non-numeric start value aborts
// the aggregation pass: silently coercing it would corrupt the sort order.
func (a *Aggregator) Run() error {
	rows, err := a.collectRows()
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		logrus.Warn("no transcript rows found, nothing to aggregate")
		return nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Start < rows[j].Start
	})

	if err := writeRows(a.MergedPath, rows); err != nil {
		return err
	}
	logrus.Infof("merged transcript written: %s (%d rows)", a.MergedPath, len(rows))

	if err := utils.EnsureDirExists(a.SpeakerDir); err != nil {
		return fmt.Errorf("failed to create speaker folder: %w", err)
	}

	// Group rows per speaker, keeping the sorted order within each group.
	bySpeaker := make(map[string][]Row)
	var speakers []string
	for _, row := range rows {
		if _, seen := bySpeaker[row.Speaker]; !seen {
			speakers = append(speakers, row.Speaker)
		}
		bySpeaker[row.Speaker] = append(bySpeaker[row.Speaker], row)
	}

	for _, speaker := range speakers {
		path := filepath.Join(a.SpeakerDir, speaker+".tsv")
		if err := writeRows(path, bySpeaker[speaker]); err != nil {
			return err
		}
	}
	logrus.Infof("per-speaker transcripts written for %d speakers", len(speakers))

	return nil
}

// collectRows parses the data rows of every transcript file, in sorted file
// order so the pass is deterministic.
func (a *Aggregator) collectRows() ([]Row, error) {
	entries, err := os.ReadDir(a.TranscriptDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read transcript folder: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tsv") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var rows []Row
	for _, name := range names {
		path := filepath.Join(a.TranscriptDir, name)
		fileRows, err := parseTranscript(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}

	return rows, nil
}

// parseTranscript reads one normalized transcript. The header and blank
// lines are skipped, rows with fewer than four tab-separated fields are
// dropped, and a non-numeric start is a hard error.
func parseTranscript(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	var rows []Row

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if line == transcript.Header {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 4 {
			continue
		}

		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: non-numeric start value %q", path, lineNo, fields[1])
		}

		rows = append(rows, Row{
			Speaker: fields[0],
			Start:   start,
			Fields:  [4]string{fields[0], fields[1], fields[2], fields[3]},
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// writeRows serializes rows as TSV under the canonical header.
func writeRows(path string, rows []Row) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, transcript.Header)
	for _, row := range rows {
		lines = append(lines, strings.Join(row.Fields[:], "\t"))
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write transcript %s: %w", path, err)
	}
	return nil
}
