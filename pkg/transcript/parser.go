package transcript

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/ccp-p/session-transcriber/pkg/models"
)

// Header is the column header of every normalized transcript file.
const Header = "speaker\tstart\tend\ttext"

// ParseSegments reads raw engine output (TSV rows of start, end, text) and
// attaches the given speaker label to every segment. Malformed lines are
// skipped at the line level:
//   - a line beginning with the literal "start" is the engine's header
//   - blank lines are ignored
//   - lines with fewer than three tab-separated fields are dropped
//
// Start and end are copied verbatim; no numeric validation happens here.
// Fields beyond the third are ignored.
func ParseSegments(r io.Reader, speaker string) ([]models.Segment, error) {
	var segments []models.Segment

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "start") {
			continue // engine header row
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue // malformed row
		}

		segments = append(segments, models.Segment{
			Speaker: speaker,
			Start:   fields[0],
			End:     fields[1],
			Text:    strings.TrimSpace(fields[2]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return segments, nil
}

// ParseFile parses one raw engine output file.
func ParseFile(path, speaker string) ([]models.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseSegments(f, speaker)
}
