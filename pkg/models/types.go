package models

// Segment represents one recognized utterance. Start and End carry the
// verbatim text emitted by the engine; they are only interpreted numerically
// during aggregation. A Segment is never mutated after creation - collapsing
// builds new ones.
type Segment struct {
	Speaker string // speaker label derived from the source filename
	Start   string // start time, engine units (typically milliseconds)
	End     string // end time, engine units
	Text    string // recognized text, surrounding whitespace trimmed
}

// Processing statuses recorded in the run state store.
const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

// ProcessingRecord is one row of durable per-file state. Records are
// append-only: one row per attempt, never updated or deleted.
type ProcessingRecord struct {
	FileName       string  // base name of the input audio file
	FileSize       int64   // input size in bytes
	ProcessingTime float64 // wall time for the attempt, seconds
	Status         string  // StatusSuccess or StatusError
	Timestamp      string  // local time the record was written
	PlayerName     string  // speaker label extracted from the filename
	ErrorMessage   string  // empty on success
}
