package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// logStoreHeader is the column header of the durable log store.
const logStoreHeader = "Timestamp\tLevel\tMessage"

// LogStoreHook appends one TSV row per log entry to a durable log file with
// columns Timestamp, Level, Message. Rows are append-only.
type LogStoreHook struct {
	path string
	mu   sync.Mutex
}

// NewLogStoreHook creates the hook, writing the column header if the store
// does not exist yet.
func NewLogStoreHook(path string) (*LogStoreHook, error) {
	if !CheckFileExists(path) {
		if err := os.WriteFile(path, []byte(logStoreHeader+"\n"), 0644); err != nil {
			return nil, fmt.Errorf("failed to create log store: %w", err)
		}
	}
	return &LogStoreHook{path: path}, nil
}

// Levels reports which entries reach the store. Debug output stays out of the
// durable log.
func (h *LogStoreHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
		logrus.FatalLevel,
	}
}

// Fire appends the entry as one TSV row.
func (h *LogStoreHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	row := fmt.Sprintf("%s\t%s\t%s\n",
		entry.Time.Format("2006-01-02 15:04:05"),
		storeLevel(entry.Level),
		SanitizeField(entry.Message),
	)
	_, err = f.WriteString(row)
	return err
}

// AttachLogStore wires a log store hook into the global logger.
func AttachLogStore(path string) error {
	hook, err := NewLogStoreHook(path)
	if err != nil {
		return err
	}
	Log.AddHook(hook)
	return nil
}

// storeLevel maps logrus levels onto the store's level names.
func storeLevel(level logrus.Level) string {
	switch level {
	case logrus.WarnLevel:
		return "WARNING"
	case logrus.ErrorLevel, logrus.FatalLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// SanitizeField makes a value safe to embed in a single TSV field by
// replacing tabs and newlines with spaces.
func SanitizeField(s string) string {
	r := strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")
	return r.Replace(s)
}

// Timestamp returns the current local time in the format used across the
// state and log stores.
func Timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
