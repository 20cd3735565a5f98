package utils

import (
	"fmt"
	"math"
)

// FormatTimeDuration formats a duration in seconds as a readable string.
func FormatTimeDuration(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatMinSec formats a duration in seconds as "<m>m <s>s", with seconds
// rounded to the nearest whole second.
func FormatMinSec(seconds float64) string {
	total := int(math.Round(seconds))
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// FormatFileSize formats a byte count as a human readable size.
func FormatFileSize(sizeBytes int64) string {
	const (
		B  int64 = 1
		KB int64 = 1024 * B
		MB int64 = 1024 * KB
		GB int64 = 1024 * MB
	)

	var (
		unit     string
		unitSize int64
	)

	switch {
	case sizeBytes >= GB:
		unit = "GB"
		unitSize = GB
	case sizeBytes >= MB:
		unit = "MB"
		unitSize = MB
	case sizeBytes >= KB:
		unit = "KB"
		unitSize = KB
	default:
		unit = "B"
		unitSize = B
	}

	return fmt.Sprintf("%.2f %s", float64(sizeBytes)/float64(unitSize), unit)
}
