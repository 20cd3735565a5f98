package transcript

import (
	"path/filepath"
	"regexp"
	"strings"
)

// speakerPattern matches recording names of the form <digits>-<label>_<digits>,
// e.g. "12-alice_7.mp3", where the label is the participant identifier.
var speakerPattern = regexp.MustCompile(`^\d+-([^_]+)_\d+`)

// SpeakerFromFileName derives a speaker label from a filename (without path).
// Filenames that do not follow the tagged naming scheme fall back to the
// filename with its extension stripped.
func SpeakerFromFileName(name string) string {
	if m := speakerPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
