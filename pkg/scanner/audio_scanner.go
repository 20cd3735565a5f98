package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AudioFile represents one input recording.
type AudioFile struct {
	Path    string    // full path
	Name    string    // base name
	Ext     string    // lowercased extension
	Size    int64     // size in bytes
	ModTime time.Time // modification time
}

// AudioScanner finds input recordings in a folder.
type AudioScanner struct {
	AudioExtensions []string
}

// NewAudioScanner creates a scanner with the default audio extension set.
func NewAudioScanner() *AudioScanner {
	return &AudioScanner{
		AudioExtensions: []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac", ".opus"},
	}
}

// ScanDirectory returns the audio files in dir (non-recursive), sorted
// lexicographically by name. Directory enumeration order is platform
// dependent, so the sort fixes a deterministic processing order.
func (s *AudioScanner) ScanDirectory(dir string) ([]AudioFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []AudioFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !s.isAudio(ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logrus.Warnf("failed to stat %s: %v", entry.Name(), err)
			continue
		}

		files = append(files, AudioFile{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Ext:     ext,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	logrus.Infof("found %d audio files in %s", len(files), dir)
	return files, nil
}

// IsAudioPath reports whether the path has a recognized audio extension.
func (s *AudioScanner) IsAudioPath(path string) bool {
	return s.isAudio(strings.ToLower(filepath.Ext(path)))
}

func (s *AudioScanner) isAudio(ext string) bool {
	for _, audioExt := range s.AudioExtensions {
		if ext == audioExt {
			return true
		}
	}
	return false
}

// FindRawOutputs locates previously produced raw engine output files for
// post-process-only runs: transient .tsv files in the output folder root plus
// archived originals. When both exist for the same base name the archived
// original wins, since it is the unmodified copy. Names in exclude (the
// merged transcript, state and log stores, which share the .tsv extension)
// are skipped. The result is sorted by base name.
func FindRawOutputs(outputDir, archiveDir string, exclude []string) ([]string, error) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}

	byBase := make(map[string]string)

	collect := func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tsv") {
				continue
			}
			if _, skip := excluded[entry.Name()]; skip {
				continue
			}
			byBase[entry.Name()] = filepath.Join(dir, entry.Name())
		}
		return nil
	}

	// Output root first, archive second: archived originals override.
	if err := collect(outputDir); err != nil {
		return nil, err
	}
	if err := collect(archiveDir); err != nil {
		return nil, err
	}

	bases := make([]string, 0, len(byBase))
	for base := range byBase {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	paths := make([]string, 0, len(bases))
	for _, base := range bases {
		paths = append(paths, byBase[base])
	}
	return paths, nil
}
