package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type collectingHandler struct {
	mu    sync.Mutex
	paths []string
}

func (h *collectingHandler) OnRecordingReady(filePath string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, filePath)
}

func (h *collectingHandler) got() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

func TestIsTargetFile(t *testing.T) {
	dir := t.TempDir()

	audioPath := filepath.Join(dir, "recording.mp3")
	if err := os.WriteFile(audioPath, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	monitor, err := NewFolderMonitor(dir, []string{".mp3"}, nil, time.Second)
	if err != nil {
		t.Fatalf("failed to create monitor: %v", err)
	}
	defer monitor.Stop()

	if !monitor.isTargetFile(audioPath) {
		t.Error("expected .mp3 file to be a target")
	}
	if monitor.isTargetFile(textPath) {
		t.Error("expected .txt file to be ignored")
	}
	if monitor.isTargetFile(dir) {
		t.Error("expected directory to be ignored")
	}
	if monitor.isTargetFile(filepath.Join(dir, "missing.mp3")) {
		t.Error("expected missing file to be ignored")
	}
}

func TestMonitorPicksUpNewRecording(t *testing.T) {
	dir := t.TempDir()
	handler := &collectingHandler{}

	monitor, err := NewFolderMonitor(dir, []string{".mp3"}, handler, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create monitor: %v", err)
	}
	if err := monitor.Start(); err != nil {
		t.Fatalf("failed to start monitor: %v", err)
	}
	defer monitor.Stop()

	newFile := filepath.Join(dir, "1-alice_1.mp3")
	if err := os.WriteFile(newFile, []byte("audio"), 0644); err != nil {
		t.Fatalf("failed to create recording: %v", err)
	}

	// Wait for the debounce to settle.
	deadline := time.After(3 * time.Second)
	for {
		if paths := handler.got(); len(paths) > 0 {
			if paths[0] != newFile {
				t.Errorf("expected %s, got %s", newFile, paths[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("recording was never reported")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestVanishedFileNotReported(t *testing.T) {
	dir := t.TempDir()
	handler := &collectingHandler{}

	monitor, err := NewFolderMonitor(dir, []string{".mp3"}, handler, time.Second)
	if err != nil {
		t.Fatalf("failed to create monitor: %v", err)
	}
	defer monitor.Stop()

	// Settling a path that no longer exists must not reach the handler.
	monitor.fileSettled(filepath.Join(dir, "gone.mp3"))

	if len(handler.got()) != 0 {
		t.Error("vanished file should not be reported")
	}
}
