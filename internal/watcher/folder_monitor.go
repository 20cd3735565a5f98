// Package watcher implements watch mode: new recordings dropped into the
// input folder are fed into the batch pipeline once their writes settle.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccp-p/session-transcriber/pkg/utils"
)

// RecordingHandler receives recordings that are ready for processing.
type RecordingHandler interface {
	OnRecordingReady(filePath string)
}

// FolderMonitor watches one folder for new recordings. Create and write
// events are debounced per file so a recording still being copied in is not
// picked up until it settles.
type FolderMonitor struct {
	watcher        *fsnotify.Watcher
	folderPath     string
	fileExtensions []string
	handler        RecordingHandler
	debounceTime   time.Duration
	pendingFiles   map[string]*time.Timer
	mutex          sync.Mutex
	stopChan       chan struct{}
}

// NewFolderMonitor creates a monitor for the given folder and extensions.
func NewFolderMonitor(folderPath string, extensions []string, handler RecordingHandler, debounceTime time.Duration) (*FolderMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FolderMonitor{
		watcher:        watcher,
		folderPath:     folderPath,
		fileExtensions: extensions,
		handler:        handler,
		debounceTime:   debounceTime,
		pendingFiles:   make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start begins watching the folder.
func (m *FolderMonitor) Start() error {
	if err := os.MkdirAll(m.folderPath, 0755); err != nil {
		return fmt.Errorf("failed to create watched folder: %w", err)
	}

	if err := m.watcher.Add(m.folderPath); err != nil {
		return fmt.Errorf("failed to watch folder: %w", err)
	}

	go m.watchLoop()

	utils.Info("watching folder: %s", m.folderPath)
	return nil
}

// Stop ends the watch and cancels pending debounce timers.
func (m *FolderMonitor) Stop() {
	close(m.stopChan)
	m.watcher.Close()
	utils.Info("stopped watching folder: %s", m.folderPath)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, timer := range m.pendingFiles {
		timer.Stop()
	}
}

func (m *FolderMonitor) watchLoop() {
	for {
		select {
		case <-m.stopChan:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleFileEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			utils.Error("folder watch error: %v", err)
		}
	}
}

func (m *FolderMonitor) handleFileEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	filePath := event.Name
	if !m.isTargetFile(filePath) {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Restart the settle timer on every event for the file.
	if timer, exists := m.pendingFiles[filePath]; exists {
		timer.Stop()
	}

	m.pendingFiles[filePath] = time.AfterFunc(m.debounceTime, func() {
		m.fileSettled(filePath)
	})

	utils.Debug("detected file change: %s", filePath)
}

func (m *FolderMonitor) isTargetFile(filePath string) bool {
	fileInfo, err := os.Stat(filePath)
	if err != nil || fileInfo.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	for _, targetExt := range m.fileExtensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}

func (m *FolderMonitor) fileSettled(filePath string) {
	m.mutex.Lock()
	delete(m.pendingFiles, filePath)
	m.mutex.Unlock()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return
	}

	utils.Info("new recording ready: %s", filepath.Base(filePath))
	if m.handler != nil {
		m.handler.OnRecordingReady(filePath)
	}
}

// StartRecordingMonitoring watches folder for new recordings with the given
// extensions and calls handle once each one settles. The returned function
// stops the watch.
func StartRecordingMonitoring(folder string, extensions []string, handle func(string)) (func(), error) {
	monitor, err := NewFolderMonitor(folder, extensions, handlerFunc(handle), 5*time.Second)
	if err != nil {
		return nil, err
	}

	if err := monitor.Start(); err != nil {
		return nil, err
	}

	return monitor.Stop, nil
}

type handlerFunc func(string)

func (f handlerFunc) OnRecordingReady(filePath string) { f(filePath) }
