package dev

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	// ChangeArtifact is a compiler artifact change.
	ChangeArtifact ChangeType = iota

	// ChangeDefinitions is a router definition file change.
	ChangeDefinitions
)

func (t ChangeType) String() string {
	switch t {
	case ChangeArtifact:
		return "artifact"
	case ChangeDefinitions:
		return "definitions"
	default:
		return "unknown"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch.
	Paths []string

	// Ignore patterns to skip (names, path segments or globs).
	Ignore []string

	// Interval is the polling interval.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"build-info",
	"*.dbg.json",
	".git",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls files for changes.
type Watcher struct {
	config     WatcherConfig
	onChange   func(Change)
	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 500 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.scan(false)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.scan(true)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scan records modification times and, when report is set, reports the
// first change of each type.
func (w *Watcher) scan(report bool) {
	seen := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.IsDir() {
				seen[p] = info.ModTime()
			}
			return nil
		})
	}

	w.mu.Lock()
	var changes []Change
	for p, modTime := range seen {
		last, exists := w.timestamps[p]
		if !exists || modTime.After(last) {
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	for p := range w.timestamps {
		if _, ok := seen[p]; !ok {
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	w.timestamps = seen
	callback := w.onChange
	w.mu.Unlock()

	if !report || callback == nil {
		return
	}

	reported := make(map[ChangeType]bool)
	for _, change := range changes {
		if !reported[change.Type] {
			reported[change.Type] = true
			callback(change)
		}
	}
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		if strings.ContainsAny(pattern, "*?[") {
			if strings.Contains(pattern, "/") {
				if matched, _ := path.Match(pattern, normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// classifyChange determines the type of change based on file extension.
func classifyChange(path string) ChangeType {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ChangeDefinitions
	}
	return ChangeArtifact
}
