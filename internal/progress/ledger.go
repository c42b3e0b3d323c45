// Package progress records which chapters of a novel have been translated,
// so an interrupted run can resume where it left off.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ledgerFile is the JSON shape persisted per novel.
type ledgerFile struct {
	Novel       string    `json:"novel"`
	Completed   []int     `json:"completed"`
	LastChapter int       `json:"last_chapter"`
	StartTime   time.Time `json:"start_time"`
	LastUpdated time.Time `json:"last_updated"`
}

// Ledger tracks completed chapter numbers for one novel. All operations are
// serialized under one mutex; ledger writes are rare next to the
// network-bound translation work, so simple mutual exclusion is enough.
type Ledger struct {
	mu          sync.Mutex
	path        string
	novel       string
	completed   map[int]bool
	lastChapter int
	startTime   time.Time
}

// NewLedger creates a ledger persisting to <dir>/<novel>_progress.json.
func NewLedger(dir, novel string) *Ledger {
	return &Ledger{
		path:      filepath.Join(dir, novel+"_progress.json"),
		novel:     novel,
		completed: make(map[int]bool),
		startTime: time.Now(),
	}
}

// Load reads the progress file. A missing file starts a fresh ledger; a
// corrupt file is left untouched on disk and the ledger starts empty.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read progress file: %w", err)
	}

	var f ledgerFile
	if err := json.Unmarshal(data, &f); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: corrupt progress file %s, starting fresh: %v\n", l.path, err)
		return nil
	}

	l.completed = make(map[int]bool, len(f.Completed))
	for _, n := range f.Completed {
		l.completed[n] = true
	}
	l.lastChapter = f.LastChapter
	if !f.StartTime.IsZero() {
		l.startTime = f.StartTime
	}
	return nil
}

// Save writes the current state to the progress file.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveLocked()
}

func (l *Ledger) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}

	f := ledgerFile{
		Novel:       l.novel,
		Completed:   l.completedLocked(),
		LastChapter: l.lastChapter,
		StartTime:   l.startTime,
		LastUpdated: time.Now(),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	return nil
}

// IsComplete reports whether the chapter has already been translated.
func (l *Ledger) IsComplete(chapter int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.completed[chapter]
}

// MarkComplete records a finished chapter and persists immediately.
// Marking an already-complete chapter is a no-op. A failed save does not
// lose the in-memory state; the error is returned so the caller can warn.
func (l *Ledger) MarkComplete(chapter int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.completed[chapter] {
		return nil
	}
	l.completed[chapter] = true
	l.lastChapter = chapter
	return l.saveLocked()
}

// NextPending returns the first candidate not yet complete, preserving
// candidate order, and false once every candidate is done.
func (l *Ledger) NextPending(candidates []int) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, n := range candidates {
		if !l.completed[n] {
			return n, true
		}
	}
	return 0, false
}

// Completed returns the completed chapter numbers in ascending order.
func (l *Ledger) Completed() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.completedLocked()
}

func (l *Ledger) completedLocked() []int {
	out := make([]int, 0, len(l.completed))
	for n := range l.completed {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// CompletedSet returns a copy of the completed set for queue building.
func (l *Ledger) CompletedSet() map[int]bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[int]bool, len(l.completed))
	for n := range l.completed {
		out[n] = true
	}
	return out
}

// Reset clears the completed set and restarts the clock. Destructive, so it
// only happens on an explicit request, never on normal startup.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.completed = make(map[int]bool)
	l.lastChapter = 0
	l.startTime = time.Now()
	return l.saveLocked()
}

// Stats is a point-in-time view of progress counters. The ledger fills the
// completion fields; Total, Failed and InProgress describe the surrounding
// run and are filled by whoever owns the run (zero for a ledger at rest).
type Stats struct {
	Total       int
	Completed   int
	Failed      int
	InProgress  int
	LastChapter int
	Elapsed     time.Duration
	PerHour     float64
}

// Stats computes throughput from the current counters without pausing the
// run.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{
		Completed:   len(l.completed),
		LastChapter: l.lastChapter,
		Elapsed:     time.Since(l.startTime),
	}
	if s.Elapsed > 0 && s.Completed > 0 {
		s.PerHour = float64(s.Completed) / s.Elapsed.Hours()
	}
	return s
}
