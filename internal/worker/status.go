package worker

import (
	"sort"
	"sync"
)

// State is the lifecycle state of one chapter in a run.
type State int

const (
	Pending State = iota
	InProgress
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// statusTracker records per-chapter state for a run. Transitions only move
// forward: a chapter that reached Completed or Failed never changes again.
type statusTracker struct {
	mu      sync.Mutex
	states  map[int]State
	reasons map[int]error
}

func newStatusTracker(chapters []int) *statusTracker {
	t := &statusTracker{
		states:  make(map[int]State, len(chapters)),
		reasons: make(map[int]error),
	}
	for _, n := range chapters {
		t.states[n] = Pending
	}
	return t
}

func (t *statusTracker) start(chapter int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[chapter] != Pending {
		return false
	}
	t.states[chapter] = InProgress
	return true
}

func (t *statusTracker) complete(chapter int) bool {
	return t.finish(chapter, Completed, nil)
}

func (t *statusTracker) fail(chapter int, reason error) bool {
	return t.finish(chapter, Failed, reason)
}

func (t *statusTracker) finish(chapter int, final State, reason error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[chapter] != InProgress {
		return false
	}
	t.states[chapter] = final
	if reason != nil {
		t.reasons[chapter] = reason
	}
	return true
}

// progress counts chapters that reached a terminal state.
func (t *statusTracker) progress() (done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.states {
		if s == Completed || s == Failed {
			done++
		}
	}
	return done, len(t.states)
}

// counts breaks the tracked chapters down by state.
func (t *statusTracker) counts() (pending, inProgress, completed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.states {
		switch s {
		case Pending:
			pending++
		case InProgress:
			inProgress++
		case Completed:
			completed++
		case Failed:
			failed++
		}
	}
	return pending, inProgress, completed, failed
}

func (t *statusTracker) state(chapter int) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[chapter]
}

// result collects the final per-chapter outcomes.
func (t *statusTracker) result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := Result{Failed: make(map[int]error)}
	for n, s := range t.states {
		switch s {
		case Completed:
			res.CompletedChapters = append(res.CompletedChapters, n)
		case Failed:
			res.Failed[n] = t.reasons[n]
		default:
			res.Skipped = append(res.Skipped, n)
		}
	}
	sort.Ints(res.CompletedChapters)
	sort.Ints(res.Skipped)
	return res
}
