// Package credential distributes API keys across concurrent workers in
// round-robin order and keeps per-key usage and error counters.
package credential

import (
	"fmt"
	"sync"
)

// Credential is a borrowed API key. Workers get a value copy; the mutable
// counters stay inside the Rotator.
type Credential struct {
	Key   string
	Index int
}

// Masked returns a short form of the key safe for log output.
func (c Credential) Masked() string {
	if len(c.Key) <= 12 {
		return "key-" + fmt.Sprint(c.Index)
	}
	return c.Key[:8] + "..." + c.Key[len(c.Key)-4:]
}

// Rotator hands out credentials round-robin. It never removes a key from
// rotation; skip/backoff policy is layered on top by the coordinator.
type Rotator struct {
	mu     sync.Mutex
	keys   []string
	cursor int
	usage  []int
	errors []int
}

// NewRotator creates a rotator over the given keys. An empty key set is a
// configuration error caught here, not at call time.
func NewRotator(keys []string) (*Rotator, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no API keys configured")
	}
	return &Rotator{
		keys:   append([]string(nil), keys...),
		usage:  make([]int, len(keys)),
		errors: make([]int, len(keys)),
	}, nil
}

// Len returns the number of keys in rotation.
func (r *Rotator) Len() int {
	return len(r.keys)
}

// Next returns the next credential in round-robin order.
func (r *Rotator) Next() Credential {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.cursor % len(r.keys)
	r.cursor = (r.cursor + 1) % len(r.keys)
	r.usage[idx]++
	return Credential{Key: r.keys[idx], Index: idx}
}

// ReportError increments the error counter for the given credential.
func (r *Rotator) ReportError(c Credential) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.Index >= 0 && c.Index < len(r.errors) {
		r.errors[c.Index]++
	}
}

// Status holds a point-in-time copy of the rotation counters.
type Status struct {
	Keys   int
	Usage  []int
	Errors []int
}

// Status returns a snapshot of usage and error counts per key.
func (r *Rotator) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Status{
		Keys:   len(r.keys),
		Usage:  append([]int(nil), r.usage...),
		Errors: append([]int(nil), r.errors...),
	}
}
