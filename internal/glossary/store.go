// Package glossary maintains the shared terminology store: source terms and
// their approved renderings, grouped into three categories, read by every
// worker and updated as term extraction proposes new entries.
package glossary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Category identifies one of the three term groups.
type Category string

const (
	Characters  Category = "characters"
	ProperNouns Category = "proper_nouns"
	Expressions Category = "cultural_expressions"
)

// AllCategories lists the categories in their prompt order.
var AllCategories = []Category{Characters, ProperNouns, Expressions}

// fileNames maps each category to its persisted JSON file.
var fileNames = map[Category]string{
	Characters:  "characters.json",
	ProperNouns: "proper_nouns.json",
	Expressions: "cultural_expressions.json",
}

// Entry is one glossary record. Source is the key within a category.
// Aliases is only populated for character entries.
type Entry struct {
	Source    string   `json:"source"`
	Rendering string   `json:"rendering,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// Update carries entries proposed by term extraction, grouped by category.
type Update map[Category][]Entry

// Count returns the total number of entries across categories.
func (u Update) Count() int {
	n := 0
	for _, entries := range u {
		n += len(entries)
	}
	return n
}

// Store holds the in-memory glossary for one novel. Many workers read
// snapshots concurrently; merges take the write lock. Go's RWMutex blocks
// new readers once a writer is waiting, so a stream of readers cannot
// starve a merge.
type Store struct {
	mu      sync.RWMutex
	saveMu  sync.Mutex // serializes writers to the category files
	dir     string
	entries map[Category]map[string]Entry
}

// NewStore creates an empty store persisting to dir.
func NewStore(dir string) *Store {
	s := &Store{dir: dir, entries: make(map[Category]map[string]Entry)}
	for _, cat := range AllCategories {
		s.entries[cat] = make(map[string]Entry)
	}
	return s
}

// Load reads the category files from the store directory. A missing or
// unparsable file leaves that category empty; the run continues.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cat := range AllCategories {
		path := filepath.Join(s.dir, fileNames[cat])
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: cannot read glossary file %s: %v\n", path, err)
			}
			continue
		}
		var entries []Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: corrupt glossary file %s, starting empty: %v\n", path, err)
			continue
		}
		m := make(map[string]Entry, len(entries))
		for _, e := range entries {
			if e.Source != "" {
				m[e.Source] = e
			}
		}
		s.entries[cat] = m
	}
	return nil
}

// Save writes all category files. Entries are sorted by source so the files
// are stable regardless of map iteration order.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snapshot := s.copyLocked()
	s.mu.RUnlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create glossary directory: %w", err)
	}
	for _, cat := range AllCategories {
		data, err := json.MarshalIndent(snapshot[cat], "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s glossary: %w", cat, err)
		}
		path := filepath.Join(s.dir, fileNames[cat])
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write glossary file: %w", err)
		}
	}
	return nil
}

// Snapshot returns a consistent copy of all categories, each sorted by
// source. Callers may keep it for the duration of one translation without
// ever observing a half-applied merge.
func (s *Store) Snapshot() map[Category][]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() map[Category][]Entry {
	out := make(map[Category][]Entry, len(AllCategories))
	for _, cat := range AllCategories {
		entries := make([]Entry, 0, len(s.entries[cat]))
		for _, e := range s.entries[cat] {
			copied := e
			copied.Aliases = append([]string(nil), e.Aliases...)
			entries = append(entries, copied)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Source < entries[j].Source })
		out[cat] = entries
	}
	return out
}

// Len returns the number of entries in the given category.
func (s *Store) Len(cat Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[cat])
}

// Merge folds proposed entries into the store under the write lock and
// returns how many were newly inserted per category.
//
// Conflict policy is keep-existing: an established rendering is never
// overwritten. For an entry that already exists, only empty fields are
// filled in and new aliases are appended. This keeps renderings stable
// across chapters even when extraction proposes a different one.
func (s *Store) Merge(update Update) map[Category]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make(map[Category]int)
	for cat, proposed := range update {
		existing, ok := s.entries[cat]
		if !ok {
			continue
		}
		for _, e := range proposed {
			if e.Source == "" {
				continue
			}
			cur, found := existing[e.Source]
			if !found {
				e.Aliases = dedupe(e.Aliases)
				existing[e.Source] = e
				added[cat]++
				continue
			}
			if cur.Rendering == "" {
				cur.Rendering = e.Rendering
			}
			if cur.Note == "" {
				cur.Note = e.Note
			}
			cur.Aliases = dedupe(append(cur.Aliases, e.Aliases...))
			existing[e.Source] = cur
		}
	}
	return added
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
