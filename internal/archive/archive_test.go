package archive

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListChapters(t *testing.T) {
	s := openTestStore(t)

	for _, n := range []int{5, 1, 3} {
		err := s.RecordChapter(Record{
			Novel:      "novel",
			Chapter:    n,
			SourceLen:  100 * n,
			OutputLen:  110 * n,
			OutputPath: "/out/path",
		})
		if err != nil {
			t.Fatalf("RecordChapter(%d) error = %v", n, err)
		}
	}

	recs, err := s.Chapters("novel")
	if err != nil {
		t.Fatalf("Chapters() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	for i, want := range []int{1, 3, 5} {
		if recs[i].Chapter != want {
			t.Errorf("record %d chapter = %d, want %d", i, recs[i].Chapter, want)
		}
	}
	if recs[0].ArchivedAt.IsZero() {
		t.Error("ArchivedAt not defaulted")
	}
}

func TestRecordChapterReplacesOnRetry(t *testing.T) {
	s := openTestStore(t)

	first := Record{Novel: "novel", Chapter: 7, OutputLen: 10, OutputPath: "/a", ArchivedAt: time.Now().UTC()}
	if err := s.RecordChapter(first); err != nil {
		t.Fatal(err)
	}
	second := first
	second.OutputLen = 20
	second.OutputPath = "/b"
	if err := s.RecordChapter(second); err != nil {
		t.Fatal(err)
	}

	recs, err := s.Chapters("novel")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].OutputLen != 20 || recs[0].OutputPath != "/b" {
		t.Errorf("re-record did not replace row: %+v", recs[0])
	}
}

func TestCountPerNovel(t *testing.T) {
	s := openTestStore(t)

	for i := 1; i <= 4; i++ {
		if err := s.RecordChapter(Record{Novel: "a", Chapter: i, OutputPath: "/x"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RecordChapter(Record{Novel: "b", Chapter: 1, OutputPath: "/y"}); err != nil {
		t.Fatal(err)
	}

	for novel, want := range map[string]int{"a": 4, "b": 1, "absent": 0} {
		got, err := s.Count(novel)
		if err != nil {
			t.Fatalf("Count(%s) error = %v", novel, err)
		}
		if got != want {
			t.Errorf("Count(%s) = %d, want %d", novel, got, want)
		}
	}
}
