package chapter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestLibrary(t *testing.T, sources map[string]string) *Library {
	t.Helper()
	root := t.TempDir()
	srcDir := filepath.Join(root, "source", "novel")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range sources {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	l, err := NewLibrary(filepath.Join(root, "source"), filepath.Join(root, "output"), "novel", "", "")
	if err != nil {
		t.Fatalf("NewLibrary() error = %v", err)
	}
	return l
}

func TestNumbersSortedByEmbeddedNumber(t *testing.T) {
	l := newTestLibrary(t, map[string]string{
		"ch_00010.md": "ten",
		"ch_00002.md": "two",
		"ch_00100.md": "hundred",
		"notes.txt":   "ignored extension",
		"prologue.md": "no number, skipped",
	})

	nums, err := l.Numbers()
	if err != nil {
		t.Fatalf("Numbers() error = %v", err)
	}
	if want := []int{2, 10, 100}; !reflect.DeepEqual(nums, want) {
		t.Errorf("Numbers() = %v, want %v", nums, want)
	}
}

func TestReadSourceByNumber(t *testing.T) {
	l := newTestLibrary(t, map[string]string{
		"제3화.md": "chapter three text",
	})

	got, err := l.ReadSource(3)
	if err != nil {
		t.Fatalf("ReadSource(3) error = %v", err)
	}
	if got != "chapter three text" {
		t.Errorf("ReadSource(3) = %q", got)
	}

	if _, err := l.ReadSource(99); err == nil {
		t.Error("expected error for missing chapter")
	}
}

func TestWriteOutputAndExists(t *testing.T) {
	l := newTestLibrary(t, map[string]string{"ch_1.md": "src"})

	if l.OutputExists(1) {
		t.Error("OutputExists(1) = true before writing")
	}

	path, err := l.WriteOutput(1, "translated")
	if err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	if filepath.Base(path) != "译_00001.md" {
		t.Errorf("output file name = %s", filepath.Base(path))
	}
	if !l.OutputExists(1) {
		t.Error("OutputExists(1) = false after writing")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "translated" {
		t.Errorf("output content = %q", data)
	}
}

func TestNewLibraryMissingSourceDir(t *testing.T) {
	root := t.TempDir()
	if _, err := NewLibrary(root, root, "absent", "", ""); err == nil {
		t.Error("expected error for missing source directory")
	}
}
