package chapter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMergeInput(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMergeFilesNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	writeMergeInput(t, dir, map[string]string{
		"译_00010.md": "chapter ten",
		"译_00002.md": "chapter two\n",
		"译_00001.md": "chapter one\n",
		"index.md":   "- not a chapter\n",
		"notes.txt":  "wrong extension",
	})

	var buf strings.Builder
	merged, err := MergeFiles(dir, ".md", &buf, "# My Book", "THE END")
	if err != nil {
		t.Fatalf("MergeFiles failed: %v", err)
	}
	if merged != 3 {
		t.Errorf("merged %d files, want 3", merged)
	}

	want := "# My Book\n\nchapter one\nchapter two\nchapter ten\n\nTHE END\n"
	if buf.String() != want {
		t.Errorf("merged volume = %q, want %q", buf.String(), want)
	}
}

func TestMergeFilesNoHeaderFooter(t *testing.T) {
	dir := t.TempDir()
	writeMergeInput(t, dir, map[string]string{"译_00001.md": "only chapter\n"})

	var buf strings.Builder
	if _, err := MergeFiles(dir, ".md", &buf, "", ""); err != nil {
		t.Fatalf("MergeFiles failed: %v", err)
	}
	if buf.String() != "only chapter\n" {
		t.Errorf("merged volume = %q", buf.String())
	}
}

func TestMergeFilesEmptyDir(t *testing.T) {
	var buf strings.Builder
	if _, err := MergeFiles(t.TempDir(), ".md", &buf, "", ""); err == nil {
		t.Error("expected an error for a directory without chapters")
	}
}

func TestMergeOutputsFromLibrary(t *testing.T) {
	sourceRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(sourceRoot, "mybook"), 0755); err != nil {
		t.Fatal(err)
	}
	lib, err := NewLibrary(sourceRoot, t.TempDir(), "mybook", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.WriteOutput(1, "first\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := lib.WriteOutput(2, "second\n"); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	merged, err := lib.MergeOutputs(&buf, "", "")
	if err != nil {
		t.Fatalf("MergeOutputs failed: %v", err)
	}
	if merged != 2 {
		t.Errorf("merged %d files, want 2", merged)
	}
	if buf.String() != "first\nsecond\n" {
		t.Errorf("merged volume = %q", buf.String())
	}
}
