package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// CreateNovelTree builds a temporary source/output root pair with numbered
// chapter files for the given novel and returns (sourceRoot, outputRoot).
func CreateNovelTree(t *testing.T, novel string, chapters []int) (string, string) {
	t.Helper()

	root := t.TempDir()
	sourceRoot := filepath.Join(root, "source")
	outputRoot := filepath.Join(root, "output")

	srcDir := filepath.Join(sourceRoot, novel)
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("failed to create source directory: %v", err)
	}

	for _, n := range chapters {
		name := fmt.Sprintf("ch_%05d.md", n)
		content := fmt.Sprintf("chapter %d source text", n)
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write chapter file %s: %v", name, err)
		}
	}
	return sourceRoot, outputRoot
}
