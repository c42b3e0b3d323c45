package chapter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MergeFiles concatenates every numbered file in dir with the given
// extension into w, in ascending chapter order, and returns how many files
// went in. Files without a digit sequence in their name are skipped, so an
// index file does not end up in the merged volume. header and footer are
// written around the content when non-empty.
func MergeFiles(dir, ext string, w io.Writer, header, footer string) (int, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	type numbered struct {
		number int
		name   string
	}
	var files []numbered
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		n := extractNumber(e.Name())
		if n == unnumbered {
			continue
		}
		files = append(files, numbered{n, e.Name()})
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no numbered %s files in %s", ext, dir)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].number != files[j].number {
			return files[i].number < files[j].number
		}
		return files[i].name < files[j].name
	})

	if header != "" {
		if _, err := io.WriteString(w, header+"\n\n"); err != nil {
			return 0, err
		}
	}
	merged := 0
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return merged, fmt.Errorf("failed to read %s: %w", f.name, err)
		}
		if _, err := w.Write(data); err != nil {
			return merged, err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return merged, err
			}
		}
		merged++
	}
	if footer != "" {
		if _, err := io.WriteString(w, "\n"+footer+"\n"); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

// MergeOutputs merges the novel's translated chapters into w.
func (l *Library) MergeOutputs(w io.Writer, header, footer string) (int, error) {
	return MergeFiles(l.outputDir, l.ext, w, header, footer)
}
