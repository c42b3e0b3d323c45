// Package chapter enumerates a novel's numbered source files and writes
// translated output next to them.
package chapter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Defaults matching the usual directory layout.
const (
	DefaultExtension    = ".md"
	DefaultOutputPrefix = "译_"
)

// unnumbered sorts files without a digit sequence after everything else.
const unnumbered = 1 << 30

var numberRe = regexp.MustCompile(`(\d+)`)

// Library locates chapter files for one novel. Source files live in
// <sourceRoot>/<novel>/, translated output in <outputRoot>/<novel>/.
type Library struct {
	novel     string
	sourceDir string
	outputDir string
	ext       string
	prefix    string
}

// NewLibrary validates the source directory and creates the output directory.
func NewLibrary(sourceRoot, outputRoot, novel, ext, prefix string) (*Library, error) {
	if novel == "" {
		return nil, fmt.Errorf("novel name must not be empty")
	}
	if ext == "" {
		ext = DefaultExtension
	}
	if prefix == "" {
		prefix = DefaultOutputPrefix
	}

	l := &Library{
		novel:     novel,
		sourceDir: filepath.Join(sourceRoot, novel),
		outputDir: filepath.Join(outputRoot, novel),
		ext:       ext,
		prefix:    prefix,
	}

	info, err := os.Stat(l.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("source directory for novel %q: %w", novel, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", l.sourceDir)
	}
	if err := os.MkdirAll(l.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return l, nil
}

// SourceDir returns the directory holding the novel's source chapters.
func (l *Library) SourceDir() string { return l.sourceDir }

// OutputDir returns the directory translated chapters are written to.
func (l *Library) OutputDir() string { return l.outputDir }

// Numbers lists the chapter numbers found in the source directory, sorted
// ascending and deduplicated. Files without a digit sequence are skipped.
func (l *Library) Numbers() ([]int, error) {
	entries, err := os.ReadDir(l.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}

	seen := make(map[int]bool)
	var nums []int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), l.ext) {
			continue
		}
		n := extractNumber(e.Name())
		if n == unnumbered || seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums, nil
}

// ReadSource returns the content of the chapter with the given number.
func (l *Library) ReadSource(number int) (string, error) {
	entries, err := os.ReadDir(l.sourceDir)
	if err != nil {
		return "", fmt.Errorf("failed to list source directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), l.ext) {
			continue
		}
		if extractNumber(e.Name()) != number {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.sourceDir, e.Name()))
		if err != nil {
			return "", fmt.Errorf("failed to read chapter %d: %w", number, err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no source file for chapter %d in %s", number, l.sourceDir)
}

// WriteOutput stores a translated chapter as <prefix>00042<ext> and returns
// the written path.
func (l *Library) WriteOutput(number int, content string) (string, error) {
	path := l.outputPath(number)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write chapter %d: %w", number, err)
	}
	return path, nil
}

// OutputExists reports whether a translated file for the chapter is present.
func (l *Library) OutputExists(number int) bool {
	_, err := os.Stat(l.outputPath(number))
	return err == nil
}

func (l *Library) outputPath(number int) string {
	name := l.prefix + fmt.Sprintf("%05d", number) + l.ext
	return filepath.Join(l.outputDir, name)
}

func extractNumber(name string) int {
	m := numberRe.FindString(name)
	if m == "" {
		return unnumbered
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return unnumbered
	}
	return n
}
