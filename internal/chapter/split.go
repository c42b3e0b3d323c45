package chapter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunk is the target chunk size in characters. One translation
// call handles one chunk, so the cap keeps chunks well inside a model's
// comfortable output window.
const DefaultMaxChunk = 800

// Sentence boundaries per source script. CJK full stops for Japanese,
// Latin punctuation for Korean prose as commonly typeset.
var (
	cjkSentenceRe   = regexp.MustCompile(`[^。！？]+[。！？]`)
	plainSentenceRe = regexp.MustCompile(`[^.!?]+[.!?]`)
	paragraphRe     = regexp.MustCompile(`\n\s*\n`)
)

// Split cuts raw novel text into chapter-sized chunks of at most maxChars
// characters, preferring paragraph boundaries and falling back to sentence
// boundaries for oversized paragraphs. Chunks shorter than three quarters
// of maxChars are merged into their predecessor where the cap allows, so
// sizes stay reasonably even. lang "ja" switches to CJK sentence
// punctuation; anything else uses Latin punctuation.
func Split(text, lang string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunk
	}
	sentenceRe := plainSentenceRe
	if lang == "ja" {
		sentenceRe = cjkSentenceRe
	}

	var chunks []string
	current := ""
	for _, para := range paragraphRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		switch {
		case runeLen(para) > maxChars:
			for _, sentence := range sentenceRe.FindAllString(para, -1) {
				if runeLen(current)+runeLen(sentence) <= maxChars {
					current += sentence
					continue
				}
				if current != "" {
					chunks = append(chunks, current)
				}
				current = sentence
			}
		case runeLen(current)+runeLen(para) > maxChars:
			chunks = append(chunks, current)
			current = para
		default:
			if current != "" {
				current += "\n\n"
			}
			current += para
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	// Even out undersized tails.
	min := maxChars * 3 / 4
	var out []string
	for _, c := range chunks {
		if runeLen(c) < min && len(out) > 0 &&
			runeLen(out[len(out)-1])+runeLen(c) <= maxChars {
			out[len(out)-1] += "\n\n" + c
			continue
		}
		out = append(out, c)
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// WriteChunks stores split chunks as numbered chapter files (00001.md,
// 00002.md, ...) in dir, plus an index.md linking them. The index carries
// no digits in its name so chapter enumeration skips it.
func WriteChunks(dir string, chunks []string) error {
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to write: no chunks")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chapter directory: %w", err)
	}

	var index strings.Builder
	index.WriteString("# Chapters\n\n")
	for i, chunk := range chunks {
		name := fmt.Sprintf("%05d%s", i+1, DefaultExtension)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(chunk), 0o644); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", i+1, err)
		}
		fmt.Fprintf(&index, "- [%s](%s)\n", name, name)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(index.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}
