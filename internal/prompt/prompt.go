// Package prompt builds the requests sent to the translation provider by
// merging chapter text and the current glossary into prompt templates.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template file names looked up in the prompt directory. Missing files fall
// back to the embedded defaults.
const (
	translateFile  = "translate_prompt.md"
	termUpdateFile = "term_update_prompt.md"
)

const defaultTranslateTemplate = `You are a professional literary translator working from {{sourceLang}} to {{targetLang}}.

Use the glossary below. Established renderings are binding: never invent a
different rendering for a term that already has one.

{{glossary}}

Translate the following chapter completely. Output only the translation,
with no commentary.

{{source}}
`

const defaultTermUpdateTemplate = `You are maintaining a translation glossary for a {{sourceLang}} novel rendered in {{targetLang}}.

Current glossary:

{{glossary}}

Below are a chapter and its translation. List terms that are missing from
the glossary, using exactly this format and nothing else:

### Characters
- name → rendering (aliases: a, b): note

### Proper nouns
- source → rendering: note

### Cultural expressions
- source → rendering: note

Omit a section if it has no new entries. If nothing is new, reply "no new terms".

Chapter:
{{source}}

Translation:
{{translation}}
`

// Builder holds resolved templates for one run.
type Builder struct {
	translateTmpl  string
	termUpdateTmpl string
	sourceLang     string
	targetLang     string
}

// NewBuilder creates a builder with the embedded default templates.
func NewBuilder(sourceLang, targetLang string) *Builder {
	if sourceLang == "" {
		sourceLang = "Korean"
	}
	if targetLang == "" {
		targetLang = "Chinese"
	}
	return &Builder{
		translateTmpl:  defaultTranslateTemplate,
		termUpdateTmpl: defaultTermUpdateTemplate,
		sourceLang:     sourceLang,
		targetLang:     targetLang,
	}
}

// LoadOverrides replaces the default templates with files from dir, if they
// exist. A missing file keeps the default; an unreadable one is an error.
func (b *Builder) LoadOverrides(dir string) error {
	for _, t := range []struct {
		file string
		dst  *string
	}{
		{translateFile, &b.translateTmpl},
		{termUpdateFile, &b.termUpdateTmpl},
	} {
		data, err := os.ReadFile(filepath.Join(dir, t.file))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read prompt template %s: %w", t.file, err)
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return fmt.Errorf("prompt template %s is empty", t.file)
		}
		*t.dst = string(data)
	}
	return nil
}

// Translation builds the translation request for one chapter.
func (b *Builder) Translation(source, glossary string) string {
	return b.expand(b.translateTmpl, map[string]string{
		"glossary": glossary,
		"source":   source,
	})
}

// TermUpdate builds the term-extraction request for a translated chapter.
func (b *Builder) TermUpdate(source, translation, glossary string) string {
	return b.expand(b.termUpdateTmpl, map[string]string{
		"glossary":    glossary,
		"source":      source,
		"translation": translation,
	})
}

func (b *Builder) expand(tmpl string, vars map[string]string) string {
	out := tmpl
	out = strings.ReplaceAll(out, "{{sourceLang}}", b.sourceLang)
	out = strings.ReplaceAll(out, "{{targetLang}}", b.targetLang)
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
