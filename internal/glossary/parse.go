package glossary

import (
	"fmt"
	"regexp"
	"strings"
)

// Section headers used both when rendering the glossary into a prompt and
// when parsing the model's term-update reply.
var sectionTitles = map[Category]string{
	Characters:  "Characters",
	ProperNouns: "Proper nouns",
	Expressions: "Cultural expressions",
}

// FormatPrompt renders a snapshot as the markdown block embedded in
// translation and term-update prompts. Empty categories are omitted.
func FormatPrompt(snapshot map[Category][]Entry) string {
	var b strings.Builder
	b.WriteString("## Glossary\n\n")
	for _, cat := range AllCategories {
		entries := snapshot[cat]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n", sectionTitles[cat])
		for _, e := range entries {
			b.WriteString("- " + e.Source)
			if e.Rendering != "" {
				b.WriteString(" → " + e.Rendering)
			}
			if len(e.Aliases) > 0 {
				b.WriteString(" (aliases: " + strings.Join(e.Aliases, ", ") + ")")
			}
			if e.Note != "" {
				b.WriteString(": " + e.Note)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

var (
	// "- source → rendering (aliases: a, b): note", aliases and note optional
	arrowLine = regexp.MustCompile(`^-\s*([^→:(]+?)\s*→\s*([^:(]+?)\s*(?:\(aliases:\s*([^)]+)\))?\s*(?::\s*(.+))?$`)
	// "- source (aliases: a, b): note" without a rendering
	plainLine = regexp.MustCompile(`^-\s*([^→:(]+?)\s*(?:\(aliases:\s*([^)]+)\))?\s*(?::\s*(.+))?$`)
	headerRe  = regexp.MustCompile(`^###\s*(.+?)\s*$`)
)

// ParseUpdateResponse extracts proposed glossary entries from a model
// reply. It looks for the same "### <category>" sections and bullet lines
// FormatPrompt emits; text outside recognized sections is ignored. Replies
// with no recognizable section yield an empty update, not an error —
// the model often answers "no new terms" in prose.
func ParseUpdateResponse(text string) Update {
	update := make(Update)
	var current Category
	active := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if m := headerRe.FindStringSubmatch(line); m != nil {
			current, active = matchSection(m[1])
			continue
		}
		if !active || !strings.HasPrefix(line, "-") {
			continue
		}
		if e, ok := parseBullet(line); ok {
			update[current] = append(update[current], e)
		}
	}
	return update
}

// matchSection maps a header title to a category, tolerating variants like
// "Character updates" or "New proper nouns".
func matchSection(title string) (Category, bool) {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "character"):
		return Characters, true
	case strings.Contains(t, "proper noun"):
		return ProperNouns, true
	case strings.Contains(t, "cultural expression"), strings.Contains(t, "expression"):
		return Expressions, true
	}
	return "", false
}

func parseBullet(line string) (Entry, bool) {
	if m := arrowLine.FindStringSubmatch(line); m != nil {
		return Entry{
			Source:    strings.TrimSpace(m[1]),
			Rendering: strings.TrimSpace(m[2]),
			Aliases:   splitAliases(m[3]),
			Note:      strings.TrimSpace(m[4]),
		}, true
	}
	if m := plainLine.FindStringSubmatch(line); m != nil {
		source := strings.TrimSpace(m[1])
		if source == "" {
			return Entry{}, false
		}
		return Entry{
			Source:  source,
			Aliases: splitAliases(m[2]),
			Note:    strings.TrimSpace(m[3]),
		}, true
	}
	return Entry{}, false
}

func splitAliases(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
