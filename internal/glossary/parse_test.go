package glossary

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseUpdateResponse(t *testing.T) {
	reply := `Here are the new terms I found.

### Characters
- 김철수 → 金哲秀 (aliases: 철수): protagonist
- 박영희 → 朴英姬

### Proper nouns
- 서울탑 → 首尔塔: landmark in chapter 3
- 한강

### Cultural expressions
- 눈치 → 眼力见儿: reading the room
`
	update := ParseUpdateResponse(reply)

	wantChars := []Entry{
		{Source: "김철수", Rendering: "金哲秀", Aliases: []string{"철수"}, Note: "protagonist"},
		{Source: "박영희", Rendering: "朴英姬"},
	}
	if !reflect.DeepEqual(update[Characters], wantChars) {
		t.Errorf("characters mismatch:\n got %+v\nwant %+v", update[Characters], wantChars)
	}

	wantNouns := []Entry{
		{Source: "서울탑", Rendering: "首尔塔", Note: "landmark in chapter 3"},
		{Source: "한강"},
	}
	if !reflect.DeepEqual(update[ProperNouns], wantNouns) {
		t.Errorf("proper nouns mismatch:\n got %+v\nwant %+v", update[ProperNouns], wantNouns)
	}

	if len(update[Expressions]) != 1 || update[Expressions][0].Rendering != "眼力见儿" {
		t.Errorf("expressions mismatch: %+v", update[Expressions])
	}
}

func TestParseUpdateResponse_HeaderVariants(t *testing.T) {
	reply := `### Character updates
- 이민호 → 李敏镐

### New proper nouns
- 남산 → 南山
`
	update := ParseUpdateResponse(reply)
	if len(update[Characters]) != 1 {
		t.Errorf("expected 1 character from variant header, got %d", len(update[Characters]))
	}
	if len(update[ProperNouns]) != 1 {
		t.Errorf("expected 1 proper noun from variant header, got %d", len(update[ProperNouns]))
	}
}

func TestParseUpdateResponse_ProseReply(t *testing.T) {
	update := ParseUpdateResponse("No new terms were found in this chapter.")
	if update.Count() != 0 {
		t.Errorf("prose reply should yield an empty update, got %d entries", update.Count())
	}
}

func TestParseUpdateResponse_IgnoresTextOutsideSections(t *testing.T) {
	reply := `- stray bullet before any section

### Proper nouns
- 한강 → 汉江

### Summary
- this is not a glossary section
`
	update := ParseUpdateResponse(reply)
	if update.Count() != 1 {
		t.Errorf("expected exactly 1 entry, got %d", update.Count())
	}
}

func TestFormatPrompt_RoundTripsThroughParser(t *testing.T) {
	s := NewStore(t.TempDir())
	s.Merge(Update{
		Characters:  {{Source: "김철수", Rendering: "金哲秀", Aliases: []string{"철수"}, Note: "protagonist"}},
		ProperNouns: {{Source: "서울탑", Rendering: "首尔塔"}},
	})

	text := FormatPrompt(s.Snapshot())
	if !strings.Contains(text, "### Characters") || !strings.Contains(text, "### Proper nouns") {
		t.Fatalf("missing section headers:\n%s", text)
	}
	if strings.Contains(text, "### Cultural expressions") {
		t.Error("empty category should be omitted")
	}

	// What we emit must parse back to the same entries.
	parsed := ParseUpdateResponse(text)
	if !reflect.DeepEqual(parsed[Characters], s.Snapshot()[Characters]) {
		t.Errorf("format/parse round trip lost character data:\n got %+v", parsed[Characters])
	}
	if !reflect.DeepEqual(parsed[ProperNouns], s.Snapshot()[ProperNouns]) {
		t.Errorf("format/parse round trip lost proper noun data:\n got %+v", parsed[ProperNouns])
	}
}
