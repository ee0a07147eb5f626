package knowledge

import (
	"testing"

	"github.com/prushal/voicegate/domain/entities"
)

func testBase() *Base {
	return New([]entities.KnowledgeEntry{
		{
			Tag:       "hours",
			Patterns:  []string{"what are your opening hours", "when are you open"},
			Responses: []string{"We are open 9 to 5, Monday to Friday."},
		},
		{
			Tag:       "location",
			Patterns:  []string{"where are you located"},
			Responses: []string{"We are in the city center."},
			FollowUp:  "Would you like directions?",
		},
	})
}

func TestMatchExact(t *testing.T) {
	b := testBase()

	entry, ok := b.Match("What are your opening hours?")
	if !ok {
		t.Fatal("expected exact match")
	}
	if entry.Tag != "hours" {
		t.Errorf("tag = %q, want hours", entry.Tag)
	}
}

func TestMatchSubstring(t *testing.T) {
	b := testBase()

	entry, ok := b.Match("hi, could you tell me where are you located please")
	if !ok {
		t.Fatal("expected substring match")
	}
	if entry.Tag != "location" {
		t.Errorf("tag = %q, want location", entry.Tag)
	}
}

func TestMatchFuzzyThreshold(t *testing.T) {
	b := testBase()

	// One typo keeps the ratio above the threshold.
	entry, ok := b.Match("what are your openng hours")
	if !ok {
		t.Fatal("expected fuzzy match for near-miss")
	}
	if entry.Tag != "hours" {
		t.Errorf("tag = %q, want hours", entry.Tag)
	}

	// Unrelated text stays below it.
	if _, ok := b.Match("tell me about quantum entanglement"); ok {
		t.Error("unexpected match for unrelated text")
	}
}

func TestRatioBoundary(t *testing.T) {
	if got := Ratio("hello there", "hello there"); got != 100 {
		t.Errorf("identical ratio = %d, want 100", got)
	}
	if got := Ratio("abc", "xyz"); got >= FuzzyThreshold {
		t.Errorf("disjoint ratio = %d, want < %d", got, FuzzyThreshold)
	}
	if got := Ratio("", ""); got != 100 {
		t.Errorf("empty ratio = %d, want 100", got)
	}

	// One edit out of 21 runes lands well above the threshold.
	if got := Ratio("hello thre", "hello there"); got < FuzzyThreshold {
		t.Errorf("near-miss ratio = %d, want >= %d", got, FuzzyThreshold)
	}
}

func TestReplyIncludesFollowUp(t *testing.T) {
	b := testBase()
	entry, _ := b.Match("where are you located")

	reply := b.Reply(entry)
	if reply != "We are in the city center. Would you like directions?" {
		t.Errorf("reply = %q", reply)
	}
}

func TestParseBothResponseShapes(t *testing.T) {
	data := []byte(`{"faqs":{"intents":[
		{"tag":"a","patterns":["p1"],"response":"single"},
		{"tag":"b","patterns":["p2"],"responses":["one","two"]}
	]}}`)

	b, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("entries = %d, want 2", b.Len())
	}

	entries := b.Entries()
	if len(entries[0].Responses) != 1 || entries[0].Responses[0] != "single" {
		t.Errorf("single response shape not normalized: %v", entries[0].Responses)
	}
	if len(entries[1].Responses) != 2 {
		t.Errorf("plural responses lost: %v", entries[1].Responses)
	}
}

func TestShortQueryDoesNotHitPatternSubstring(t *testing.T) {
	b := New([]entities.KnowledgeEntry{{
		Tag:       "destinations",
		Patterns:  []string{"which destinations do you cover"},
		Responses: []string{"Many."},
	}})

	// "hi" appears inside "which" but must not match.
	if _, ok := b.Match("hi"); ok {
		t.Error("single-word query matched inside a pattern word")
	}
}

func TestMatchEmptyInput(t *testing.T) {
	b := testBase()
	if _, ok := b.Match("   "); ok {
		t.Error("blank input should not match")
	}
}
