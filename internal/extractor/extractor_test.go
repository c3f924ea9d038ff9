package extractor

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

type para struct {
	heading bool
	text    string
}

func (p para) IsHeading() bool       { return p.heading }
func (p para) HeadingText() string   { return p.text }
func (p para) ParagraphText() string { return p.text }

func heading(text string) Paragraph { return para{heading: true, text: text} }
func body(text string) Paragraph    { return para{text: text} }

func TestClassify(t *testing.T) {
	tests := []struct {
		heading string
		want    Section
	}{
		{"Summary", SectionSummary},
		{"MEETING SUMMARY", SectionSummary},
		{"Key Points", SectionKeyPoints},
		{"Main points discussed", SectionKeyPoints},
		{"Action Items", SectionActionItems},
		{"Suggested next steps", SectionActionItems},
		{"Participants", SectionParticipants},
		{"Attendees", SectionParticipants},
		{"Transcript", SectionTranscript},
		{"Details", SectionOther},
		{"", SectionOther},
		{"   \t", SectionOther},
		// Earlier entries win when several keywords appear.
		{"Summary of action items", SectionSummary},
		{"Transcript participants", SectionParticipants},
	}
	for _, tt := range tests {
		if got := Classify(tt.heading); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.heading, got, tt.want)
		}
	}
}

func TestExtract_BulletsStripped(t *testing.T) {
	got := Extract([]Paragraph{
		heading("Key Points"),
		body("• Buy milestone template\n"),
		body("not a bullet\n"),
		heading("Action Items"),
		body("- Follow up with investor\n"),
		body("  •   Send deck  \n"),
	})

	if !reflect.DeepEqual(got.KeyPoints, []string{"Buy milestone template"}) {
		t.Errorf("key points = %q", got.KeyPoints)
	}
	if !reflect.DeepEqual(got.ActionItems, []string{"Follow up with investor", "Send deck"}) {
		t.Errorf("action items = %q", got.ActionItems)
	}
}

func TestExtract_MultiLineParagraph(t *testing.T) {
	got := Extract([]Paragraph{
		heading("Next steps"),
		body("• First\n• Second\nthird without marker\n- Fourth\n•\n"),
	})

	want := []string{"First", "Second", "Fourth"}
	if !reflect.DeepEqual(got.ActionItems, want) {
		t.Errorf("action items = %q, want %q", got.ActionItems, want)
	}
}

func TestExtract_SummaryTrimmed(t *testing.T) {
	got := Extract([]Paragraph{
		heading("Summary"),
		body("  The team renewed the contract.\n"),
		body("Pricing was discussed.\n\n"),
		heading("Details"),
		body("Ignored for summary.\n"),
	})

	want := "The team renewed the contract.\nPricing was discussed."
	if got.Summary != want {
		t.Errorf("summary = %q, want %q", got.Summary, want)
	}
}

func TestExtract_TextContentIncludesEverySection(t *testing.T) {
	got := Extract([]Paragraph{
		body("preamble\n"),
		heading("Summary"),
		body("summary text\n"),
		heading("Transcript"),
		body("Alice: hello\n"),
	})

	want := "preamble\nsummary text\nAlice: hello\n"
	if got.TextContent != want {
		t.Errorf("text content = %q, want %q", got.TextContent, want)
	}
	if got.SourceType != SourceGemini {
		t.Errorf("source type = %q", got.SourceType)
	}
}

func TestExtract_ParticipantsDeduplicated(t *testing.T) {
	got := Extract([]Paragraph{
		heading("Attendees"),
		body("Alice (alice@example.com), Bob (bob@example.com)\n"),
		body("Alice again: alice@example.com, Carol <carol.c+x@sub.example.org>\n"),
		body("ALICE@example.com\n"),
	})

	want := []string{"alice@example.com", "bob@example.com", "carol.c+x@sub.example.org", "ALICE@example.com"}
	if !reflect.DeepEqual(got.Participants, want) {
		t.Errorf("participants = %q, want %q", got.Participants, want)
	}
}

func TestExtract_ParticipantsOnlyInParticipantSection(t *testing.T) {
	got := Extract([]Paragraph{
		heading("Summary"),
		body("Contact dave@example.com later\n"),
	})
	if len(got.Participants) != 0 {
		t.Errorf("expected no participants, got %q", got.Participants)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	doc := []Paragraph{
		heading("Participants"),
		body("alice@example.com bob@example.com alice@example.com\n"),
	}
	first := Extract(doc)
	second := Extract(doc)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-extraction differs: %+v vs %+v", first, second)
	}
}

func TestExtract_EmptyBody(t *testing.T) {
	for _, body := range [][]Paragraph{nil, {}, {nil, nil}} {
		got := Extract(body)
		if got.TextContent != "" || got.Summary != "" || len(got.KeyPoints) != 0 ||
			len(got.ActionItems) != 0 || len(got.Participants) != 0 {
			t.Errorf("expected empty transcript, got %+v", got)
		}
	}
}

func TestExtract_HeadingsDoNotContribute(t *testing.T) {
	got := Extract([]Paragraph{heading("Summary"), heading("Key Points")})
	if got.TextContent != "" {
		t.Errorf("expected headings to be excluded from text content, got %q", got.TextContent)
	}
}

func TestFailed(t *testing.T) {
	got := Failed()
	if got.TextContent != "Error retrieving transcript content" {
		t.Errorf("text content = %q", got.TextContent)
	}
	if got.SourceType != "gemini" {
		t.Errorf("source type = %q", got.SourceType)
	}
	if got.Summary != "" || len(got.KeyPoints) != 0 || len(got.ActionItems) != 0 || len(got.Participants) != 0 {
		t.Errorf("expected structured fields empty, got %+v", got)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	for _, want := range []string{`"key_points":[]`, `"action_items":[]`, `"participants":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in %s", want, data)
		}
	}
}

func TestExtract_EmptyListsEncodeAsArrays(t *testing.T) {
	data, err := json.Marshal(Extract([]Paragraph{heading("Summary"), body("Short call.")}))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("expected no null lists, got %s", data)
	}
}

func TestHasBullet(t *testing.T) {
	for line, want := range map[string]bool{
		"• Renewed contract": true,
		"  - Follow up":      true,
		"Renewed contract":   false,
		"":                   false,
	} {
		if got := HasBullet(line); got != want {
			t.Errorf("HasBullet(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestEmails(t *testing.T) {
	got := Emails("reach me at a.b@c.io or x_y@host.example.com; not@valid")
	want := []string{"a.b@c.io", "x_y@host.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Emails = %q, want %q", got, want)
	}
}
