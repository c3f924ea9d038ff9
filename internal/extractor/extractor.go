package extractor

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// bulletMarkers are the list prefixes recognised in key point and action item sections.
var bulletMarkers = []string{"•", "-"}

// foldState is threaded through Extract one paragraph at a time.
type foldState struct {
	section Section
	text    strings.Builder
	summary strings.Builder
	out     Transcript
	seen    map[string]bool
}

// Extract walks the top-level paragraphs of a notes document in order and
// returns the structured transcript. A nil or empty body yields an empty
// transcript.
func Extract(paragraphs []Paragraph) Transcript {
	st := &foldState{
		section: SectionOther,
		seen:    make(map[string]bool),
	}
	for _, p := range paragraphs {
		if p == nil {
			continue
		}
		st = step(st, p)
	}
	return st.finish()
}

func step(st *foldState, p Paragraph) *foldState {
	if p.IsHeading() {
		st.section = Classify(p.HeadingText())
		return st
	}

	text := p.ParagraphText()
	st.text.WriteString(text)

	switch st.section {
	case SectionSummary:
		st.summary.WriteString(text)
	case SectionKeyPoints:
		st.out.KeyPoints = append(st.out.KeyPoints, bulletLines(text)...)
	case SectionActionItems:
		st.out.ActionItems = append(st.out.ActionItems, bulletLines(text)...)
	case SectionParticipants:
		for _, email := range Emails(text) {
			if st.seen[email] {
				continue
			}
			st.seen[email] = true
			st.out.Participants = append(st.out.Participants, email)
		}
	}
	return st
}

func (st *foldState) finish() Transcript {
	out := st.out
	out.TextContent = st.text.String()
	out.Summary = strings.TrimSpace(st.summary.String())
	out.SourceType = SourceGemini
	out.KeyPoints = nonNil(out.KeyPoints)
	out.ActionItems = nonNil(out.ActionItems)
	out.Participants = nonNil(out.Participants)
	return out
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// HasBullet reports whether line, ignoring surrounding whitespace, starts with a list marker.
func HasBullet(line string) bool {
	line = strings.TrimSpace(line)
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

// bulletLines returns the marker-stripped text of every bulleted line in text.
func bulletLines(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range bulletMarkers {
			if !strings.HasPrefix(line, marker) {
				continue
			}
			if item := strings.TrimSpace(strings.TrimPrefix(line, marker)); item != "" {
				items = append(items, item)
			}
			break
		}
	}
	return items
}

// Emails returns every email-shaped token in text, in order of appearance.
func Emails(text string) []string {
	return emailPattern.FindAllString(text, -1)
}
