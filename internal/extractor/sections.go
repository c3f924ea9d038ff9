package extractor

import "strings"

// sectionKeywords is evaluated top to bottom; the first keyword found wins.
var sectionKeywords = []struct {
	section  Section
	keywords []string
}{
	{SectionSummary, []string{"summary"}},
	{SectionKeyPoints, []string{"key point", "main point"}},
	{SectionActionItems, []string{"action item", "next step"}},
	{SectionParticipants, []string{"participant", "attendee"}},
	{SectionTranscript, []string{"transcript"}},
}

// Classify maps a heading's text to the section it opens.
func Classify(heading string) Section {
	text := strings.ToLower(strings.TrimSpace(heading))
	if text == "" {
		return SectionOther
	}
	for _, entry := range sectionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.section
			}
		}
	}
	return SectionOther
}
