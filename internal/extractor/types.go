package extractor

import "time"

// SourceGemini marks transcripts produced by the Google Meet notetaker.
const SourceGemini = "gemini"

// ErrorContent replaces the text content of a document whose body could not be retrieved.
const ErrorContent = "Error retrieving transcript content"

// DocumentHandle is a reference to a meeting-notes document before its body is fetched.
type DocumentHandle struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mime_type"`
	CreatedAt   time.Time `json:"created_at"`
	WebViewLink string    `json:"web_view_link"`
}

// Paragraph is a single top-level node of a document body.
type Paragraph interface {
	IsHeading() bool
	HeadingText() string
	ParagraphText() string
}

// Section is the logical region of a notes document a paragraph belongs to.
type Section int

const (
	SectionOther Section = iota
	SectionSummary
	SectionKeyPoints
	SectionActionItems
	SectionParticipants
	SectionTranscript
)

func (s Section) String() string {
	switch s {
	case SectionSummary:
		return "summary"
	case SectionKeyPoints:
		return "key_points"
	case SectionActionItems:
		return "action_items"
	case SectionParticipants:
		return "participants"
	case SectionTranscript:
		return "transcript"
	default:
		return "other"
	}
}

// Transcript is the structured content extracted from one notes document.
type Transcript struct {
	TextContent  string   `json:"text_content"`
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	ActionItems  []string `json:"action_items"`
	Participants []string `json:"participants"` // insertion-ordered, no duplicates
	SourceType   string   `json:"source_type"`
}

// Failed returns the transcript recorded for a document whose content fetch failed.
func Failed() Transcript {
	return Transcript{
		TextContent:  ErrorContent,
		KeyPoints:    []string{},
		ActionItems:  []string{},
		Participants: []string{},
		SourceType:   SourceGemini,
	}
}
