package transcript

import (
	"time"

	"github.com/google/uuid"
	"github.com/MikeSquared-Agency/minutes/internal/extractor"
	"github.com/MikeSquared-Agency/minutes/internal/matcher"
)

// Record is the persisted form of one processed notes document.
type Record struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	Participants []string  `json:"participants"`
	Transcript   string    `json:"transcript"`
	Summary      string    `json:"summary"`
	KeyPoints    []string  `json:"key_points"`
	ActionItems  []string  `json:"action_items"`
	EntityType   string    `json:"entity_type,omitempty"`
	EntityID     string    `json:"entity_id,omitempty"`
	SourceType   string    `json:"source_type"`
	SourceID     string    `json:"source_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BackReference is appended to the matched entity's transcripts array. The
// camelCase keys are the shape already stored in the entity JSONB column.
type BackReference struct {
	ID         uuid.UUID    `json:"id"`
	EntityType matcher.Kind `json:"-"`
	EntityID   string       `json:"-"`
	Title      string       `json:"title"`
	Date       time.Time    `json:"date"`
	SourceType string       `json:"sourceType"`
	SourceID   string       `json:"sourceId"`
}

// Build assembles the record for doc. The back-reference is nil when no entity matched.
func Build(doc extractor.DocumentHandle, t extractor.Transcript, match *matcher.Match, now time.Time) (Record, *BackReference) {
	rec := Record{
		ID:           uuid.New(),
		Title:        doc.Name,
		Date:         doc.CreatedAt,
		Participants: clone(t.Participants),
		Transcript:   t.TextContent,
		Summary:      t.Summary,
		KeyPoints:    clone(t.KeyPoints),
		ActionItems:  clone(t.ActionItems),
		SourceType:   t.SourceType,
		SourceID:     doc.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rec.SourceType == "" {
		rec.SourceType = extractor.SourceGemini
	}

	if match == nil {
		return rec, nil
	}

	rec.EntityType = string(match.Type)
	rec.EntityID = match.ID
	return rec, &BackReference{
		ID:         rec.ID,
		EntityType: match.Type,
		EntityID:   match.ID,
		Title:      rec.Title,
		Date:       rec.Date,
		SourceType: rec.SourceType,
		SourceID:   rec.SourceID,
	}
}

// clone copies v; an empty or nil list becomes an empty, non-nil slice.
func clone(v []string) []string {
	return append([]string{}, v...)
}
