package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/MikeSquared-Agency/minutes/internal/transcript"
)

// SaveTranscript persists a transcript record, its ledger entry and the optional
// back-reference in one transaction. The ledger row is written first so a
// concurrent run processing the same document fails with ErrAlreadyProcessed
// instead of creating a second record.
func (s *Store) SaveTranscript(ctx context.Context, rec transcript.Record, ref *transcript.BackReference) (ProcessedNote, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ProcessedNote{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Claim the source document
	note, err := recordProcessed(ctx, tx, rec.SourceID, rec.EntityType, rec.EntityID)
	if err != nil {
		return ProcessedNote{}, err
	}

	// 2. Insert transcript
	_, err = tx.Exec(ctx, `
		INSERT INTO transcripts (id, title, date, participants, transcript, summary, key_points, action_items,
			entity_type, entity_id, source_type, source_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.Title, rec.Date, nonNil(rec.Participants), rec.Transcript, rec.Summary,
		nonNil(rec.KeyPoints), nonNil(rec.ActionItems), nullable(rec.EntityType), nullable(rec.EntityID),
		rec.SourceType, rec.SourceID, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return ProcessedNote{}, fmt.Errorf("insert transcript: %w", err)
	}

	// 3. Link back onto the entity
	if ref != nil {
		if err := appendBackReference(ctx, tx, ref); err != nil {
			return ProcessedNote{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ProcessedNote{}, fmt.Errorf("commit: %w", err)
	}
	return note, nil
}

// GetTranscriptBySource fetches the transcript created from a source document.
func (s *Store) GetTranscriptBySource(ctx context.Context, sourceID string) (*transcript.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, date, participants, transcript, summary, key_points, action_items,
			coalesce(entity_type, ''), coalesce(entity_id, ''), source_type, source_id, created_at, updated_at
		FROM transcripts WHERE source_id = $1
		ORDER BY created_at
		LIMIT 1`, sourceID)

	var r transcript.Record
	err := row.Scan(&r.ID, &r.Title, &r.Date, &r.Participants, &r.Transcript, &r.Summary, &r.KeyPoints, &r.ActionItems,
		&r.EntityType, &r.EntityID, &r.SourceType, &r.SourceID, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	return &r, nil
}
