package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ProcessedNote is the ledger entry written once per source document.
type ProcessedNote struct {
	FileID      string    `json:"file_id"`
	ProcessedAt time.Time `json:"processed_at"`
	EntityType  string    `json:"entity_type,omitempty"`
	EntityID    string    `json:"entity_id,omitempty"`
}

// HasProcessed reports whether the ledger already holds fileID.
func (s *Store) HasProcessed(ctx context.Context, fileID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_notes WHERE file_id = $1)`,
		fileID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query processed note: %w", err)
	}
	return exists, nil
}

// RecordProcessed adds fileID to the ledger. A second call for the same file
// writes nothing and returns ErrAlreadyProcessed.
func (s *Store) RecordProcessed(ctx context.Context, fileID, entityType, entityID string) (ProcessedNote, error) {
	return recordProcessed(ctx, s.pool, fileID, entityType, entityID)
}

func recordProcessed(ctx context.Context, q querier, fileID, entityType, entityID string) (ProcessedNote, error) {
	var n ProcessedNote
	err := q.QueryRow(ctx, `
		INSERT INTO processed_notes (file_id, processed_at, entity_type, entity_id)
		VALUES ($1, now(), $2, $3)
		ON CONFLICT (file_id) DO NOTHING
		RETURNING file_id, processed_at, coalesce(entity_type, ''), coalesce(entity_id, '')`,
		fileID, nullable(entityType), nullable(entityID),
	).Scan(&n.FileID, &n.ProcessedAt, &n.EntityType, &n.EntityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProcessedNote{}, ErrAlreadyProcessed
	}
	if err != nil {
		return ProcessedNote{}, fmt.Errorf("insert processed note: %w", err)
	}
	return n, nil
}
