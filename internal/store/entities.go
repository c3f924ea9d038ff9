package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/MikeSquared-Agency/minutes/internal/matcher"
	"github.com/MikeSquared-Agency/minutes/internal/transcript"
)

var entityTables = map[matcher.Kind]string{
	matcher.KindClient:   "clients",
	matcher.KindInvestor: "investors",
	matcher.KindPartner:  "partners",
}

func tableFor(kind matcher.Kind) (string, error) {
	table, ok := entityTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", kind)
	}
	return table, nil
}

// FindEntityByEmail returns the id of the first entity of the given kind with an exact email match.
func (s *Store) FindEntityByEmail(ctx context.Context, kind matcher.Kind, email string) (string, bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", false, err
	}

	var id string
	err = s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id::text FROM %s WHERE email = $1 LIMIT 1`, table),
		email,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s by email: %w", table, err)
	}
	return id, true, nil
}

// CreateEntity inserts a CRM entity and returns its id.
func (s *Store) CreateEntity(ctx context.Context, kind matcher.Kind, name, email string) (string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", err
	}

	var id string
	err = s.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, email) VALUES ($1, $2) RETURNING id::text`, table),
		name, nullable(email),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", table, err)
	}
	return id, nil
}

// EntityTranscripts returns the back-references stored on an entity.
func (s *Store) EntityTranscripts(ctx context.Context, kind matcher.Kind, id string) ([]transcript.BackReference, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT transcripts FROM %s WHERE id = $1::uuid`, table),
		id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s transcripts: %w", table, err)
	}

	var refs []transcript.BackReference
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("decode %s transcripts: %w", table, err)
	}
	for i := range refs {
		refs[i].EntityType = kind
		refs[i].EntityID = id
	}
	return refs, nil
}

// appendBackReference adds ref to the transcripts array of the entity it points at.
func appendBackReference(ctx context.Context, q querier, ref *transcript.BackReference) error {
	table, err := tableFor(ref.EntityType)
	if err != nil {
		return err
	}

	payload, err := json.Marshal([]*transcript.BackReference{ref})
	if err != nil {
		return fmt.Errorf("marshal back-reference: %w", err)
	}

	tag, err := q.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET transcripts = transcripts || $2::jsonb, updated_at = now() WHERE id = $1::uuid`, table),
		ref.EntityID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("append %s back-reference: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("append %s back-reference %s: %w", table, ref.EntityID, ErrNotFound)
	}
	return nil
}
