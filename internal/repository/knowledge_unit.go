package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/pagination"
	"github.com/mentora-ai/mentora/internal/service"
)

// KnowledgeUnitRepository is the system of record for knowledge units.
// The vector index rows are a derived copy; this table is authoritative.
type KnowledgeUnitRepository struct {
	db dbtx
}

func NewKnowledgeUnitRepository(pool *pgxpool.Pool) *KnowledgeUnitRepository {
	return &KnowledgeUnitRepository{db: pool}
}

func NewKnowledgeUnitRepositoryWithTx(tx pgx.Tx) *KnowledgeUnitRepository {
	return &KnowledgeUnitRepository{db: tx}
}

// Upsert inserts the unit or, when the id already exists, replaces its
// content. Re-indexing the same id is idempotent.
func (r *KnowledgeUnitRepository) Upsert(ctx context.Context, u *domain.KnowledgeUnit, documentID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_units (id, expert_id, text_content, topic, key_concepts, source, context_depth, confidence_score, document_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
			text_content = EXCLUDED.text_content,
			topic = EXCLUDED.topic,
			key_concepts = EXCLUDED.key_concepts,
			source = EXCLUDED.source,
			context_depth = EXCLUDED.context_depth,
			confidence_score = EXCLUDED.confidence_score,
			document_id = EXCLUDED.document_id`,
		u.ID, u.ExpertID, u.Text, nullableString(u.Topic), u.KeyConcepts,
		u.Source, u.ContextDepth, u.ConfidenceScore, nullableString(documentID), u.CreatedAt,
	)
	return err
}

func (r *KnowledgeUnitRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeUnit, error) {
	var u domain.KnowledgeUnit
	var topic pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, expert_id, text_content, topic, key_concepts, source, context_depth, confidence_score, created_at
		 FROM knowledge_units WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.ExpertID, &u.Text, &topic, &u.KeyConcepts, &u.Source, &u.ContextDepth, &u.ConfidenceScore, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeUnitNotFound
		}
		return nil, err
	}
	if topic.Valid {
		u.Topic = topic.String
	}
	return &u, nil
}

// ListIDsByExpert returns every unit id owned by the expert. Retrieval scopes
// chat-derived vector queries to this set.
func (r *KnowledgeUnitRepository) ListIDsByExpert(ctx context.Context, expertID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM knowledge_units WHERE expert_id = $1`,
		expertID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *KnowledgeUnitRepository) ListByExpertWithCursor(ctx context.Context, expertID string, cursor *pagination.Cursor, limit int) (*service.KnowledgeUnitPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, expert_id, text_content, topic, key_concepts, source, context_depth, confidence_score, created_at
			 FROM knowledge_units
			 WHERE expert_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			expertID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, expert_id, text_content, topic, key_concepts, source, context_depth, confidence_score, created_at
			 FROM knowledge_units
			 WHERE expert_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			expertID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanKnowledgeUnitRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.KnowledgeUnitPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *KnowledgeUnitRepository) CountByExpert(ctx context.Context, expertID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM knowledge_units WHERE expert_id = $1`,
		expertID,
	).Scan(&count)
	return count, err
}

func (r *KnowledgeUnitRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_units WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeUnitNotFound
	}
	return nil
}

// DeleteByDocument removes every unit derived from a document and returns
// the ids removed so the caller can clear the vector index too.
func (r *KnowledgeUnitRepository) DeleteByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`DELETE FROM knowledge_units WHERE document_id = $1 RETURNING id`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanKnowledgeUnitRows(rows pgx.Rows) ([]*domain.KnowledgeUnit, error) {
	var results []*domain.KnowledgeUnit
	for rows.Next() {
		var u domain.KnowledgeUnit
		var topic pgtype.Text
		if err := rows.Scan(&u.ID, &u.ExpertID, &u.Text, &topic, &u.KeyConcepts, &u.Source, &u.ContextDepth, &u.ConfidenceScore, &u.CreatedAt); err != nil {
			return nil, err
		}
		if topic.Valid {
			u.Topic = topic.String
		}
		results = append(results, &u)
	}
	return results, rows.Err()
}
