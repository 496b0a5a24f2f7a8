package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mentora-ai/mentora/internal/domain"
)

// PgStore implements Store on a Postgres pgvector table. Similarity is
// cosine: score = 1 - (embedding <=> query).
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Upsert(ctx context.Context, id string, embedding []float32, meta Metadata) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal vector metadata: %w", err)
	}

	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO knowledge_vectors (id, expert_id, source, document_id, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			expert_id = EXCLUDED.expert_id,
			source = EXCLUDED.source,
			document_id = EXCLUDED.document_id,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		id, meta.ExpertID, meta.Source, nullableString(meta.DocumentID),
		pgvector.NewVector(embedding), payload, createdAt,
	)
	return err
}

func (s *PgStore) Query(ctx context.Context, embedding []float32, filter Filter, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 8
	}

	trainingIDs := filter.TrainingUnitIDs
	if trainingIDs == nil {
		trainingIDs = []string{}
	}

	query := `
		SELECT id, metadata, 1 - (embedding <=> $1) AS score
		FROM knowledge_vectors
		WHERE embedding IS NOT NULL
		  AND (
			(source = $2 AND id = ANY($3))
			OR ($4 AND expert_id = $5 AND source = $6)
		  )
		ORDER BY embedding <=> $1
		LIMIT $7`

	rows, err := s.pool.Query(ctx, query,
		pgvector.NewVector(embedding),
		domain.SourceExpertTraining, trainingIDs,
		filter.IncludeDocuments, filter.ExpertID, domain.SourceDocument,
		topK,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows.Next, rows.Scan, rows.Err)
}

func (s *PgStore) Fetch(ctx context.Context, ids []string) (map[string]Match, error) {
	result := make(map[string]Match, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, metadata FROM knowledge_vectors WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m Match
		var payload []byte
		if err := rows.Scan(&m.ID, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vector metadata: %w", err)
		}
		result[m.ID] = m
	}
	return result, rows.Err()
}

func (s *PgStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM knowledge_vectors WHERE id = ANY($1)`, ids)
	return err
}

func (s *PgStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM knowledge_vectors WHERE document_id = $1`, documentID)
	return err
}

func (s *PgStore) ScanMetadata(ctx context.Context, expertID string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, metadata, COALESCE((metadata->>'confidence_score')::float8, 0) AS score
		 FROM knowledge_vectors
		 WHERE expert_id = $1
		 ORDER BY created_at
		 LIMIT $2`,
		expertID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatches(rows.Next, rows.Scan, rows.Err)
}

func scanMatches(next func() bool, scan func(...any) error, rowsErr func() error) ([]Match, error) {
	var matches []Match
	for next() {
		var m Match
		var payload []byte
		if err := scan(&m.ID, &payload, &m.Score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vector metadata: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rowsErr()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
