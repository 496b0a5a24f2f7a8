package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentora-ai/mentora/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, expert_id, filename, storage_key, chunk_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.ExpertID, d.Filename, nullableString(d.StorageKey), d.ChunkCount, d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var storageKey pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, expert_id, filename, storage_key, chunk_count, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.ExpertID, &d.Filename, &storageKey, &d.ChunkCount, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if storageKey.Valid {
		d.StorageKey = storageKey.String
	}
	return &d, nil
}

func (r *DocumentRepository) ListByExpert(ctx context.Context, expertID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, expert_id, filename, storage_key, chunk_count, created_at
		 FROM documents WHERE expert_id = $1 ORDER BY created_at DESC`,
		expertID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		var storageKey pgtype.Text
		if err := rows.Scan(&d.ID, &d.ExpertID, &d.Filename, &storageKey, &d.ChunkCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		if storageKey.Valid {
			d.StorageKey = storageKey.String
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) UpdateChunkCount(ctx context.Context, id string, chunkCount int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET chunk_count = $1 WHERE id = $2`,
		chunkCount, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
