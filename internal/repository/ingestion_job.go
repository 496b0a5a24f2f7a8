package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentora-ai/mentora/internal/domain"
)

var ErrIngestionJobNotFound = errors.New("ingestion job not found")

type IngestionJobRepository struct {
	db dbtx
}

func NewIngestionJobRepository(pool *pgxpool.Pool) *IngestionJobRepository {
	return &IngestionJobRepository{db: pool}
}

func NewIngestionJobRepositoryWithTx(tx pgx.Tx) *IngestionJobRepository {
	return &IngestionJobRepository{db: tx}
}

func (r *IngestionJobRepository) Create(ctx context.Context, job *domain.IngestionJob) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ingestion_jobs (id, document_id, status, retries, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.DocumentID, string(job.Status), job.Retries, nullableString(job.Error), job.CreatedAt,
	)
	return err
}

func (r *IngestionJobRepository) GetByID(ctx context.Context, id string) (*domain.IngestionJob, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, document_id, status, retries, error, created_at, processed_at
		 FROM ingestion_jobs WHERE id = $1`,
		id,
	)
	job, err := scanIngestionJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngestionJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ClaimPending atomically claims the oldest pending job and marks it
// processing. SKIP LOCKED lets concurrent workers claim distinct jobs.
// Returns nil, nil when no pending job exists.
func (r *IngestionJobRepository) ClaimPending(ctx context.Context, maxRetries int) (*domain.IngestionJob, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE ingestion_jobs SET status = $1
		 WHERE id = (
		     SELECT id FROM ingestion_jobs
		     WHERE status = $2 AND retries < $3
		     ORDER BY created_at
		     FOR UPDATE SKIP LOCKED
		     LIMIT 1
		 )
		 RETURNING id, document_id, status, retries, error, created_at, processed_at`,
		string(domain.IngestionJobStatusProcessing), string(domain.IngestionJobStatusPending), maxRetries,
	)
	job, err := scanIngestionJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (r *IngestionJobRepository) MarkCompleted(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingestion_jobs SET status = $1, error = NULL, processed_at = $2 WHERE id = $3`,
		string(domain.IngestionJobStatusCompleted), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrIngestionJobNotFound
	}
	return nil
}

// MarkFailed records the failure and either requeues the job for another
// attempt or marks it permanently failed once retries are exhausted.
func (r *IngestionJobRepository) MarkFailed(ctx context.Context, id, errMsg string, maxRetries int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingestion_jobs
		 SET retries = retries + 1,
		     error = $1,
		     status = CASE WHEN retries + 1 >= $2 THEN $3 ELSE $4 END,
		     processed_at = CASE WHEN retries + 1 >= $2 THEN $5 ELSE NULL END
		 WHERE id = $6`,
		errMsg, maxRetries, string(domain.IngestionJobStatusFailed), string(domain.IngestionJobStatusPending), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrIngestionJobNotFound
	}
	return nil
}

func (r *IngestionJobRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM ingestion_jobs WHERE document_id = $1`,
		documentID,
	)
	return err
}

func scanIngestionJob(row pgx.Row) (*domain.IngestionJob, error) {
	var job domain.IngestionJob
	var status string
	var jobErr pgtype.Text
	var processedAt pgtype.Timestamptz
	if err := row.Scan(&job.ID, &job.DocumentID, &status, &job.Retries, &jobErr, &job.CreatedAt, &processedAt); err != nil {
		return nil, err
	}
	job.Status = domain.IngestionJobStatus(status)
	if jobErr.Valid {
		job.Error = jobErr.String
	}
	if processedAt.Valid {
		t := processedAt.Time
		job.ProcessedAt = &t
	}
	return &job, nil
}
