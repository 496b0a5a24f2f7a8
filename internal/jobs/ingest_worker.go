package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/telemetry"
)

const (
	// MaxRetries is the maximum number of attempts for a failed job
	MaxRetries = 3
)

// IngestionJobRepository defines the interface for ingestion job persistence
type IngestionJobRepository interface {
	// ClaimPending claims the oldest pending job, or returns nil, nil.
	ClaimPending(ctx context.Context, maxRetries int) (*domain.IngestionJob, error)

	// MarkCompleted finalizes a successfully processed job.
	MarkCompleted(ctx context.Context, id string) error

	// MarkFailed records a failure and requeues or buries the job.
	MarkFailed(ctx context.Context, id, errMsg string, maxRetries int) error
}

// DocumentSource resolves a document and its extracted text.
type DocumentSource interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentTextFetcher loads extracted document text from object storage.
type DocumentTextFetcher interface {
	GetObjectText(ctx context.Context, key string) (string, error)
}

// DocumentIngester indexes a document's text into the knowledge base.
type DocumentIngester interface {
	IngestDocument(ctx context.Context, documentID, text string) (int, error)
}

// IngestWorker drains the ingestion job queue: each claimed job pulls the
// document's extracted text from storage and runs it through chunking and
// indexing.
type IngestWorker struct {
	repo    IngestionJobRepository
	docs    DocumentSource
	storage DocumentTextFetcher
	ingest  DocumentIngester
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(repo IngestionJobRepository, docs DocumentSource, storage DocumentTextFetcher, ingest DocumentIngester) *IngestWorker {
	return &IngestWorker{
		repo:    repo,
		docs:    docs,
		storage: storage,
		ingest:  ingest,
	}
}

// ProcessJobs implements the JobProcessor interface. Jobs are claimed one at
// a time so a crash mid-batch loses at most one claim.
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	for {
		job, err := w.repo.ClaimPending(ctx, MaxRetries)
		if err != nil {
			return fmt.Errorf("failed to claim pending job: %w", err)
		}
		if job == nil {
			return nil
		}

		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestionJob) error {
	ctx, span := telemetry.StartSpan(ctx, "jobs.ingest_document", telemetry.SpanAttributes{
		DocumentID: job.DocumentID,
		Operation:  "process_ingestion_job",
	})
	defer span.End()

	log.Printf("Processing job %s for document %s", job.ID, job.DocumentID)

	if err := w.runIngestion(ctx, job); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.MarkCompleted(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

func (w *IngestWorker) runIngestion(ctx context.Context, job *domain.IngestionJob) error {
	doc, err := w.docs.GetByID(ctx, job.DocumentID)
	if err != nil {
		return fmt.Errorf("document lookup failed: %w", err)
	}

	if doc.StorageKey == "" {
		return fmt.Errorf("document %s has no storage key", doc.ID)
	}

	text, err := w.storage.GetObjectText(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("document text fetch failed: %w", err)
	}

	chunks, err := w.ingest.IngestDocument(ctx, job.DocumentID, text)
	if err != nil {
		return fmt.Errorf("document indexing failed: %w", err)
	}

	log.Printf("Indexed %d chunks for document %s", chunks, job.DocumentID)
	return nil
}

// handleJobFailure records the failure; MarkFailed requeues the job until
// its retries are exhausted, then buries it.
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestionJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.MarkFailed(ctx, job.ID, jobErr.Error(), MaxRetries); err != nil {
		return fmt.Errorf("failed to record job failure: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
	} else {
		log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	}

	return nil
}
