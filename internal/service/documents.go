package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/telemetry"
)

const documentContentType = "text/plain; charset=utf-8"

// DocumentCRUDRepository is the persistence surface for document records.
type DocumentCRUDRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByExpert(ctx context.Context, expertID string) ([]*domain.Document, error)
}

// DocumentJobRepository queues and clears ingestion jobs for documents.
type DocumentJobRepository interface {
	Create(ctx context.Context, job *domain.IngestionJob) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// DocumentObjectStore is the object storage surface for document text.
type DocumentObjectStore interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// DocumentService manages document records and their ingestion lifecycle.
// The text itself is uploaded to object storage by the caller; ingestion
// runs asynchronously off the job queue.
type DocumentService struct {
	docRepo   DocumentCRUDRepository
	jobRepo   DocumentJobRepository
	storage   DocumentObjectStore
	ingestion *IngestionService
	uuidGen   UUIDGenerator
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	docRepo DocumentCRUDRepository,
	jobRepo DocumentJobRepository,
	storage DocumentObjectStore,
	ingestion *IngestionService,
	uuidGen UUIDGenerator,
) *DocumentService {
	return &DocumentService{
		docRepo:   docRepo,
		jobRepo:   jobRepo,
		storage:   storage,
		ingestion: ingestion,
		uuidGen:   uuidGen,
	}
}

// CreateDocumentOutput holds a created document and its upload URL.
type CreateDocumentOutput struct {
	Document  *domain.Document
	UploadURL string
}

// CreateDocument records a document and returns a presigned URL the caller
// uploads the extracted text to. Ingestion is queued separately once the
// upload completes.
func (s *DocumentService) CreateDocument(ctx context.Context, expertID, filename string) (*CreateDocumentOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.CreateDocument", telemetry.SpanAttributes{
		ExpertID:  expertID,
		Operation: "create_document",
	})
	defer span.End()

	if strings.TrimSpace(filename) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "filename is required")
	}

	id := s.uuidGen.NewString()
	doc := &domain.Document{
		ID:         id,
		ExpertID:   expertID,
		Filename:   filename,
		StorageKey: fmt.Sprintf("documents/%s.txt", id),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	uploadURL, err := s.storage.GenerateUploadURL(ctx, doc.StorageKey, documentContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &CreateDocumentOutput{
		Document:  doc,
		UploadURL: uploadURL,
	}, nil
}

// QueueIngestion enqueues an ingestion job for an uploaded document.
func (s *DocumentService) QueueIngestion(ctx context.Context, expertID, documentID string) (*domain.IngestionJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.QueueIngestion", telemetry.SpanAttributes{
		ExpertID:   expertID,
		DocumentID: documentID,
		Operation:  "queue_ingestion",
	})
	defer span.End()

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ExpertID != expertID {
		return nil, domain.ErrDocumentNotFound
	}

	job := &domain.IngestionJob{
		ID:         s.uuidGen.NewString(),
		DocumentID: documentID,
		Status:     domain.IngestionJobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// GetDocument returns a document owned by the expert.
func (s *DocumentService) GetDocument(ctx context.Context, expertID, documentID string) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ExpertID != expertID {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// ListDocuments returns all documents owned by the expert.
func (s *DocumentService) ListDocuments(ctx context.Context, expertID string) ([]*domain.Document, error) {
	return s.docRepo.ListByExpert(ctx, expertID)
}

// DeleteDocument removes the document record, its queued jobs, every
// knowledge unit and vector derived from it, and the stored text object.
func (s *DocumentService) DeleteDocument(ctx context.Context, expertID, documentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.DeleteDocument", telemetry.SpanAttributes{
		ExpertID:   expertID,
		DocumentID: documentID,
		Operation:  "delete_document",
	})
	defer span.End()

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.ExpertID != expertID {
		return domain.ErrDocumentNotFound
	}

	if err := s.jobRepo.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}

	if err := s.ingestion.DeleteDocument(ctx, expertID, documentID); err != nil {
		return err
	}

	if doc.StorageKey != "" {
		if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
			log.Printf("Failed to delete stored object %s: %v", doc.StorageKey, err)
		}
	}

	return nil
}
