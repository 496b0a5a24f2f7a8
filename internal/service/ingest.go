package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/telemetry"
	"github.com/mentora-ai/mentora/internal/vector"
)

// RoleExpert marks training-chat messages authored by the expert. Only
// these are mined for knowledge; interviewer and system turns are ignored.
const RoleExpert = "expert"

// IngestDocumentRepository is the document persistence ingestion needs.
type IngestDocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateChunkCount(ctx context.Context, id string, chunkCount int) error
	Delete(ctx context.Context, id string) error
}

// IngestUnitRepository removes knowledge rows when a document is deleted.
type IngestUnitRepository interface {
	DeleteByDocument(ctx context.Context, documentID string) ([]string, error)
}

// IngestionService turns raw expert input into indexed knowledge: free-form
// training chat on one path, uploaded document text on the other.
type IngestionService struct {
	docRepo   IngestDocumentRepository
	unitRepo  IngestUnitRepository
	extractor *KnowledgeExtractor
	indexer   *KnowledgeIndexer
	vectors   vector.Store
	chunkCfg  ChunkConfig
}

func NewIngestionService(
	docRepo IngestDocumentRepository,
	unitRepo IngestUnitRepository,
	extractor *KnowledgeExtractor,
	indexer *KnowledgeIndexer,
	vectors vector.Store,
) *IngestionService {
	return &IngestionService{
		docRepo:   docRepo,
		unitRepo:  unitRepo,
		extractor: extractor,
		indexer:   indexer,
		vectors:   vectors,
		chunkCfg:  DefaultChunkConfig(),
	}
}

// IngestTrainingMessage mines a free-form training chat message for
// knowledge. Messages not authored by the expert are ignored. Returns true
// when a knowledge unit was recorded.
func (s *IngestionService) IngestTrainingMessage(ctx context.Context, expertID, role, content string) (bool, error) {
	if role != RoleExpert {
		return false, nil
	}

	unit, err := s.extractor.Extract(ctx, expertID,
		"What would you like to share from your expertise?",
		content, "", domain.MinContextDepth)
	if err != nil || unit == nil {
		return false, err
	}

	if err := s.indexer.Index(ctx, unit, ""); err != nil {
		log.Printf("indexing training message failed for expert %s: %v", expertID, err)
		return false, nil
	}

	return true, nil
}

// IngestDocument chunks extracted document text and indexes every chunk
// verbatim. Chunk units use deterministic ids so re-ingesting a document
// overwrites rather than duplicates. Concept labeling is advisory; a chunk
// is indexed even when labeling fails.
func (s *IngestionService) IngestDocument(ctx context.Context, documentID, text string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "ingest.document", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "ingest_document",
	})
	defer span.End()

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return 0, err
	}

	chunks := chunkText(text, s.chunkCfg)
	if len(chunks) == 0 {
		return 0, domain.NewDomainError(domain.ErrCodeValidation, "document contains no indexable text")
	}

	// A re-ingest may produce fewer chunks than before; drop the old chunk
	// set first so trailing units from the previous ingest cannot survive.
	staleIDs, err := s.unitRepo.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if len(staleIDs) > 0 {
		if err := s.vectors.Delete(ctx, staleIDs); err != nil {
			log.Printf("stale vector cleanup failed for document %s: %v", documentID, err)
		}
	}
	if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
		log.Printf("stale vector cleanup by document failed for %s: %v", documentID, err)
	}

	now := time.Now().UTC()
	indexed := 0
	for i, chunk := range chunks {
		unit := domain.NewKnowledgeUnit(
			fmt.Sprintf("doc_%s_chunk_%d", documentID, i),
			doc.ExpertID,
			chunk,
			doc.Filename,
			s.extractor.ExtractConcepts(ctx, chunk),
			domain.SourceDocument,
			domain.MinContextDepth,
			1.0,
			now,
		)
		if err := s.indexer.Index(ctx, unit, documentID); err != nil {
			return indexed, err
		}
		indexed++
	}

	if err := s.docRepo.UpdateChunkCount(ctx, documentID, indexed); err != nil {
		return indexed, err
	}

	return indexed, nil
}

// DeleteDocument removes a document along with every knowledge unit and
// vector derived from it.
func (s *IngestionService) DeleteDocument(ctx context.Context, expertID, documentID string) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.ExpertID != expertID {
		return domain.ErrDocumentNotFound
	}

	unitIDs, err := s.unitRepo.DeleteByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if len(unitIDs) > 0 {
		if err := s.vectors.Delete(ctx, unitIDs); err != nil {
			log.Printf("vector cleanup failed for document %s: %v", documentID, err)
		}
	}
	if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
		log.Printf("vector cleanup by document failed for %s: %v", documentID, err)
	}

	return s.docRepo.Delete(ctx, documentID)
}
