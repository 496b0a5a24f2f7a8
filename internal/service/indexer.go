package service

import (
	"context"
	"log"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/vector"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// IndexKnowledgeRepository defines the repository interface for indexing
type IndexKnowledgeRepository interface {
	Upsert(ctx context.Context, unit *domain.KnowledgeUnit, documentID string) error
}

// IndexExpertRepository tracks per-topic knowledge area counters
type IndexExpertRepository interface {
	IncrementKnowledgeArea(ctx context.Context, expertID, topic string) error
}

// KnowledgeIndexer persists knowledge units and pushes their embeddings into
// the vector store. The relational row is the system of record: embedding or
// vector store failures are logged and skipped so the unit is never lost,
// and re-indexing the same unit ID is idempotent.
type KnowledgeIndexer struct {
	unitRepo   IndexKnowledgeRepository
	expertRepo IndexExpertRepository
	embedder   EmbeddingClient
	vectors    vector.Store
}

func NewKnowledgeIndexer(
	unitRepo IndexKnowledgeRepository,
	expertRepo IndexExpertRepository,
	embedder EmbeddingClient,
	vectors vector.Store,
) *KnowledgeIndexer {
	return &KnowledgeIndexer{
		unitRepo:   unitRepo,
		expertRepo: expertRepo,
		embedder:   embedder,
		vectors:    vectors,
	}
}

// Index stores a knowledge unit and its embedding. documentID is empty for
// training-chat units and set for document chunks.
func (s *KnowledgeIndexer) Index(ctx context.Context, unit *domain.KnowledgeUnit, documentID string) error {
	if err := domain.ValidateKnowledgeUnit(unit); err != nil {
		return err
	}

	if err := s.unitRepo.Upsert(ctx, unit, documentID); err != nil {
		return err
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, unit.Text)
	if err != nil {
		log.Printf("embedding generation failed for knowledge unit %s: %v", unit.ID, err)
	} else {
		meta := vector.Metadata{
			ExpertID:        unit.ExpertID,
			Text:            unit.Text,
			Topic:           unit.Topic,
			Source:          unit.Source,
			ContextDepth:    unit.ContextDepth,
			ConfidenceScore: unit.ConfidenceScore,
			KeyConcepts:     unit.KeyConcepts,
			DocumentID:      documentID,
			CreatedAt:       unit.CreatedAt,
		}
		if err := s.vectors.Upsert(ctx, unit.ID, embedding, meta); err != nil {
			log.Printf("vector upsert failed for knowledge unit %s: %v", unit.ID, err)
		}
	}

	for _, concept := range unit.KeyConcepts {
		if concept == "" {
			continue
		}
		if err := s.expertRepo.IncrementKnowledgeArea(ctx, unit.ExpertID, concept); err != nil {
			log.Printf("knowledge area update failed for expert %s topic %q: %v", unit.ExpertID, concept, err)
		}
	}

	return nil
}
