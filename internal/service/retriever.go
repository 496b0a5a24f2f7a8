package service

import (
	"context"
	"log"
	"time"

	"github.com/mentora-ai/mentora/internal/vector"
)

const (
	// DefaultTopK is the match count requested on the first retrieval pass.
	DefaultTopK = 8
	// RequeryTopK is the widened match count used when the first pass comes
	// back empty or weak.
	RequeryTopK = 12
	// RequeryThreshold triggers the widened pass when no first-pass match
	// reaches it.
	RequeryThreshold = 0.15
)

// RetrieverUnitRepository exposes the unit ids owned by an expert's
// training-chat knowledge.
type RetrieverUnitRepository interface {
	ListIDsByExpert(ctx context.Context, expertID string) ([]string, error)
}

// KnowledgeRetriever embeds a question and finds the expert's most similar
// knowledge. Both knowledge legs are searched in one query: training-chat
// units by explicit id list, document chunks by expert id.
type KnowledgeRetriever struct {
	embedder EmbeddingClient
	vectors  vector.Store
	unitRepo RetrieverUnitRepository
	queryLog QueryLogRepository
	topK     int
}

func NewKnowledgeRetriever(embedder EmbeddingClient, vectors vector.Store, unitRepo RetrieverUnitRepository) *KnowledgeRetriever {
	return &KnowledgeRetriever{
		embedder: embedder,
		vectors:  vectors,
		unitRepo: unitRepo,
		topK:     DefaultTopK,
	}
}

// WithQueryLog enables retrieval logging. Logging failures never affect
// retrieval results.
func (s *KnowledgeRetriever) WithQueryLog(repo QueryLogRepository) *KnowledgeRetriever {
	s.queryLog = repo
	return s
}

// Retrieve returns the expert's knowledge ranked by similarity to the
// question. When the first pass returns nothing, or its best score falls
// below the requery threshold, a single widened pass runs before giving up.
func (s *KnowledgeRetriever) Retrieve(ctx context.Context, expertID, question string) ([]vector.Match, error) {
	start := time.Now()

	embedding, err := s.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, err
	}

	unitIDs, err := s.unitRepo.ListIDsByExpert(ctx, expertID)
	if err != nil {
		return nil, err
	}

	filter := vector.Filter{
		ExpertID:         expertID,
		TrainingUnitIDs:  unitIDs,
		IncludeDocuments: true,
	}

	matches, err := s.vectors.Query(ctx, embedding, filter, s.topK)
	if err != nil {
		return nil, err
	}

	if needsRequery(matches) {
		matches, err = s.vectors.Query(ctx, embedding, filter, RequeryTopK)
		if err != nil {
			return nil, err
		}
	}

	if s.queryLog != nil {
		entry := QueryLogEntry{
			ExpertID:   expertID,
			Question:   question,
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		for _, m := range matches {
			if m.Score > entry.TopScore {
				entry.TopScore = m.Score
			}
			entry.Results = append(entry.Results, QueryLogResult{
				ID:     m.ID,
				Source: string(m.Metadata.Source),
				Score:  m.Score,
				Topic:  m.Metadata.Topic,
			})
		}
		if _, err := s.queryLog.CreateQueryLog(ctx, entry); err != nil {
			log.Printf("query log write failed for expert %s: %v", expertID, err)
		}
	}

	return matches, nil
}

func needsRequery(matches []vector.Match) bool {
	if len(matches) == 0 {
		return true
	}
	best := matches[0].Score
	for _, m := range matches[1:] {
		if m.Score > best {
			best = m.Score
		}
	}
	return best < RequeryThreshold
}
