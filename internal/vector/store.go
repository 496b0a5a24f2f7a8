// Package vector defines the vector index abstraction used by the knowledge
// pipeline and its pgvector-backed implementation. One concrete adapter is
// chosen at startup by configuration; components only see the Store interface.
package vector

import (
	"context"
	"time"

	"github.com/mentora-ai/mentora/internal/domain"
)

// Metadata is the payload stored alongside each vector. Every field the
// relevance filter needs at query time travels with the match so retrieval
// never has to join back to the system of record.
type Metadata struct {
	ExpertID        string                 `json:"expert_id"`
	Text            string                 `json:"text"`
	Topic           string                 `json:"topic"`
	Source          domain.KnowledgeSource `json:"source"`
	ContextDepth    int                    `json:"context_depth"`
	ConfidenceScore float64                `json:"confidence_score"`
	KeyConcepts     []string               `json:"key_concepts,omitempty"`
	DocumentID      string                 `json:"document_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// Match is one ranked result of a vector query.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Filter scopes a query to a single expert's knowledge. Chat-derived
// knowledge is restricted to known unit ids owned by the expert's knowledge
// base; document-derived knowledge is restricted by expert id alone. A query
// with neither leg enabled matches nothing.
type Filter struct {
	ExpertID         string
	TrainingUnitIDs  []string
	IncludeDocuments bool
}

// Store is the vector index capability consumed by the knowledge pipeline.
type Store interface {
	// Upsert inserts or replaces the vector stored under id.
	Upsert(ctx context.Context, id string, embedding []float32, meta Metadata) error

	// Query returns up to topK matches ranked by similarity, restricted by filter.
	Query(ctx context.Context, embedding []float32, filter Filter, topK int) ([]Match, error)

	// Fetch returns the stored entries for the given ids, keyed by id.
	Fetch(ctx context.Context, ids []string) (map[string]Match, error)

	// Delete removes the vectors stored under the given ids.
	Delete(ctx context.Context, ids []string) error

	// DeleteByDocument removes every vector belonging to a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// ScanMetadata reads all of an expert's entries without similarity
	// ranking. Used for topic coverage analysis; Score carries the stored
	// confidence score.
	ScanMetadata(ctx context.Context, expertID string, limit int) ([]Match, error)
}
