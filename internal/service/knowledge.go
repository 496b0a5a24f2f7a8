package service

import (
	"context"
	"log"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/pagination"
	"github.com/mentora-ai/mentora/internal/telemetry"
	"github.com/mentora-ai/mentora/internal/vector"
)

// KnowledgeUnitPageResult is one page of an expert's knowledge units.
type KnowledgeUnitPageResult struct {
	Items      []*domain.KnowledgeUnit
	NextCursor string
	HasMore    bool
}

// KnowledgeUnitStore is the persistence surface for browsing and pruning
// an expert's knowledge base.
type KnowledgeUnitStore interface {
	GetByID(ctx context.Context, id string) (*domain.KnowledgeUnit, error)
	ListByExpertWithCursor(ctx context.Context, expertID string, cursor *pagination.Cursor, limit int) (*KnowledgeUnitPageResult, error)
	CountByExpert(ctx context.Context, expertID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// KnowledgeService exposes read and prune operations over an expert's
// knowledge base. Writes go through the extraction and indexing pipeline;
// this service only lists entries and removes them.
type KnowledgeService struct {
	units   KnowledgeUnitStore
	vectors vector.Store
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(units KnowledgeUnitStore, vectors vector.Store) *KnowledgeService {
	return &KnowledgeService{
		units:   units,
		vectors: vectors,
	}
}

// ListKnowledgeInput holds parameters for listing knowledge units
type ListKnowledgeInput struct {
	ExpertID string
	Cursor   string
	Limit    int
}

// ListKnowledgeOutput holds a page of knowledge units
type ListKnowledgeOutput struct {
	Items   []*domain.KnowledgeUnit
	Cursor  string
	HasMore bool
	Total   int64
}

// List returns one page of the expert's knowledge units, newest first.
func (s *KnowledgeService) List(ctx context.Context, input ListKnowledgeInput) (*ListKnowledgeOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.List", telemetry.SpanAttributes{
		ExpertID:  input.ExpertID,
		Operation: "list_knowledge",
	})
	defer span.End()

	cursor, _ := pagination.DecodeCursor(input.Cursor)

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.units.ListByExpertWithCursor(ctx, input.ExpertID, cursor, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.units.CountByExpert(ctx, input.ExpertID)
	if err != nil {
		return nil, err
	}

	return &ListKnowledgeOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
		Total:   total,
	}, nil
}

// Get returns a single knowledge unit owned by the expert.
func (s *KnowledgeService) Get(ctx context.Context, expertID, unitID string) (*domain.KnowledgeUnit, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit.ExpertID != expertID {
		return nil, domain.ErrKnowledgeUnitNotFound
	}
	return unit, nil
}

// Delete removes a knowledge unit and its vector row. The metadata row is
// authoritative, so its deletion decides the outcome; a failed vector delete
// leaves an orphan that a re-index sweep can reclaim.
func (s *KnowledgeService) Delete(ctx context.Context, expertID, unitID string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Delete", telemetry.SpanAttributes{
		ExpertID:    expertID,
		KnowledgeID: unitID,
		Operation:   "delete_knowledge",
	})
	defer span.End()

	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return err
	}
	if unit.ExpertID != expertID {
		return domain.ErrKnowledgeUnitNotFound
	}

	if err := s.units.Delete(ctx, unitID); err != nil {
		return err
	}

	if err := s.vectors.Delete(ctx, []string{unitID}); err != nil {
		log.Printf("Failed to delete vector for knowledge unit %s: %v", unitID, err)
	}

	return nil
}
