package domain

import (
	"fmt"
	"time"
)

// KnowledgeSource represents the provenance of a knowledge unit.
// Source determines downstream trust weighting during retrieval.
type KnowledgeSource string

const (
	// SourceExpertTraining marks knowledge captured from the expert's own
	// statements in training chat.
	SourceExpertTraining KnowledgeSource = "expert_training"
	// SourceDocument marks knowledge extracted from an uploaded document chunk.
	SourceDocument KnowledgeSource = "document"
)

const (
	// MinContextDepth and MaxContextDepth bound how deep into a structured
	// conversation a unit was captured.
	MinContextDepth = 1
	MaxContextDepth = 5
)

// KnowledgeUnit is one atomic fact captured from an expert's input.
// Text is verbatim source material; the extraction step never paraphrases.
type KnowledgeUnit struct {
	ID              string
	ExpertID        string
	Text            string
	Topic           string
	KeyConcepts     []string
	Source          KnowledgeSource
	ContextDepth    int
	ConfidenceScore float64
	CreatedAt       time.Time
}

// NewKnowledgeUnit creates a new KnowledgeUnit instance
func NewKnowledgeUnit(
	id, expertID, text, topic string,
	keyConcepts []string,
	source KnowledgeSource,
	contextDepth int,
	confidenceScore float64,
	createdAt time.Time,
) *KnowledgeUnit {
	return &KnowledgeUnit{
		ID:              id,
		ExpertID:        expertID,
		Text:            text,
		Topic:           topic,
		KeyConcepts:     keyConcepts,
		Source:          source,
		ContextDepth:    contextDepth,
		ConfidenceScore: confidenceScore,
		CreatedAt:       createdAt,
	}
}

// ValidateKnowledgeUnit validates a KnowledgeUnit instance
func ValidateKnowledgeUnit(u *KnowledgeUnit) error {
	if u == nil {
		return fmt.Errorf("knowledge unit cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("knowledge unit ID is required")
	}

	if u.ExpertID == "" {
		return fmt.Errorf("knowledge unit ExpertID is required")
	}

	if u.Text == "" {
		return fmt.Errorf("knowledge unit Text is required")
	}

	if !isValidKnowledgeSource(u.Source) {
		return fmt.Errorf("knowledge unit Source is invalid: %s", u.Source)
	}

	if u.ContextDepth < MinContextDepth || u.ContextDepth > MaxContextDepth {
		return fmt.Errorf("knowledge unit ContextDepth must be between %d and %d", MinContextDepth, MaxContextDepth)
	}

	if u.ConfidenceScore < 0 || u.ConfidenceScore > 1 {
		return fmt.Errorf("knowledge unit ConfidenceScore must be between 0.0 and 1.0")
	}

	return nil
}

// isValidKnowledgeSource checks if a KnowledgeSource is valid
func isValidKnowledgeSource(s KnowledgeSource) bool {
	switch s {
	case SourceExpertTraining, SourceDocument:
		return true
	}
	return false
}
