package domain

import (
	"fmt"
	"time"
)

// TrainingPhase represents the category of a training question.
type TrainingPhase string

const (
	PhaseBackground   TrainingPhase = "background"
	PhasePrinciples   TrainingPhase = "principles"
	PhaseExpertise    TrainingPhase = "expertise"
	PhaseApplications TrainingPhase = "applications"
	PhaseInsights     TrainingPhase = "insights"
	PhaseGapAnalysis  TrainingPhase = "gap_analysis"
)

const (
	// QuestionsPerPhase is how many answers advance the structured interview
	// to its next phase.
	QuestionsPerPhase = 10
	// StructuredPhaseLimit is the number of answers after which question
	// generation switches to gap analysis.
	StructuredPhaseLimit = 50
)

// structuredPhases is the fixed order of the structured interview.
var structuredPhases = [...]TrainingPhase{
	PhaseBackground,
	PhasePrinciples,
	PhaseExpertise,
	PhaseApplications,
	PhaseInsights,
}

// PhaseForCount returns the training phase for an expert who has answered
// the given number of questions. Phase index is answered/10 clamped to the
// last structured category; past the structured limit it is gap analysis.
func PhaseForCount(questionsAnswered int) TrainingPhase {
	if questionsAnswered >= StructuredPhaseLimit {
		return PhaseGapAnalysis
	}
	idx := questionsAnswered / QuestionsPerPhase
	if idx >= len(structuredPhases) {
		idx = len(structuredPhases) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return structuredPhases[idx]
}

// TrainingQuestion is one generated onboarding or gap-filling question,
// persisted before it is handed to the expert.
type TrainingQuestion struct {
	ID         string
	ExpertID   string
	Order      int
	Phase      TrainingPhase
	Topic      string
	Text       string
	Answer     string
	AnsweredAt *time.Time
	CreatedAt  time.Time
}

// Answered reports whether the question has a stored answer.
func (q *TrainingQuestion) Answered() bool {
	return q.AnsweredAt != nil
}

// ValidateTrainingQuestion validates a TrainingQuestion instance
func ValidateTrainingQuestion(q *TrainingQuestion) error {
	if q == nil {
		return fmt.Errorf("training question cannot be nil")
	}

	if q.ID == "" {
		return fmt.Errorf("training question ID is required")
	}

	if q.ExpertID == "" {
		return fmt.Errorf("training question ExpertID is required")
	}

	if q.Text == "" {
		return fmt.Errorf("training question Text is required")
	}

	if !isValidTrainingPhase(q.Phase) {
		return fmt.Errorf("training question Phase is invalid: %s", q.Phase)
	}

	if q.Order < 0 {
		return fmt.Errorf("training question Order cannot be negative")
	}

	return nil
}

// isValidTrainingPhase checks if a TrainingPhase is valid
func isValidTrainingPhase(p TrainingPhase) bool {
	switch p {
	case PhaseBackground, PhasePrinciples, PhaseExpertise,
		PhaseApplications, PhaseInsights, PhaseGapAnalysis:
		return true
	}
	return false
}
