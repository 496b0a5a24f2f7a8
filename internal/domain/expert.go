package domain

import (
	"fmt"
	"time"
)

// Expert represents a persona whose knowledge the system reproduces.
type Expert struct {
	ID              string
	Name            string
	Industry        string
	YearsExperience int
	KeySkills       []string
	TrainingSummary string // informational synopsis, never used as a grounding source
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// KnowledgeArea tracks per-topic coverage for an expert's knowledge base.
// Counters are advisory (gap analysis and UI summary), not correctness-critical.
type KnowledgeArea struct {
	ExpertID    string
	Topic       string
	Count       int64
	FirstSeen   time.Time
	LastUpdated time.Time
}

// NewExpert creates a new Expert instance
func NewExpert(id, name, industry string, yearsExperience int, keySkills []string, createdAt time.Time) *Expert {
	return &Expert{
		ID:              id,
		Name:            name,
		Industry:        industry,
		YearsExperience: yearsExperience,
		KeySkills:       keySkills,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// ProfileComplete reports whether the expert profile carries the fields
// required before any retrieval is attempted.
func (e *Expert) ProfileComplete() bool {
	return e.Industry != "" && len(e.KeySkills) > 0
}

// ValidateExpert validates an Expert instance
func ValidateExpert(e *Expert) error {
	if e == nil {
		return fmt.Errorf("expert cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("expert ID is required")
	}

	if e.Name == "" {
		return fmt.Errorf("expert Name is required")
	}

	if e.YearsExperience < 0 {
		return fmt.Errorf("expert YearsExperience cannot be negative")
	}

	return nil
}
