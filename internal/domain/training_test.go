package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseForCount(t *testing.T) {
	tests := []struct {
		name     string
		answered int
		expected TrainingPhase
	}{
		{"first question", 0, PhaseBackground},
		{"end of background", 9, PhaseBackground},
		{"start of principles", 10, PhasePrinciples},
		{"start of expertise", 20, PhaseExpertise},
		{"start of applications", 30, PhaseApplications},
		{"start of insights", 40, PhaseInsights},
		{"last structured question", 49, PhaseInsights},
		{"structured limit reached", 50, PhaseGapAnalysis},
		{"deep into gap analysis", 200, PhaseGapAnalysis},
		{"negative count clamps to background", -1, PhaseBackground},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PhaseForCount(tt.answered))
		})
	}
}

func TestTrainingQuestion_Answered(t *testing.T) {
	q := &TrainingQuestion{ID: "q1", ExpertID: "e1", Text: "What industry are you in?", Phase: PhaseBackground}
	assert.False(t, q.Answered())

	now := time.Now()
	q.AnsweredAt = &now
	assert.True(t, q.Answered())
}

func TestValidateTrainingQuestion(t *testing.T) {
	valid := func() *TrainingQuestion {
		return &TrainingQuestion{
			ID:       "q1",
			ExpertID: "expert-1",
			Order:    0,
			Phase:    PhaseBackground,
			Text:     "Tell me about your professional background.",
		}
	}

	tests := []struct {
		name    string
		mutate  func(q *TrainingQuestion)
		wantErr bool
		errMsg  string
	}{
		{"valid question", func(q *TrainingQuestion) {}, false, ""},
		{"missing ID", func(q *TrainingQuestion) { q.ID = "" }, true, "ID is required"},
		{"missing expert ID", func(q *TrainingQuestion) { q.ExpertID = "" }, true, "ExpertID is required"},
		{"missing text", func(q *TrainingQuestion) { q.Text = "" }, true, "Text is required"},
		{"invalid phase", func(q *TrainingQuestion) { q.Phase = "warmup" }, true, "Phase is invalid"},
		{"negative order", func(q *TrainingQuestion) { q.Order = -1 }, true, "Order cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid()
			tt.mutate(q)
			err := ValidateTrainingQuestion(q)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpert_ProfileComplete(t *testing.T) {
	e := &Expert{ID: "e1", Name: "Jordan"}
	assert.False(t, e.ProfileComplete())

	e.Industry = "Consulting"
	assert.False(t, e.ProfileComplete())

	e.KeySkills = []string{"pricing strategy"}
	assert.True(t, e.ProfileComplete())
}

func TestValidateExpert(t *testing.T) {
	now := time.Now()

	err := ValidateExpert(nil)
	require.Error(t, err)

	err = ValidateExpert(&Expert{ID: "", Name: "Jordan", CreatedAt: now})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID is required")

	err = ValidateExpert(&Expert{ID: "e1", Name: "", CreatedAt: now})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name is required")

	err = ValidateExpert(&Expert{ID: "e1", Name: "Jordan", YearsExperience: -2, CreatedAt: now})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be negative")

	err = ValidateExpert(&Expert{ID: "e1", Name: "Jordan", YearsExperience: 12, CreatedAt: now})
	assert.NoError(t, err)
}
