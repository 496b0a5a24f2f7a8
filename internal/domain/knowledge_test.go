package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeSourceConstants(t *testing.T) {
	tests := []struct {
		name     string
		source   KnowledgeSource
		expected string
	}{
		{"ExpertTraining", SourceExpertTraining, "expert_training"},
		{"Document", SourceDocument, "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.source))
		})
	}
}

func TestNewKnowledgeUnit(t *testing.T) {
	now := time.Now()
	unit := NewKnowledgeUnit(
		"u1",
		"expert-1",
		"I always price projects by value, not hours.",
		"Pricing",
		[]string{"pricing", "value-based billing"},
		SourceExpertTraining,
		2,
		0.9,
		now,
	)

	assert.Equal(t, "u1", unit.ID)
	assert.Equal(t, "expert-1", unit.ExpertID)
	assert.Equal(t, "I always price projects by value, not hours.", unit.Text)
	assert.Equal(t, "Pricing", unit.Topic)
	assert.Equal(t, []string{"pricing", "value-based billing"}, unit.KeyConcepts)
	assert.Equal(t, SourceExpertTraining, unit.Source)
	assert.Equal(t, 2, unit.ContextDepth)
	assert.Equal(t, 0.9, unit.ConfidenceScore)
	assert.Equal(t, now, unit.CreatedAt)
}

func TestValidateKnowledgeUnit(t *testing.T) {
	now := time.Now()

	valid := func() *KnowledgeUnit {
		return &KnowledgeUnit{
			ID:              "u1",
			ExpertID:        "expert-1",
			Text:            "Some verbatim statement",
			Topic:           "Pricing",
			KeyConcepts:     []string{"pricing"},
			Source:          SourceExpertTraining,
			ContextDepth:    1,
			ConfidenceScore: 0.8,
			CreatedAt:       now,
		}
	}

	tests := []struct {
		name    string
		mutate  func(u *KnowledgeUnit)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid unit",
			mutate:  func(u *KnowledgeUnit) {},
			wantErr: false,
		},
		{
			name:    "missing ID",
			mutate:  func(u *KnowledgeUnit) { u.ID = "" },
			wantErr: true,
			errMsg:  "ID is required",
		},
		{
			name:    "missing expert ID",
			mutate:  func(u *KnowledgeUnit) { u.ExpertID = "" },
			wantErr: true,
			errMsg:  "ExpertID is required",
		},
		{
			name:    "missing text",
			mutate:  func(u *KnowledgeUnit) { u.Text = "" },
			wantErr: true,
			errMsg:  "Text is required",
		},
		{
			name:    "invalid source",
			mutate:  func(u *KnowledgeUnit) { u.Source = "wiki" },
			wantErr: true,
			errMsg:  "Source is invalid",
		},
		{
			name:    "context depth too low",
			mutate:  func(u *KnowledgeUnit) { u.ContextDepth = 0 },
			wantErr: true,
			errMsg:  "ContextDepth",
		},
		{
			name:    "context depth too high",
			mutate:  func(u *KnowledgeUnit) { u.ContextDepth = 6 },
			wantErr: true,
			errMsg:  "ContextDepth",
		},
		{
			name:    "confidence above one",
			mutate:  func(u *KnowledgeUnit) { u.ConfidenceScore = 1.1 },
			wantErr: true,
			errMsg:  "ConfidenceScore",
		},
		{
			name:    "confidence below zero",
			mutate:  func(u *KnowledgeUnit) { u.ConfidenceScore = -0.1 },
			wantErr: true,
			errMsg:  "ConfidenceScore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := valid()
			tt.mutate(unit)
			err := ValidateKnowledgeUnit(unit)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateKnowledgeUnit_Nil(t *testing.T) {
	err := ValidateKnowledgeUnit(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be nil")
}
