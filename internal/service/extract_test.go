package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mentora-ai/mentora/internal/domain"
)

const answerText = "I always price against the outcome. If a project saves the client a million dollars, the fee reflects that, not the hours."

func TestKnowledgeExtractor_Extract(t *testing.T) {
	ctx := context.Background()

	t.Run("returns unit for verbatim extraction", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return(`{"content":"I always price against the outcome.","confidence_score":0.9,"key_concepts":["pricing","consulting"]}`, nil)

		e := NewKnowledgeExtractorWithUUIDGen(client, NewMockUUIDGenerator("unit-1"))
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", answerText, "Pricing", 2)

		require.NoError(t, err)
		require.NotNil(t, unit)
		assert.Equal(t, "unit-1", unit.ID)
		assert.Equal(t, "expert-1", unit.ExpertID)
		assert.Equal(t, "I always price against the outcome.", unit.Text)
		assert.Equal(t, "Pricing", unit.Topic)
		assert.Equal(t, []string{"pricing", "consulting"}, unit.KeyConcepts)
		assert.Equal(t, domain.SourceExpertTraining, unit.Source)
		assert.Equal(t, 2, unit.ContextDepth)
		assert.Equal(t, 0.9, unit.ConfidenceScore)
		client.AssertExpectations(t)
	})

	t.Run("discards paraphrased content", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return(`{"content":"The expert believes in outcome-based pricing.","confidence_score":0.9,"key_concepts":["pricing","consulting"]}`, nil)

		e := NewKnowledgeExtractor(client)
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", answerText, "Pricing", 1)

		require.NoError(t, err)
		assert.Nil(t, unit)
	})

	t.Run("tolerates whitespace drift in verbatim check", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return(`{"content":"I always  price against\nthe outcome.","confidence_score":0.8,"key_concepts":["pricing","consulting"]}`, nil)

		e := NewKnowledgeExtractorWithUUIDGen(client, NewMockUUIDGenerator("unit-1"))
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", answerText, "Pricing", 1)

		require.NoError(t, err)
		assert.NotNil(t, unit)
	})

	t.Run("returns nil on empty answer without calling the model", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)

		e := NewKnowledgeExtractor(client)
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", "   ", "Pricing", 1)

		require.NoError(t, err)
		assert.Nil(t, unit)
		client.AssertNotCalled(t, "ExtractStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns nil on model failure", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return("", errors.New("rate limited"))

		e := NewKnowledgeExtractor(client)
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", answerText, "Pricing", 1)

		require.NoError(t, err)
		assert.Nil(t, unit)
	})

	t.Run("returns nil on unparseable arguments", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return(`not json`, nil)

		e := NewKnowledgeExtractor(client)
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", answerText, "Pricing", 1)

		require.NoError(t, err)
		assert.Nil(t, unit)
	})

	t.Run("returns nil when model reports no substantive content", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return(`{"content":"","confidence_score":0,"key_concepts":[]}`, nil)

		e := NewKnowledgeExtractor(client)
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", answerText, "Pricing", 1)

		require.NoError(t, err)
		assert.Nil(t, unit)
	})

	t.Run("clamps confidence and context depth into range", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return(`{"content":"I always price against the outcome.","confidence_score":1.7,"key_concepts":["pricing","consulting"]}`, nil)

		e := NewKnowledgeExtractorWithUUIDGen(client, NewMockUUIDGenerator("unit-1"))
		unit, err := e.Extract(ctx, "expert-1", "How do you price?", answerText, "Pricing", 9)

		require.NoError(t, err)
		require.NotNil(t, unit)
		assert.Equal(t, 1.0, unit.ConfidenceScore)
		assert.Equal(t, domain.MaxContextDepth, unit.ContextDepth)
	})
}

func TestKnowledgeExtractor_ExtractConcepts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns concepts", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return(`{"key_concepts":["pricing","retention"]}`, nil)

		e := NewKnowledgeExtractor(client)
		assert.Equal(t, []string{"pricing", "retention"}, e.ExtractConcepts(ctx, "some passage"))
	})

	t.Run("returns nil on failure", func(t *testing.T) {
		client := new(MockStructuredExtractionClient)
		client.On("ExtractStructured", ctx, mock.Anything, mock.Anything, mock.Anything, float32(0)).
			Return("", errors.New("boom"))

		e := NewKnowledgeExtractor(client)
		assert.Nil(t, e.ExtractConcepts(ctx, "some passage"))
	})
}
