package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mentora-ai/mentora/internal/vector"
)

func TestKnowledgeRetriever_Retrieve(t *testing.T) {
	ctx := context.Background()
	embedding := []float32{0.5, 0.5}
	strongMatches := []vector.Match{{ID: "unit-1", Score: 0.8}}

	expectedFilter := vector.Filter{
		ExpertID:         "expert-1",
		TrainingUnitIDs:  []string{"unit-1", "unit-2"},
		IncludeDocuments: true,
	}

	setup := func() (*MockEmbeddingClient, *MockVectorStore, *MockKnowledgeUnitRepository) {
		embedder := new(MockEmbeddingClient)
		vectors := new(MockVectorStore)
		unitRepo := new(MockKnowledgeUnitRepository)
		embedder.On("GenerateEmbedding", ctx, "How do you price?").Return(embedding, nil)
		unitRepo.On("ListIDsByExpert", ctx, "expert-1").Return([]string{"unit-1", "unit-2"}, nil)
		return embedder, vectors, unitRepo
	}

	t.Run("single pass when first results are strong", func(t *testing.T) {
		embedder, vectors, unitRepo := setup()
		vectors.On("Query", ctx, embedding, expectedFilter, DefaultTopK).Return(strongMatches, nil).Once()

		r := NewKnowledgeRetriever(embedder, vectors, unitRepo)
		matches, err := r.Retrieve(ctx, "expert-1", "How do you price?")

		require.NoError(t, err)
		assert.Equal(t, strongMatches, matches)
		vectors.AssertNumberOfCalls(t, "Query", 1)
	})

	t.Run("requeries wider when first pass is empty", func(t *testing.T) {
		embedder, vectors, unitRepo := setup()
		vectors.On("Query", ctx, embedding, expectedFilter, DefaultTopK).Return([]vector.Match{}, nil).Once()
		vectors.On("Query", ctx, embedding, expectedFilter, RequeryTopK).Return(strongMatches, nil).Once()

		r := NewKnowledgeRetriever(embedder, vectors, unitRepo)
		matches, err := r.Retrieve(ctx, "expert-1", "How do you price?")

		require.NoError(t, err)
		assert.Equal(t, strongMatches, matches)
		vectors.AssertExpectations(t)
	})

	t.Run("requeries wider when best score is below threshold", func(t *testing.T) {
		embedder, vectors, unitRepo := setup()
		weak := []vector.Match{{ID: "unit-1", Score: 0.14}, {ID: "unit-2", Score: 0.05}}
		vectors.On("Query", ctx, embedding, expectedFilter, DefaultTopK).Return(weak, nil).Once()
		vectors.On("Query", ctx, embedding, expectedFilter, RequeryTopK).Return(weak, nil).Once()

		r := NewKnowledgeRetriever(embedder, vectors, unitRepo)
		matches, err := r.Retrieve(ctx, "expert-1", "How do you price?")

		require.NoError(t, err)
		assert.Equal(t, weak, matches)
		vectors.AssertNumberOfCalls(t, "Query", 2)
	})

	t.Run("no requery at exactly the threshold", func(t *testing.T) {
		embedder, vectors, unitRepo := setup()
		borderline := []vector.Match{{ID: "unit-1", Score: 0.15}}
		vectors.On("Query", ctx, embedding, expectedFilter, DefaultTopK).Return(borderline, nil).Once()

		r := NewKnowledgeRetriever(embedder, vectors, unitRepo)
		_, err := r.Retrieve(ctx, "expert-1", "How do you price?")

		require.NoError(t, err)
		vectors.AssertNumberOfCalls(t, "Query", 1)
	})

	t.Run("embedding failure aborts retrieval", func(t *testing.T) {
		embedder := new(MockEmbeddingClient)
		vectors := new(MockVectorStore)
		unitRepo := new(MockKnowledgeUnitRepository)
		embedder.On("GenerateEmbedding", ctx, "How do you price?").Return(nil, errors.New("quota"))

		r := NewKnowledgeRetriever(embedder, vectors, unitRepo)
		_, err := r.Retrieve(ctx, "expert-1", "How do you price?")

		assert.Error(t, err)
		vectors.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("query log failure does not affect results", func(t *testing.T) {
		embedder, vectors, unitRepo := setup()
		vectors.On("Query", ctx, embedding, expectedFilter, DefaultTopK).Return(strongMatches, nil).Once()

		queryLog := new(MockQueryLogRepository)
		queryLog.On("CreateQueryLog", ctx, mock.MatchedBy(func(e QueryLogEntry) bool {
			return e.ExpertID == "expert-1" && e.TopScore == 0.8 && len(e.Results) == 1
		})).Return("", errors.New("log table missing"))

		r := NewKnowledgeRetriever(embedder, vectors, unitRepo).WithQueryLog(queryLog)
		matches, err := r.Retrieve(ctx, "expert-1", "How do you price?")

		require.NoError(t, err)
		assert.Equal(t, strongMatches, matches)
		queryLog.AssertExpectations(t)
	})
}
