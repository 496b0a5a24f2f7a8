//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentora-ai/mentora/internal/service"
)

func TestQueryLogRepository_CreateQueryLog(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewQueryLogRepository(pool)
	expert := createTestExpert(ctx, t, pool)

	id, err := repo.CreateQueryLog(ctx, service.QueryLogEntry{
		ExpertID:   expert.ID,
		Question:   "How do you structure a pricing proposal?",
		TopScore:   0.82,
		DurationMs: 143,
		Results: []service.QueryLogResult{
			{ID: "unit-1", Source: "expert_training", Score: 0.82, Topic: "pricing"},
			{ID: "unit-2", Source: "document", Score: 0.65},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var count int
	var topScore float64
	err = pool.QueryRow(ctx,
		`SELECT result_count, top_score FROM query_logs WHERE id = $1`, id,
	).Scan(&count, &topScore)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.InDelta(t, 0.82, topScore, 0.001)
}

func TestQueryLogRepository_CreateQueryLog_NoResults(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewQueryLogRepository(pool)
	expert := createTestExpert(ctx, t, pool)

	id, err := repo.CreateQueryLog(ctx, service.QueryLogEntry{
		ExpertID:   expert.ID,
		Question:   "Anything about quantum chromodynamics?",
		DurationMs: 12,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
