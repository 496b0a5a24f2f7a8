//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/pagination"
)

func newTestUnit(expertID string, createdAt time.Time) *domain.KnowledgeUnit {
	return &domain.KnowledgeUnit{
		ID:              uuid.NewString(),
		ExpertID:        expertID,
		Text:            "Anchor pricing discussions on value delivered, not hours spent.",
		Topic:           "pricing",
		KeyConcepts:     []string{"value-based pricing"},
		Source:          domain.SourceExpertTraining,
		ContextDepth:    3,
		ConfidenceScore: 0.9,
		CreatedAt:       createdAt,
	}
}

func TestKnowledgeUnitRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewKnowledgeUnitRepository(pool)
	expert := createTestExpert(ctx, t, pool)

	unit := newTestUnit(expert.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Upsert(ctx, unit, ""))

	retrieved, err := repo.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, unit.Text, retrieved.Text)
	assert.Equal(t, unit.Topic, retrieved.Topic)
	assert.Equal(t, unit.KeyConcepts, retrieved.KeyConcepts)
	assert.Equal(t, unit.Source, retrieved.Source)
	assert.Equal(t, unit.ContextDepth, retrieved.ContextDepth)
	assert.InDelta(t, unit.ConfidenceScore, retrieved.ConfidenceScore, 0.001)
}

func TestKnowledgeUnitRepository_Upsert_ReplacesExisting(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewKnowledgeUnitRepository(pool)
	expert := createTestExpert(ctx, t, pool)

	unit := newTestUnit(expert.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Upsert(ctx, unit, ""))

	unit.Text = "Revised guidance on pricing anchors."
	unit.ConfidenceScore = 0.95
	require.NoError(t, repo.Upsert(ctx, unit, ""))

	retrieved, err := repo.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revised guidance on pricing anchors.", retrieved.Text)
	assert.InDelta(t, 0.95, retrieved.ConfidenceScore, 0.001)

	count, err := repo.CountByExpert(ctx, expert.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestKnowledgeUnitRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewKnowledgeUnitRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrKnowledgeUnitNotFound)
}

func TestKnowledgeUnitRepository_ListIDsByExpert(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewKnowledgeUnitRepository(pool)
	expert := createTestExpert(ctx, t, pool)
	other := createTestExpert(ctx, t, pool)

	u1 := newTestUnit(expert.ID, time.Now().UTC())
	u2 := newTestUnit(expert.ID, time.Now().UTC())
	u3 := newTestUnit(other.ID, time.Now().UTC())
	require.NoError(t, repo.Upsert(ctx, u1, ""))
	require.NoError(t, repo.Upsert(ctx, u2, ""))
	require.NoError(t, repo.Upsert(ctx, u3, ""))

	ids, err := repo.ListIDsByExpert(ctx, expert.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{u1.ID, u2.ID}, ids)
}

func TestKnowledgeUnitRepository_ListByExpertWithCursor(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewKnowledgeUnitRepository(pool)
	expert := createTestExpert(ctx, t, pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		unit := newTestUnit(expert.ID, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Upsert(ctx, unit, ""))
	}

	page1, err := repo.ListByExpertWithCursor(ctx, expert.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	// Newest first.
	assert.True(t, page1.Items[0].CreatedAt.After(page1.Items[1].CreatedAt))

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListByExpertWithCursor(ctx, expert.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.True(t, page2.HasMore)
	assert.True(t, page1.Items[1].CreatedAt.After(page2.Items[0].CreatedAt))

	cursor, err = pagination.DecodeCursor(page2.NextCursor)
	require.NoError(t, err)

	page3, err := repo.ListByExpertWithCursor(ctx, expert.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
}

func TestKnowledgeUnitRepository_DeleteByDocument(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewKnowledgeUnitRepository(pool)
	expert := createTestExpert(ctx, t, pool)
	doc := createTestDocument(ctx, t, pool, expert.ID)

	docUnit := newTestUnit(expert.ID, time.Now().UTC())
	docUnit.Source = domain.SourceDocument
	chatUnit := newTestUnit(expert.ID, time.Now().UTC())
	require.NoError(t, repo.Upsert(ctx, docUnit, doc.ID))
	require.NoError(t, repo.Upsert(ctx, chatUnit, ""))

	deleted, err := repo.DeleteByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{docUnit.ID}, deleted)

	_, err = repo.GetByID(ctx, docUnit.ID)
	assert.ErrorIs(t, err, domain.ErrKnowledgeUnitNotFound)

	_, err = repo.GetByID(ctx, chatUnit.ID)
	assert.NoError(t, err)
}

func TestKnowledgeUnitRepository_Delete(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	repo := NewKnowledgeUnitRepository(pool)
	expert := createTestExpert(ctx, t, pool)

	unit := newTestUnit(expert.ID, time.Now().UTC())
	require.NoError(t, repo.Upsert(ctx, unit, ""))

	require.NoError(t, repo.Delete(ctx, unit.ID))

	_, err := repo.GetByID(ctx, unit.ID)
	assert.ErrorIs(t, err, domain.ErrKnowledgeUnitNotFound)
}
