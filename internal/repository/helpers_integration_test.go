//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/testutil"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)

	return pool
}

func createTestExpert(ctx context.Context, t *testing.T, pool *pgxpool.Pool) *domain.Expert {
	t.Helper()

	expert := &domain.Expert{
		ID:        uuid.NewString(),
		Name:      "Expert " + uuid.NewString()[:8],
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewExpertRepository(pool).Create(ctx, expert))
	return expert
}

func createTestDocument(ctx context.Context, t *testing.T, pool *pgxpool.Pool, expertID string) *domain.Document {
	t.Helper()

	id := uuid.NewString()
	doc := &domain.Document{
		ID:         id,
		ExpertID:   expertID,
		Filename:   "notes.pdf",
		StorageKey: "documents/" + id + ".txt",
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewDocumentRepository(pool).Create(ctx, doc))
	return doc
}
