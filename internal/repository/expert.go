package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentora-ai/mentora/internal/domain"
)

type ExpertRepository struct {
	db dbtx
}

func NewExpertRepository(pool *pgxpool.Pool) *ExpertRepository {
	return &ExpertRepository{db: pool}
}

func NewExpertRepositoryWithTx(tx pgx.Tx) *ExpertRepository {
	return &ExpertRepository{db: tx}
}

func (r *ExpertRepository) Create(ctx context.Context, e *domain.Expert) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO experts (id, name, industry, years_experience, key_skills, training_summary, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Name, nullableString(e.Industry), e.YearsExperience, e.KeySkills,
		nullableString(e.TrainingSummary), e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *ExpertRepository) GetByID(ctx context.Context, id string) (*domain.Expert, error) {
	var e domain.Expert
	var industry, summary pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, name, industry, years_experience, key_skills, training_summary, created_at, updated_at
		 FROM experts WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &industry, &e.YearsExperience, &e.KeySkills, &summary, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpertNotFound
		}
		return nil, err
	}
	if industry.Valid {
		e.Industry = industry.String
	}
	if summary.Valid {
		e.TrainingSummary = summary.String
	}
	return &e, nil
}

func (r *ExpertRepository) GetByName(ctx context.Context, name string) (*domain.Expert, error) {
	var e domain.Expert
	var industry, summary pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, name, industry, years_experience, key_skills, training_summary, created_at, updated_at
		 FROM experts WHERE name = $1`,
		name,
	).Scan(&e.ID, &e.Name, &industry, &e.YearsExperience, &e.KeySkills, &summary, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpertNotFound
		}
		return nil, err
	}
	if industry.Valid {
		e.Industry = industry.String
	}
	if summary.Valid {
		e.TrainingSummary = summary.String
	}
	return &e, nil
}

func (r *ExpertRepository) List(ctx context.Context) ([]*domain.Expert, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, industry, years_experience, key_skills, training_summary, created_at, updated_at
		 FROM experts ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experts []*domain.Expert
	for rows.Next() {
		var e domain.Expert
		var industry, summary pgtype.Text
		if err := rows.Scan(&e.ID, &e.Name, &industry, &e.YearsExperience, &e.KeySkills, &summary, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if industry.Valid {
			e.Industry = industry.String
		}
		if summary.Valid {
			e.TrainingSummary = summary.String
		}
		experts = append(experts, &e)
	}
	return experts, rows.Err()
}

func (r *ExpertRepository) Update(ctx context.Context, e *domain.Expert) error {
	e.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE experts SET name = $1, industry = $2, years_experience = $3, key_skills = $4, updated_at = $5
		 WHERE id = $6`,
		e.Name, nullableString(e.Industry), e.YearsExperience, e.KeySkills, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExpertNotFound
	}
	return nil
}

func (r *ExpertRepository) UpdateTrainingSummary(ctx context.Context, expertID, summary string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE experts SET training_summary = $1, updated_at = $2 WHERE id = $3`,
		nullableString(summary), time.Now().UTC(), expertID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExpertNotFound
	}
	return nil
}

// IncrementKnowledgeArea bumps the per-topic coverage counter. Counters are
// advisory; concurrent increments resolve via the upsert, no transaction.
func (r *ExpertRepository) IncrementKnowledgeArea(ctx context.Context, expertID, topic string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_areas (expert_id, topic, count, first_seen, last_updated)
		 VALUES ($1, $2, 1, $3, $3)
		 ON CONFLICT (expert_id, topic) DO UPDATE SET
			count = knowledge_areas.count + 1,
			last_updated = EXCLUDED.last_updated`,
		expertID, topic, now,
	)
	return err
}

func (r *ExpertRepository) GetKnowledgeAreas(ctx context.Context, expertID string) ([]*domain.KnowledgeArea, error) {
	rows, err := r.db.Query(ctx,
		`SELECT expert_id, topic, count, first_seen, last_updated
		 FROM knowledge_areas WHERE expert_id = $1 ORDER BY count DESC, topic`,
		expertID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*domain.KnowledgeArea
	for rows.Next() {
		var a domain.KnowledgeArea
		if err := rows.Scan(&a.ExpertID, &a.Topic, &a.Count, &a.FirstSeen, &a.LastUpdated); err != nil {
			return nil, err
		}
		areas = append(areas, &a)
	}
	return areas, rows.Err()
}

func (r *ExpertRepository) HasKnowledgeAreas(ctx context.Context, expertID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM knowledge_areas WHERE expert_id = $1)`,
		expertID,
	).Scan(&exists)
	return exists, err
}

func (r *ExpertRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM experts WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExpertNotFound
	}
	return nil
}
