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

type TrainingQuestionRepository struct {
	db dbtx
}

func NewTrainingQuestionRepository(pool *pgxpool.Pool) *TrainingQuestionRepository {
	return &TrainingQuestionRepository{db: pool}
}

func NewTrainingQuestionRepositoryWithTx(tx pgx.Tx) *TrainingQuestionRepository {
	return &TrainingQuestionRepository{db: tx}
}

func (r *TrainingQuestionRepository) Create(ctx context.Context, q *domain.TrainingQuestion) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO training_questions (id, expert_id, question_order, phase, topic, text, answer, answered_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		q.ID, q.ExpertID, q.Order, q.Phase, nullableString(q.Topic), q.Text,
		nullableString(q.Answer), q.AnsweredAt, q.CreatedAt,
	)
	return err
}

func (r *TrainingQuestionRepository) GetByID(ctx context.Context, id string) (*domain.TrainingQuestion, error) {
	var q domain.TrainingQuestion
	var topic, answer pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, expert_id, question_order, phase, topic, text, answer, answered_at, created_at
		 FROM training_questions WHERE id = $1`,
		id,
	).Scan(&q.ID, &q.ExpertID, &q.Order, &q.Phase, &topic, &q.Text, &answer, &q.AnsweredAt, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTrainingQuestionNotFound
		}
		return nil, err
	}
	if topic.Valid {
		q.Topic = topic.String
	}
	if answer.Valid {
		q.Answer = answer.String
	}
	return &q, nil
}

// SaveAnswer stores the expert's answer. Answering an already-answered
// question is rejected so the answered counter stays consistent.
func (r *TrainingQuestionRepository) SaveAnswer(ctx context.Context, id, answer string, answeredAt time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE training_questions SET answer = $1, answered_at = $2
		 WHERE id = $3 AND answered_at IS NULL`,
		answer, answeredAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if existing.Answered() {
			return domain.ErrQuestionAlreadyAnswered
		}
		return domain.ErrTrainingQuestionNotFound
	}
	return nil
}

func (r *TrainingQuestionRepository) CountAnswered(ctx context.Context, expertID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM training_questions WHERE expert_id = $1 AND answered_at IS NOT NULL`,
		expertID,
	).Scan(&count)
	return count, err
}

// ListRecentAnswered returns the most recently answered questions, newest
// first. Question generation uses the last few as conversation context.
func (r *TrainingQuestionRepository) ListRecentAnswered(ctx context.Context, expertID string, limit int) ([]*domain.TrainingQuestion, error) {
	if limit <= 0 {
		limit = 3
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, expert_id, question_order, phase, topic, text, answer, answered_at, created_at
		 FROM training_questions
		 WHERE expert_id = $1 AND answered_at IS NOT NULL
		 ORDER BY answered_at DESC
		 LIMIT $2`,
		expertID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*domain.TrainingQuestion
	for rows.Next() {
		var q domain.TrainingQuestion
		var topic, answer pgtype.Text
		if err := rows.Scan(&q.ID, &q.ExpertID, &q.Order, &q.Phase, &topic, &q.Text, &answer, &q.AnsweredAt, &q.CreatedAt); err != nil {
			return nil, err
		}
		if topic.Valid {
			q.Topic = topic.String
		}
		if answer.Valid {
			q.Answer = answer.String
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}

// GetLatestUnanswered returns the most recent open question so a repeated
// "next question" call hands back the same pending question instead of
// generating a duplicate. Returns nil, nil when no question is pending.
func (r *TrainingQuestionRepository) GetLatestUnanswered(ctx context.Context, expertID string) (*domain.TrainingQuestion, error) {
	var q domain.TrainingQuestion
	var topic, answer pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, expert_id, question_order, phase, topic, text, answer, answered_at, created_at
		 FROM training_questions
		 WHERE expert_id = $1 AND answered_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT 1`,
		expertID,
	).Scan(&q.ID, &q.ExpertID, &q.Order, &q.Phase, &topic, &q.Text, &answer, &q.AnsweredAt, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if topic.Valid {
		q.Topic = topic.String
	}
	if answer.Valid {
		q.Answer = answer.String
	}
	return &q, nil
}
