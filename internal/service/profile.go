package service

import (
	"context"
	"strings"
	"time"

	"github.com/mentora-ai/mentora/internal/domain"
)

// ProfileExpertRepository is the expert state the profile service manages.
type ProfileExpertRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Expert, error)
	Update(ctx context.Context, expert *domain.Expert) error
	GetKnowledgeAreas(ctx context.Context, expertID string) ([]*domain.KnowledgeArea, error)
}

// ProfileService reads and updates an expert's persona profile. The profile
// gates the answer pipeline: until industry and key skills are set, the
// expert refuses questions.
type ProfileService struct {
	expertRepo ProfileExpertRepository
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(expertRepo ProfileExpertRepository) *ProfileService {
	return &ProfileService{expertRepo: expertRepo}
}

// GetProfile returns the expert's profile.
func (s *ProfileService) GetProfile(ctx context.Context, expertID string) (*domain.Expert, error) {
	return s.expertRepo.GetByID(ctx, expertID)
}

// UpdateProfileInput holds the editable profile fields.
type UpdateProfileInput struct {
	ExpertID        string
	Name            string
	Industry        string
	YearsExperience int
	KeySkills       []string
}

// UpdateProfile overwrites the expert's persona fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.Expert, error) {
	if input.YearsExperience < 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "years_experience cannot be negative")
	}

	expert, err := s.expertRepo.GetByID(ctx, input.ExpertID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		expert.Name = name
	}
	expert.Industry = strings.TrimSpace(input.Industry)
	expert.YearsExperience = input.YearsExperience

	skills := make([]string, 0, len(input.KeySkills))
	for _, skill := range input.KeySkills {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	expert.KeySkills = skills
	expert.UpdatedAt = time.Now().UTC()

	if err := s.expertRepo.Update(ctx, expert); err != nil {
		return nil, err
	}

	return expert, nil
}

// KnowledgeAreas returns the expert's per-topic coverage counters.
func (s *ProfileService) KnowledgeAreas(ctx context.Context, expertID string) ([]*domain.KnowledgeArea, error) {
	return s.expertRepo.GetKnowledgeAreas(ctx, expertID)
}
