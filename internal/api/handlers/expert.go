package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mentora-ai/mentora/internal/api"
	"github.com/mentora-ai/mentora/internal/api/middleware"
	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/service"
)

type ProfileService interface {
	GetProfile(ctx context.Context, expertID string) (*domain.Expert, error)
	UpdateProfile(ctx context.Context, input service.UpdateProfileInput) (*domain.Expert, error)
	KnowledgeAreas(ctx context.Context, expertID string) ([]*domain.KnowledgeArea, error)
}

type ExpertHandler struct {
	svc ProfileService
}

func NewExpertHandler(svc ProfileService) *ExpertHandler {
	return &ExpertHandler{svc: svc}
}

type UpdateProfileRequest struct {
	Name            string   `json:"name"`
	Industry        string   `json:"industry"`
	YearsExperience int      `json:"years_experience"`
	KeySkills       []string `json:"key_skills"`
}

type ExpertResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Industry        string   `json:"industry"`
	YearsExperience int      `json:"years_experience"`
	KeySkills       []string `json:"key_skills"`
	TrainingSummary string   `json:"training_summary,omitempty"`
	ProfileComplete bool     `json:"profile_complete"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

func expertToResponse(e *domain.Expert) *ExpertResponse {
	skills := e.KeySkills
	if skills == nil {
		skills = []string{}
	}
	return &ExpertResponse{
		ID:              e.ID,
		Name:            e.Name,
		Industry:        e.Industry,
		YearsExperience: e.YearsExperience,
		KeySkills:       skills,
		TrainingSummary: e.TrainingSummary,
		ProfileComplete: e.ProfileComplete(),
		CreatedAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       e.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *ExpertHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	expert, err := h.svc.GetProfile(r.Context(), expertID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, expertToResponse(expert))
}

func (h *ExpertHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.YearsExperience < 0 {
		api.Error(w, http.StatusBadRequest, "years_experience cannot be negative")
		return
	}

	expert, err := h.svc.UpdateProfile(r.Context(), service.UpdateProfileInput{
		ExpertID:        expertID,
		Name:            req.Name,
		Industry:        req.Industry,
		YearsExperience: req.YearsExperience,
		KeySkills:       req.KeySkills,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, expertToResponse(expert))
}

type KnowledgeAreaResponse struct {
	Topic       string `json:"topic"`
	Count       int64  `json:"count"`
	FirstSeen   string `json:"first_seen"`
	LastUpdated string `json:"last_updated"`
}

func (h *ExpertHandler) ListKnowledgeAreas(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	areas, err := h.svc.KnowledgeAreas(r.Context(), expertID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*KnowledgeAreaResponse, len(areas))
	for i, a := range areas {
		responses[i] = &KnowledgeAreaResponse{
			Topic:       a.Topic,
			Count:       a.Count,
			FirstSeen:   a.FirstSeen.Format("2006-01-02T15:04:05Z"),
			LastUpdated: a.LastUpdated.Format("2006-01-02T15:04:05Z"),
		}
	}

	api.Success(w, http.StatusOK, responses)
}
