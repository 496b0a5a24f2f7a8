package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mentora-ai/mentora/internal/api"
	"github.com/mentora-ai/mentora/internal/api/middleware"
	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/service"
)

type KnowledgeService interface {
	List(ctx context.Context, input service.ListKnowledgeInput) (*service.ListKnowledgeOutput, error)
	Get(ctx context.Context, expertID, unitID string) (*domain.KnowledgeUnit, error)
	Delete(ctx context.Context, expertID, unitID string) error
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type KnowledgeUnitResponse struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	Topic           string   `json:"topic"`
	KeyConcepts     []string `json:"key_concepts"`
	Source          string   `json:"source"`
	ContextDepth    int      `json:"context_depth"`
	ConfidenceScore float64  `json:"confidence_score"`
	CreatedAt       string   `json:"created_at"`
}

func knowledgeUnitToResponse(u *domain.KnowledgeUnit) *KnowledgeUnitResponse {
	concepts := u.KeyConcepts
	if concepts == nil {
		concepts = []string{}
	}
	return &KnowledgeUnitResponse{
		ID:              u.ID,
		Text:            u.Text,
		Topic:           u.Topic,
		KeyConcepts:     concepts,
		Source:          string(u.Source),
		ContextDepth:    u.ContextDepth,
		ConfidenceScore: u.ConfidenceScore,
		CreatedAt:       u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

type KnowledgeListResponse struct {
	Items   []*KnowledgeUnitResponse `json:"items"`
	Cursor  string                   `json:"cursor,omitempty"`
	HasMore bool                     `json:"has_more"`
	Total   int64                    `json:"total"`
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.List(r.Context(), service.ListKnowledgeInput{
		ExpertID: expertID,
		Cursor:   cursor,
		Limit:    limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*KnowledgeUnitResponse, len(output.Items))
	for i, u := range output.Items {
		responses[i] = knowledgeUnitToResponse(u)
	}

	api.Success(w, http.StatusOK, KnowledgeListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
		Total:   output.Total,
	})
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	unit, err := h.svc.Get(r.Context(), expertID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeUnitToResponse(unit))
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), expertID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
