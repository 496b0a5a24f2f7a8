package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mentora-ai/mentora/internal/api"
	"github.com/mentora-ai/mentora/internal/domain"
)

type AuthService interface {
	CreateExpert(ctx context.Context, name string) (*domain.Expert, error)
	CreateAPIKey(ctx context.Context, expertID, name string) (string, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type CreateExpertRequest struct {
	Name string `json:"name"`
}

type CreateAPIKeyRequest struct {
	ExpertID string `json:"expert_id"`
	Name     string `json:"name"`
}

type APIKeyResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

func (h *AuthHandler) CreateExpert(w http.ResponseWriter, r *http.Request) {
	var req CreateExpertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	expert, err := h.svc.CreateExpert(r.Context(), req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, expertToResponse(expert))
}

func (h *AuthHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ExpertID == "" {
		api.Error(w, http.StatusBadRequest, "expert_id is required")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	token, err := h.svc.CreateAPIKey(r.Context(), req.ExpertID, req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, APIKeyResponse{
		Token: token,
		Name:  req.Name,
	})
}
