package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mentora-ai/mentora/internal/api"
	"github.com/mentora-ai/mentora/internal/api/middleware"
	"github.com/mentora-ai/mentora/internal/openai"
	"github.com/mentora-ai/mentora/internal/service"
)

type Responder interface {
	Answer(ctx context.Context, expertID, question string, history []openai.Message) (*service.AnswerResult, error)
}

type ChatHandler struct {
	svc Responder
}

func NewChatHandler(svc Responder) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Question string        `json:"question"`
	History  []ChatMessage `json:"history"`
}

type ChatResponse struct {
	Answer  string `json:"answer"`
	Outcome string `json:"outcome"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	history := make([]openai.Message, 0, len(req.History))
	for _, m := range req.History {
		role, ok := chatRole(m.Role)
		if !ok {
			api.Error(w, http.StatusBadRequest, "invalid message role")
			return
		}
		history = append(history, openai.Message{Role: role, Content: m.Content})
	}

	result, err := h.svc.Answer(r.Context(), expertID, req.Question, history)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Answer:  result.Text,
		Outcome: string(result.Outcome),
	})
}

func chatRole(role string) (string, bool) {
	switch role {
	case openai.RoleUser, openai.RoleAssistant:
		return role, true
	}
	return "", false
}
