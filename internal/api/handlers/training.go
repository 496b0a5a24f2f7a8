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

type TrainingService interface {
	NextQuestion(ctx context.Context, expertID string) (*domain.TrainingQuestion, error)
	SubmitAnswer(ctx context.Context, expertID, questionID, answer string) (bool, error)
	RefreshTrainingSummary(ctx context.Context, expertID string) (string, error)
	TopicCoverage(ctx context.Context, expertID string) (*service.TopicCoverageReport, error)
}

type TrainingMessageIngester interface {
	IngestTrainingMessage(ctx context.Context, expertID, role, content string) (bool, error)
}

type TrainingHandler struct {
	svc      TrainingService
	ingester TrainingMessageIngester
}

func NewTrainingHandler(svc TrainingService, ingester TrainingMessageIngester) *TrainingHandler {
	return &TrainingHandler{svc: svc, ingester: ingester}
}

type TrainingQuestionResponse struct {
	ID         string `json:"id"`
	Order      int    `json:"order"`
	Phase      string `json:"phase"`
	Topic      string `json:"topic,omitempty"`
	Text       string `json:"text"`
	Answer     string `json:"answer,omitempty"`
	AnsweredAt string `json:"answered_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func trainingQuestionToResponse(q *domain.TrainingQuestion) *TrainingQuestionResponse {
	resp := &TrainingQuestionResponse{
		ID:        q.ID,
		Order:     q.Order,
		Phase:     string(q.Phase),
		Topic:     q.Topic,
		Text:      q.Text,
		Answer:    q.Answer,
		CreatedAt: q.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if q.AnsweredAt != nil {
		resp.AnsweredAt = q.AnsweredAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

func (h *TrainingHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	question, err := h.svc.NextQuestion(r.Context(), expertID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, trainingQuestionToResponse(question))
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type SubmitAnswerResponse struct {
	Recorded bool `json:"recorded"`
}

func (h *TrainingHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.QuestionID == "" {
		api.Error(w, http.StatusBadRequest, "question_id is required")
		return
	}
	if req.Answer == "" {
		api.Error(w, http.StatusBadRequest, "answer is required")
		return
	}

	recorded, err := h.svc.SubmitAnswer(r.Context(), expertID, req.QuestionID, req.Answer)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SubmitAnswerResponse{Recorded: recorded})
}

type TrainingMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TrainingMessageResponse struct {
	Extracted bool `json:"extracted"`
}

func (h *TrainingHandler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TrainingMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Role == "" {
		api.Error(w, http.StatusBadRequest, "role is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	extracted, err := h.ingester.IngestTrainingMessage(r.Context(), expertID, req.Role, req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, TrainingMessageResponse{Extracted: extracted})
}

type TrainingSummaryResponse struct {
	Summary string `json:"summary"`
}

func (h *TrainingHandler) RefreshSummary(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.svc.RefreshTrainingSummary(r.Context(), expertID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, TrainingSummaryResponse{Summary: summary})
}

type TopicCoverageResponse struct {
	Coverage    map[string]float64 `json:"coverage"`
	WellCovered []string           `json:"well_covered"`
	Gaps        []string           `json:"gaps"`
}

func (h *TrainingHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.svc.TopicCoverage(r.Context(), expertID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, TopicCoverageResponse{
		Coverage:    report.Scores,
		WellCovered: report.WellCovered,
		Gaps:        report.Gaps,
	})
}
