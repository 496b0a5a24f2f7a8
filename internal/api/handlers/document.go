package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mentora-ai/mentora/internal/api"
	"github.com/mentora-ai/mentora/internal/api/middleware"
	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/service"
)

type DocumentService interface {
	CreateDocument(ctx context.Context, expertID, filename string) (*service.CreateDocumentOutput, error)
	QueueIngestion(ctx context.Context, expertID, documentID string) (*domain.IngestionJob, error)
	GetDocument(ctx context.Context, expertID, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, expertID string) ([]*domain.Document, error)
	DeleteDocument(ctx context.Context, expertID, documentID string) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type CreateDocumentRequest struct {
	Filename string `json:"filename"`
}

type DocumentResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

type CreateDocumentResponse struct {
	Document  *DocumentResponse `json:"document"`
	UploadURL string            `json:"upload_url"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:         d.ID,
		Filename:   d.Filename,
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	output, err := h.svc.CreateDocument(r.Context(), expertID, req.Filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, CreateDocumentResponse{
		Document:  documentToResponse(output.Document),
		UploadURL: output.UploadURL,
	})
}

type IngestionJobResponse struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
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

	job, err := h.svc.QueueIngestion(r.Context(), expertID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, IngestionJobResponse{
		ID:         job.ID,
		DocumentID: job.DocumentID,
		Status:     string(job.Status),
	})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	doc, err := h.svc.GetDocument(r.Context(), expertID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	expertID := middleware.GetExpertID(r.Context())
	if expertID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := h.svc.ListDocuments(r.Context(), expertID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.DeleteDocument(r.Context(), expertID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}
