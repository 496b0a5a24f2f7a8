package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/mentora-ai/mentora/internal/api/middleware"
	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/openai"
	"github.com/mentora-ai/mentora/internal/service"
)

const testExpertID = "expert-456"

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func requestWithExpertID(method, url string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.ExpertIDKey, testExpertID)
	return req.WithContext(ctx)
}

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Answer(ctx context.Context, expertID, question string, history []openai.Message) (*service.AnswerResult, error) {
	args := m.Called(ctx, expertID, question, history)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerResult), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, expertID string) (*domain.Expert, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expert), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, input service.UpdateProfileInput) (*domain.Expert, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expert), args.Error(1)
}

func (m *MockProfileService) KnowledgeAreas(ctx context.Context, expertID string) ([]*domain.KnowledgeArea, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeArea), args.Error(1)
}

type MockTrainingService struct {
	mock.Mock
}

func (m *MockTrainingService) NextQuestion(ctx context.Context, expertID string) (*domain.TrainingQuestion, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingQuestion), args.Error(1)
}

func (m *MockTrainingService) SubmitAnswer(ctx context.Context, expertID, questionID, answer string) (bool, error) {
	args := m.Called(ctx, expertID, questionID, answer)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrainingService) RefreshTrainingSummary(ctx context.Context, expertID string) (string, error) {
	args := m.Called(ctx, expertID)
	return args.String(0), args.Error(1)
}

func (m *MockTrainingService) TopicCoverage(ctx context.Context, expertID string) (*service.TopicCoverageReport, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TopicCoverageReport), args.Error(1)
}

type MockTrainingIngester struct {
	mock.Mock
}

func (m *MockTrainingIngester) IngestTrainingMessage(ctx context.Context, expertID, role, content string) (bool, error) {
	args := m.Called(ctx, expertID, role, content)
	return args.Bool(0), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) CreateDocument(ctx context.Context, expertID, filename string) (*service.CreateDocumentOutput, error) {
	args := m.Called(ctx, expertID, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreateDocumentOutput), args.Error(1)
}

func (m *MockDocumentService) QueueIngestion(ctx context.Context, expertID, documentID string) (*domain.IngestionJob, error) {
	args := m.Called(ctx, expertID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestionJob), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, expertID, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, expertID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, expertID string) ([]*domain.Document, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, expertID, documentID string) error {
	args := m.Called(ctx, expertID, documentID)
	return args.Error(0)
}

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) List(ctx context.Context, input service.ListKnowledgeInput) (*service.ListKnowledgeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListKnowledgeOutput), args.Error(1)
}

func (m *MockKnowledgeService) Get(ctx context.Context, expertID, unitID string) (*domain.KnowledgeUnit, error) {
	args := m.Called(ctx, expertID, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeUnit), args.Error(1)
}

func (m *MockKnowledgeService) Delete(ctx context.Context, expertID, unitID string) error {
	args := m.Called(ctx, expertID, unitID)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateExpert(ctx context.Context, name string) (*domain.Expert, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expert), args.Error(1)
}

func (m *MockAuthService) CreateAPIKey(ctx context.Context, expertID, name string) (string, error) {
	args := m.Called(ctx, expertID, name)
	return args.String(0), args.Error(1)
}
