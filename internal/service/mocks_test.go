package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/openai"
	"github.com/mentora-ai/mentora/internal/vector"
)

// MockUUIDGenerator returns a fixed sequence of ids.
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChatClient is a mock implementation of ChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) ChatComplete(ctx context.Context, systemPrompt string, history []openai.Message, temperature float32, maxTokens int) (string, error) {
	args := m.Called(ctx, systemPrompt, history, temperature, maxTokens)
	return args.String(0), args.Error(1)
}

// MockStructuredExtractionClient is a mock implementation of StructuredExtractionClient
type MockStructuredExtractionClient struct {
	mock.Mock
}

func (m *MockStructuredExtractionClient) ExtractStructured(ctx context.Context, systemPrompt, input string, schema openai.FunctionSchema, temperature float32) (string, error) {
	args := m.Called(ctx, systemPrompt, input, schema, temperature)
	return args.String(0), args.Error(1)
}

// MockVectorStore is a mock implementation of vector.Store
type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Upsert(ctx context.Context, id string, embedding []float32, meta vector.Metadata) error {
	args := m.Called(ctx, id, embedding, meta)
	return args.Error(0)
}

func (m *MockVectorStore) Query(ctx context.Context, embedding []float32, filter vector.Filter, topK int) ([]vector.Match, error) {
	args := m.Called(ctx, embedding, filter, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vector.Match), args.Error(1)
}

func (m *MockVectorStore) Fetch(ctx context.Context, ids []string) (map[string]vector.Match, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]vector.Match), args.Error(1)
}

func (m *MockVectorStore) Delete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockVectorStore) DeleteByDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockVectorStore) ScanMetadata(ctx context.Context, expertID string, limit int) ([]vector.Match, error) {
	args := m.Called(ctx, expertID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vector.Match), args.Error(1)
}

// MockExpertRepository is a mock implementation of the expert repository
// interfaces consumed by the services.
type MockExpertRepository struct {
	mock.Mock
}

func (m *MockExpertRepository) Create(ctx context.Context, expert *domain.Expert) error {
	args := m.Called(ctx, expert)
	return args.Error(0)
}

func (m *MockExpertRepository) GetByID(ctx context.Context, id string) (*domain.Expert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expert), args.Error(1)
}

func (m *MockExpertRepository) GetByName(ctx context.Context, name string) (*domain.Expert, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expert), args.Error(1)
}

func (m *MockExpertRepository) List(ctx context.Context) ([]*domain.Expert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Expert), args.Error(1)
}

func (m *MockExpertRepository) Update(ctx context.Context, expert *domain.Expert) error {
	args := m.Called(ctx, expert)
	return args.Error(0)
}

func (m *MockExpertRepository) UpdateTrainingSummary(ctx context.Context, expertID, summary string) error {
	args := m.Called(ctx, expertID, summary)
	return args.Error(0)
}

func (m *MockExpertRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpertRepository) IncrementKnowledgeArea(ctx context.Context, expertID, topic string) error {
	args := m.Called(ctx, expertID, topic)
	return args.Error(0)
}

func (m *MockExpertRepository) GetKnowledgeAreas(ctx context.Context, expertID string) ([]*domain.KnowledgeArea, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeArea), args.Error(1)
}

func (m *MockExpertRepository) HasKnowledgeAreas(ctx context.Context, expertID string) (bool, error) {
	args := m.Called(ctx, expertID)
	return args.Bool(0), args.Error(1)
}

// MockKnowledgeUnitRepository is a mock implementation of the knowledge
// unit repository interfaces consumed by the services.
type MockKnowledgeUnitRepository struct {
	mock.Mock
}

func (m *MockKnowledgeUnitRepository) Upsert(ctx context.Context, unit *domain.KnowledgeUnit, documentID string) error {
	args := m.Called(ctx, unit, documentID)
	return args.Error(0)
}

func (m *MockKnowledgeUnitRepository) ListIDsByExpert(ctx context.Context, expertID string) ([]string, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockKnowledgeUnitRepository) DeleteByDocument(ctx context.Context, documentID string) ([]string, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockTrainingQuestionRepository is a mock implementation of TrainingQuestionRepositoryInterface
type MockTrainingQuestionRepository struct {
	mock.Mock
}

func (m *MockTrainingQuestionRepository) Create(ctx context.Context, q *domain.TrainingQuestion) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockTrainingQuestionRepository) GetByID(ctx context.Context, id string) (*domain.TrainingQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingQuestion), args.Error(1)
}

func (m *MockTrainingQuestionRepository) SaveAnswer(ctx context.Context, id, answer string, answeredAt time.Time) error {
	args := m.Called(ctx, id, answer, answeredAt)
	return args.Error(0)
}

func (m *MockTrainingQuestionRepository) CountAnswered(ctx context.Context, expertID string) (int, error) {
	args := m.Called(ctx, expertID)
	return args.Int(0), args.Error(1)
}

func (m *MockTrainingQuestionRepository) ListRecentAnswered(ctx context.Context, expertID string, limit int) ([]*domain.TrainingQuestion, error) {
	args := m.Called(ctx, expertID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrainingQuestion), args.Error(1)
}

func (m *MockTrainingQuestionRepository) GetLatestUnanswered(ctx context.Context, expertID string) (*domain.TrainingQuestion, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingQuestion), args.Error(1)
}

// MockDocumentRepository is a mock implementation of IngestDocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateChunkCount(ctx context.Context, id string, chunkCount int) error {
	args := m.Called(ctx, id, chunkCount)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAPIKeyRepository is a mock implementation of APIKeyRepository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) ListByExpert(ctx context.Context, expertID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, expertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQueryLogRepository is a mock implementation of QueryLogRepository
type MockQueryLogRepository struct {
	mock.Mock
}

func (m *MockQueryLogRepository) CreateQueryLog(ctx context.Context, entry QueryLogEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}
