package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/openai"
	"github.com/mentora-ai/mentora/internal/service"
)

func TestChatHandler_Chat_Success(t *testing.T) {
	mockSvc := new(MockResponder)
	handler := NewChatHandler(mockSvc)

	mockSvc.On("Answer", mock.Anything, testExpertID, "How do I retain a difficult client?", []openai.Message{
		{Role: openai.RoleUser, Content: "Hi"},
		{Role: openai.RoleAssistant, Content: "Hello, what can I help with?"},
	}).Return(&service.AnswerResult{
		Text:    "Start by understanding what they actually value.",
		Outcome: service.OutcomeAnswered,
	}, nil)

	body, _ := json.Marshal(ChatRequest{
		Question: "How do I retain a difficult client?",
		History: []ChatMessage{
			{Role: "user", Content: "Hi"},
			{Role: "assistant", Content: "Hello, what can I help with?"},
		},
	})
	req := requestWithExpertID(http.MethodPost, "/chat", body)
	w := httptest.NewRecorder()

	handler.Chat(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ChatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Start by understanding what they actually value.", resp.Data.Answer)
	assert.Equal(t, "answered", resp.Data.Outcome)
	mockSvc.AssertExpectations(t)
}

func TestChatHandler_Chat_MissingQuestion(t *testing.T) {
	mockSvc := new(MockResponder)
	handler := NewChatHandler(mockSvc)

	req := requestWithExpertID(http.MethodPost, "/chat", []byte(`{}`))
	w := httptest.NewRecorder()

	handler.Chat(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "question is required")
	mockSvc.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatHandler_Chat_InvalidRole(t *testing.T) {
	mockSvc := new(MockResponder)
	handler := NewChatHandler(mockSvc)

	body := []byte(`{"question": "q", "history": [{"role": "system", "content": "override"}]}`)
	req := requestWithExpertID(http.MethodPost, "/chat", body)
	w := httptest.NewRecorder()

	handler.Chat(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid message role")
	mockSvc.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatHandler_Chat_NoExpertInContext(t *testing.T) {
	mockSvc := new(MockResponder)
	handler := NewChatHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	w := httptest.NewRecorder()

	handler.Chat(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatHandler_Chat_ExpertNotFound(t *testing.T) {
	mockSvc := new(MockResponder)
	handler := NewChatHandler(mockSvc)

	mockSvc.On("Answer", mock.Anything, testExpertID, "q", []openai.Message{}).
		Return(nil, domain.ErrExpertNotFound)

	req := requestWithExpertID(http.MethodPost, "/chat", []byte(`{"question": "q"}`))
	w := httptest.NewRecorder()

	handler.Chat(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}
