package service

import (
	"context"
	"log"
	"strings"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/openai"
	"github.com/mentora-ai/mentora/internal/telemetry"
)

// Outcome identifies which branch of the answer pipeline produced the
// response. Every outcome still carries natural-language text for the end
// user; the code lets callers and logs tell an empty knowledge base apart
// from an upstream outage.
type Outcome string

const (
	OutcomeAnswered            Outcome = "answered"
	OutcomeProfileIncomplete   Outcome = "profile_incomplete"
	OutcomeNoKnowledgeBase     Outcome = "no_knowledge_base"
	OutcomeNoRelevantKnowledge Outcome = "no_relevant_knowledge"
	OutcomeUpstreamError       Outcome = "upstream_error"
)

// AnswerResult is the terminal state of one answer pipeline run.
type AnswerResult struct {
	Text    string
	Outcome Outcome
}

const (
	answerTemperature   = 0.3
	answerMaxTokens     = 1000
	upstreamApology     = "I'm sorry, I'm having trouble forming a response right now. Please try again in a moment."
	profileIncompleteMsg = "My profile isn't set up yet. Once my industry and key skills are filled in, I'll be able to answer as myself."
)

// ResponderExpertRepository is the expert state the answer pipeline reads.
type ResponderExpertRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Expert, error)
	HasKnowledgeAreas(ctx context.Context, expertID string) (bool, error)
	GetKnowledgeAreas(ctx context.Context, expertID string) ([]*domain.KnowledgeArea, error)
}

// ChatClient defines the interface for persona text generation.
type ChatClient interface {
	ChatComplete(ctx context.Context, systemPrompt string, history []openai.Message, temperature float32, maxTokens int) (string, error)
}

// ResponseGenerator runs the full answer pipeline: readiness checks,
// retrieval, relevance filtering, prompt assembly, generation. Each guard
// short-circuits to a fixed natural-language response; the language model is
// only invoked when citable knowledge exists.
type ResponseGenerator struct {
	expertRepo ResponderExpertRepository
	retriever  *KnowledgeRetriever
	filter     *RelevanceFilter
	assembler  *PromptAssembler
	chat       ChatClient
}

func NewResponseGenerator(
	expertRepo ResponderExpertRepository,
	retriever *KnowledgeRetriever,
	filter *RelevanceFilter,
	assembler *PromptAssembler,
	chat ChatClient,
) *ResponseGenerator {
	return &ResponseGenerator{
		expertRepo: expertRepo,
		retriever:  retriever,
		filter:     filter,
		assembler:  assembler,
		chat:       chat,
	}
}

// Answer produces the expert persona's response to a question. The returned
// error is reserved for persistence-level failures; every expected state,
// including upstream outages, resolves to a result with user-facing text.
func (s *ResponseGenerator) Answer(ctx context.Context, expertID, question string, history []openai.Message) (*AnswerResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "responder.answer", telemetry.SpanAttributes{
		ExpertID:  expertID,
		Operation: "answer",
	})
	defer span.End()

	expert, err := s.expertRepo.GetByID(ctx, expertID)
	if err != nil {
		return nil, err
	}

	if !expert.ProfileComplete() {
		return &AnswerResult{Text: profileIncompleteMsg, Outcome: OutcomeProfileIncomplete}, nil
	}

	hasKnowledge, err := s.expertRepo.HasKnowledgeAreas(ctx, expertID)
	if err != nil {
		return nil, err
	}
	if !hasKnowledge {
		return &AnswerResult{
			Text:    "I haven't recorded any of my knowledge yet. Ask me again once my training has started.",
			Outcome: OutcomeNoKnowledgeBase,
		}, nil
	}

	matches, err := s.retriever.Retrieve(ctx, expertID, question)
	if err != nil {
		log.Printf("retrieval failed for expert %s: %v", expertID, err)
		return &AnswerResult{Text: upstreamApology, Outcome: OutcomeUpstreamError}, nil
	}

	candidates := s.filter.Filter(matches)

	if len(candidates) == 0 {
		return &AnswerResult{Text: s.noKnowledgeResponse(ctx, expertID), Outcome: OutcomeNoRelevantKnowledge}, nil
	}

	systemPrompt := s.assembler.Assemble(expert, candidates)

	messages := append([]openai.Message{}, history...)
	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: question})

	text, err := s.chat.ChatComplete(ctx, systemPrompt, messages, answerTemperature, answerMaxTokens)
	if err != nil {
		log.Printf("generation failed for expert %s: %v", expertID, err)
		return &AnswerResult{Text: upstreamApology, Outcome: OutcomeUpstreamError}, nil
	}

	return &AnswerResult{Text: text, Outcome: OutcomeAnswered}, nil
}

// noKnowledgeResponse tells the user the question is outside the expert's
// recorded knowledge, listing known topic areas when available. Built
// without a model call: with nothing to cite there is nothing to generate.
func (s *ResponseGenerator) noKnowledgeResponse(ctx context.Context, expertID string) string {
	areas, err := s.expertRepo.GetKnowledgeAreas(ctx, expertID)
	if err != nil {
		log.Printf("knowledge area lookup failed for expert %s: %v", expertID, err)
		areas = nil
	}

	if len(areas) == 0 {
		return "I haven't been trained on that yet, so I can't give you a reliable answer."
	}

	topics := make([]string, 0, len(areas))
	for _, a := range areas {
		topics = append(topics, a.Topic)
		if len(topics) == 5 {
			break
		}
	}

	return "I haven't been trained on that topic yet. The areas I can speak to so far are: " +
		strings.Join(topics, ", ") + "."
}
