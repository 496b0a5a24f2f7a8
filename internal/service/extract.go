package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/openai"
)

// StructuredExtractionClient defines the interface for schema-constrained
// language model extraction.
type StructuredExtractionClient interface {
	ExtractStructured(ctx context.Context, systemPrompt, input string, schema openai.FunctionSchema, temperature float32) (string, error)
}

const extractionSystemPrompt = `You are a knowledge extraction system. Your only job is to record what the expert literally said.

Rules:
- content MUST be copied verbatim from the expert's answer. Never paraphrase, summarize, or reword.
- Never invent facts the expert did not state.
- confidence_score reflects how directly and completely the answer addresses the question.
- key_concepts are 2 to 5 short topic labels describing the subject matter.
- If the answer contains no substantive expertise, return content as an empty string.`

// recordKnowledgeSchema constrains extraction output to the fields a
// knowledge unit needs.
var recordKnowledgeSchema = openai.FunctionSchema{
	Name:        "record_knowledge",
	Description: "Record a verbatim piece of expert knowledge with metadata",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "Verbatim text copied from the expert's answer",
			},
			"confidence_score": map[string]any{
				"type":        "number",
				"description": "How directly the answer addresses the question, 0.0 to 1.0",
			},
			"key_concepts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2 to 5 short topic labels",
				"minItems":    2,
				"maxItems":    5,
			},
		},
		"required": []string{"content", "confidence_score", "key_concepts"},
	},
}

type extractionResult struct {
	Content         string   `json:"content"`
	ConfidenceScore float64  `json:"confidence_score"`
	KeyConcepts     []string `json:"key_concepts"`
}

// KnowledgeExtractor turns raw expert answers into structured knowledge
// units. Extraction is strictly non-generative: output text must appear
// verbatim in the input or the result is discarded.
type KnowledgeExtractor struct {
	client  StructuredExtractionClient
	uuidGen UUIDGenerator
}

func NewKnowledgeExtractor(client StructuredExtractionClient) *KnowledgeExtractor {
	return &KnowledgeExtractor{client: client, uuidGen: &DefaultUUIDGenerator{}}
}

func NewKnowledgeExtractorWithUUIDGen(client StructuredExtractionClient, uuidGen UUIDGenerator) *KnowledgeExtractor {
	return &KnowledgeExtractor{client: client, uuidGen: uuidGen}
}

// Extract runs structured extraction over an answer given in response to a
// question. Returns nil (no error) when the answer yields no usable
// knowledge: extraction failures degrade to "nothing recorded", they never
// fail the caller's flow.
func (e *KnowledgeExtractor) Extract(ctx context.Context, expertID, question, answer, topic string, contextDepth int) (*domain.KnowledgeUnit, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, nil
	}

	input := "Question: " + question + "\n\nExpert's answer: " + answer

	raw, err := e.client.ExtractStructured(ctx, extractionSystemPrompt, input, recordKnowledgeSchema, 0)
	if err != nil {
		log.Printf("knowledge extraction call failed: %v", err)
		return nil, nil
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("knowledge extraction returned unparseable arguments: %v", err)
		return nil, nil
	}

	content := strings.TrimSpace(result.Content)
	if content == "" {
		return nil, nil
	}

	// Verbatim guard: the model must have copied, not paraphrased. Anything
	// not contained in the original answer is discarded outright.
	if !containsNormalized(answer, content) {
		log.Printf("knowledge extraction discarded: content not found verbatim in answer")
		return nil, nil
	}

	score := result.ConfidenceScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	if contextDepth < domain.MinContextDepth {
		contextDepth = domain.MinContextDepth
	}
	if contextDepth > domain.MaxContextDepth {
		contextDepth = domain.MaxContextDepth
	}

	unit := domain.NewKnowledgeUnit(
		e.uuidGen.NewString(),
		expertID,
		content,
		topic,
		result.KeyConcepts,
		domain.SourceExpertTraining,
		contextDepth,
		score,
		time.Now().UTC(),
	)

	if err := domain.ValidateKnowledgeUnit(unit); err != nil {
		log.Printf("knowledge extraction produced invalid unit: %v", err)
		return nil, nil
	}

	return unit, nil
}

var keyConceptsSchema = openai.FunctionSchema{
	Name:        "record_concepts",
	Description: "Record the key concepts covered by a document passage",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key_concepts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2 to 5 short topic labels",
				"minItems":    2,
				"maxItems":    5,
			},
		},
		"required": []string{"key_concepts"},
	},
}

// ExtractConcepts labels a document passage with key concepts. Returns nil
// on any failure; concept labeling is advisory and never blocks indexing.
func (e *KnowledgeExtractor) ExtractConcepts(ctx context.Context, text string) []string {
	raw, err := e.client.ExtractStructured(ctx,
		"You label document passages with 2 to 5 short topic concepts. Use only subjects actually present in the passage.",
		text, keyConceptsSchema, 0)
	if err != nil {
		log.Printf("concept extraction call failed: %v", err)
		return nil
	}

	var result struct {
		KeyConcepts []string `json:"key_concepts"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("concept extraction returned unparseable arguments: %v", err)
		return nil
	}
	return result.KeyConcepts
}

// containsNormalized reports whether needle appears in haystack after
// collapsing whitespace, tolerating formatting drift in model output.
func containsNormalized(haystack, needle string) bool {
	return strings.Contains(collapseSpace(haystack), collapseSpace(needle))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
