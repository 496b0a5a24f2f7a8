package service

import (
	"sort"
	"strings"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/vector"
)

// FilterConfig holds the relevance filter thresholds. Defaults encode the
// platform's tuned values; tests construct variants to probe boundaries.
type FilterConfig struct {
	// ScoreFloor drops matches below any useful similarity.
	ScoreFloor float64
	// MinConfidence drops candidates whose final confidence is too weak to
	// cite as a source.
	MinConfidence float64
	// HighScore marks matches similar enough to relax the length gate.
	HighScore float64
	// TrainingBoost multiplies training-chat similarity scores. First-party
	// statements outrank document chunks at equal similarity.
	TrainingBoost float64
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		ScoreFloor:    0.1,
		MinConfidence: 0.3,
		HighScore:     0.8,
		TrainingBoost: 1.25,
	}
}

// Length gates, in characters and words. Document chunks carry boilerplate
// so they must clear a higher bar; a strong training match may be terse.
const (
	docMinChars = 30
	docMinWords = 6

	strongTrainingMinChars = 15
	strongTrainingMinWords = 3

	defaultMinChars = 20
	defaultMinWords = 4
)

// Candidate is one knowledge match that survived relevance filtering,
// ready for prompt assembly.
type Candidate struct {
	Text            string
	Topic           string
	Score           float64
	ContextDepth    int
	ConfidenceScore float64
	KeyConcepts     []string
	Source          domain.KnowledgeSource
}

// RelevanceFilter prunes raw vector matches down to citable candidates.
type RelevanceFilter struct {
	cfg FilterConfig
}

func NewRelevanceFilter() *RelevanceFilter {
	return &RelevanceFilter{cfg: DefaultFilterConfig()}
}

func NewRelevanceFilterWithConfig(cfg FilterConfig) *RelevanceFilter {
	return &RelevanceFilter{cfg: cfg}
}

// Filter applies the relevance pipeline to each match: similarity floor,
// length gate, source-weighted confidence, confidence floor. Survivors are
// sorted by confidence descending.
func (f *RelevanceFilter) Filter(matches []vector.Match) []Candidate {
	var candidates []Candidate
	for _, m := range matches {
		if c, ok := f.evaluate(m); ok {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ConfidenceScore > candidates[j].ConfidenceScore
	})

	return candidates
}

func (f *RelevanceFilter) evaluate(m vector.Match) (Candidate, bool) {
	if m.Score < f.cfg.ScoreFloor {
		return Candidate{}, false
	}

	// Unknown provenance is treated as training-chat: legacy entries predate
	// the source field and all came from training conversations.
	source := m.Metadata.Source
	if source != domain.SourceDocument {
		source = domain.SourceExpertTraining
	}

	if !f.passesLengthGate(m.Metadata.Text, source, m.Score) {
		return Candidate{}, false
	}

	confidence := m.Score
	if source == domain.SourceExpertTraining {
		confidence = m.Score * f.cfg.TrainingBoost
		if confidence > 1.0 {
			confidence = 1.0
		}
	}

	if confidence < f.cfg.MinConfidence {
		return Candidate{}, false
	}

	return Candidate{
		Text:            m.Metadata.Text,
		Topic:           topicLabel(m.Metadata, source),
		Score:           m.Score,
		ContextDepth:    m.Metadata.ContextDepth,
		ConfidenceScore: confidence,
		KeyConcepts:     m.Metadata.KeyConcepts,
		Source:          source,
	}, true
}

func (f *RelevanceFilter) passesLengthGate(text string, source domain.KnowledgeSource, score float64) bool {
	chars := len([]rune(strings.TrimSpace(text)))
	words := len(strings.Fields(text))

	switch {
	case source == domain.SourceDocument:
		return chars >= docMinChars && words >= docMinWords
	case score > f.cfg.HighScore:
		return chars >= strongTrainingMinChars && words >= strongTrainingMinWords
	default:
		return chars >= defaultMinChars && words >= defaultMinWords
	}
}

// topicLabel renders the source attribution shown in the prompt.
func topicLabel(meta vector.Metadata, source domain.KnowledgeSource) string {
	if source == domain.SourceDocument {
		name := meta.Topic
		if name == "" {
			name = meta.DocumentID
		}
		return "Document: " + name
	}
	if meta.Topic != "" {
		return meta.Topic
	}
	return "Training Chat"
}
