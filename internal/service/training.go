package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mentora-ai/mentora/internal/domain"
	"github.com/mentora-ai/mentora/internal/openai"
	"github.com/mentora-ai/mentora/internal/telemetry"
	"github.com/mentora-ai/mentora/internal/vector"
)

const (
	// questionGenRetries bounds language model attempts per question before
	// falling back to a canned phase question.
	questionGenRetries = 3
	questionGenBackoff = 500 * time.Millisecond

	questionTemperature = 0.7
	questionMaxTokens   = 200

	// Topic coverage bands for gap analysis. Topics averaging at or above
	// WellCovered need no more questions; below GapThreshold they are gaps.
	WellCoveredThreshold = 0.7
	GapThreshold         = 0.3

	// recentAnswerContext is how many recent Q&A pairs ground the next
	// question.
	recentAnswerContext = 3
)

// TrainingQuestionRepositoryInterface is the persistence surface for
// generated questions.
type TrainingQuestionRepositoryInterface interface {
	Create(ctx context.Context, q *domain.TrainingQuestion) error
	GetByID(ctx context.Context, id string) (*domain.TrainingQuestion, error)
	SaveAnswer(ctx context.Context, id, answer string, answeredAt time.Time) error
	CountAnswered(ctx context.Context, expertID string) (int, error)
	ListRecentAnswered(ctx context.Context, expertID string, limit int) ([]*domain.TrainingQuestion, error)
	GetLatestUnanswered(ctx context.Context, expertID string) (*domain.TrainingQuestion, error)
}

// TrainingExpertRepository is the expert state question generation reads.
type TrainingExpertRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Expert, error)
	UpdateTrainingSummary(ctx context.Context, expertID, summary string) error
}

// phaseGuidance steers the interviewer model per phase.
var phaseGuidance = map[domain.TrainingPhase]string{
	domain.PhaseBackground:   "Ask about the expert's professional background: career path, roles, industries, formative experiences.",
	domain.PhasePrinciples:   "Ask about the core principles and beliefs that guide the expert's professional decisions.",
	domain.PhaseExpertise:    "Ask about the expert's deepest technical or domain expertise: methods, processes, hard-won specifics.",
	domain.PhaseApplications: "Ask how the expert applies their knowledge in practice: real situations, client work, concrete outcomes.",
	domain.PhaseInsights:     "Ask for the expert's contrarian or non-obvious insights: what they know that most peers get wrong.",
}

// phaseFallbacks are served verbatim when question generation fails.
var phaseFallbacks = map[domain.TrainingPhase]string{
	domain.PhaseBackground:   "Tell me about your professional background. How did you get into your field?",
	domain.PhasePrinciples:   "What core principles guide the way you work?",
	domain.PhaseExpertise:    "What part of your work do you know most deeply? Walk me through how you approach it.",
	domain.PhaseApplications: "Describe a recent situation where you applied your expertise. What did you do and why?",
	domain.PhaseInsights:     "What is something about your field that most people get wrong?",
	domain.PhaseGapAnalysis:  "Is there an area of your expertise we haven't talked about yet? Tell me about it.",
}

// TrainingQuestionGenerator drives the expert interview: fifty structured
// questions across five phases, then open-ended gap analysis targeting the
// thinnest areas of the knowledge base.
type TrainingQuestionGenerator struct {
	questionRepo TrainingQuestionRepositoryInterface
	expertRepo   TrainingExpertRepository
	extractor    *KnowledgeExtractor
	indexer      *KnowledgeIndexer
	vectors      vector.Store
	chat         ChatClient
	uuidGen      UUIDGenerator
	backoff      time.Duration
}

func NewTrainingQuestionGenerator(
	questionRepo TrainingQuestionRepositoryInterface,
	expertRepo TrainingExpertRepository,
	extractor *KnowledgeExtractor,
	indexer *KnowledgeIndexer,
	vectors vector.Store,
	chat ChatClient,
) *TrainingQuestionGenerator {
	return &TrainingQuestionGenerator{
		questionRepo: questionRepo,
		expertRepo:   expertRepo,
		extractor:    extractor,
		indexer:      indexer,
		vectors:      vectors,
		chat:         chat,
		uuidGen:      &DefaultUUIDGenerator{},
		backoff:      questionGenBackoff,
	}
}

// WithUUIDGen overrides UUID generation, for tests.
func (s *TrainingQuestionGenerator) WithUUIDGen(gen UUIDGenerator) *TrainingQuestionGenerator {
	s.uuidGen = gen
	return s
}

// NextQuestion returns the expert's current training question. A pending
// unanswered question is re-served rather than duplicated; otherwise a new
// one is generated for the phase the answer count puts the expert in, and
// persisted before it is returned.
func (s *TrainingQuestionGenerator) NextQuestion(ctx context.Context, expertID string) (*domain.TrainingQuestion, error) {
	ctx, span := telemetry.StartSpan(ctx, "training.next_question", telemetry.SpanAttributes{
		ExpertID:  expertID,
		Operation: "next_question",
	})
	defer span.End()

	pending, err := s.questionRepo.GetLatestUnanswered(ctx, expertID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return pending, nil
	}

	expert, err := s.expertRepo.GetByID(ctx, expertID)
	if err != nil {
		return nil, err
	}

	answered, err := s.questionRepo.CountAnswered(ctx, expertID)
	if err != nil {
		return nil, err
	}

	phase := domain.PhaseForCount(answered)

	var text, topic string
	if phase == domain.PhaseGapAnalysis {
		text, topic = s.generateGapQuestion(ctx, expert)
	} else {
		text = s.generateStructuredQuestion(ctx, expert, phase)
	}

	question := &domain.TrainingQuestion{
		ID:        s.uuidGen.NewString(),
		ExpertID:  expertID,
		Order:     answered + 1,
		Phase:     phase,
		Topic:     topic,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if err := domain.ValidateTrainingQuestion(question); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}

	return question, nil
}

// SubmitAnswer stores the expert's answer then extracts and indexes any
// knowledge it contains. Extraction failure is reported via the recorded
// flag, never as an error: the answer itself is already safe.
func (s *TrainingQuestionGenerator) SubmitAnswer(ctx context.Context, expertID, questionID, answer string) (recorded bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "training.submit_answer", telemetry.SpanAttributes{
		ExpertID:   expertID,
		QuestionID: questionID,
		Operation:  "submit_answer",
	})
	defer span.End()

	if strings.TrimSpace(answer) == "" {
		return false, domain.NewDomainError(domain.ErrCodeValidation, "answer cannot be empty")
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return false, err
	}
	if question.ExpertID != expertID {
		return false, domain.ErrTrainingQuestionNotFound
	}

	if err := s.questionRepo.SaveAnswer(ctx, questionID, answer, time.Now().UTC()); err != nil {
		return false, err
	}

	unit, err := s.extractor.Extract(ctx, expertID, question.Text, answer, question.Topic, contextDepthForPhase(question.Phase))
	if err != nil || unit == nil {
		return false, nil
	}

	if err := s.indexer.Index(ctx, unit, ""); err != nil {
		log.Printf("indexing extracted answer failed for question %s: %v", questionID, err)
		return false, nil
	}

	return true, nil
}

// RefreshTrainingSummary regenerates the expert's short training summary
// from recent answers and stores it on the profile.
func (s *TrainingQuestionGenerator) RefreshTrainingSummary(ctx context.Context, expertID string) (string, error) {
	recent, err := s.questionRepo.ListRecentAnswered(ctx, expertID, 10)
	if err != nil {
		return "", err
	}
	if len(recent) == 0 {
		return "", domain.ErrKnowledgeBaseEmpty
	}

	var b strings.Builder
	for _, q := range recent {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", q.Text, q.Answer)
	}

	summary, err := s.chat.ChatComplete(ctx,
		"Summarize this expert's demonstrated knowledge in 2-3 sentences, third person, based only on the answers below.",
		[]openai.Message{{Role: openai.RoleUser, Content: b.String()}},
		0.3, 200,
	)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamFailure, "training summary generation failed", err)
	}

	summary = strings.TrimSpace(summary)
	if err := s.expertRepo.UpdateTrainingSummary(ctx, expertID, summary); err != nil {
		return "", err
	}

	return summary, nil
}

// generateStructuredQuestion asks the model for the next interview question
// in the given phase, grounded on the most recent answers. After exhausting
// retries it serves the canned phase question.
func (s *TrainingQuestionGenerator) generateStructuredQuestion(ctx context.Context, expert *domain.Expert, phase domain.TrainingPhase) string {
	recent, err := s.questionRepo.ListRecentAnswered(ctx, expert.ID, recentAnswerContext)
	if err != nil {
		log.Printf("recent answer lookup failed for expert %s: %v", expert.ID, err)
		recent = nil
	}

	systemPrompt := s.interviewerPrompt(expert, phase)
	userPrompt := buildRecentContext(recent) +
		"Generate the next interview question. Reply with the question text only."

	for attempt := 0; attempt < questionGenRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoff * time.Duration(attempt))
		}
		text, err := s.chat.ChatComplete(ctx, systemPrompt,
			[]openai.Message{{Role: openai.RoleUser, Content: userPrompt}},
			questionTemperature, questionMaxTokens)
		if err != nil {
			log.Printf("question generation attempt %d failed for expert %s: %v", attempt+1, expert.ID, err)
			continue
		}
		if q := strings.TrimSpace(text); q != "" {
			return q
		}
	}

	return phaseFallbacks[phase]
}

// generateGapQuestion analyzes topic coverage and asks about the weakest
// area. Without a detectable gap it asks the model to deepen an existing
// topic instead.
func (s *TrainingQuestionGenerator) generateGapQuestion(ctx context.Context, expert *domain.Expert) (text, topic string) {
	coverage, err := s.topicScores(ctx, expert.ID)
	if err != nil {
		log.Printf("coverage scan failed for expert %s: %v", expert.ID, err)
		return phaseFallbacks[domain.PhaseGapAnalysis], ""
	}

	gap := firstGap(coverage)
	if gap != "" {
		prompt := fmt.Sprintf(
			"The expert's knowledge base has weak coverage of %q. Generate one interview question that draws out their knowledge of that topic. Reply with the question text only.",
			gap)
		for attempt := 0; attempt < questionGenRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(s.backoff * time.Duration(attempt))
			}
			out, err := s.chat.ChatComplete(ctx, s.interviewerPrompt(expert, domain.PhaseGapAnalysis),
				[]openai.Message{{Role: openai.RoleUser, Content: prompt}},
				questionTemperature, questionMaxTokens)
			if err != nil {
				log.Printf("gap question generation attempt %d failed for expert %s: %v", attempt+1, expert.ID, err)
				continue
			}
			if q := strings.TrimSpace(out); q != "" {
				return q, gap
			}
		}
		return fmt.Sprintf("We've only touched briefly on %s. Can you tell me more about your experience with it?", gap), gap
	}

	return phaseFallbacks[domain.PhaseGapAnalysis], ""
}

// TopicCoverageReport classifies an expert's topics by coverage band.
// Topics averaging at or above WellCoveredThreshold are well covered; below
// GapThreshold they are gaps. Topics between the bands appear only in Scores.
type TopicCoverageReport struct {
	Scores      map[string]float64
	WellCovered []string
	Gaps        []string
}

// TopicCoverage scores every indexed topic and buckets it against the
// coverage bands.
func (s *TrainingQuestionGenerator) TopicCoverage(ctx context.Context, expertID string) (*TopicCoverageReport, error) {
	scores, err := s.topicScores(ctx, expertID)
	if err != nil {
		return nil, err
	}

	report := &TopicCoverageReport{Scores: scores}
	for topic, score := range scores {
		switch {
		case score >= WellCoveredThreshold:
			report.WellCovered = append(report.WellCovered, topic)
		case score < GapThreshold:
			report.Gaps = append(report.Gaps, topic)
		}
	}
	sort.Strings(report.WellCovered)
	sort.Strings(report.Gaps)
	return report, nil
}

// topicScores aggregates the stored confidence of every indexed entry per
// topic. A topic's score is its average confidence.
func (s *TrainingQuestionGenerator) topicScores(ctx context.Context, expertID string) (map[string]float64, error) {
	entries, err := s.vectors.ScanMetadata(ctx, expertID, 0)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, e := range entries {
		topic := e.Metadata.Topic
		if topic == "" {
			topic = "general"
		}
		sums[topic] += e.Score
		counts[topic]++
	}

	coverage := make(map[string]float64, len(sums))
	for topic, sum := range sums {
		coverage[topic] = sum / float64(counts[topic])
	}
	return coverage, nil
}

func (s *TrainingQuestionGenerator) interviewerPrompt(expert *domain.Expert, phase domain.TrainingPhase) string {
	var b strings.Builder
	b.WriteString("You are an expert interviewer building a knowledge base for ")
	b.WriteString(expert.Name)
	if expert.Industry != "" {
		b.WriteString(", who works in ")
		b.WriteString(expert.Industry)
	}
	b.WriteString(". Ask one specific, open-ended question at a time. Never repeat a question already asked.")
	if guidance, ok := phaseGuidance[phase]; ok {
		b.WriteString("\n\nCurrent focus: ")
		b.WriteString(guidance)
	}
	return b.String()
}

func buildRecentContext(recent []*domain.TrainingQuestion) string {
	if len(recent) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent exchanges:\n\n")
	// ListRecentAnswered returns newest first; present oldest first.
	for i := len(recent) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", recent[i].Text, recent[i].Answer)
	}
	return b.String()
}

// firstGap returns the lowest-coverage topic below the gap threshold, or ""
// when every topic is adequately covered. Deterministic pick: lowest score,
// ties broken by topic name.
func firstGap(coverage map[string]float64) string {
	var gap string
	var gapScore float64
	for topic, score := range coverage {
		if score >= GapThreshold {
			continue
		}
		if gap == "" || score < gapScore || (score == gapScore && topic < gap) {
			gap = topic
			gapScore = score
		}
	}
	return gap
}

// contextDepthForPhase maps interview phases to capture depth. Later phases
// probe deeper context.
func contextDepthForPhase(phase domain.TrainingPhase) int {
	switch phase {
	case domain.PhaseBackground:
		return 1
	case domain.PhasePrinciples:
		return 2
	case domain.PhaseExpertise:
		return 3
	case domain.PhaseApplications:
		return 4
	case domain.PhaseInsights, domain.PhaseGapAnalysis:
		return 5
	default:
		return domain.MinContextDepth
	}
}
