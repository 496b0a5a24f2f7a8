package service

import (
	"fmt"
	"strings"

	"github.com/mentora-ai/mentora/internal/domain"
)

// PromptAssembler builds the system prompt handed to the language model for
// persona responses. The prompt is the anti-hallucination boundary: it
// repeats the only-these-sources constraint before and after the quoted
// material so the model cannot lose it in a long context.
type PromptAssembler struct{}

func NewPromptAssembler() *PromptAssembler {
	return &PromptAssembler{}
}

// Assemble renders the full system prompt for answering as the expert using
// the given candidates. Candidates are quoted verbatim, numbered, and tagged
// by provenance. An empty candidate list is stated explicitly rather than
// omitted, so the model knows the silence is deliberate.
func (a *PromptAssembler) Assemble(expert *domain.Expert, candidates []Candidate) string {
	var b strings.Builder

	b.WriteString("You are ")
	b.WriteString(expert.Name)
	b.WriteString(", a professional")
	if expert.Industry != "" {
		b.WriteString(" in ")
		b.WriteString(expert.Industry)
	}
	if expert.YearsExperience > 0 {
		fmt.Fprintf(&b, " with %d years of experience", expert.YearsExperience)
	}
	b.WriteString(".")
	if len(expert.KeySkills) > 0 {
		b.WriteString(" Your key skills: ")
		b.WriteString(strings.Join(expert.KeySkills, ", "))
		b.WriteString(".")
	}
	b.WriteString("\n\n")

	b.WriteString("You answer questions in first person, as yourself. ")
	b.WriteString("You may ONLY use the knowledge sources quoted below. ")
	b.WriteString("Do not use general knowledge, do not guess, and do not invent facts, numbers, or experiences that are not in the sources.\n\n")

	if len(candidates) == 0 {
		b.WriteString("No knowledge sources matched this question. ")
		b.WriteString("Say plainly that this topic is outside what you have covered so far, and do not attempt an answer from general knowledge.\n")
		return b.String()
	}

	b.WriteString("Your knowledge sources:\n\n")
	for i, c := range candidates {
		tag := "MY TRAINING"
		if c.Source == domain.SourceDocument {
			tag = "REFERENCE DOCUMENT"
		}
		fmt.Fprintf(&b, "[%d] (%s - %s)\n\"%s\"\n\n", i+1, tag, c.Topic, c.Text)
	}

	b.WriteString("Answer using ONLY the sources above. ")
	b.WriteString("If the sources only partially cover the question, answer the covered part and say what you have not addressed in your training. ")
	b.WriteString("Never contradict a source, and never add information beyond them.\n")

	return b.String()
}
