// File path: internal/agent/researcher.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/llm"
	"github.com/aastha-batta/course-agent/internal/research"
)

const (
	maxWebSummaries      = 3
	maxAcademicSummaries = 2
	sourceSnippetRunes   = 500
)

// Researcher gathers web and academic sources for the topic and asks the
// model for a synthesis across five fixed aspects.
type Researcher struct {
	provider llm.Provider
	gateway  ResearchGateway
}

func NewResearcher(provider llm.Provider, gateway ResearchGateway) *Researcher {
	return &Researcher{provider: provider, gateway: gateway}
}

func (r *Researcher) Name() string { return "researcher" }

func (r *Researcher) Process(ctx context.Context, state State) (StepResult, error) {
	logger := common.Logger()
	logger.Info("researcher: gathering sources", "topic", state.Topic, "depth", state.Depth)

	var notes []string
	webSummaries := "Error retrieving web sources."
	academicSummaries := "Error retrieving academic sources."
	gathered, err := r.gateway.Gather(ctx, state.Topic, state.Depth)
	if err != nil {
		logger.Error("researcher: gather failed", "error", err)
		notes = append(notes, fmt.Sprintf("research gathering failed: %v", err))
	} else {
		webSummaries = summarizeSources("SOURCE", gathered.WebSources, maxWebSummaries)
		academicSummaries = summarizeSources("ACADEMIC SOURCE", gathered.AcademicSources, maxAcademicSummaries)
		state.ResearchSources = SourceRefs{
			Web:      trimSources(gathered.WebSources),
			Academic: trimSources(gathered.AcademicSources),
		}
		logger.Info("researcher: sources gathered", "web", len(gathered.WebSources), "academic", len(gathered.AcademicSources))
	}

	prompt := fmt.Sprintf(`You are a thorough researcher creating educational content about %s at a %s level.

Here are some web sources about the topic:
%s

Here are some academic sources about the topic:
%s

Based on these sources and your knowledge, research the following aspects:
1. Core concepts and fundamentals of %s
2. Latest developments and advancements
3. Practical applications
4. Common challenges and solutions
5. Resources for further learning

Provide a comprehensive research summary that could be used to create an educational course.
Structure your response with clear headings for each section.`,
		state.Topic, state.Depth, webSummaries, academicSummaries, state.Topic)

	synthesis, err := r.provider.Complete(ctx, prompt)
	if err != nil {
		logger.Error("researcher: synthesis failed", "error", err)
		state.Research = "Research synthesis unavailable."
		state.Error = fmt.Sprintf("research synthesis failed: %v", err)
		return degraded(state, append(notes, state.Error)...), nil
	}
	state.Research = synthesis
	logger.Info("researcher: synthesis complete", "chars", len(synthesis))
	if len(notes) > 0 {
		return degraded(state, notes...), nil
	}
	return ok(state), nil
}

func summarizeSources(label string, sources []research.Source, limit int) string {
	if limit > len(sources) {
		limit = len(sources)
	}
	parts := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		source := sources[i]
		parts = append(parts, fmt.Sprintf("%s %d: %s\n%s...", label, i+1, source.Title, snippet(source.Content, sourceSnippetRunes)))
	}
	return strings.Join(parts, "\n\n")
}

func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func trimSources(sources []research.Source) []SourceRef {
	refs := make([]SourceRef, 0, len(sources))
	for _, source := range sources {
		refs = append(refs, SourceRef{Title: source.Title, URL: source.URL})
	}
	return refs
}
