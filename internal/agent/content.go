// File path: internal/agent/content.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/course"
	"github.com/aastha-batta/course-agent/internal/jsonrepair"
	"github.com/aastha-batta/course-agent/internal/llm"
)

const resourcesMarker = "RESOURCES:"

// ContentGenerator expands the structure outline into full lesson content,
// one model call per lesson, plus one call for course-level references.
type ContentGenerator struct {
	provider llm.Provider
}

func NewContentGenerator(provider llm.Provider) *ContentGenerator {
	return &ContentGenerator{provider: provider}
}

func (g *ContentGenerator) Name() string { return "content_generator" }

func (g *ContentGenerator) Process(ctx context.Context, state State) (StepResult, error) {
	logger := common.Logger()

	parsed, err := jsonrepair.Repair(state.Structure)
	if err != nil {
		logger.Error("content: structure parse failed", "error", err)
		state.Error = fmt.Sprintf("failed to parse course structure JSON: %v", err)
		doc := course.New("Error in structure parsing", "Could not generate content due to structure format issues", state.Topic)
		state.Content = doc
		return degraded(state, state.Error), nil
	}

	doc := course.FromMap(parsed)
	logger.Info("content: structure parsed", "title", doc.Title, "modules", len(doc.Modules))

	var notes []string
	for moduleIdx := range doc.Modules {
		module := &doc.Modules[moduleIdx]
		logger.Info("content: processing module", "module", module.Title)
		for lessonIdx := range module.Lessons {
			lesson := &module.Lessons[lessonIdx]
			if err := ctx.Err(); err != nil {
				return StepResult{}, err
			}
			content, resources, err := g.generateLesson(ctx, state.Topic, module.Title, lesson.Title, lesson.Description)
			if err != nil {
				logger.Warn("content: lesson generation failed", "lesson", lesson.Title, "error", err)
				notes = append(notes, fmt.Sprintf("lesson %q: %v", lesson.Title, err))
				lesson.Content = "Content generation failed for this lesson."
				continue
			}
			lesson.Content = content
			lesson.Resources = resources
		}
	}

	references, err := g.generateReferences(ctx, state.Topic)
	if err != nil {
		logger.Warn("content: reference generation failed", "error", err)
		notes = append(notes, fmt.Sprintf("references: %v", err))
	} else {
		doc.References = references
	}

	state.Content = doc
	logger.Info("content: generation complete", "modules", len(doc.Modules), "references", len(doc.References))
	if len(notes) > 0 {
		state.Error = strings.Join(notes, "; ")
		return degraded(state, notes...), nil
	}
	return ok(state), nil
}

func (g *ContentGenerator) generateLesson(ctx context.Context, topic, moduleTitle, lessonTitle, lessonDescription string) (string, []string, error) {
	prompt := fmt.Sprintf(`Generate detailed educational content for a lesson titled %q which is part of the module %q in a course about %s.

Lesson description: %s

Your task is to create:
1. Comprehensive lesson content (at least 250 words)
2. A list of 3-5 resources for further learning

Format your response as:

CONTENT:
[Your lesson content here]

RESOURCES:
- [Resource 1]
- [Resource 2]
- [Resource 3]`,
		lessonTitle, moduleTitle, topic, lessonDescription)

	response, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return "", nil, err
	}
	content, resources := splitLessonResponse(response)
	return content, resources, nil
}

// splitLessonResponse divides a lesson response on the RESOURCES: marker.
// Every non-blank line after the marker, stripped of one leading hyphen, is
// a resource.
func splitLessonResponse(response string) (string, []string) {
	parts := strings.SplitN(response, resourcesMarker, 2)
	content := strings.TrimSpace(strings.Replace(parts[0], "CONTENT:", "", 1))
	resources := []string{}
	if len(parts) > 1 {
		for _, line := range strings.Split(parts[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
			if line != "" {
				resources = append(resources, line)
			}
		}
	}
	return content, resources
}

func (g *ContentGenerator) generateReferences(ctx context.Context, topic string) ([]string, error) {
	prompt := fmt.Sprintf(`Generate 5-7 academic or professional references for a course on %s.
Each reference should follow standard citation format.`, topic)

	response, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	references := []string{}
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			references = append(references, trimmed)
		}
	}
	return references, nil
}
