// File path: internal/agent/validator.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/llm"
)

const (
	maxValidatedModules = 2
	lessonReviewRunes   = 1000
)

// Validator reviews the generated course: one course-level review, one
// sample-lesson review for each of the first two modules, and one
// cross-module consistency check. Feedback lands in the state's validation
// notes; the content itself is passed through unchanged, mirroring the
// source system (see DESIGN.md).
type Validator struct {
	provider llm.Provider
}

func NewValidator(provider llm.Provider) *Validator {
	return &Validator{provider: provider}
}

func (v *Validator) Name() string { return "validator" }

func (v *Validator) Process(ctx context.Context, state State) (StepResult, error) {
	logger := common.Logger()
	if state.Content == nil {
		logger.Warn("validator: no content to review")
		return degraded(state, "no content structure to validate"), nil
	}
	doc := state.Content

	var notes []string

	coursePrompt := fmt.Sprintf(`You are a quality assurance expert for educational content. Review this course on %q with the title %q and description: %q.

Evaluate:
1. Is the course title clear and accurately reflects the content?
2. Is the course description comprehensive and engaging?
3. Does the overall structure make logical sense for the topic?

Provide your assessment and suggest specific improvements.`,
		state.Topic, doc.Title, doc.Description)
	if feedback, err := v.provider.Complete(ctx, coursePrompt); err != nil {
		logger.Warn("validator: course review failed", "error", err)
		notes = append(notes, fmt.Sprintf("course review: %v", err))
	} else {
		state.ValidationNotes = append(state.ValidationNotes, ValidationNote{Type: "course_level", Feedback: feedback})
	}

	limit := maxValidatedModules
	if limit > len(doc.Modules) {
		limit = len(doc.Modules)
	}
	for i := 0; i < limit; i++ {
		module := doc.Modules[i]
		logger.Info("validator: reviewing module", "module", module.Title)
		if len(module.Lessons) == 0 {
			state.ValidationNotes = append(state.ValidationNotes, ValidationNote{
				Type:     "module_issue",
				Module:   module.Title,
				Feedback: fmt.Sprintf("Module %q has no lessons", module.Title),
			})
			continue
		}
		sample := module.Lessons[0]
		lessonPrompt := fmt.Sprintf(`Review this lesson titled %q from the module %q in a course about %s.

Lesson content:
%s... (truncated for brevity)

Evaluate:
1. Content accuracy: Is the information correct and up-to-date?
2. Content completeness: Does it cover the topic thoroughly?
3. Instructional quality: Is it clear and easy to understand?
4. Engagement: Will it keep learners interested?

Provide specific suggestions for improvement.`,
			sample.Title, module.Title, state.Topic, snippet(sample.Content, lessonReviewRunes))
		if feedback, err := v.provider.Complete(ctx, lessonPrompt); err != nil {
			logger.Warn("validator: lesson review failed", "lesson", sample.Title, "error", err)
			notes = append(notes, fmt.Sprintf("lesson review %q: %v", sample.Title, err))
		} else {
			state.ValidationNotes = append(state.ValidationNotes, ValidationNote{
				Type:     "lesson_level",
				Module:   module.Title,
				Lesson:   sample.Title,
				Feedback: feedback,
			})
		}
	}

	titles := make([]string, 0, len(doc.Modules))
	for _, module := range doc.Modules {
		titles = append(titles, module.Title)
	}
	consistencyPrompt := fmt.Sprintf(`Review the module structure for this course on %q:

%s

Evaluate:
1. Do the modules flow logically from one to the next?
2. Is there any redundancy or gaps in the curriculum?
3. Is the difficulty progression appropriate?

Provide feedback on the overall course structure.`,
		state.Topic, strings.Join(titles, "\n"))
	if feedback, err := v.provider.Complete(ctx, consistencyPrompt); err != nil {
		logger.Warn("validator: consistency review failed", "error", err)
		notes = append(notes, fmt.Sprintf("consistency review: %v", err))
	} else {
		state.ValidationNotes = append(state.ValidationNotes, ValidationNote{Type: "structure_level", Feedback: feedback})
	}

	logger.Info("validator: review complete", "notes", len(state.ValidationNotes))
	if len(notes) > 0 {
		return degraded(state, notes...), nil
	}
	return ok(state), nil
}
