// File path: internal/agent/structurer.go
package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/llm"
)

const defaultWeeks = 6

// Structurer asks the model for a JSON course outline whose module count
// matches the requested duration.
type Structurer struct {
	provider llm.Provider
}

func NewStructurer(provider llm.Provider) *Structurer {
	return &Structurer{provider: provider}
}

func (s *Structurer) Name() string { return "structurer" }

func (s *Structurer) Process(ctx context.Context, state State) (StepResult, error) {
	logger := common.Logger()
	duration := state.CourseDuration
	if strings.TrimSpace(duration) == "" {
		duration = fmt.Sprintf("%d weeks", defaultWeeks)
	}
	weeks := parseWeeks(duration)

	prompt := fmt.Sprintf(`Based on the following research about %q, create a well-structured course outline for a %s course.

RESEARCH:
%s

Your task is to:
1. Create a course title
2. Write a course description
3. Identify exactly %d logical modules (one module per week for a %s course)
4. For each module, create 3-5 lessons
5. Each lesson should have a title and brief description

Format your response as VALID JSON with the following structure, with no extra text before or after:

{
    "title": "Course Title",
    "description": "Course Description",
    "course_duration": "%s",
    "modules": [
        {
            "title": "Module Title",
            "description": "Module Description",
            "duration": "1 week",
            "lessons": [
                {
                    "title": "Lesson Title",
                    "description": "Lesson Description"
                }
            ]
        }
    ]
}

IMPORTANT: Make sure to:
- Create exactly %d modules to match the %s course duration
- Use double quotes for all keys and string values
- Do not include trailing commas
- Make sure the JSON is valid and can be parsed`,
		state.Topic, duration, state.Research, weeks, duration, duration, weeks, duration)

	outline, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		logger.Error("structurer: outline generation failed", "error", err)
		state.Error = fmt.Sprintf("structure generation failed: %v", err)
		return degraded(state, state.Error), nil
	}
	state.Structure = outline
	logger.Info("structurer: outline received", "chars", len(outline), "weeks", weeks)
	return ok(state), nil
}

// parseWeeks reads the leading whitespace-delimited token of the duration as
// an integer. The unit is ignored; an unparseable token yields the default.
func parseWeeks(duration string) int {
	fields := strings.Fields(duration)
	if len(fields) == 0 {
		return defaultWeeks
	}
	weeks, err := strconv.Atoi(fields[0])
	if err != nil || weeks <= 0 {
		return defaultWeeks
	}
	return weeks
}
