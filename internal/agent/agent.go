// File path: internal/agent/agent.go
package agent

import (
	"context"

	"github.com/aastha-batta/course-agent/internal/course"
	"github.com/aastha-batta/course-agent/internal/research"
)

// SourceRef is the trimmed (title + url) form of a research source kept in
// the pipeline state after the full snippets have been folded into a prompt.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SourceRefs groups trimmed sources by provider family.
type SourceRefs struct {
	Web      []SourceRef `json:"web"`
	Academic []SourceRef `json:"academic"`
}

// ValidationNote is one piece of reviewer feedback produced by the validate
// step. Notes stay in the pipeline state; they are not folded back into the
// course content (see DESIGN.md).
type ValidationNote struct {
	Type     string `json:"type"`
	Module   string `json:"module,omitempty"`
	Lesson   string `json:"lesson,omitempty"`
	Feedback string `json:"feedback"`
}

// State is the typed record threaded through the workflow. Steps read the
// fields they need and set the fields they produce; nothing is ever cleared.
type State struct {
	Topic          string `json:"topic"`
	Depth          string `json:"depth"`
	TargetAudience string `json:"target_audience"`
	CourseDuration string `json:"course_duration"`

	Research        string           `json:"research,omitempty"`
	ResearchSources SourceRefs       `json:"research_sources,omitempty"`
	Structure       string           `json:"structure,omitempty"`
	Content         *course.Document `json:"content_structure,omitempty"`
	ValidationNotes []ValidationNote `json:"validation_notes,omitempty"`

	// Error records the most recent step-local failure. A set Error does
	// not stop the pipeline; it marks the produced data as degraded.
	Error string `json:"error,omitempty"`
}

// StepResult is a step's output: the updated state plus an explicit
// degradation marker so callers can tell thin-but-successful output from a
// silent partial failure.
type StepResult struct {
	State    State
	Degraded bool
	Notes    []string
}

func ok(state State) StepResult {
	return StepResult{State: state}
}

func degraded(state State, notes ...string) StepResult {
	return StepResult{State: state, Degraded: true, Notes: notes}
}

// Step is one unit of the generation workflow.
type Step interface {
	Name() string
	Process(ctx context.Context, state State) (StepResult, error)
}

// ResearchGateway is the slice of the research service the researcher step
// depends on.
type ResearchGateway interface {
	Gather(ctx context.Context, topic, depth string) (research.Research, error)
}
