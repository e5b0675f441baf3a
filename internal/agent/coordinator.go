// File path: internal/agent/coordinator.go
package agent

import (
	"context"
	"fmt"

	"github.com/aastha-batta/course-agent/internal/common"
)

// Outcome is the full result of one workflow run: the initial input, the
// final state, and every intermediate step result keyed by step name.
type Outcome struct {
	Initial State
	Final   State
	Trace   map[string]StepResult
	Order   []string
}

// Coordinator runs a named, ordered list of registered steps, threading each
// step's output state into the next step's input.
type Coordinator struct {
	steps    map[string]Step
	workflow []string
}

func NewCoordinator() *Coordinator {
	return &Coordinator{steps: make(map[string]Step)}
}

// Register adds a step under its own name, replacing any previous step with
// the same name.
func (c *Coordinator) Register(step Step) {
	c.steps[step.Name()] = step
}

// SetWorkflow fixes the order in which registered steps run.
func (c *Coordinator) SetWorkflow(names []string) {
	c.workflow = append([]string(nil), names...)
}

// Run executes the workflow. An unregistered step name is a configuration
// error and fails before any step is invoked. A step's returned error aborts
// the run; steps are expected to absorb service failures into degraded
// results instead.
func (c *Coordinator) Run(ctx context.Context, initial State) (Outcome, error) {
	outcome := Outcome{
		Initial: initial,
		Trace:   make(map[string]StepResult, len(c.workflow)),
	}
	for _, name := range c.workflow {
		if _, registered := c.steps[name]; !registered {
			return Outcome{}, fmt.Errorf("step %q not found in registered steps", name)
		}
	}
	logger := common.Logger()
	current := initial
	for _, name := range c.workflow {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		step := c.steps[name]
		logger.Info("coordinator: delegating", "step", name)
		result, err := step.Process(ctx, current)
		if err != nil {
			return outcome, fmt.Errorf("step %s: %w", name, err)
		}
		if result.Degraded {
			logger.Warn("coordinator: step degraded", "step", name, "notes", result.Notes)
		}
		outcome.Trace[name] = result
		outcome.Order = append(outcome.Order, name)
		current = result.State
	}
	outcome.Final = current
	return outcome, nil
}
