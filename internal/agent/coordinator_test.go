// File path: internal/agent/coordinator_test.go
package agent

import (
	"context"
	"testing"
)

type fakeStep struct {
	name    string
	calls   *[]string
	process func(state State) State
}

func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Process(ctx context.Context, state State) (StepResult, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	if f.process != nil {
		state = f.process(state)
	}
	return StepResult{State: state}, nil
}

func TestCoordinatorThreadsStateAndCollectsTrace(t *testing.T) {
	coord := NewCoordinator()
	coord.Register(&fakeStep{name: "s1", process: func(state State) State {
		state.Research = "x"
		return state
	}})
	coord.Register(&fakeStep{name: "s2", process: func(state State) State {
		if state.Research != "x" {
			t.Errorf("s2 should see s1's output, got %q", state.Research)
		}
		state.Structure = "y"
		return state
	}})
	coord.SetWorkflow([]string{"s1", "s2"})

	outcome, err := coord.Run(context.Background(), State{Topic: "golang"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Final.Research != "x" || outcome.Final.Structure != "y" {
		t.Fatalf("final state incomplete: %+v", outcome.Final)
	}
	if outcome.Initial.Topic != "golang" {
		t.Fatalf("initial input not retained: %+v", outcome.Initial)
	}
	s1, ok := outcome.Trace["s1"]
	if !ok || s1.State.Research != "x" || s1.State.Structure != "" {
		t.Fatalf("s1 trace wrong: %+v", s1)
	}
	s2, ok := outcome.Trace["s2"]
	if !ok || s2.State.Structure != "y" {
		t.Fatalf("s2 trace wrong: %+v", s2)
	}
	if len(outcome.Order) != 2 || outcome.Order[0] != "s1" || outcome.Order[1] != "s2" {
		t.Fatalf("order wrong: %v", outcome.Order)
	}
}

func TestCoordinatorUnregisteredStepFailsBeforeAnyWork(t *testing.T) {
	var calls []string
	coord := NewCoordinator()
	coord.Register(&fakeStep{name: "s1", calls: &calls})
	coord.SetWorkflow([]string{"s1", "missing"})

	if _, err := coord.Run(context.Background(), State{}); err == nil {
		t.Fatal("expected an error for the unregistered step")
	}
	if len(calls) != 0 {
		t.Fatalf("no step should run, but saw calls: %v", calls)
	}
}
