// File path: internal/task/manager_test.go
package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aastha-batta/course-agent/internal/research"
)

type promptProvider struct {
	outline string
}

func (p *promptProvider) Complete(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "course outline"):
		return p.outline, nil
	case strings.Contains(prompt, "Generate detailed educational content"):
		return "CONTENT:\nLesson body.\nRESOURCES:\n- Resource one\n", nil
	case strings.Contains(prompt, "references"):
		return "Reference one\nReference two", nil
	default:
		return "Looks good.", nil
	}
}

func (p *promptProvider) Name() string { return "prompt-stub" }

type noopGateway struct{}

func (noopGateway) Gather(ctx context.Context, topic, depth string) (research.Research, error) {
	return research.Research{
		Topic: topic,
		Depth: depth,
		WebSources: []research.Source{
			{Title: "Overview", Content: "overview text", URL: "https://example.com/overview"},
		},
	}, nil
}

const outlineTwoModules = `{
  "title": "Go in Two Weeks",
  "description": "A compact course",
  "course_duration": "2 weeks",
  "modules": [
    {"title": "Week One", "description": "d", "duration": "1 week",
     "lessons": [{"title": "Start", "description": "ld"}]},
    {"title": "Week Two", "description": "d", "duration": "1 week",
     "lessons": [{"title": "Finish", "description": "ld"}]}
  ]
}`

func newTestManager(t *testing.T, outline string) *Manager {
	t.Helper()
	store := newTestStore(t)
	manager, err := NewManager(store, &promptProvider{outline: outline}, noopGateway{}, t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func waitForTerminal(t *testing.T, manager *Manager, id string) Record {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := manager.Status(context.Background(), id)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if record.Status == StatusCompleted || record.Status == StatusFailed {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal status", id)
	return Record{}
}

func TestManagerGeneratesCourse(t *testing.T) {
	manager := newTestManager(t, outlineTwoModules)
	ctx := context.Background()

	id, err := manager.StartGeneration(ctx, Request{Topic: "golang", CourseDuration: "2 weeks"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	record := waitForTerminal(t, manager, id)
	if record.Status != StatusCompleted {
		t.Fatalf("expected completion, got %s (%s)", record.Status, record.Error)
	}
	if record.Depth != "beginner" || record.TargetAudience != "General audience" {
		t.Fatalf("defaults not applied: %+v", record)
	}

	doc, err := manager.CourseDocument(ctx, id)
	if err != nil {
		t.Fatalf("course document: %v", err)
	}
	if doc["title"] != "Go in Two Weeks" {
		t.Fatalf("unexpected title: %v", doc["title"])
	}
	modules, ok := doc["modules"].([]interface{})
	if !ok || len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %v", doc["modules"])
	}
	results, ok := doc["validation_results"].(map[string]interface{})
	if !ok {
		t.Fatal("validation_results missing")
	}
	if _, ok := results["reviews"]; !ok {
		t.Fatal("validator feedback missing from validation_results")
	}

	payload, err := manager.StatusPayload(ctx, id)
	if err != nil {
		t.Fatalf("status payload: %v", err)
	}
	if payload["course_title"] != "Go in Two Weeks" || payload["modules_count"] != 2 {
		t.Fatalf("payload missing course summary: %v", payload)
	}
	if payload["download_url"] != "/api/courses/"+id+"/download" {
		t.Fatalf("unexpected download url: %v", payload["download_url"])
	}
}

func TestManagerPadsModulesOnBrokenOutline(t *testing.T) {
	manager := newTestManager(t, "not json in any way")
	ctx := context.Background()

	id, err := manager.StartGeneration(ctx, Request{Topic: "golang", CourseDuration: "3 weeks"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	record := waitForTerminal(t, manager, id)
	if record.Status != StatusCompleted {
		t.Fatalf("broken outline should still complete, got %s (%s)", record.Status, record.Error)
	}

	doc, err := manager.CourseDocument(ctx, id)
	if err != nil {
		t.Fatalf("course document: %v", err)
	}
	title, _ := doc["title"].(string)
	if !strings.Contains(strings.ToLower(title), "error") {
		t.Fatalf("title should flag the parse failure: %q", title)
	}
	modules, _ := doc["modules"].([]interface{})
	if len(modules) != 3 {
		t.Fatalf("duration padding should yield 3 modules, got %d", len(modules))
	}
	first, _ := modules[0].(map[string]interface{})
	if first["title"] != "Module 1" {
		t.Fatalf("unexpected placeholder module: %v", first)
	}
}

func TestManagerCompletesOnNegativeDuration(t *testing.T) {
	manager := newTestManager(t, outlineTwoModules)
	ctx := context.Background()

	id, err := manager.StartGeneration(ctx, Request{Topic: "golang", CourseDuration: "-3 weeks"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	record := waitForTerminal(t, manager, id)
	if record.Status != StatusCompleted {
		t.Fatalf("negative duration must not fail the task, got %s (%s)", record.Status, record.Error)
	}
	doc, err := manager.CourseDocument(ctx, id)
	if err != nil {
		t.Fatalf("course document: %v", err)
	}
	modules, _ := doc["modules"].([]interface{})
	if len(modules) != 2 {
		t.Fatalf("modules should be left untouched, got %d", len(modules))
	}
}

type panickingProvider struct{}

func (panickingProvider) Complete(ctx context.Context, prompt string) (string, error) {
	panic("provider blew up")
}

func (panickingProvider) Name() string { return "panicking" }

func TestManagerSurvivesPipelinePanic(t *testing.T) {
	store := newTestStore(t)
	manager, err := NewManager(store, panickingProvider{}, noopGateway{}, t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	id, err := manager.StartGeneration(context.Background(), Request{Topic: "golang"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	record := waitForTerminal(t, manager, id)
	if record.Status != StatusFailed {
		t.Fatalf("panicking pipeline should fail the task, got %s", record.Status)
	}
	if !strings.Contains(record.Error, "panic") {
		t.Fatalf("error should record the panic, got %q", record.Error)
	}
}

func TestManagerRejectsEmptyTopic(t *testing.T) {
	manager := newTestManager(t, outlineTwoModules)
	if _, err := manager.StartGeneration(context.Background(), Request{Topic: "   "}); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("expected ErrTopicRequired, got %v", err)
	}
}

func TestManagerRefinement(t *testing.T) {
	manager := newTestManager(t, outlineTwoModules)
	ctx := context.Background()

	id, err := manager.StartGeneration(ctx, Request{Topic: "golang", CourseDuration: "2 weeks"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if record := waitForTerminal(t, manager, id); record.Status != StatusCompleted {
		t.Fatalf("generation failed: %s", record.Error)
	}

	refineID, err := manager.StartRefinement(ctx, id, "", "Add more hands-on exercises")
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if !strings.HasPrefix(refineID, id+"_refine_") {
		t.Fatalf("unexpected refinement id: %s", refineID)
	}

	doc, err := manager.CourseDocument(ctx, refineID)
	if err != nil {
		t.Fatalf("refined document: %v", err)
	}
	results, _ := doc["validation_results"].(map[string]interface{})
	refinements, _ := results["refinements"].([]interface{})
	if len(refinements) != 1 {
		t.Fatalf("expected one refinement entry, got %v", refinements)
	}
	entry, _ := refinements[0].(map[string]interface{})
	if entry["type"] != "general" || entry["instructions"] != "Add more hands-on exercises" {
		t.Fatalf("unexpected refinement entry: %v", entry)
	}

	original, err := manager.CourseDocument(ctx, id)
	if err != nil {
		t.Fatalf("original document: %v", err)
	}
	origResults, _ := original["validation_results"].(map[string]interface{})
	if _, ok := origResults["refinements"]; ok {
		t.Fatal("refinement must not modify the original output")
	}
}

func TestManagerRefinementGuards(t *testing.T) {
	manager := newTestManager(t, outlineTwoModules)
	ctx := context.Background()

	if _, err := manager.StartRefinement(ctx, "missing-task", "general", "do it"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	id, err := manager.StartGeneration(ctx, Request{Topic: "golang"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := manager.StartRefinement(ctx, id, "general", ""); !errors.Is(err, ErrInstructionsRequired) {
		t.Fatalf("expected ErrInstructionsRequired, got %v", err)
	}
	waitForTerminal(t, manager, id)
}
