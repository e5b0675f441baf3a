// File path: internal/task/manager.go
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aastha-batta/course-agent/internal/agent"
	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/course"
	"github.com/aastha-batta/course-agent/internal/llm"
)

var (
	ErrTopicRequired        = errors.New("topic is required")
	ErrInstructionsRequired = errors.New("refinement instructions are required")
	ErrTaskNotCompleted     = errors.New("task is not completed")
)

const (
	defaultDepth    = "beginner"
	defaultAudience = "General audience"
	defaultDuration = "4 weeks"
)

// Request carries the parameters of a course generation task.
type Request struct {
	Topic          string `json:"topic"`
	Depth          string `json:"depth"`
	TargetAudience string `json:"target_audience"`
	CourseDuration string `json:"course_duration"`
}

func (r *Request) applyDefaults() {
	r.Topic = strings.TrimSpace(r.Topic)
	if strings.TrimSpace(r.Depth) == "" {
		r.Depth = defaultDepth
	}
	if strings.TrimSpace(r.TargetAudience) == "" {
		r.TargetAudience = defaultAudience
	}
	if strings.TrimSpace(r.CourseDuration) == "" {
		r.CourseDuration = defaultDuration
	}
}

// Manager runs course generation tasks in the background and tracks their
// lifecycle through the store. Output documents land in outputDir as
// <task-id>_output.json.
type Manager struct {
	store     Store
	provider  llm.Provider
	gateway   agent.ResearchGateway
	outputDir string
}

func NewManager(store Store, provider llm.Provider, gateway agent.ResearchGateway, outputDir string) (*Manager, error) {
	if store == nil {
		return nil, errors.New("task store required")
	}
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "course-agent")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Manager{
		store:     store,
		provider:  provider,
		gateway:   gateway,
		outputDir: outputDir,
	}, nil
}

// StartGeneration validates the request, records a queued task and launches
// the agent pipeline in the background. It returns the task id immediately.
func (m *Manager) StartGeneration(ctx context.Context, req Request) (string, error) {
	req.applyDefaults()
	if req.Topic == "" {
		return "", ErrTopicRequired
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	record := Record{
		ID:             id,
		Kind:           KindGeneration,
		Status:         StatusQueued,
		Topic:          req.Topic,
		Depth:          req.Depth,
		TargetAudience: req.TargetAudience,
		CourseDuration: req.CourseDuration,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.store.Put(ctx, record); err != nil {
		return "", err
	}
	common.Logger().Info("task: generation queued", "task", id, "topic", req.Topic)

	go m.runGeneration(record, req)
	return id, nil
}

func (m *Manager) runGeneration(record Record, req Request) {
	logger := common.Logger()
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("task: pipeline panic", "task", record.ID, "panic", r)
			m.setStatus(ctx, &record, StatusFailed, fmt.Sprintf("pipeline panic: %v", r))
		}
	}()

	m.setStatus(ctx, &record, StatusProcessing, "")

	coordinator := agent.NewCoordinator()
	coordinator.Register(agent.NewResearcher(m.provider, m.gateway))
	coordinator.Register(agent.NewStructurer(m.provider))
	coordinator.Register(agent.NewContentGenerator(m.provider))
	coordinator.Register(agent.NewValidator(m.provider))
	coordinator.SetWorkflow([]string{"researcher", "structurer", "content_generator", "validator"})

	outcome, err := coordinator.Run(ctx, agent.State{
		Topic:          req.Topic,
		Depth:          req.Depth,
		TargetAudience: req.TargetAudience,
		CourseDuration: req.CourseDuration,
	})
	if err != nil {
		logger.Error("task: pipeline failed", "task", record.ID, "error", err)
		m.setStatus(ctx, &record, StatusFailed, err.Error())
		return
	}

	doc := outcome.Final.CourseDocument()
	doc.Topic = req.Topic
	doc.Depth = req.Depth
	doc.CourseDuration = req.CourseDuration
	doc.UpdatedAt = time.Now().UTC()
	doc.AdjustModulesToDuration()
	attachValidation(doc, outcome.Final)

	path := m.outputPath(record.ID)
	if err := writeDocument(path, doc.ToMap()); err != nil {
		logger.Error("task: write output failed", "task", record.ID, "error", err)
		m.setStatus(ctx, &record, StatusFailed, err.Error())
		return
	}

	record.OutputPath = path
	m.setStatus(ctx, &record, StatusCompleted, outcome.Final.Error)
	logger.Info("task: generation completed", "task", record.ID, "modules", len(doc.Modules))
}

// attachValidation folds the pipeline's validation feedback into the
// document's validation_results block.
func attachValidation(doc *course.Document, state agent.State) {
	if doc.ValidationResults == nil {
		doc.ValidationResults = map[string]interface{}{}
	}
	if len(state.ValidationNotes) > 0 {
		notes := make([]map[string]interface{}, 0, len(state.ValidationNotes))
		for _, note := range state.ValidationNotes {
			entry := map[string]interface{}{
				"type":     note.Type,
				"feedback": note.Feedback,
			}
			if note.Module != "" {
				entry["module"] = note.Module
			}
			if note.Lesson != "" {
				entry["lesson"] = note.Lesson
			}
			notes = append(notes, entry)
		}
		doc.ValidationResults["reviews"] = notes
	}
	if state.Error != "" {
		doc.ValidationResults["pipeline_error"] = state.Error
	}
}

// StartRefinement records a refinement task for a completed course. The
// refinement is appended to the course's validation_results and the updated
// document is written under the new task id.
func (m *Manager) StartRefinement(ctx context.Context, originalID, refinementType, instructions string) (string, error) {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return "", ErrInstructionsRequired
	}
	refinementType = strings.TrimSpace(refinementType)
	if refinementType == "" {
		refinementType = "general"
	}
	original, err := m.store.Get(ctx, originalID)
	if err != nil {
		return "", err
	}
	if original.Status != StatusCompleted {
		return "", fmt.Errorf("%w: %s", ErrTaskNotCompleted, originalID)
	}

	data, err := readDocument(original.OutputPath)
	if err != nil {
		return "", fmt.Errorf("load course for refinement: %w", err)
	}

	id := fmt.Sprintf("%s_refine_%s", originalID, uuid.NewString()[:8])
	now := time.Now().UTC()
	appendRefinement(data, refinementType, instructions, now)

	path := m.outputPath(id)
	if err := writeDocument(path, data); err != nil {
		return "", err
	}

	record := Record{
		ID:             id,
		Kind:           KindRefinement,
		Status:         StatusCompleted,
		Topic:          original.Topic,
		Depth:          original.Depth,
		TargetAudience: original.TargetAudience,
		CourseDuration: original.CourseDuration,
		OriginalTask:   originalID,
		Instructions:   instructions,
		OutputPath:     path,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.store.Put(ctx, record); err != nil {
		return "", err
	}
	common.Logger().Info("task: refinement recorded", "task", id, "original", originalID)
	return id, nil
}

func appendRefinement(data map[string]interface{}, refinementType, instructions string, at time.Time) {
	results, ok := data["validation_results"].(map[string]interface{})
	if !ok {
		results = map[string]interface{}{}
		data["validation_results"] = results
	}
	refinements, _ := results["refinements"].([]interface{})
	refinements = append(refinements, map[string]interface{}{
		"type":         refinementType,
		"instructions": instructions,
		"applied_at":   at.Format(time.RFC3339),
	})
	results["refinements"] = refinements
	data["updated_at"] = at.Format(time.RFC3339Nano)
}

// Status returns the stored record for a task.
func (m *Manager) Status(ctx context.Context, id string) (Record, error) {
	return m.store.Get(ctx, id)
}

// List returns every known task, newest first.
func (m *Manager) List(ctx context.Context) ([]Record, error) {
	return m.store.List(ctx)
}

// StatusPayload shapes a record for the API. Completed tasks additionally
// carry the course title, module count and download path.
func (m *Manager) StatusPayload(ctx context.Context, id string) (map[string]interface{}, error) {
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"task_id":         record.ID,
		"kind":            record.Kind,
		"status":          record.Status,
		"topic":           record.Topic,
		"depth":           record.Depth,
		"target_audience": record.TargetAudience,
		"course_duration": record.CourseDuration,
		"created_at":      record.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":      record.UpdatedAt.Format(time.RFC3339Nano),
	}
	if record.OriginalTask != "" {
		payload["original_task"] = record.OriginalTask
	}
	if record.Error != "" {
		payload["error"] = record.Error
	}
	if record.Status == StatusCompleted {
		if data, err := readDocument(record.OutputPath); err == nil {
			if title, ok := data["title"].(string); ok {
				payload["course_title"] = title
			}
			if modules, ok := data["modules"].([]interface{}); ok {
				payload["modules_count"] = len(modules)
			}
		}
		payload["download_url"] = fmt.Sprintf("/api/courses/%s/download", record.ID)
	}
	return payload, nil
}

// CoursePath returns the output file for a completed task.
func (m *Manager) CoursePath(ctx context.Context, id string) (string, error) {
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if record.Status != StatusCompleted {
		return "", fmt.Errorf("%w: %s", ErrTaskNotCompleted, id)
	}
	return record.OutputPath, nil
}

// CourseDocument loads the generated document for a completed task.
func (m *Manager) CourseDocument(ctx context.Context, id string) (map[string]interface{}, error) {
	path, err := m.CoursePath(ctx, id)
	if err != nil {
		return nil, err
	}
	return readDocument(path)
}

func (m *Manager) setStatus(ctx context.Context, record *Record, status, errMsg string) {
	record.Status = status
	record.Error = errMsg
	record.UpdatedAt = time.Now().UTC()
	if err := m.store.Put(ctx, *record); err != nil {
		common.Logger().Error("task: status update failed", "task", record.ID, "status", status, "error", err)
	}
}

func (m *Manager) outputPath(id string) string {
	return filepath.Join(m.outputDir, id+"_output.json")
}

func writeDocument(path string, data map[string]interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode course document: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write course document: %w", err)
	}
	return nil
}

func readDocument(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course document: %w", err)
	}
	data := map[string]interface{}{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode course document: %w", err)
	}
	return data, nil
}
