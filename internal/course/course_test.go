// File path: internal/course/course_test.go
package course

import (
	"encoding/json"
	"testing"
	"time"
)

func sampleDocument() *Document {
	doc := New("Go for Gophers", "A practical Go course", "golang")
	doc.Depth = "beginner"
	doc.CourseDuration = "2 weeks"
	doc.Modules = []Module{
		{
			Title:       "Basics",
			Description: "Syntax and tooling",
			Duration:    "1 week",
			Lessons: []Lesson{
				{Title: "Hello", Description: "First program", Content: "package main ...", Resources: []string{"Tour of Go"}},
			},
		},
		{
			Title:    "Concurrency",
			Duration: "1 week",
			Lessons:  []Lesson{{Title: "Goroutines", Content: "go func() ..."}},
		},
	}
	doc.References = []string{"The Go Programming Language"}
	return doc
}

func TestAdjustModulesPads(t *testing.T) {
	doc := sampleDocument()
	doc.CourseDuration = "5 weeks"
	doc.AdjustModulesToDuration()
	if len(doc.Modules) != 5 {
		t.Fatalf("expected 5 modules, got %d", len(doc.Modules))
	}
	if doc.Modules[2].Title != "Module 3" {
		t.Fatalf("expected placeholder Module 3, got %q", doc.Modules[2].Title)
	}
	if doc.Modules[4].Title != "Module 5" {
		t.Fatalf("expected placeholder Module 5, got %q", doc.Modules[4].Title)
	}
	if doc.Modules[3].Description != "Content to be developed" {
		t.Fatalf("unexpected placeholder description: %q", doc.Modules[3].Description)
	}
}

func TestAdjustModulesTruncates(t *testing.T) {
	doc := sampleDocument()
	doc.CourseDuration = "1 week"
	doc.AdjustModulesToDuration()
	if len(doc.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(doc.Modules))
	}
	if doc.Modules[0].Title != "Basics" {
		t.Fatalf("truncation should drop from the tail, got %q", doc.Modules[0].Title)
	}
}

func TestDurationWeeksFallback(t *testing.T) {
	doc := sampleDocument()
	doc.CourseDuration = "a fortnight"
	if weeks := doc.DurationWeeks(); weeks != len(doc.Modules) {
		t.Fatalf("expected fallback to module count, got %d", weeks)
	}
	doc.CourseDuration = "3 months"
	if weeks := doc.DurationWeeks(); weeks != 3 {
		t.Fatalf("leading token should win regardless of unit, got %d", weeks)
	}
}

func TestAdjustModulesNonPositiveDuration(t *testing.T) {
	doc := sampleDocument()
	doc.CourseDuration = "-3 weeks"
	if weeks := doc.DurationWeeks(); weeks != len(doc.Modules) {
		t.Fatalf("negative token should fall back to module count, got %d", weeks)
	}
	doc.AdjustModulesToDuration()
	if len(doc.Modules) != 2 {
		t.Fatalf("negative duration must leave modules untouched, got %d", len(doc.Modules))
	}

	doc.CourseDuration = "0 weeks"
	doc.AdjustModulesToDuration()
	if len(doc.Modules) != 2 {
		t.Fatalf("zero duration must leave modules untouched, got %d", len(doc.Modules))
	}
}

func TestRoundTripPreservesFields(t *testing.T) {
	doc := sampleDocument()
	payload, err := json.Marshal(doc.ToMap())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	restored := FromMap(decoded)
	if restored.Title != doc.Title || restored.Topic != doc.Topic || restored.Depth != doc.Depth {
		t.Fatalf("header fields diverged: %+v", restored)
	}
	if restored.CourseDuration != doc.CourseDuration {
		t.Fatalf("course_duration diverged: %q", restored.CourseDuration)
	}
	if len(restored.Modules) != len(doc.Modules) {
		t.Fatalf("expected %d modules, got %d", len(doc.Modules), len(restored.Modules))
	}
	for i, module := range doc.Modules {
		got := restored.Modules[i]
		if got.Title != module.Title || got.Description != module.Description || got.Duration != module.Duration {
			t.Fatalf("module %d diverged: %+v", i, got)
		}
		if len(got.Lessons) != len(module.Lessons) {
			t.Fatalf("module %d lesson count diverged", i)
		}
		for j, lesson := range module.Lessons {
			gotLesson := got.Lessons[j]
			if gotLesson.Title != lesson.Title || gotLesson.Content != lesson.Content || gotLesson.Description != lesson.Description {
				t.Fatalf("lesson %d/%d diverged: %+v", i, j, gotLesson)
			}
			if len(gotLesson.Resources) != len(lesson.Resources) {
				t.Fatalf("lesson %d/%d resources diverged", i, j)
			}
		}
	}
	if !restored.CreatedAt.Equal(doc.CreatedAt) || !restored.UpdatedAt.Equal(doc.UpdatedAt) {
		t.Fatalf("timestamps lost the instant: %v vs %v", restored.CreatedAt, doc.CreatedAt)
	}
	if len(restored.References) != 1 || restored.References[0] != doc.References[0] {
		t.Fatalf("references diverged: %v", restored.References)
	}
}

func TestFromMapAcceptsCourseTitleKey(t *testing.T) {
	doc := FromMap(map[string]interface{}{
		"course_title": "From Pipeline",
		"modules":      []interface{}{},
	})
	if doc.Title != "From Pipeline" {
		t.Fatalf("expected course_title fallback, got %q", doc.Title)
	}
	if doc.Modules == nil || doc.References == nil {
		t.Fatal("collections should be initialised")
	}
}

func TestFromMapToleratesMissingKeys(t *testing.T) {
	doc := FromMap(map[string]interface{}{})
	if doc.Title != "" || len(doc.Modules) != 0 {
		t.Fatalf("expected empty defaults, got %+v", doc)
	}
	if doc.CreatedAt.IsZero() {
		t.Fatal("created_at should default to now")
	}
	if time.Since(doc.CreatedAt) > time.Minute {
		t.Fatalf("created_at default looks wrong: %v", doc.CreatedAt)
	}
}
