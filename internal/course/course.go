// File path: internal/course/course.go
package course

import (
	"strconv"
	"strings"
	"time"
)

// Lesson is a single lesson inside a module.
type Lesson struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Resources   []string `json:"resources"`
}

// Module groups an ordered set of lessons, nominally one week of material.
type Module struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Lessons     []Lesson `json:"lessons"`
}

// Document is the persisted course entity.
type Document struct {
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Topic             string                 `json:"topic"`
	Depth             string                 `json:"depth"`
	CourseDuration    string                 `json:"course_duration"`
	Modules           []Module               `json:"modules"`
	References        []string               `json:"references"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	ValidationResults map[string]interface{} `json:"validation_results"`
}

// New returns a Document with timestamps initialised and empty collections so
// serialized output never contains null lists.
func New(title, description, topic string) *Document {
	now := time.Now().UTC()
	return &Document{
		Title:             title,
		Description:       description,
		Topic:             topic,
		Depth:             "intermediate",
		CourseDuration:    "6 weeks",
		Modules:           []Module{},
		References:        []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
		ValidationResults: map[string]interface{}{},
	}
}

// FromMap builds a Document from a loosely shaped nested mapping, defaulting
// every missing key. Both "title" and the pipeline's "course_title" key are
// accepted.
func FromMap(data map[string]interface{}) *Document {
	title := stringValue(data, "title")
	if title == "" {
		title = stringValue(data, "course_title")
	}
	doc := New(title, stringValue(data, "description"), stringValue(data, "topic"))
	if depth := stringValue(data, "depth"); depth != "" {
		doc.Depth = depth
	}
	if duration := stringValue(data, "course_duration"); duration != "" {
		doc.CourseDuration = duration
	}
	doc.References = stringSlice(data["references"])
	if ts, ok := parseTime(data["created_at"]); ok {
		doc.CreatedAt = ts
	}
	if ts, ok := parseTime(data["updated_at"]); ok {
		doc.UpdatedAt = ts
	}
	if results, ok := data["validation_results"].(map[string]interface{}); ok {
		doc.ValidationResults = results
	}
	if modules, ok := data["modules"].([]interface{}); ok {
		for _, raw := range modules {
			moduleMap, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			doc.Modules = append(doc.Modules, moduleFromMap(moduleMap))
		}
	}
	return doc
}

func moduleFromMap(data map[string]interface{}) Module {
	module := Module{
		Title:       stringValue(data, "title"),
		Description: stringValue(data, "description"),
		Duration:    stringValue(data, "duration"),
		Lessons:     []Lesson{},
	}
	if module.Duration == "" {
		module.Duration = "1 week"
	}
	if lessons, ok := data["lessons"].([]interface{}); ok {
		for _, raw := range lessons {
			lessonMap, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			module.Lessons = append(module.Lessons, Lesson{
				Title:       stringValue(lessonMap, "title"),
				Description: stringValue(lessonMap, "description"),
				Content:     stringValue(lessonMap, "content"),
				Resources:   stringSlice(lessonMap["resources"]),
			})
		}
	}
	return module
}

// ToMap converts the document back into the nested-mapping shape it was built
// from. Timestamps are formatted as RFC 3339; the round trip preserves the
// instant, not the byte representation.
func (d *Document) ToMap() map[string]interface{} {
	modules := make([]interface{}, 0, len(d.Modules))
	for _, module := range d.Modules {
		lessons := make([]interface{}, 0, len(module.Lessons))
		for _, lesson := range module.Lessons {
			lessons = append(lessons, map[string]interface{}{
				"title":       lesson.Title,
				"description": lesson.Description,
				"content":     lesson.Content,
				"resources":   append([]string{}, lesson.Resources...),
			})
		}
		modules = append(modules, map[string]interface{}{
			"title":       module.Title,
			"description": module.Description,
			"duration":    module.Duration,
			"lessons":     lessons,
		})
	}
	results := d.ValidationResults
	if results == nil {
		results = map[string]interface{}{}
	}
	return map[string]interface{}{
		"title":              d.Title,
		"description":        d.Description,
		"topic":              d.Topic,
		"depth":              d.Depth,
		"course_duration":    d.CourseDuration,
		"modules":            modules,
		"references":         append([]string{}, d.References...),
		"created_at":         d.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":         d.UpdatedAt.Format(time.RFC3339Nano),
		"validation_results": results,
	}
}

// DurationWeeks parses the leading whitespace-delimited token of the course
// duration as an integer week count. The unit is not inspected: "3 months"
// yields 3. When the token is not a positive integer the current module
// count is returned.
func (d *Document) DurationWeeks() int {
	fields := strings.Fields(d.CourseDuration)
	if len(fields) > 0 {
		if weeks, err := strconv.Atoi(fields[0]); err == nil && weeks > 0 {
			return weeks
		}
	}
	return len(d.Modules)
}

// AdjustModulesToDuration truncates or pads the module list so its length
// matches DurationWeeks. Padding appends placeholder modules numbered after
// the existing ones.
func (d *Document) AdjustModulesToDuration() {
	weeks := d.DurationWeeks()
	if len(d.Modules) > weeks {
		d.Modules = d.Modules[:weeks]
		return
	}
	for i := len(d.Modules); i < weeks; i++ {
		d.Modules = append(d.Modules, Module{
			Title:       "Module " + strconv.Itoa(i+1),
			Description: "Content to be developed",
			Duration:    "1 week",
			Lessons:     []Lesson{},
		})
	}
}

func stringValue(data map[string]interface{}, key string) string {
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}

func stringSlice(raw interface{}) []string {
	out := []string{}
	switch values := raw.(type) {
	case []interface{}:
		for _, value := range values {
			if str, ok := value.(string); ok {
				out = append(out, str)
			}
		}
	case []string:
		out = append(out, values...)
	}
	return out
}

func parseTime(raw interface{}) (time.Time, bool) {
	str, ok := raw.(string)
	if !ok || strings.TrimSpace(str) == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if ts, err := time.Parse(layout, str); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
