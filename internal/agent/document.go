// File path: internal/agent/document.go
package agent

import (
	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/course"
	"github.com/aastha-batta/course-agent/internal/jsonrepair"
)

// CourseDocument converts the pipeline state into a course document. The
// generated content is preferred; when the content step never ran, the raw
// structure text is parsed as a fallback, and failing that an empty document
// is returned so callers always receive something serializable.
func (s State) CourseDocument() *course.Document {
	if s.Content != nil {
		return s.Content
	}
	if s.Structure != "" {
		parsed, err := jsonrepair.Repair(s.Structure)
		if err == nil {
			return course.FromMap(parsed)
		}
		common.Logger().Warn("agent: structure fallback parse failed", "error", err)
	}
	return course.New("", "", s.Topic)
}
