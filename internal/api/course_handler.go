// File path: internal/api/course_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/aastha-batta/course-agent/internal/common"
	"github.com/aastha-batta/course-agent/internal/task"
)

var errServerConfig = errors.New("task manager required")

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "course-agent",
		"endpoints": []string{
			"POST /api/courses",
			"GET /api/courses",
			"GET /api/courses/{taskID}",
			"GET /api/courses/{taskID}/download",
			"POST /api/courses/{taskID}/refine",
		},
	})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req task.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.tasks.StartGeneration(r.Context(), req)
	if err != nil {
		if errors.Is(err, task.ErrTopicRequired) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	common.Logger().Info("api: course generation accepted", "task", id, "topic", req.Topic)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": id,
		"status":  task.StatusQueued,
		"message": "Course generation started",
	})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	records, err := s.tasks.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	tasks := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		payload, err := s.tasks.StatusPayload(r.Context(), record.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		tasks = append(tasks, payload)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleCourseStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")
	payload, err := s.tasks.StatusPayload(r.Context(), id)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCourseDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")
	path, err := s.tasks.CoursePath(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, task.ErrTaskNotCompleted):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	if _, err := os.Stat(path); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) handleRefineCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")
	var req struct {
		RefinementType string `json:"refinement_type"`
		Instructions   string `json:"instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Instructions) == "" {
		writeError(w, http.StatusBadRequest, task.ErrInstructionsRequired)
		return
	}
	refineID, err := s.tasks.StartRefinement(r.Context(), id, req.RefinementType, req.Instructions)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, task.ErrTaskNotCompleted):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, task.ErrInstructionsRequired):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	common.Logger().Info("api: refinement accepted", "task", refineID, "original", id)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id":       refineID,
		"original_task": id,
		"status":        task.StatusCompleted,
		"message":       "Course refinement started",
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := common.LogEntries()
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": len(entries)})
}
