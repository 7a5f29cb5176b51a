package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/planner"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

type createTaskRequest struct {
	PlanID      string  `json:"planId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"dueDate"` // YYYY-MM-DD or RFC 3339
	Category    string  `json:"category"`
	Remark      *string `json:"remark"`
}

// updateTaskRequest carries only the fields to change.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	IsCompleted *bool   `json:"isCompleted"`
	Category    *string `json:"category"`
	Remark      *string `json:"remark"`
}

// parseDueDate accepts an empty string as "no due date".
func parseDueDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := planner.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req createTaskRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "planId is required")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD or RFC 3339")
		return
	}

	plan, err := s.svc.Plans.GetByID(r.Context(), planID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get plan")
		s.respondError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	if plan == nil {
		s.respondError(w, http.StatusNotFound, "Plan not found")
		return
	}
	if member, err := s.svc.Weddings.IsMember(r.Context(), plan.WeddingID, user.ID); err != nil || !member {
		if err != nil {
			s.logger.WithError(err).Error("failed to check wedding membership")
		}
		s.respondError(w, http.StatusNotFound, "Plan not found")
		return
	}

	category := models.MapTaskCategory(req.Category)
	if err := s.svc.Plans.AddCategory(r.Context(), planID, models.PlanCategory{
		Name: category.Label(),
		Icon: "CircleHelp",
	}); err != nil {
		s.logger.WithError(err).Warn("failed to add task category to plan")
	}

	task, err := s.svc.Tasks.Create(r.Context(), &models.Task{
		PlanID:      planID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		DueDate:     due,
		Category:    category,
		Remark:      req.Remark,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to create task")
		s.respondError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	s.respondJSON(w, http.StatusCreated, task)
}

// loadTaskFor returns the task when user may see it. It writes the error
// response and returns nil otherwise.
func (s *Server) loadTaskFor(w http.ResponseWriter, r *http.Request, user *models.User, id uuid.UUID) *models.Task {
	ok, err := s.svc.CanAccessTask(r.Context(), user.ID, id)
	if err != nil {
		s.logger.WithError(err).Error("failed to check task access")
		s.respondError(w, http.StatusInternalServerError, "failed to get task")
		return nil
	}
	if !ok {
		s.respondError(w, http.StatusNotFound, "Task not found")
		return nil
	}

	task, err := s.svc.Tasks.GetByID(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to get task")
		s.respondError(w, http.StatusInternalServerError, "failed to get task")
		return nil
	}
	if task == nil {
		s.respondError(w, http.StatusNotFound, "Task not found")
		return nil
	}
	return task
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req updateTaskRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	task := s.loadTaskFor(w, r, user, id)
	if task == nil {
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			s.respondError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD or RFC 3339")
			return
		}
		task.DueDate = due
		task.RemindedAt = nil
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}
	if req.Category != nil {
		task.Category = models.MapTaskCategory(*req.Category)
	}
	if req.Remark != nil {
		task.Remark = req.Remark
	}

	updated, err := s.svc.Tasks.Update(r.Context(), task)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		s.logger.WithError(err).Error("failed to update task")
		s.respondError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, user *models.User) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "Task ID is required")
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if task := s.loadTaskFor(w, r, user, id); task == nil {
		return
	}

	if err := s.svc.Tasks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		s.logger.WithError(err).Error("failed to delete task")
		s.respondError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
