package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/planner"
)

// retryAfterSeconds is advertised when the model timed out.
const retryAfterSeconds = "30"

type generatePlanRequest struct {
	WeddingID string `json:"weddingId"`
	planner.WeddingAttributes
}

type planResponse struct {
	Plan *models.Plan `json:"plan"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req generatePlanRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	weddingID, err := uuid.Parse(req.WeddingID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "weddingId is required")
		return
	}

	plan, err := s.generator.GeneratePlan(r.Context(), user.ID, weddingID, req.WeddingAttributes)
	if err != nil {
		s.respondGenerationError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, planResponse{Plan: plan})
}

// respondGenerationError maps the generation failure taxonomy to a status
// and a fixed message. Causes are never echoed to the client.
func (s *Server) respondGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Wedding not found")
	case errors.Is(err, planner.ErrQuotaExceeded):
		s.respondError(w, http.StatusForbidden, planner.ErrQuotaExceeded.Error())
	case errors.Is(err, planner.ErrUpstream) && errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", retryAfterSeconds)
		s.respondError(w, http.StatusServiceUnavailable, planner.ErrUpstream.Error())
	case errors.Is(err, planner.ErrUpstream):
		s.respondError(w, http.StatusInternalServerError, planner.ErrUpstream.Error())
	case errors.Is(err, planner.ErrMalformedOutput):
		s.respondError(w, http.StatusInternalServerError, planner.ErrMalformedOutput.Error())
	case errors.Is(err, planner.ErrPersistence):
		s.respondError(w, http.StatusInternalServerError, planner.ErrPersistence.Error())
	default:
		s.logger.WithError(err).Error("unexpected plan generation error")
		s.respondError(w, http.StatusInternalServerError, planner.ErrUpstream.Error())
	}
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request, user *models.User) {
	weddingID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid wedding id")
		return
	}

	member, err := s.svc.Weddings.IsMember(r.Context(), weddingID, user.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to check wedding membership")
		s.respondError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if !member {
		s.respondError(w, http.StatusNotFound, "Wedding not found")
		return
	}

	plan, err := s.svc.Plans.GetByWeddingID(r.Context(), weddingID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get plan")
		s.respondError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if plan == nil {
		s.respondError(w, http.StatusNotFound, "Plan not found")
		return
	}

	s.respondJSON(w, http.StatusOK, planResponse{Plan: plan})
}
