package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/service"
)

type invitationRequest struct {
	Email string `json:"email"`
}

type invitationActionRequest struct {
	InvitationID string `json:"invitationId"`
}

// partnerErrorStatus maps partner flow errors onto HTTP status codes. The
// second return is false for unexpected errors.
func partnerErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrInvitationNotFound), errors.Is(err, service.ErrNoPartner):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrAlreadyPartnered),
		errors.Is(err, service.ErrReceiverPartnered),
		errors.Is(err, service.ErrDuplicateInvitation),
		errors.Is(err, service.ErrTooManyInvitations),
		errors.Is(err, service.ErrSelfInvitation),
		errors.Is(err, service.ErrInvalidInvitationVerb):
		return http.StatusBadRequest, true
	}
	return http.StatusInternalServerError, false
}

func (s *Server) respondPartnerError(w http.ResponseWriter, err error, fallback string) {
	status, known := partnerErrorStatus(err)
	if !known {
		s.logger.WithError(err).Error(fallback)
		s.respondError(w, status, fallback)
		return
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) handleGetInvitations(w http.ResponseWriter, r *http.Request, user *models.User) {
	invitations, err := s.svc.Invitations.GetPendingForReceiver(r.Context(), user.ID, user.Email)
	if err != nil {
		s.logger.WithError(err).Error("failed to list invitations")
		s.respondError(w, http.StatusInternalServerError, "failed to list invitations")
		return
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}
	s.respondJSON(w, http.StatusOK, invitations)
}

func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req invitationRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		s.respondError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	inv, err := s.svc.InvitePartner(r.Context(), user, email)
	if err != nil {
		s.respondPartnerError(w, err, "failed to create invitation")
		return
	}
	s.respondJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleInvitationAction(w http.ResponseWriter, r *http.Request, user *models.User) {
	action := r.PathValue("action")

	var req invitationActionRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	id, err := uuid.Parse(req.InvitationID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invitationId is required")
		return
	}

	inv, err := s.svc.RespondToInvitation(r.Context(), user, id, action)
	if err != nil {
		s.respondPartnerError(w, err, "failed to update invitation")
		return
	}
	s.respondJSON(w, http.StatusOK, inv)
}

func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request, user *models.User) {
	partner, err := s.svc.Partner(r.Context(), user)
	if err != nil {
		s.respondPartnerError(w, err, "failed to get partner")
		return
	}
	s.respondJSON(w, http.StatusOK, partner)
}

func (s *Server) handleUnlinkPartner(w http.ResponseWriter, r *http.Request, user *models.User) {
	if err := s.svc.UnlinkPartner(r.Context(), user); err != nil {
		s.respondPartnerError(w, err, "failed to unlink partner")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
