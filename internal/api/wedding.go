package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/planner"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *models.User) {
	s.respondJSON(w, http.StatusOK, user)
}

type linkTelegramRequest struct {
	ChatID *int64 `json:"chatId"`
}

// handleLinkTelegram stores the chat reminders go to. A null chatId unlinks.
func (s *Server) handleLinkTelegram(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req linkTelegramRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.svc.Users.SetTelegramChat(r.Context(), user.ID, req.ChatID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "This chat is already linked to another account")
			return
		}
		s.logger.WithError(err).Error("failed to link telegram chat")
		s.respondError(w, http.StatusInternalServerError, "failed to link telegram chat")
		return
	}

	user.TelegramChatID = req.ChatID
	s.respondJSON(w, http.StatusOK, user)
}

// ---------------------------------------------------------------------------
// Weddings
// ---------------------------------------------------------------------------

type upsertWeddingRequest struct {
	WeddingID string `json:"weddingId"`
	planner.WeddingAttributes
}

func (s *Server) handleUpsertWedding(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req upsertWeddingRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, _ := req.Date()

	wedding := &models.Wedding{
		Partner1Name:       strings.TrimSpace(req.Partner1Name),
		Partner2Name:       strings.TrimSpace(req.Partner2Name),
		CulturalBackground: strings.TrimSpace(req.CulturalBackground),
		Religion:           strings.TrimSpace(req.Religion),
		Email:              strings.TrimSpace(req.Email),
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		Date:               date,
		Country:            strings.TrimSpace(req.Country),
		State:              strings.TrimSpace(req.State),
		Budget:             req.Budget,
		GuestCount:         req.GuestCount,
		Theme:              strings.TrimSpace(req.Theme),
		SpecialRequests:    strings.TrimSpace(req.SpecialRequests),
	}

	status := http.StatusCreated
	if req.WeddingID != "" {
		id, err := uuid.Parse(req.WeddingID)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid weddingId")
			return
		}
		member, err := s.svc.Weddings.IsMember(r.Context(), id, user.ID)
		if err != nil {
			s.logger.WithError(err).Error("failed to check wedding membership")
			s.respondError(w, http.StatusInternalServerError, "failed to save wedding")
			return
		}
		if !member {
			s.respondError(w, http.StatusNotFound, "Wedding not found")
			return
		}
		wedding.ID = id
		status = http.StatusOK
	}

	saved, err := s.svc.Weddings.Upsert(r.Context(), wedding, user.ID, user.PartnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Wedding not found")
			return
		}
		s.logger.WithError(err).Error("failed to save wedding")
		s.respondError(w, http.StatusInternalServerError, "failed to save wedding")
		return
	}

	s.respondJSON(w, status, saved)
}

func (s *Server) handleGetWeddings(w http.ResponseWriter, r *http.Request, user *models.User) {
	if raw := r.URL.Query().Get("weddingId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid weddingId")
			return
		}
		wedding, err := s.svc.Weddings.GetForUser(r.Context(), id, user.ID)
		if err != nil {
			s.logger.WithError(err).Error("failed to get wedding")
			s.respondError(w, http.StatusInternalServerError, "failed to get wedding")
			return
		}
		if wedding == nil {
			s.respondError(w, http.StatusNotFound, "Wedding not found")
			return
		}
		s.respondJSON(w, http.StatusOK, wedding)
		return
	}

	weddings, err := s.svc.Weddings.ListForUser(r.Context(), user.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to list weddings")
		s.respondError(w, http.StatusInternalServerError, "failed to list weddings")
		return
	}
	if weddings == nil {
		weddings = []*models.Wedding{}
	}
	s.respondJSON(w, http.StatusOK, weddings)
}

func (s *Server) handleDeleteWedding(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid wedding id")
		return
	}

	member, err := s.svc.Weddings.IsMember(r.Context(), id, user.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to check wedding membership")
		s.respondError(w, http.StatusInternalServerError, "failed to delete wedding")
		return
	}
	if !member {
		s.respondError(w, http.StatusNotFound, "Wedding not found")
		return
	}

	if err := s.svc.Weddings.Delete(r.Context(), id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("failed to delete wedding")
		s.respondError(w, http.StatusInternalServerError, "failed to delete wedding")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
