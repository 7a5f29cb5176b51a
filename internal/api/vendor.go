package api

import (
	"net/http"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

type vendorInterestRequest struct {
	Name         string   `json:"name"`
	BusinessName string   `json:"businessName"`
	Email        string   `json:"email"`
	PhoneNumber  string   `json:"phoneNumber"`
	Country      string   `json:"country"`
	State        string   `json:"state"`
	Categories   []string `json:"categories"`
	Description  string   `json:"description"`
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

// toInterest validates the form and returns the record to store.
func (req *vendorInterestRequest) toInterest() (*models.VendorInterest, error) {
	var result *multierror.Error
	required := []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"phoneNumber", req.PhoneNumber},
		{"country", req.Country},
		{"description", req.Description},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			result = multierror.Append(result, fieldError(f.name+" is required"))
		}
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		result = multierror.Append(result, fieldError("email is invalid"))
	}

	if len(req.Categories) == 0 {
		result = multierror.Append(result, fieldError("at least one category is required"))
	}
	categories := make([]models.VendorCategory, 0, len(req.Categories))
	for _, raw := range req.Categories {
		c := models.VendorCategory(strings.ToUpper(strings.TrimSpace(raw)))
		if !c.Valid() {
			result = multierror.Append(result, fieldError("invalid category: "+raw))
			continue
		}
		categories = append(categories, c)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &models.VendorInterest{
		Name:         strings.TrimSpace(req.Name),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Email:        strings.TrimSpace(req.Email),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Country:      strings.TrimSpace(req.Country),
		State:        strings.TrimSpace(req.State),
		Categories:   categories,
		Description:  strings.TrimSpace(req.Description),
	}, nil
}

func (s *Server) handleVendorInterest(w http.ResponseWriter, r *http.Request) {
	var req vendorInterestRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	interest, err := req.toInterest()
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Missing or invalid fields",
			"details": validationMessages(err),
		})
		return
	}

	created, err := s.svc.Vendors.Create(r.Context(), interest)
	if err != nil {
		s.logger.WithError(err).Error("failed to save vendor interest")
		s.respondError(w, http.StatusInternalServerError, "failed to submit vendor interest")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Vendor interest submitted successfully",
		"data":    created,
	})
}

func validationMessages(err error) []string {
	merr, ok := err.(*multierror.Error)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		out = append(out, e.Error())
	}
	return out
}
