package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

// WeddingAttributes is the caller-supplied description of a wedding. It is
// immutable input to a single generation.
type WeddingAttributes struct {
	Partner1Name       string  `json:"partner1Name"`
	Partner2Name       string  `json:"partner2Name"`
	CulturalBackground string  `json:"culturalBackground"`
	Religion           string  `json:"religion"`
	Email              string  `json:"email"`
	PhoneNumber        string  `json:"phoneNumber"`
	WeddingDate        string  `json:"weddingDate"`
	Country            string  `json:"country"`
	State              string  `json:"state"`
	Budget             float64 `json:"budget"`
	GuestCount         int     `json:"guestCount"`
	Theme              string  `json:"theme"`
	SpecialRequests    string  `json:"specialRequests"`
}

// AttributesFromWedding builds generation input from a stored wedding.
func AttributesFromWedding(w *models.Wedding) WeddingAttributes {
	return WeddingAttributes{
		Partner1Name:       w.Partner1Name,
		Partner2Name:       w.Partner2Name,
		CulturalBackground: w.CulturalBackground,
		Religion:           w.Religion,
		Email:              w.Email,
		PhoneNumber:        w.PhoneNumber,
		WeddingDate:        w.Date.Format(dateLayout),
		Country:            w.Country,
		State:              w.State,
		Budget:             w.Budget,
		GuestCount:         w.GuestCount,
		Theme:              w.Theme,
		SpecialRequests:    w.SpecialRequests,
	}
}

// Date parses the wedding date. Both a plain calendar date and RFC 3339 are
// accepted.
func (a WeddingAttributes) Date() (time.Time, error) {
	return ParseDate(a.WeddingDate)
}

// Validate checks the attributes a plan cannot be generated without.
func (a WeddingAttributes) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(a.Partner1Name) == "" || strings.TrimSpace(a.Partner2Name) == "" {
		result = multierror.Append(result, fmt.Errorf("both partner names are required"))
	}
	if _, err := a.Date(); err != nil {
		result = multierror.Append(result, fmt.Errorf("weddingDate: %w", err))
	}
	if a.Budget <= 0 {
		result = multierror.Append(result, fmt.Errorf("budget must be positive"))
	}
	if a.GuestCount <= 0 {
		result = multierror.Append(result, fmt.Errorf("guestCount must be positive"))
	}
	return result.ErrorOrNil()
}

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t, nil
}
