package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorCategory is the kind of service a vendor offers
type VendorCategory string

const (
	VendorVenue          VendorCategory = "VENUE"
	VendorCatering       VendorCategory = "CATERING"
	VendorPhotography    VendorCategory = "PHOTOGRAPHY"
	VendorVideography    VendorCategory = "VIDEOGRAPHY"
	VendorAttire         VendorCategory = "ATTIRE"
	VendorDecor          VendorCategory = "DECOR"
	VendorEntertainment  VendorCategory = "ENTERTAINMENT"
	VendorTransportation VendorCategory = "TRANSPORTATION"
	VendorCake           VendorCategory = "CAKE"
	VendorBeauty         VendorCategory = "BEAUTY"
	VendorPlanner        VendorCategory = "PLANNER"
	VendorOther          VendorCategory = "OTHER"
)

var vendorCategories = map[VendorCategory]struct{}{
	VendorVenue: {}, VendorCatering: {}, VendorPhotography: {}, VendorVideography: {},
	VendorAttire: {}, VendorDecor: {}, VendorEntertainment: {}, VendorTransportation: {},
	VendorCake: {}, VendorBeauty: {}, VendorPlanner: {}, VendorOther: {},
}

// Valid reports whether c is a known vendor category
func (c VendorCategory) Valid() bool {
	_, ok := vendorCategories[c]
	return ok
}

// VendorInterest is a submission from the public vendor interest form
type VendorInterest struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	BusinessName string           `json:"businessName" db:"business_name"`
	Email        string           `json:"email" db:"email"`
	PhoneNumber  string           `json:"phoneNumber" db:"phone_number"`
	Country      string           `json:"country" db:"country"`
	State        string           `json:"state" db:"state"`
	Categories   []VendorCategory `json:"categories" db:"categories"`
	Description  string           `json:"description" db:"description"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
}
