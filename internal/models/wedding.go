package models

import (
	"time"

	"github.com/google/uuid"
)

// WeddingRole is the role a user holds on a wedding
type WeddingRole string

const (
	WeddingRoleCreator WeddingRole = "CREATOR"
	WeddingRolePartner WeddingRole = "PARTNER"
	WeddingRoleHelper  WeddingRole = "HELPER"
)

// Wedding holds the attributes a couple entered for their wedding. It is the
// input to plan generation.
type Wedding struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Partner1Name       string          `json:"partner1Name" db:"partner1_name"`
	Partner2Name       string          `json:"partner2Name" db:"partner2_name"`
	CulturalBackground string          `json:"culturalBackground" db:"cultural_background"`
	Religion           string          `json:"religion" db:"religion"`
	Email              string          `json:"email" db:"email"`
	PhoneNumber        string          `json:"phoneNumber,omitempty" db:"phone_number"`
	Date               time.Time       `json:"date" db:"date"`
	Country            string          `json:"country" db:"country"`
	State              string          `json:"state" db:"state"`
	Budget             float64         `json:"budget" db:"budget"`
	GuestCount         int             `json:"guestCount" db:"guest_count"`
	Theme              string          `json:"theme" db:"theme"`
	SpecialRequests    string          `json:"specialRequests,omitempty" db:"special_requests"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
	Users              []WeddingMember `json:"users,omitempty"`
}

// WeddingMember represents the join table between weddings and users
type WeddingMember struct {
	WeddingID uuid.UUID   `json:"weddingId" db:"wedding_id"`
	UserID    uuid.UUID   `json:"userId" db:"user_id"`
	Role      WeddingRole `json:"role" db:"role"`
	JoinedAt  time.Time   `json:"joinedAt" db:"joined_at"`
	User      *User       `json:"user,omitempty"`
}
