package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is the stored subscription level of a user. Its values match
// tier.Tier so the two convert without a lookup.
type Subscription string

const (
	SubscriptionBasic   Subscription = "BASIC"
	SubscriptionPremium Subscription = "PREMIUM"
)

// User represents an account. Accounts are created by the external auth
// collaborator; this service reads them and maintains partner links,
// generation counts and the optional Telegram chat.
type User struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	Email          string       `json:"email" db:"email"`
	Name           string       `json:"name" db:"name"`
	Picture        string       `json:"picture,omitempty" db:"picture"`
	GoogleID       string       `json:"-" db:"google_id"`
	Subscription   Subscription `json:"subscription" db:"subscription"`
	PartnerID      *uuid.UUID   `json:"partnerId" db:"partner_id"`
	GeneratedCount int          `json:"generatedCount" db:"generated_count"`
	TelegramChatID *int64       `json:"telegramChatId,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// DisplayName returns the best display name for the user
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// HasPartner returns true if the user is linked to a partner
func (u *User) HasPartner() bool {
	return u.PartnerID != nil
}

// Partner is the public view of a linked partner.
type Partner struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Picture      string       `json:"picture,omitempty"`
	Subscription Subscription `json:"subscription"`
	Weddings     []uuid.UUID  `json:"weddings"`
}
