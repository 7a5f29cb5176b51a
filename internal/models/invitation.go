package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the lifecycle state of a partner invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDenied   InvitationStatus = "DENIED"
)

// Invitation asks another user, known by email, to co-plan as a partner.
type Invitation struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	SenderID      uuid.UUID        `json:"senderId" db:"sender_id"`
	ReceiverID    *uuid.UUID       `json:"receiverId" db:"receiver_id"`
	ReceiverEmail string           `json:"receiverEmail" db:"receiver_email"`
	Status        InvitationStatus `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
	Sender        *InvitationUser  `json:"sender,omitempty"`
}

// InvitationUser is the sender summary returned with invitations.
type InvitationUser struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Picture string    `json:"picture,omitempty"`
}

// IsPending returns true if the invitation has not been answered
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}
