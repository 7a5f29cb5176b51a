package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

// MaxPendingInvitations caps the open invitations one user may have sent.
const MaxPendingInvitations = 3

// Invitation rule violations. They are caller errors.
var (
	ErrAlreadyPartnered      = errors.New("you already have a partner")
	ErrReceiverPartnered     = errors.New("this user already has a partner")
	ErrDuplicateInvitation   = errors.New("you already have a pending invitation to this user")
	ErrTooManyInvitations    = fmt.Errorf("you have reached the limit of %d pending invitations", MaxPendingInvitations)
	ErrSelfInvitation        = errors.New("you cannot invite yourself")
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrNoPartner             = errors.New("no partner found")
	ErrInvalidInvitationVerb = errors.New("invalid action")
)

// InvitePartner sends a partner invitation from sender to receiverEmail.
// The receiver does not need an account yet.
func (s *Service) InvitePartner(ctx context.Context, sender *models.User, receiverEmail string) (*models.Invitation, error) {
	receiverEmail = strings.ToLower(strings.TrimSpace(receiverEmail))
	if receiverEmail == "" {
		return nil, errors.New("receiver email is required")
	}
	if strings.EqualFold(receiverEmail, sender.Email) {
		return nil, ErrSelfInvitation
	}
	if sender.HasPartner() {
		return nil, ErrAlreadyPartnered
	}

	receiver, err := s.Users.GetByEmail(ctx, receiverEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup receiver: %w", err)
	}
	if receiver != nil && receiver.HasPartner() {
		return nil, ErrReceiverPartnered
	}

	existing, err := s.Invitations.FindPending(ctx, sender.ID, receiverEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateInvitation
	}

	pending, err := s.Invitations.CountPendingBySender(ctx, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending invitations: %w", err)
	}
	if pending >= MaxPendingInvitations {
		return nil, ErrTooManyInvitations
	}

	inv := &models.Invitation{
		SenderID:      sender.ID,
		ReceiverEmail: receiverEmail,
		Status:        models.InvitationPending,
		Sender: &models.InvitationUser{
			ID: sender.ID, Name: sender.Name, Email: sender.Email, Picture: sender.Picture,
		},
	}
	if receiver != nil {
		inv.ReceiverID = &receiver.ID
	}

	created, err := s.Invitations.Create(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	s.logger.WithField("invitation_id", created.ID).Info("Partner invitation sent")
	return created, nil
}

// RespondToInvitation accepts or rejects an invitation addressed to user.
// Accepting links both users as partners.
func (s *Service) RespondToInvitation(ctx context.Context, user *models.User, invitationID uuid.UUID, action string) (*models.Invitation, error) {
	var status models.InvitationStatus
	switch action {
	case "accept":
		status = models.InvitationAccepted
	case "reject":
		status = models.InvitationDenied
	default:
		return nil, ErrInvalidInvitationVerb
	}

	inv, err := s.Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil || !inv.IsPending() || !addressedTo(inv, user) {
		return nil, ErrInvitationNotFound
	}

	if status == models.InvitationAccepted {
		if user.HasPartner() {
			return nil, ErrAlreadyPartnered
		}
		sender, err := s.Users.GetByID(ctx, inv.SenderID)
		if err != nil {
			return nil, fmt.Errorf("failed to get inviting user: %w", err)
		}
		if sender == nil {
			return nil, ErrInvitationNotFound
		}
		if sender.HasPartner() {
			return nil, ErrReceiverPartnered
		}
		if err := s.Users.SetPartners(ctx, inv.ID, sender.ID, user.ID); err != nil {
			return nil, fmt.Errorf("failed to link partners: %w", err)
		}
		inv.ReceiverID = &user.ID
		inv.Sender = &models.InvitationUser{ID: sender.ID, Name: sender.Name, Email: sender.Email, Picture: sender.Picture}
	} else if err := s.Invitations.UpdateStatus(ctx, inv.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	inv.Status = status
	s.logger.WithFields(logrus.Fields{
		"invitation_id": inv.ID,
		"status":        status,
	}).Info("Partner invitation answered")
	return inv, nil
}

func addressedTo(inv *models.Invitation, user *models.User) bool {
	if inv.ReceiverID != nil && *inv.ReceiverID == user.ID {
		return true
	}
	return strings.EqualFold(inv.ReceiverEmail, user.Email)
}

// Partner returns the public view of the user's partner with the weddings
// the partner belongs to.
func (s *Service) Partner(ctx context.Context, user *models.User) (*models.Partner, error) {
	if !user.HasPartner() {
		return nil, ErrNoPartner
	}
	p, err := s.Users.GetByID(ctx, *user.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if p == nil {
		return nil, ErrNoPartner
	}

	weddings, err := s.Weddings.ListForUser(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partner weddings: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(weddings))
	for _, w := range weddings {
		ids = append(ids, w.ID)
	}

	return &models.Partner{
		ID:           p.ID,
		Email:        p.Email,
		Name:         p.Name,
		Picture:      p.Picture,
		Subscription: p.Subscription,
		Weddings:     ids,
	}, nil
}

// UnlinkPartner removes the partner link on both sides.
func (s *Service) UnlinkPartner(ctx context.Context, user *models.User) error {
	if !user.HasPartner() {
		return ErrNoPartner
	}
	if err := s.Users.Unlink(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to unlink partner: %w", err)
	}
	s.logger.WithField("user_id", user.ID).Info("Partner unlinked")
	return nil
}
