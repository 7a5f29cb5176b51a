package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
	"github.com/Kerhoff/weddingplanner/internal/tier"
)

// Service is the central business logic layer that holds all repositories
// and provides high-level methods for the application.
type Service struct {
	logger      *logrus.Logger
	Users       repository.UserRepository
	Weddings    repository.WeddingRepository
	Plans       repository.PlanRepository
	Tasks       repository.TaskRepository
	Invitations repository.InvitationRepository
	Vendors     repository.VendorInterestRepository
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger,
	users repository.UserRepository,
	weddings repository.WeddingRepository,
	plans repository.PlanRepository,
	tasks repository.TaskRepository,
	invitations repository.InvitationRepository,
	vendors repository.VendorInterestRepository,
) *Service {
	return &Service{
		logger: logger,
		Users:  users, Weddings: weddings, Plans: plans, Tasks: tasks,
		Invitations: invitations, Vendors: vendors,
	}
}

// EnsureUser retrieves an existing user by email, or creates a new one if
// not found. A changed non-empty name is written back.
func (s *Service) EnsureUser(ctx context.Context, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return nil, errors.New("email is required")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (email=%s): %w", email, err)
	}
	if user == nil {
		user, err = s.Users.Create(ctx, &models.User{
			Email:        email,
			Name:         name,
			Subscription: models.SubscriptionBasic,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user (email=%s): %w", email, err)
		}
		s.logger.Infof("Created new user: %s (id=%s)", user.DisplayName(), user.ID)
		return user, nil
	}

	if name != "" && user.Name != name {
		user.Name = name
		user, err = s.Users.Update(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("failed to update user %s: %w", email, err)
		}
		s.logger.Infof("Updated user profile: %s (id=%s)", user.DisplayName(), user.ID)
	}

	return user, nil
}

// SetSubscription changes the tier of the user with the given email.
func (s *Service) SetSubscription(ctx context.Context, email string, t tier.Tier) (*models.User, error) {
	user, err := s.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (email=%s): %w", email, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
	}

	user.Subscription = models.Subscription(t)
	user, err = s.Users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"tier":    t,
	}).Info("Subscription changed")
	return user, nil
}

// CanAccessTask reports whether the user belongs to the wedding that owns
// the task.
func (s *Service) CanAccessTask(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	weddingID, err := s.Tasks.WeddingIDForTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.Weddings.IsMember(ctx, weddingID, userID)
}
