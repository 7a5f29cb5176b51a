package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/weddingplanner/internal/models"
)

// ErrNotFound is returned by mutations that matched no row. Lookups return
// (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// ErrLimitReached is returned when a counted write would exceed its limit.
var ErrLimitReached = errors.New("limit reached")

// ErrConflict is returned when a write would break a uniqueness rule.
var ErrConflict = errors.New("record conflicts with an existing one")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByTelegramChat(ctx context.Context, chatID int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	// SetPartners links a and b to each other and accepts the invitation
	// that connected them, in one transaction.
	SetPartners(ctx context.Context, invitationID, a, b uuid.UUID) error
	// Unlink clears the partner link on both sides.
	Unlink(ctx context.Context, userID uuid.UUID) error
	SetTelegramChat(ctx context.Context, userID uuid.UUID, chatID *int64) error
}

// WeddingRepository defines the interface for wedding data operations
type WeddingRepository interface {
	// Upsert creates the wedding when its ID is zero, registering creatorID
	// and partnerID as members, and updates it otherwise.
	Upsert(ctx context.Context, wedding *models.Wedding, creatorID uuid.UUID, partnerID *uuid.UUID) (*models.Wedding, error)
	GetForUser(ctx context.Context, weddingID, userID uuid.UUID) (*models.Wedding, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Wedding, error)
	IsMember(ctx context.Context, weddingID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, weddingID, userID uuid.UUID, role models.WeddingRole) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlanRepository defines the interface for plan data operations
type PlanRepository interface {
	// ReplaceForWedding removes any earlier plan of the wedding, stores plan
	// with its tasks and counts the generation against userID. It fails with
	// ErrLimitReached when userID already used maxGenerations. Either all of
	// it is committed or none of it is.
	ReplaceForWedding(ctx context.Context, userID, weddingID uuid.UUID, maxGenerations int, plan *models.Plan, tasks []*models.Task) (*models.Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetWithTasks(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	GetByWeddingID(ctx context.Context, weddingID uuid.UUID) (*models.Plan, error)
	AddCategory(ctx context.Context, planID uuid.UUID, category models.PlanCategory) error
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListDueForReminder returns open, unreminded tasks due before the given
	// time, one entry per member with a linked Telegram chat.
	ListDueForReminder(ctx context.Context, before time.Time, limit int) ([]*models.TaskReminder, error)
	MarkReminded(ctx context.Context, ids []uuid.UUID, at time.Time) error
	ListOpenForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Task, error)
	// WeddingIDForTask resolves the wedding owning a task, for membership checks.
	WeddingIDForTask(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// InvitationRepository defines the interface for partner invitation operations
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) (*models.Invitation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	GetPendingForReceiver(ctx context.Context, userID uuid.UUID, email string) ([]*models.Invitation, error)
	CountPendingBySender(ctx context.Context, senderID uuid.UUID) (int, error)
	FindPending(ctx context.Context, senderID uuid.UUID, receiverEmail string) (*models.Invitation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error
}

// VendorInterestRepository stores vendor sign-ups
type VendorInterestRepository interface {
	Create(ctx context.Context, interest *models.VendorInterest) (*models.VendorInterest, error)
}
