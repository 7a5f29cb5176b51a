package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

const invitationColumns = `id, sender_id, receiver_id, receiver_email, status, created_at, updated_at`

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

func scanInvitation(row rowScanner, extra ...any) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var receiverID uuid.NullUUID
	dest := append([]any{
		&inv.ID, &inv.SenderID, &receiverID, &inv.ReceiverEmail, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if receiverID.Valid {
		inv.ReceiverID = &receiverID.UUID
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	query := `INSERT INTO invitations (id, sender_id, receiver_id, receiver_email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = models.InvitationPending
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	var receiverID any
	if inv.ReceiverID != nil {
		receiverID = *inv.ReceiverID
	}
	err := r.db.QueryRowContext(ctx, query,
		inv.ID, inv.SenderID, receiverID, inv.ReceiverEmail, inv.Status, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// GetPendingForReceiver matches invitations addressed to the user either by
// id or by email, since invitees may not have had an account yet.
func (r *invitationRepository) GetPendingForReceiver(ctx context.Context, userID uuid.UUID, email string) ([]*models.Invitation, error) {
	query := `SELECT ` + prefixed("i", invitationColumns) + `, u.id, u.name, u.email, u.picture
		FROM invitations i
		JOIN users u ON u.id = i.sender_id
		WHERE i.status = $1 AND (i.receiver_id = $2 OR lower(i.receiver_email) = lower($3))
		ORDER BY i.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, models.InvitationPending, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		sender := &models.InvitationUser{}
		inv, err := scanInvitation(rows, &sender.ID, &sender.Name, &sender.Email, &sender.Picture)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.Sender = sender
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationRepository) CountPendingBySender(ctx context.Context, senderID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitations WHERE sender_id = $1 AND status = $2`,
		senderID, models.InvitationPending,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count invitations: %w", err)
	}
	return n, nil
}

func (r *invitationRepository) FindPending(ctx context.Context, senderID uuid.UUID, receiverEmail string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations
		WHERE sender_id = $1 AND lower(receiver_email) = lower($2) AND status = $3
		LIMIT 1`
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, senderID, receiverEmail, models.InvitationPending))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return inv, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	return requireAffected(result)
}
