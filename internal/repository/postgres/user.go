package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, picture, google_id, subscription, partner_id, generated_count, telegram_chat_id, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var partnerID uuid.NullUUID
	var chatID sql.NullInt64
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Picture,
		&user.GoogleID,
		&user.Subscription,
		&partnerID,
		&user.GeneratedCount,
		&chatID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if partnerID.Valid {
		user.PartnerID = &partnerID.UUID
	}
	if chatID.Valid {
		user.TelegramChatID = &chatID.Int64
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, name, picture, google_id, subscription, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Subscription == "" {
		user.Subscription = models.SubscriptionBasic
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Picture,
		user.GoogleID,
		user.Subscription,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByTelegramChat(ctx context.Context, chatID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_chat_id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by telegram chat: %w", err)
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $2, picture = $3, subscription = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at`

	user.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Picture,
		user.Subscription,
		user.UpdatedAt,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (r *userRepository) SetPartners(ctx context.Context, invitationID, a, b uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET partner_id = $2, updated_at = $3 WHERE id = $1`, a, b, now); err != nil {
			return fmt.Errorf("failed to link user: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET partner_id = $2, updated_at = $3 WHERE id = $1`, b, a, now); err != nil {
			return fmt.Errorf("failed to link partner: %w", err)
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE invitations SET status = $2, receiver_id = $3, updated_at = $4 WHERE id = $1`,
			invitationID, models.InvitationAccepted, b, now)
		if err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}
		return requireAffected(result)
	})
}

func (r *userRepository) Unlink(ctx context.Context, userID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now()
		var partnerID uuid.NullUUID
		err := tx.QueryRowContext(ctx,
			`SELECT partner_id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&partnerID)
		if err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to read partner: %w", err)
		}
		if !partnerID.Valid {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET partner_id = NULL, updated_at = $2 WHERE id = $1 OR id = $3`,
			userID, now, partnerID.UUID); err != nil {
			return fmt.Errorf("failed to unlink partners: %w", err)
		}
		return nil
	})
}

func (r *userRepository) SetTelegramChat(ctx context.Context, userID uuid.UUID, chatID *int64) error {
	query := `UPDATE users SET telegram_chat_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, chatID, time.Now())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to set telegram chat: %w", err)
	}

	return requireAffected(result)
}
