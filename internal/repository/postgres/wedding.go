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

const weddingColumns = `w.id, w.partner1_name, w.partner2_name, w.cultural_background, w.religion, w.email,
	w.phone_number, w.date, w.country, w.state, w.budget, w.guest_count, w.theme, w.special_requests,
	w.created_at, w.updated_at`

type weddingRepository struct {
	db *sql.DB
}

// NewWeddingRepository creates a new wedding repository
func NewWeddingRepository(db *sql.DB) repository.WeddingRepository {
	return &weddingRepository{db: db}
}

func scanWedding(row rowScanner) (*models.Wedding, error) {
	w := &models.Wedding{}
	err := row.Scan(
		&w.ID, &w.Partner1Name, &w.Partner2Name, &w.CulturalBackground, &w.Religion, &w.Email,
		&w.PhoneNumber, &w.Date, &w.Country, &w.State, &w.Budget, &w.GuestCount, &w.Theme,
		&w.SpecialRequests, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *weddingRepository) Upsert(ctx context.Context, w *models.Wedding, creatorID uuid.UUID, partnerID *uuid.UUID) (*models.Wedding, error) {
	now := time.Now()
	w.UpdatedAt = now

	if w.ID != uuid.Nil {
		query := `
			UPDATE weddings
			SET partner1_name = $2, partner2_name = $3, cultural_background = $4, religion = $5,
				email = $6, phone_number = $7, date = $8, country = $9, state = $10, budget = $11,
				guest_count = $12, theme = $13, special_requests = $14, updated_at = $15
			WHERE id = $1
			RETURNING created_at, updated_at`
		err := r.db.QueryRowContext(ctx, query,
			w.ID, w.Partner1Name, w.Partner2Name, w.CulturalBackground, w.Religion,
			w.Email, w.PhoneNumber, w.Date, w.Country, w.State, w.Budget,
			w.GuestCount, w.Theme, w.SpecialRequests, w.UpdatedAt,
		).Scan(&w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, repository.ErrNotFound
			}
			return nil, fmt.Errorf("failed to update wedding: %w", err)
		}
		return w, nil
	}

	w.ID = uuid.New()
	w.CreatedAt = now
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO weddings (id, partner1_name, partner2_name, cultural_background, religion, email,
				phone_number, date, country, state, budget, guest_count, theme, special_requests,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
		if _, err := tx.ExecContext(ctx, query,
			w.ID, w.Partner1Name, w.Partner2Name, w.CulturalBackground, w.Religion, w.Email,
			w.PhoneNumber, w.Date, w.Country, w.State, w.Budget, w.GuestCount, w.Theme,
			w.SpecialRequests, w.CreatedAt, w.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create wedding: %w", err)
		}

		members := []models.WeddingMember{{WeddingID: w.ID, UserID: creatorID, Role: models.WeddingRoleCreator, JoinedAt: now}}
		if partnerID != nil {
			members = append(members, models.WeddingMember{WeddingID: w.ID, UserID: *partnerID, Role: models.WeddingRolePartner, JoinedAt: now})
		}
		for _, m := range members {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO wedding_users (wedding_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
				m.WeddingID, m.UserID, m.Role, m.JoinedAt,
			); err != nil {
				return fmt.Errorf("failed to add wedding member: %w", err)
			}
		}
		w.Users = members
		return nil
	})
	if err != nil {
		w.ID = uuid.Nil
		return nil, err
	}
	return w, nil
}

func (r *weddingRepository) GetForUser(ctx context.Context, weddingID, userID uuid.UUID) (*models.Wedding, error) {
	query := `SELECT ` + weddingColumns + `
		FROM weddings w
		JOIN wedding_users wu ON wu.wedding_id = w.id
		WHERE w.id = $1 AND wu.user_id = $2`

	w, err := scanWedding(r.db.QueryRowContext(ctx, query, weddingID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wedding: %w", err)
	}

	members, err := r.members(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Users = members
	return w, nil
}

func (r *weddingRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Wedding, error) {
	query := `SELECT ` + weddingColumns + `
		FROM weddings w
		JOIN wedding_users wu ON wu.wedding_id = w.id
		WHERE wu.user_id = $1
		ORDER BY w.date ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weddings: %w", err)
	}
	defer rows.Close()

	var weddings []*models.Wedding
	for rows.Next() {
		w, err := scanWedding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wedding: %w", err)
		}
		weddings = append(weddings, w)
	}
	return weddings, rows.Err()
}

func (r *weddingRepository) members(ctx context.Context, weddingID uuid.UUID) ([]models.WeddingMember, error) {
	query := `
		SELECT wu.wedding_id, wu.role, wu.joined_at, ` + prefixed("u", userColumns) + `
		FROM wedding_users wu
		JOIN users u ON u.id = wu.user_id
		WHERE wu.wedding_id = $1
		ORDER BY wu.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, weddingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wedding members: %w", err)
	}
	defer rows.Close()

	var members []models.WeddingMember
	for rows.Next() {
		var m models.WeddingMember
		var u models.User
		var partnerID uuid.NullUUID
		var chatID sql.NullInt64
		if err := rows.Scan(
			&m.WeddingID, &m.Role, &m.JoinedAt,
			&u.ID, &u.Email, &u.Name, &u.Picture, &u.GoogleID, &u.Subscription,
			&partnerID, &u.GeneratedCount, &chatID, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wedding member: %w", err)
		}
		if partnerID.Valid {
			u.PartnerID = &partnerID.UUID
		}
		if chatID.Valid {
			u.TelegramChatID = &chatID.Int64
		}
		m.UserID = u.ID
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *weddingRepository) IsMember(ctx context.Context, weddingID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM wedding_users WHERE wedding_id = $1 AND user_id = $2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, weddingID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check wedding membership: %w", err)
	}
	return ok, nil
}

func (r *weddingRepository) AddMember(ctx context.Context, weddingID, userID uuid.UUID, role models.WeddingRole) error {
	query := `
		INSERT INTO wedding_users (wedding_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wedding_id, user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, weddingID, userID, role, time.Now()); err != nil {
		return fmt.Errorf("failed to add wedding member: %w", err)
	}
	return nil
}

// Delete removes the wedding together with its plans, tasks and members.
func (r *weddingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tasks WHERE plan_id IN (SELECT id FROM plans WHERE wedding_id = $1)`, id); err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE wedding_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete plans: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM wedding_users WHERE wedding_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete wedding members: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM weddings WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete wedding: %w", err)
		}
		return requireAffected(result)
	})
}
