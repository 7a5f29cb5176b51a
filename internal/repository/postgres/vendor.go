package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

type vendorInterestRepository struct {
	db *sql.DB
}

func NewVendorInterestRepository(db *sql.DB) repository.VendorInterestRepository {
	return &vendorInterestRepository{db: db}
}

func (r *vendorInterestRepository) Create(ctx context.Context, v *models.VendorInterest) (*models.VendorInterest, error) {
	query := `INSERT INTO vendor_interests (id, name, business_name, email, phone_number, country, state, categories, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()

	categories := make([]string, len(v.Categories))
	for i, c := range v.Categories {
		categories[i] = string(c)
	}
	err := r.db.QueryRowContext(ctx, query,
		v.ID, v.Name, v.BusinessName, v.Email, v.PhoneNumber, v.Country, v.State,
		pq.Array(categories), v.Description, v.CreatedAt,
	).Scan(&v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor interest: %w", err)
	}
	return v, nil
}
