package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/repository"
)

const planColumns = `id, wedding_id, overview, budget_breakdown, timeline, categories, created_at, updated_at`

type planRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *sql.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	p := &models.Plan{}
	var budget, timeline, categories []byte
	err := row.Scan(&p.ID, &p.WeddingID, &p.Overview, &budget, &timeline, &categories, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.BudgetBreakdown = json.RawMessage(budget)
	p.Timeline = json.RawMessage(timeline)
	p.Categories = json.RawMessage(categories)
	return p, nil
}

// jsonOrEmpty renders a JSONB parameter. lib/pq sends []byte as bytea, so
// the document goes over the wire as text.
func jsonOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func (r *planRepository) ReplaceForWedding(ctx context.Context, userID, weddingID uuid.UUID, maxGenerations int, plan *models.Plan, tasks []*models.Task) (*models.Plan, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// Serializes generations for the same wedding.
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT id FROM weddings WHERE id = $1 FOR UPDATE`, weddingID).Scan(&locked)
		if err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to lock wedding: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE wedding_id = $1`, weddingID); err != nil {
			return fmt.Errorf("failed to delete previous plans: %w", err)
		}

		plan.WeddingID = weddingID
		if err := createPlan(ctx, tx, plan); err != nil {
			return err
		}

		if _, err := bulkCreateTasks(ctx, tx, plan.ID, tasks); err != nil {
			return err
		}

		return countGeneration(ctx, tx, userID, maxGenerations)
	})
	if err != nil {
		return nil, err
	}

	plan.Tasks = tasks
	return plan, nil
}

// countGeneration increments the user's generation count unless it already
// reached limit. The row lock taken by the UPDATE orders concurrent
// generations of the same user.
func countGeneration(ctx context.Context, tx *sql.Tx, userID uuid.UUID, limit int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE users SET generated_count = generated_count + 1, updated_at = $2 WHERE id = $1 AND generated_count < $3`,
		userID, time.Now(), limit)
	if err != nil {
		return fmt.Errorf("failed to count generation: %w", err)
	}
	if err := requireAffected(result); err != repository.ErrNotFound {
		return err
	}

	var used int
	err = tx.QueryRowContext(ctx, `SELECT generated_count FROM users WHERE id = $1`, userID).Scan(&used)
	if err != nil {
		if err == sql.ErrNoRows {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to read generation count: %w", err)
	}
	return fmt.Errorf("%w: %d of %d generations used", repository.ErrLimitReached, used, limit)
}

func createPlan(ctx context.Context, tx *sql.Tx, plan *models.Plan) error {
	query := `
		INSERT INTO plans (id, wedding_id, overview, budget_breakdown, timeline, categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	err := tx.QueryRowContext(ctx, query,
		plan.ID,
		plan.WeddingID,
		plan.Overview,
		jsonOrEmpty(plan.BudgetBreakdown),
		jsonOrEmpty(plan.Timeline),
		jsonOrEmpty(plan.Categories),
		plan.CreatedAt,
		plan.UpdatedAt,
	).Scan(&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// bulkCreateTasks streams the tasks into the tasks table with COPY. Every
// task is stored open, under planID.
func bulkCreateTasks(ctx context.Context, tx *sql.Tx, planID uuid.UUID, tasks []*models.Task) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("tasks",
		"id", "plan_id", "title", "description", "due_date", "is_completed",
		"category", "remark", "position", "created_at", "updated_at",
	))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare task copy: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, t := range tasks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		t.PlanID = planID
		t.IsCompleted = false
		t.CreatedAt = now
		t.UpdatedAt = now
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.PlanID, t.Title, t.Description, t.DueDate, t.IsCompleted,
			string(t.Category), t.Remark, t.Position, t.CreatedAt, t.UpdatedAt,
		); err != nil {
			return 0, fmt.Errorf("failed to copy task %d: %w", i, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to flush task copy: %w", err)
	}
	return len(tasks), nil
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

func (r *planRepository) GetWithTasks(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := r.GetByID(ctx, id)
	if err != nil || plan == nil {
		return plan, err
	}
	if plan.Tasks, err = r.tasks(ctx, plan.ID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *planRepository) GetByWeddingID(ctx context.Context, weddingID uuid.UUID) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE wedding_id = $1 ORDER BY created_at ASC LIMIT 1`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, weddingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan by wedding: %w", err)
	}
	if plan.Tasks, err = r.tasks(ctx, plan.ID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *planRepository) tasks(ctx context.Context, planID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE plan_id = $1 ORDER BY position ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AddCategory appends category to the plan's category list unless a
// category with the same name is already there.
func (r *planRepository) AddCategory(ctx context.Context, planID uuid.UUID, category models.PlanCategory) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var raw []byte
		err := tx.QueryRowContext(ctx, `SELECT categories FROM plans WHERE id = $1 FOR UPDATE`, planID).Scan(&raw)
		if err != nil {
			if err == sql.ErrNoRows {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to read plan categories: %w", err)
		}

		plan := &models.Plan{Categories: raw}
		categories, err := plan.CategoryList()
		if err != nil {
			return fmt.Errorf("failed to decode plan categories: %w", err)
		}
		for _, c := range categories {
			if strings.EqualFold(c.Name, category.Name) {
				return nil
			}
		}

		encoded, err := json.Marshal(append(categories, category))
		if err != nil {
			return fmt.Errorf("failed to encode plan categories: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE plans SET categories = $2, updated_at = $3 WHERE id = $1`,
			planID, string(encoded), time.Now()); err != nil {
			return fmt.Errorf("failed to update plan categories: %w", err)
		}
		return nil
	})
}
